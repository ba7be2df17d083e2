package file

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *ConfigStore {
	t.Helper()
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func TestNewConfigStore_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "lexis")

	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "config.toml"), store.Path())
	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestNewConfigStore_DefaultDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	store, err := NewConfigStore("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".lexis", "config.toml"), store.Path())
}

func TestNewConfigStore_CorruptedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("[llm\nmodel ="), 0600))

	_, err := NewConfigStore(dir)
	assert.ErrorContains(t, err, "config.toml")
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Set("llm.model", "gemini-2.5-flash"))
	require.NoError(t, store.Set("ocr.dpi", 300))
	require.NoError(t, store.Set("ocr.enabled", true))
	require.NoError(t, store.Set("server.origins", []string{"a", "b"}))

	assert.Equal(t, "gemini-2.5-flash", store.GetString("llm.model"))
	assert.Equal(t, 300, store.GetInt("ocr.dpi"))
	assert.True(t, store.GetBool("ocr.enabled"))
	assert.Equal(t, []string{"a", "b"}, store.GetStringSlice("server.origins"))

	assert.Empty(t, store.GetString("ocr.dpi"), "wrong type reads as zero value")
	assert.Zero(t, store.GetInt("llm.model"))
	assert.False(t, store.GetBool("missing"))
	assert.Nil(t, store.GetStringSlice("missing"))

	_, ok := store.Get("missing")
	assert.False(t, ok)
}

func TestConfigStore_GetIntAcceptsWholeFloats(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Set("a", 42.0))
	require.NoError(t, store.Set("b", 4.5))
	require.NoError(t, store.Set("c", int64(7)))

	assert.Equal(t, 42, store.GetInt("a"))
	assert.Zero(t, store.GetInt("b"))
	assert.Equal(t, 7, store.GetInt("c"))
}

func TestConfigStore_WritesTables(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Set("embedding.provider", "ollama"))
	require.NoError(t, store.Set("cloud_ocr.requests_per_minute", 15))

	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), "[embedding]")
	assert.Contains(t, string(data), "[cloud_ocr]")
	assert.NotContains(t, string(data), `"embedding.provider"`)
}

func TestConfigStore_ReloadPreservesValues(t *testing.T) {
	dir := t.TempDir()
	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Set("llm.provider", "gemini"))
	require.NoError(t, store.Set("server.max_upload_bytes", int64(32<<20)))
	require.NoError(t, store.Set("cloud_ocr.enabled", false))
	require.NoError(t, store.Set("storage.index_dir", "/srv/lexis"))

	reopened, err := NewConfigStore(dir)
	require.NoError(t, err)

	assert.Equal(t, "gemini", reopened.GetString("llm.provider"))
	assert.Equal(t, 32<<20, reopened.GetInt("server.max_upload_bytes"))
	assert.False(t, reopened.GetBool("cloud_ocr.enabled"))
	assert.Equal(t, "/srv/lexis", reopened.GetString("storage.index_dir"))
}

func TestConfigStore_ReadsHandWrittenFile(t *testing.T) {
	dir := t.TempDir()
	content := `
[embedding]
provider = "openai"
model = "text-embedding-3-small"

[ocr]
language = "eng+hin"
dpi = 200
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0600))

	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	assert.Equal(t, "openai", store.GetString("embedding.provider"))
	assert.Equal(t, "eng+hin", store.GetString("ocr.language"))
	assert.Equal(t, 200, store.GetInt("ocr.dpi"))
}

func TestConfigStore_ConflictingKeysRejected(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Set("llm", "gemini"))

	err := store.Set("llm.model", "gemini-2.5-flash")
	assert.Error(t, err)

	_, ok := store.Get("llm.model")
	assert.False(t, ok, "failed set is rolled back")
	assert.Equal(t, "gemini", store.GetString("llm"))
}

func TestConfigStore_FilePermissions(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Set("llm.api_key", "secret"))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	_, err = os.Stat(store.Path() + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestConfigStore_EmptyFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), nil, 0600))

	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Set("server.addr", ":9000"))
	assert.Equal(t, ":9000", store.GetString("server.addr"))
}

func TestConfigStore_LoadMissingFileResets(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Set("llm.model", "x"))
	require.NoError(t, os.Remove(store.Path()))

	require.NoError(t, store.Load())
	_, ok := store.Get("llm.model")
	assert.False(t, ok)
}

func TestConfigStore_Concurrency(t *testing.T) {
	store := newTestStore(t)

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = store.Set("server.addr", i)
		}()
		go func() {
			defer wg.Done()
			_ = store.GetInt("server.addr")
		}()
	}
	wg.Wait()

	_, ok := store.Get("server.addr")
	assert.True(t, ok)
}

func TestUnflattenMap(t *testing.T) {
	nested, err := unflattenMap(map[string]any{
		"a.b.c": 1,
		"a.d":   "x",
		"e":     true,
	})
	require.NoError(t, err)

	assert.Equal(t, map[string]any{
		"a": map[string]any{
			"b": map[string]any{"c": 1},
			"d": "x",
		},
		"e": true,
	}, nested)
	assert.Equal(t, map[string]any{"a.b.c": 1, "a.d": "x", "e": true}, flattenMap(nested, ""))
}
