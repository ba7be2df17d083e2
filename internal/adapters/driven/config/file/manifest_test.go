package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lexis/internal/core/domain"
)

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "corpora.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadCorpusManifest(t *testing.T) {
	path := writeManifest(t, `
corpora:
  - name: Constitution of India
    path: data/constitution_of_india.pdf
  - name: "  Indian Penal Code "
    path: /srv/law/ipc.pdf
`)

	defs, err := LoadCorpusManifest(path)
	require.NoError(t, err)

	base := filepath.Dir(path)
	assert.Equal(t, []domain.CorpusDefinition{
		{Name: "Constitution of India", Path: filepath.Join(base, "data", "constitution_of_india.pdf")},
		{Name: "Indian Penal Code", Path: "/srv/law/ipc.pdf"},
	}, defs)
}

func TestLoadCorpusManifest_Empty(t *testing.T) {
	defs, err := LoadCorpusManifest(writeManifest(t, ""))
	require.NoError(t, err)
	assert.Empty(t, defs)
}

func TestLoadCorpusManifest_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown key", "corpora:\n  - name: A\n    file: a.pdf\n"},
		{"missing name", "corpora:\n  - path: a.pdf\n"},
		{"missing path", "corpora:\n  - name: A\n"},
		{"duplicate", "corpora:\n  - {name: A, path: a.pdf}\n  - {name: A, path: b.pdf}\n"},
		{"bad yaml", "corpora: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadCorpusManifest(writeManifest(t, tt.content))
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestLoadCorpusManifest_Missing(t *testing.T) {
	_, err := LoadCorpusManifest(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
