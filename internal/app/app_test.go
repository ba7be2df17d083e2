package app

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lexis/internal/adapters/driven/ai"
	"github.com/custodia-labs/lexis/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/lexis/internal/core/domain"
	"github.com/custodia-labs/lexis/internal/core/ports/driven"
)

// letterEmbedder embeds text as its letter frequencies.
type letterEmbedder struct{}

func (letterEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	v := make([]float32, 26)
	for _, r := range strings.ToLower(text) {
		if r >= 'a' && r <= 'z' {
			v[r-'a']++
		}
	}
	return v, nil
}

func (e letterEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i], _ = e.Embed(ctx, t)
	}
	return out, nil
}

func (letterEmbedder) Dimensions() int { return 26 }
func (letterEmbedder) ModelName() string { return "letters" }
func (letterEmbedder) Ping(_ context.Context) error { return nil }
func (letterEmbedder) Close() error { return nil }

type recordingLLM struct {
	mu      sync.Mutex
	prompts []string
}

func (l *recordingLLM) Generate(_ context.Context, prompt string, _ driven.GenerateOptions) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.prompts = append(l.prompts, prompt)
	return "The tenant pays rent monthly.", nil
}

func (l *recordingLLM) ModelName() string { return "recording" }
func (l *recordingLLM) Ping(_ context.Context) error { return nil }
func (l *recordingLLM) Close() error { return nil }

type stubTranscriber struct{}

func (stubTranscriber) Transcribe(_ context.Context, _ []byte, _, _ string) (string, error) {
	return "page text", nil
}

func (stubTranscriber) Close() error { return nil }

func testSettings(t *testing.T) *domain.AppSettings {
	t.Helper()
	settings := domain.DefaultAppSettings()
	settings.Storage.CorpusManifest = filepath.Join(t.TempDir(), "corpora.yaml")
	return &settings
}

func TestNewExtractor(t *testing.T) {
	t.Run("all strategies", func(t *testing.T) {
		settings := domain.DefaultAppSettings()
		chain := NewExtractor(&settings, stubTranscriber{})

		assert.Equal(t, []string{"pdftotext", "pdfparse", "tesseract", "cloud-ocr"},
			chain.Strategies(domain.MIMETypePDF))
		assert.Equal(t, []string{"plaintext"}, chain.Strategies(domain.MIMETypePlainText))
		assert.Equal(t, []string{"markdown", "plaintext"}, chain.Strategies(domain.MIMETypeMarkdown))
		assert.Equal(t, []string{"html"}, chain.Strategies(domain.MIMETypeHTML))
		assert.Equal(t, []string{"docx"}, chain.Strategies(domain.MIMETypeDOCX))
	})

	t.Run("ocr disabled and no transcriber", func(t *testing.T) {
		settings := domain.DefaultAppSettings()
		settings.OCR.Enabled = false
		chain := NewExtractor(&settings, nil)

		assert.Equal(t, []string{"pdftotext", "pdfparse"}, chain.Strategies(domain.MIMETypePDF))
	})
}

func TestNewWithRequiresEmbedding(t *testing.T) {
	_, err := NewWith(testSettings(t), t.TempDir(), Deps{AI: &ai.InitResult{}})
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)

	_, err = NewWith(testSettings(t), t.TempDir(), Deps{})
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}

func TestNewWithMissingManifest(t *testing.T) {
	a, err := NewWith(testSettings(t), t.TempDir(), Deps{
		AI:    &ai.InitResult{EmbeddingService: letterEmbedder{}},
		Store: memory.NewIndexStore(),
	})
	require.NoError(t, err)
	defer a.Close()

	assert.Empty(t, a.Definitions)
}

func TestNewWithLoadsManifest(t *testing.T) {
	settings := testSettings(t)
	manifest := "corpora:\n  - name: Constitution of India\n    path: constitution.txt\n"
	require.NoError(t, os.WriteFile(settings.Storage.CorpusManifest, []byte(manifest), 0600))

	a, err := NewWith(settings, t.TempDir(), Deps{
		AI:    &ai.InitResult{EmbeddingService: letterEmbedder{}, Warnings: []string{"LLM missing"}},
		Store: memory.NewIndexStore(),
	})
	require.NoError(t, err)
	defer a.Close()

	require.Len(t, a.Definitions, 1)
	assert.Equal(t, "Constitution of India", a.Definitions[0].Name)
	assert.Equal(t, filepath.Join(filepath.Dir(settings.Storage.CorpusManifest), "constitution.txt"), a.Definitions[0].Path)
	assert.Contains(t, a.Warnings, "LLM missing")
}

func TestNewWithWarnsWhenPDFToolMissing(t *testing.T) {
	settings := testSettings(t)
	settings.OCR.PopplerPath = t.TempDir()

	a, err := NewWith(settings, t.TempDir(), Deps{
		AI:    &ai.InitResult{EmbeddingService: letterEmbedder{}},
		Store: memory.NewIndexStore(),
	})
	require.NoError(t, err)
	defer a.Close()

	require.Len(t, a.Warnings, 1)
	assert.Contains(t, a.Warnings[0], "pdftotext")
}

func TestNewWithRejectsBadManifest(t *testing.T) {
	settings := testSettings(t)
	require.NoError(t, os.WriteFile(settings.Storage.CorpusManifest, []byte("corpora:\n  - path: x.pdf\n"), 0600))

	_, err := NewWith(settings, t.TempDir(), Deps{
		AI:    &ai.InitResult{EmbeddingService: letterEmbedder{}},
		Store: memory.NewIndexStore(),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestWiredAskFlow(t *testing.T) {
	settings := testSettings(t)
	dir := t.TempDir()
	constitution := filepath.Join(dir, "constitution.txt")
	require.NoError(t, os.WriteFile(constitution,
		[]byte("Article 21. No person shall be deprived of his life or personal liberty."), 0600))
	manifest := "corpora:\n  - name: Constitution of India\n    path: " + constitution + "\n"
	require.NoError(t, os.WriteFile(settings.Storage.CorpusManifest, []byte(manifest), 0600))

	llm := &recordingLLM{}
	a, err := NewWith(settings, t.TempDir(), Deps{
		AI:    &ai.InitResult{EmbeddingService: letterEmbedder{}, LLMService: llm},
		Store: memory.NewIndexStore(),
	})
	require.NoError(t, err)
	defer a.Close()
	ctx := context.Background()

	loaded, err := a.Corpora.Preload(ctx, a.Definitions)
	require.NoError(t, err)
	assert.Equal(t, 1, loaded)

	existing, err := a.Ask.AskExisting(ctx, "right to life")
	require.NoError(t, err)
	assert.Equal(t, "Constitution of India", existing.Source)

	lease := domain.NewRawDocument("lease.txt", "", []byte("The tenant shall pay rent on the first day of every month."))
	uploaded, err := a.Ask.AskUpload(ctx, "when is rent due?", lease)
	require.NoError(t, err)
	assert.Equal(t, lease.Fingerprint, uploaded.FileID)
	assert.Equal(t, "The tenant pays rent monthly.", uploaded.Text)

	again, err := a.Ask.AskContext(ctx, "who pays rent?", uploaded.FileID)
	require.NoError(t, err)
	assert.Equal(t, uploaded.FileID, again.FileID)

	require.Len(t, llm.prompts, 3)
	assert.Contains(t, llm.prompts[0], "personal liberty")
	assert.Contains(t, llm.prompts[1], "first day of every month")
	assert.NotContains(t, llm.prompts[1], "personal liberty")

	corpora, err := a.Corpora.List(ctx)
	require.NoError(t, err)
	require.Len(t, corpora, 2)
	assert.Equal(t, domain.CorpusPredefined, corpora[0].Kind)
	assert.Equal(t, domain.CorpusAdHoc, corpora[1].Kind)
}
