package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/custodia-labs/lexis/internal/core/domain"
	"github.com/custodia-labs/lexis/internal/core/ports/driven"
)

// keywordEmbedder maps text to keyword counts over a fixed vocabulary,
// so distances are predictable in tests.
type keywordEmbedder struct {
	model    string
	vocab    []string
	embedded atomic.Int64
	batches  atomic.Int64
	err      error
}

func newKeywordEmbedder(vocab ...string) *keywordEmbedder {
	if len(vocab) == 0 {
		vocab = []string{"murder", "contract", "property"}
	}
	return &keywordEmbedder{model: "keyword-test", vocab: vocab}
}

func (e *keywordEmbedder) vector(text string) []float32 {
	lower := strings.ToLower(text)
	v := make([]float32, len(e.vocab))
	for i, word := range e.vocab {
		v[i] = float32(strings.Count(lower, word))
	}
	return v
}

func (e *keywordEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if e.err != nil {
		return nil, e.err
	}
	return e.vector(text), nil
}

func (e *keywordEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	if e.err != nil {
		return nil, e.err
	}
	e.batches.Add(1)
	e.embedded.Add(int64(len(texts)))
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = e.vector(t)
	}
	return out, nil
}

func (e *keywordEmbedder) Dimensions() int { return len(e.vocab) }
func (e *keywordEmbedder) ModelName() string { return e.model }
func (e *keywordEmbedder) Ping(context.Context) error { return nil }
func (e *keywordEmbedder) Close() error { return nil }

var _ driven.EmbeddingService = (*keywordEmbedder)(nil)

// fakeLLM records every prompt and replies with a fixed completion.
type fakeLLM struct {
	mu      sync.Mutex
	reply   string
	err     error
	prompts []string
	opts    []driven.GenerateOptions
}

func (l *fakeLLM) Generate(_ context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.prompts = append(l.prompts, prompt)
	l.opts = append(l.opts, opts)
	return l.reply, l.err
}

func (l *fakeLLM) lastPrompt() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.prompts) == 0 {
		return ""
	}
	return l.prompts[len(l.prompts)-1]
}

func (l *fakeLLM) ModelName() string { return "fake-llm" }
func (l *fakeLLM) Ping(context.Context) error { return nil }
func (l *fakeLLM) Close() error { return nil }

// mapPrompts serves templates from a map.
type mapPrompts map[string]string

func defaultPrompts() mapPrompts {
	return mapPrompts{
		driven.PromptAskExisting: "LAW\n%s\nQUESTION\n%s",
		driven.PromptAskUpload:   "DOCUMENT\n%s\nQUESTION\n%s",
		driven.PromptDefendCase:  "CASE\n%s",
		driven.PromptChat:        "CHAT\n%s",
	}
}

func (p mapPrompts) Load(name string) (string, error) {
	tmpl, ok := p[name]
	if !ok {
		return "", fmt.Errorf("prompt %s: %w", name, domain.ErrNotFound)
	}
	return tmpl, nil
}

func (p mapPrompts) Reload() {}

// textExtractor treats the raw content as text with form feeds between pages.
type textExtractor struct {
	calls atomic.Int64
	err   error
}

func (x *textExtractor) Extract(_ context.Context, raw *domain.RawDocument) (domain.ExtractionResult, error) {
	x.calls.Add(1)
	if x.err != nil {
		return domain.ExtractionResult{}, x.err
	}
	text := string(raw.Content)
	if !domain.IsUsableText(text) {
		return domain.ExtractionResult{}, fmt.Errorf("%w: %s", domain.ErrExtractionFailed, raw.Name)
	}
	return domain.ExtractionResult{Pages: strings.Split(text, "\f"), Strategy: "text"}, nil
}

// staticSearcher returns fixed matches or an error.
type staticSearcher struct {
	matches []domain.RetrievalMatch
	err     error
}

func (s staticSearcher) Query(context.Context, string, int) ([]domain.RetrievalMatch, error) {
	return s.matches, s.err
}

// failingStore wraps an IndexStore and fails selected operations.
type failingStore struct {
	driven.IndexStore
	loadErr error
	saveErr error
}

func (s failingStore) Load(ctx context.Context, key string) (*domain.IndexSnapshot, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	return s.IndexStore.Load(ctx, key)
}

func (s failingStore) Save(ctx context.Context, snap *domain.IndexSnapshot) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	return s.IndexStore.Save(ctx, snap)
}

var errBoom = errors.New("boom")

func matches(source string, scores ...float64) []domain.RetrievalMatch {
	out := make([]domain.RetrievalMatch, len(scores))
	for i, score := range scores {
		out[i] = domain.RetrievalMatch{Source: source, Text: fmt.Sprintf("%s-%d", source, i), Score: score}
	}
	return out
}

func passagesOf(source string, texts ...string) []domain.Passage {
	out := make([]domain.Passage, len(texts))
	for i, text := range texts {
		out[i] = domain.Passage{ID: fmt.Sprintf("%s-%d", source, i), Source: source, Text: text, Position: i}
	}
	return out
}
