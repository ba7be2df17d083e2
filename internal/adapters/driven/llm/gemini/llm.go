package gemini

import (
	"context"

	"github.com/custodia-labs/lexis/internal/core/ports/driven"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// LLMService generates answers with a Gemini model.
type LLMService struct {
	client *client
}

// NewLLMService creates a new Gemini LLM service.
func NewLLMService(cfg Config) (*LLMService, error) {
	c, err := newClient(cfg, DefaultModel)
	if err != nil {
		return nil, err
	}
	return &LLMService{client: c}, nil
}

// Generate produces a completion for prompt.
func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	cfg := &generationConfig{
		MaxOutputTokens: opts.MaxTokens,
		Temperature:     opts.Temperature,
		TopP:            opts.TopP,
		TopK:            opts.TopK,
		StopSequences:   opts.StopWords,
	}
	return s.client.generate(ctx, []part{{Text: prompt}}, cfg)
}

// ModelName returns the name of the LLM model being used.
func (s *LLMService) ModelName() string {
	return s.client.model
}

// Ping validates the API key and model name.
func (s *LLMService) Ping(ctx context.Context) error {
	return s.client.ping(ctx)
}

// Close releases resources.
func (s *LLMService) Close() error {
	return nil
}
