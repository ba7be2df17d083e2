package driven

import "context"

// LLMService turns a prompt into a text completion.
// A blank completion is reported as domain.ErrEmptyCompletion.
//
// Implementations may include:
//   - Gemini (gemini-2.5-flash)
//   - OpenAI (GPT-4o)
//   - Anthropic (Claude)
//   - Ollama (local models)
type LLMService interface {
	// Generate produces text completion from a prompt.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)

	// ModelName returns the name of the LLM model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// GenerateOptions configures text generation behaviour.
// Zero values leave the provider default in place.
type GenerateOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	Temperature float64

	// TopP is the nucleus sampling threshold.
	TopP float64

	// TopK limits sampling to the K most likely tokens.
	TopK int

	// StopWords are sequences that stop generation when encountered.
	StopWords []string
}
