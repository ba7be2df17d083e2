package driven

import "context"

// Transcriber sends a whole document to a hosted multimodal model
// and returns the text it reads from it.
type Transcriber interface {
	// Transcribe returns the visible text of content.
	Transcribe(ctx context.Context, content []byte, mimeType, instruction string) (string, error)

	// Close releases resources.
	Close() error
}
