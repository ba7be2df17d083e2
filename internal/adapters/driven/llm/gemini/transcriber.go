package gemini

import (
	"context"
	"errors"

	"github.com/custodia-labs/lexis/internal/core/ports/driven"
)

// Ensure Transcriber implements the interface.
var _ driven.Transcriber = (*Transcriber)(nil)

// maxInlineBytes is the request size limit for inline document data.
const maxInlineBytes = 20 << 20

// ErrDocumentTooLarge is returned for documents above the inline data limit.
var ErrDocumentTooLarge = errors.New("gemini: document exceeds inline upload limit")

// Transcriber reads text out of scanned documents with a multimodal model.
type Transcriber struct {
	client *client
}

// NewTranscriber creates a transcriber. The model defaults to
// DefaultTranscribeModel.
func NewTranscriber(cfg Config) (*Transcriber, error) {
	c, err := newClient(cfg, DefaultTranscribeModel)
	if err != nil {
		return nil, err
	}
	return &Transcriber{client: c}, nil
}

// Transcribe sends the document inline followed by instruction.
func (t *Transcriber) Transcribe(ctx context.Context, data []byte, mimeType, instruction string) (string, error) {
	if len(data) > maxInlineBytes {
		return "", ErrDocumentTooLarge
	}
	parts := []part{
		{InlineData: &inlineData{MIMEType: mimeType, Data: data}},
		{Text: instruction},
	}
	return t.client.generate(ctx, parts, nil)
}

// Close releases resources.
func (t *Transcriber) Close() error {
	return nil
}
