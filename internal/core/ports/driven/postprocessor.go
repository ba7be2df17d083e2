package driven

import (
	"context"

	"github.com/custodia-labs/lexis/internal/core/domain"
)

// Chunker splits extracted text into overlapping passages.
type Chunker interface {
	// Chunk splits each text independently and labels every passage with source.
	// Positions are consecutive across all texts.
	Chunk(ctx context.Context, source string, texts []string) ([]domain.Passage, error)
}

// ResponseNormaliser cleans raw model output for Markdown rendering.
// Implementations must be pure and idempotent.
type ResponseNormaliser interface {
	Normalise(text string) string
}
