package driven

import (
	"context"

	"github.com/custodia-labs/lexis/internal/core/domain"
)

// Normaliser is one text extraction strategy.
// Each normaliser handles specific MIME types and reports how early in the
// fallback chain it should run.
type Normaliser interface {
	// Name identifies the strategy in logs and extraction results.
	Name() string

	// SupportedMIMETypes returns the MIME types this normaliser handles.
	SupportedMIMETypes() []string

	// Priority returns the selection priority (higher = tried first).
	// Fast structured extractors should return 80-100.
	// Heuristic parsers should return 50-79.
	// Local OCR should return 20-49.
	// Remote fallbacks should return 1-19.
	Priority() int

	// Normalise extracts text from a raw document.
	// An error or a result without usable text moves the chain on.
	Normalise(ctx context.Context, raw *domain.RawDocument) (*NormaliseResult, error)
}

// NormaliseResult contains the output of normalisation.
// Chunking is handled by the Chunker.
type NormaliseResult struct {
	// Pages holds one entry per page, or a single entry when pages
	// cannot be told apart.
	Pages []string
}

// TextExtractor runs normalisers in priority order until one yields usable text.
type TextExtractor interface {
	// Extract returns the first usable extraction, or domain.ErrExtractionFailed.
	Extract(ctx context.Context, raw *domain.RawDocument) (domain.ExtractionResult, error)
}
