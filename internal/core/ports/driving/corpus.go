package driving

import (
	"context"

	"github.com/custodia-labs/lexis/internal/core/domain"
)

// CorpusService manages predefined and ad hoc corpora.
type CorpusService interface {
	// Preload builds or loads every predefined corpus and returns how many
	// are available. A corpus that fails is logged and left out; it never
	// fails the preload as a whole.
	Preload(ctx context.Context, defs []domain.CorpusDefinition) (int, error)

	// Ingest indexes an uploaded document as an ad hoc corpus keyed by its
	// fingerprint. Identical bytes reuse the cached index.
	Ingest(ctx context.Context, raw *domain.RawDocument) (domain.Corpus, error)

	// Predefined returns the loaded predefined corpora sorted by name.
	Predefined() []domain.Corpus

	// List returns every known corpus: predefined ones first, then
	// cached ad hoc ones.
	List(ctx context.Context) ([]domain.Corpus, error)
}
