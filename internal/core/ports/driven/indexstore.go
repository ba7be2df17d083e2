package driven

import (
	"context"

	"github.com/custodia-labs/lexis/internal/core/domain"
)

// IndexStore is the persisted tier of the index cache.
// Each corpus key occupies its own addressable location.
type IndexStore interface {
	// Load returns the snapshot stored under key.
	// A missing key returns domain.ErrNotFound, which callers treat as a cache miss.
	Load(ctx context.Context, key string) (*domain.IndexSnapshot, error)

	// Save writes the snapshot under snapshot.Corpus.Key.
	// Writes must be atomic: an interrupted save never leaves a readable partial index.
	Save(ctx context.Context, snapshot *domain.IndexSnapshot) error

	// Delete removes the snapshot stored under key.
	Delete(ctx context.Context, key string) error

	// List returns the corpus metadata of every stored snapshot.
	List(ctx context.Context) ([]domain.Corpus, error)

	// Close releases resources.
	Close() error
}
