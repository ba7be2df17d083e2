// Package memory provides an exact in-memory vector index.
// Every query scans all vectors, so it suits corpora of up to a few
// hundred thousand passages.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/custodia-labs/lexis/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Index stores vectors and ranks them by squared Euclidean distance.
type Index struct {
	mu         sync.RWMutex
	dimensions int
	ids        []string
	vectors    [][]float32
}

// New creates an empty index for vectors of the given size.
func New(dimensions int) (*Index, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("invalid dimension %d", dimensions)
	}
	return &Index{dimensions: dimensions}, nil
}

// Factory adapts New to driven.VectorIndexFactory.
func Factory(dimensions int) (driven.VectorIndex, error) {
	return New(dimensions)
}

// Add appends a vector. The slice is copied.
func (x *Index) Add(_ context.Context, id string, embedding []float32) error {
	if len(embedding) != x.dimensions {
		return fmt.Errorf("vector dimension mismatch: got %d, want %d", len(embedding), x.dimensions)
	}
	x.mu.Lock()
	defer x.mu.Unlock()
	x.ids = append(x.ids, id)
	x.vectors = append(x.vectors, slices.Clone(embedding))
	return nil
}

// Search returns the k nearest vectors, closest first. Equal distances
// keep insertion order.
func (x *Index) Search(ctx context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	if len(query) != x.dimensions {
		return nil, fmt.Errorf("query dimension mismatch: got %d, want %d", len(query), x.dimensions)
	}
	if k <= 0 {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	x.mu.RLock()
	hits := make([]driven.VectorHit, len(x.vectors))
	for i, v := range x.vectors {
		hits[i] = driven.VectorHit{ID: x.ids[i], Distance: squaredL2(v, query)}
	}
	x.mu.RUnlock()

	slices.SortStableFunc(hits, func(a, b driven.VectorHit) int {
		switch {
		case a.Distance < b.Distance:
			return -1
		case a.Distance > b.Distance:
			return 1
		default:
			return 0
		}
	})
	if k < len(hits) {
		hits = hits[:k]
	}
	return hits, nil
}

// Len returns the number of stored vectors.
func (x *Index) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.ids)
}

// Close releases the stored vectors.
func (x *Index) Close() error {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.ids = nil
	x.vectors = nil
	return nil
}

func squaredL2(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}
