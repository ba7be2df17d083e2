package driven

import "context"

// VectorIndex provides nearest-neighbour search over embeddings.
// Scores are distances: non-negative, ascending, lower is more similar.
type VectorIndex interface {
	// Add inserts a vector for the given passage ID.
	Add(ctx context.Context, id string, embedding []float32) error

	// Search finds the k nearest neighbours to the query vector,
	// ordered by ascending distance.
	Search(ctx context.Context, query []float32, k int) ([]VectorHit, error)

	// Len returns the number of stored vectors.
	Len() int

	// Close releases resources.
	Close() error
}

// VectorHit represents a similarity search result.
type VectorHit struct {
	// ID is the matched passage.
	ID string

	// Distance is the distance between the query and the passage vector.
	Distance float64
}

// VectorIndexFactory creates an empty vector index for the given dimension.
type VectorIndexFactory func(dimensions int) (VectorIndex, error)
