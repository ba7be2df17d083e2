package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/lexis/internal/core/domain"
	"github.com/custodia-labs/lexis/internal/core/ports/driven"
)

// embedBatchSize bounds the number of passages sent per EmbedBatch call.
const embedBatchSize = 64

// SemanticIndex answers nearest-passage queries over one corpus.
// It is immutable once built and safe for concurrent queries.
type SemanticIndex struct {
	corpus   domain.Corpus
	embedder driven.EmbeddingService
	vectors  driven.VectorIndex
	entries  []domain.IndexedPassage
	byID     map[string]int
}

// BuildSemanticIndex embeds passages and loads them into a fresh vector index.
// corpus.Passages, Model and Dimensions are filled in from the inputs.
func BuildSemanticIndex(
	ctx context.Context,
	corpus domain.Corpus,
	passages []domain.Passage,
	embedder driven.EmbeddingService,
	newVectors driven.VectorIndexFactory,
) (*SemanticIndex, error) {
	if embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	if len(passages) == 0 {
		return nil, errors.New("no passages to index")
	}

	entries := make([]domain.IndexedPassage, 0, len(passages))
	for start := 0; start < len(passages); start += embedBatchSize {
		end := min(start+embedBatchSize, len(passages))
		texts := make([]string, 0, end-start)
		for _, p := range passages[start:end] {
			texts = append(texts, p.Text)
		}

		vectors, err := embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("embed passages %d-%d: %w", start, end-1, err)
		}
		if len(vectors) != len(texts) {
			return nil, fmt.Errorf("embed passages %d-%d: got %d vectors for %d texts", start, end-1, len(vectors), len(texts))
		}
		for i, p := range passages[start:end] {
			entries = append(entries, domain.IndexedPassage{Passage: p, Embedding: vectors[i]})
		}
	}

	corpus.Passages = len(entries)
	corpus.Model = embedder.ModelName()
	corpus.Dimensions = len(entries[0].Embedding)

	return newSemanticIndex(ctx, corpus, entries, embedder, newVectors)
}

// RestoreSemanticIndex rebuilds an index from a persisted snapshot without
// calling the embedder for passages.
func RestoreSemanticIndex(
	ctx context.Context,
	snapshot *domain.IndexSnapshot,
	embedder driven.EmbeddingService,
	newVectors driven.VectorIndexFactory,
) (*SemanticIndex, error) {
	if snapshot == nil || len(snapshot.Entries) == 0 {
		return nil, errors.New("empty snapshot")
	}
	return newSemanticIndex(ctx, snapshot.Corpus, snapshot.Entries, embedder, newVectors)
}

func newSemanticIndex(
	ctx context.Context,
	corpus domain.Corpus,
	entries []domain.IndexedPassage,
	embedder driven.EmbeddingService,
	newVectors driven.VectorIndexFactory,
) (*SemanticIndex, error) {
	vectors, err := newVectors(corpus.Dimensions)
	if err != nil {
		return nil, fmt.Errorf("create vector index: %w", err)
	}

	byID := make(map[string]int, len(entries))
	for i, e := range entries {
		if err := vectors.Add(ctx, e.Passage.ID, e.Embedding); err != nil {
			_ = vectors.Close()
			return nil, fmt.Errorf("add passage %d: %w", e.Passage.Position, err)
		}
		byID[e.Passage.ID] = i
	}

	return &SemanticIndex{
		corpus:   corpus,
		embedder: embedder,
		vectors:  vectors,
		entries:  entries,
		byID:     byID,
	}, nil
}

// Corpus returns the metadata of the indexed corpus.
func (s *SemanticIndex) Corpus() domain.Corpus {
	return s.corpus
}

// Len returns the number of indexed passages.
func (s *SemanticIndex) Len() int {
	return len(s.entries)
}

// Query embeds text and returns up to k passages, closest first.
// Scores are distances: lower means more similar.
func (s *SemanticIndex) Query(ctx context.Context, text string, k int) ([]domain.RetrievalMatch, error) {
	vector, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	hits, err := s.vectors.Search(ctx, vector, k)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", s.corpus.Name, err)
	}

	matches := make([]domain.RetrievalMatch, 0, len(hits))
	for _, hit := range hits {
		i, ok := s.byID[hit.ID]
		if !ok {
			continue
		}
		p := s.entries[i].Passage
		matches = append(matches, domain.RetrievalMatch{
			Source: p.Source,
			Text:   p.Text,
			Score:  hit.Distance,
		})
	}
	return matches, nil
}

// Snapshot returns the persisted form of the index.
func (s *SemanticIndex) Snapshot() *domain.IndexSnapshot {
	return &domain.IndexSnapshot{
		Corpus:  s.corpus,
		Entries: s.entries,
	}
}

// Close releases the vector index.
func (s *SemanticIndex) Close() error {
	return s.vectors.Close()
}
