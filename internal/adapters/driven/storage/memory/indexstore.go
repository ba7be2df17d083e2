package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/custodia-labs/lexis/internal/core/domain"
	"github.com/custodia-labs/lexis/internal/core/ports/driven"
)

// Ensure IndexStore implements the interface.
var _ driven.IndexStore = (*IndexStore)(nil)

// IndexStore keeps index snapshots in memory.
type IndexStore struct {
	mu        sync.RWMutex
	snapshots map[string]*domain.IndexSnapshot
	saves     int
}

// NewIndexStore creates an empty in-memory index store.
func NewIndexStore() *IndexStore {
	return &IndexStore{snapshots: make(map[string]*domain.IndexSnapshot)}
}

// Load returns a copy of the snapshot stored under key.
func (s *IndexStore) Load(_ context.Context, key string) (*domain.IndexSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.snapshots[key]
	if !ok {
		return nil, fmt.Errorf("index %s: %w", key, domain.ErrNotFound)
	}
	return cloneSnapshot(snap), nil
}

// Save stores a copy of the snapshot under its corpus key.
func (s *IndexStore) Save(_ context.Context, snapshot *domain.IndexSnapshot) error {
	if snapshot == nil || snapshot.Corpus.Key == "" {
		return fmt.Errorf("%w: snapshot without key", domain.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots[snapshot.Corpus.Key] = cloneSnapshot(snapshot)
	s.saves++
	return nil
}

// Delete removes the snapshot stored under key.
func (s *IndexStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.snapshots[key]; !ok {
		return fmt.Errorf("index %s: %w", key, domain.ErrNotFound)
	}
	delete(s.snapshots, key)
	return nil
}

// List returns the corpus metadata of every snapshot, sorted by key.
func (s *IndexStore) List(_ context.Context) ([]domain.Corpus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Corpus, 0, len(s.snapshots))
	for _, snap := range s.snapshots {
		out = append(out, snap.Corpus)
	}
	slices.SortFunc(out, func(a, b domain.Corpus) int {
		if a.Key < b.Key {
			return -1
		}
		if a.Key > b.Key {
			return 1
		}
		return 0
	})
	return out, nil
}

// Saves returns how many snapshots have been written.
func (s *IndexStore) Saves() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves
}

// Close is a no-op.
func (s *IndexStore) Close() error {
	return nil
}

func cloneSnapshot(snap *domain.IndexSnapshot) *domain.IndexSnapshot {
	entries := make([]domain.IndexedPassage, len(snap.Entries))
	for i, e := range snap.Entries {
		entries[i] = domain.IndexedPassage{Passage: e.Passage, Embedding: slices.Clone(e.Embedding)}
	}
	return &domain.IndexSnapshot{Corpus: snap.Corpus, Entries: entries}
}
