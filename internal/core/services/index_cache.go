package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/custodia-labs/lexis/internal/core/domain"
	"github.com/custodia-labs/lexis/internal/core/ports/driven"
	"github.com/custodia-labs/lexis/internal/logger"
)

// PassageSupplier produces the passages of a corpus on a cache miss.
// The returned corpus carries Key, Name and Kind; the cache fills in the rest.
type PassageSupplier func(ctx context.Context) (domain.Corpus, []domain.Passage, error)

// IndexCache memoises semantic indexes by key across a memory tier and a
// persisted tier. Reads of present entries take no lock. Concurrent misses
// on one key may build twice; the first index stored in memory is the one
// every caller receives.
type IndexCache struct {
	entries    sync.Map // key -> *SemanticIndex
	store      driven.IndexStore
	embedder   driven.EmbeddingService
	newVectors driven.VectorIndexFactory
	builds     atomic.Int64
	now        func() time.Time
}

// NewIndexCache creates a cache. store may be nil for a memory-only cache.
func NewIndexCache(store driven.IndexStore, embedder driven.EmbeddingService, newVectors driven.VectorIndexFactory) *IndexCache {
	return &IndexCache{
		store:      store,
		embedder:   embedder,
		newVectors: newVectors,
		now:        time.Now,
	}
}

// GetOrBuild returns the index for key, loading it from the persisted tier
// or building it from supplier when neither tier has it. Supplier and build
// run detached from ctx cancellation so an aborted request never leaves a
// half-built index behind. A failed build caches nothing.
func (c *IndexCache) GetOrBuild(ctx context.Context, key string, supplier PassageSupplier) (*SemanticIndex, error) {
	if idx, ok := c.memory(key); ok {
		logger.Debug("index cache: memory hit %s", key)
		return idx, nil
	}

	if idx, ok := c.loadPersisted(ctx, key); ok {
		return c.remember(key, idx), nil
	}

	buildCtx := context.WithoutCancel(ctx)
	corpus, passages, err := supplier(buildCtx)
	if err != nil {
		return nil, fmt.Errorf("index %s: %w", key, err)
	}
	corpus.Key = key
	corpus.CreatedAt = c.now().UTC()

	done := logger.Timed("build index %s (%d passages)", key, len(passages))
	idx, err := BuildSemanticIndex(buildCtx, corpus, passages, c.embedder, c.newVectors)
	done()
	if err != nil {
		logger.Error("build index %s: %v", key, err)
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrBuildFailed, key, err)
	}
	c.builds.Add(1)

	actual := c.remember(key, idx)
	if actual != idx {
		_ = idx.Close()
		return actual, nil
	}

	if c.store != nil {
		if err := c.store.Save(buildCtx, idx.Snapshot()); err != nil {
			logger.Error("persist index %s: %v", key, err)
		}
	}
	return actual, nil
}

// Lookup returns a cached index without ever building one.
// A key absent from both tiers returns domain.ErrNotFound.
func (c *IndexCache) Lookup(ctx context.Context, key string) (*SemanticIndex, error) {
	if idx, ok := c.memory(key); ok {
		return idx, nil
	}
	if idx, ok := c.loadPersisted(ctx, key); ok {
		return c.remember(key, idx), nil
	}
	return nil, fmt.Errorf("index %s: %w", key, domain.ErrNotFound)
}

// Put stores an index in the memory tier, replacing any previous entry.
func (c *IndexCache) Put(key string, idx *SemanticIndex) {
	c.entries.Store(key, idx)
}

// Keys returns the keys held in the memory tier, sorted.
func (c *IndexCache) Keys() []string {
	var keys []string
	c.entries.Range(func(k, _ any) bool {
		keys = append(keys, k.(string))
		return true
	})
	slices.Sort(keys)
	return keys
}

// Builds returns how many indexes this cache has built.
func (c *IndexCache) Builds() int64 {
	return c.builds.Load()
}

// Corpora returns the metadata of every index in either tier, memory
// entries first, sorted by key within each tier.
func (c *IndexCache) Corpora(ctx context.Context) ([]domain.Corpus, error) {
	seen := make(map[string]bool)
	var out []domain.Corpus
	for _, key := range c.Keys() {
		if idx, ok := c.memory(key); ok {
			out = append(out, idx.Corpus())
			seen[key] = true
		}
	}
	if c.store == nil {
		return out, nil
	}

	stored, err := c.store.List(ctx)
	if err != nil {
		return out, fmt.Errorf("list stored indexes: %w", err)
	}
	slices.SortFunc(stored, func(a, b domain.Corpus) int {
		switch {
		case a.Key < b.Key:
			return -1
		case a.Key > b.Key:
			return 1
		default:
			return 0
		}
	})
	for _, corpus := range stored {
		if !seen[corpus.Key] {
			out = append(out, corpus)
		}
	}
	return out, nil
}

func (c *IndexCache) memory(key string) (*SemanticIndex, bool) {
	v, ok := c.entries.Load(key)
	if !ok {
		return nil, false
	}
	return v.(*SemanticIndex), true
}

func (c *IndexCache) remember(key string, idx *SemanticIndex) *SemanticIndex {
	actual, _ := c.entries.LoadOrStore(key, idx)
	return actual.(*SemanticIndex)
}

// loadPersisted treats every failure as a miss: a missing snapshot, an
// unreadable one, or one embedded with a different model. A snapshot from
// another model can never be served again, so it is deleted.
func (c *IndexCache) loadPersisted(ctx context.Context, key string) (*SemanticIndex, bool) {
	if c.store == nil {
		return nil, false
	}

	snapshot, err := c.store.Load(ctx, key)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		logger.Debug("index cache: miss %s", key)
		return nil, false
	case err != nil:
		logger.Warn("index cache: load %s: %v", key, err)
		return nil, false
	}

	if c.embedder != nil && (snapshot.Corpus.Model != c.embedder.ModelName() ||
		(c.embedder.Dimensions() > 0 && snapshot.Corpus.Dimensions != c.embedder.Dimensions())) {
		logger.Info("index cache: %s was embedded with %s/%d, dropping it",
			key, snapshot.Corpus.Model, snapshot.Corpus.Dimensions)
		if err := c.store.Delete(ctx, key); err != nil && !errors.Is(err, domain.ErrNotFound) {
			logger.Warn("index cache: delete stale %s: %v", key, err)
		}
		return nil, false
	}

	idx, err := RestoreSemanticIndex(ctx, snapshot, c.embedder, c.newVectors)
	if err != nil {
		logger.Warn("index cache: restore %s: %v", key, err)
		return nil, false
	}
	logger.Debug("index cache: persisted hit %s", key)
	return idx, true
}
