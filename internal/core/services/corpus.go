package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/lexis/internal/core/domain"
	"github.com/custodia-labs/lexis/internal/core/ports/driven"
	"github.com/custodia-labs/lexis/internal/core/ports/driving"
	"github.com/custodia-labs/lexis/internal/logger"
)

// Ensure CorpusService implements the interface.
var _ driving.CorpusService = (*CorpusService)(nil)

// DefaultPreloadConcurrency bounds how many predefined corpora build at once.
const DefaultPreloadConcurrency = 4

// CorpusService owns the predefined corpus registry and ad hoc ingestion.
type CorpusService struct {
	cache       *IndexCache
	extractor   driven.TextExtractor
	chunker     driven.Chunker
	readFile    func(string) ([]byte, error)
	concurrency int

	mu         sync.RWMutex
	predefined map[string]*SemanticIndex
}

// CorpusOption configures a CorpusService.
type CorpusOption func(*CorpusService)

// WithPreloadConcurrency sets the preload worker limit.
func WithPreloadConcurrency(n int) CorpusOption {
	return func(s *CorpusService) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithFileReader replaces os.ReadFile for predefined corpus files.
func WithFileReader(read func(string) ([]byte, error)) CorpusOption {
	return func(s *CorpusService) {
		if read != nil {
			s.readFile = read
		}
	}
}

// NewCorpusService creates a corpus service.
func NewCorpusService(cache *IndexCache, extractor driven.TextExtractor, chunker driven.Chunker, opts ...CorpusOption) *CorpusService {
	s := &CorpusService{
		cache:       cache,
		extractor:   extractor,
		chunker:     chunker,
		readFile:    os.ReadFile,
		concurrency: DefaultPreloadConcurrency,
		predefined:  make(map[string]*SemanticIndex),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Preload loads or builds every predefined corpus with bounded concurrency.
// It returns once every corpus has either loaded or failed.
func (s *CorpusService) Preload(ctx context.Context, defs []domain.CorpusDefinition) (int, error) {
	logger.Section("Preload")

	unique := make([]domain.CorpusDefinition, 0, len(defs))
	seen := make(map[string]bool)
	for _, def := range defs {
		name := strings.TrimSpace(def.Name)
		if name == "" || seen[name] {
			logger.Warn("preload: skipping duplicate or unnamed corpus %q", def.Name)
			continue
		}
		seen[name] = true
		def.Name = name
		unique = append(unique, def)
	}

	loaded := make([]*SemanticIndex, len(unique))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, def := range unique {
		g.Go(func() error {
			idx, err := s.cache.GetOrBuild(gctx, def.Name, s.fileSupplier(def))
			if err != nil {
				logger.Error("preload %s: %v", def.Name, err)
				return nil
			}
			loaded[i] = idx
			logger.Info("preload %s: %d passages", def.Name, idx.Len())
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, idx := range loaded {
		if idx != nil {
			s.predefined[unique[i].Name] = idx
		}
	}
	return len(s.predefined), nil
}

func (s *CorpusService) fileSupplier(def domain.CorpusDefinition) PassageSupplier {
	return func(ctx context.Context) (domain.Corpus, []domain.Passage, error) {
		content, err := s.readFile(def.Path)
		if err != nil {
			return domain.Corpus{}, nil, fmt.Errorf("read %s: %w", def.Path, err)
		}
		raw := domain.NewRawDocument(filepath.Base(def.Path), "", content)
		passages, err := s.passages(ctx, def.Name, raw)
		if err != nil {
			return domain.Corpus{}, nil, err
		}
		return domain.Corpus{Name: def.Name, Kind: domain.CorpusPredefined}, passages, nil
	}
}

// passages extracts and chunks raw, labelling every passage with source.
func (s *CorpusService) passages(ctx context.Context, source string, raw *domain.RawDocument) ([]domain.Passage, error) {
	result, err := s.extractor.Extract(ctx, raw)
	if err != nil {
		return nil, err
	}
	logger.Debug("extracted %s with %s (%d pages)", raw.Name, result.Strategy, len(result.Pages))

	// Sizing follows the whole document, so pages are chunked as one text.
	passages, err := s.chunker.Chunk(ctx, source, []string{result.Text()})
	if err != nil {
		return nil, fmt.Errorf("chunk %s: %w", raw.Name, err)
	}
	return passages, nil
}

// Ingest indexes an uploaded document keyed by its fingerprint.
func (s *CorpusService) Ingest(ctx context.Context, raw *domain.RawDocument) (domain.Corpus, error) {
	idx, err := s.IngestIndex(ctx, raw)
	if err != nil {
		return domain.Corpus{}, err
	}
	return idx.Corpus(), nil
}

// IngestIndex is Ingest returning the index itself.
// Identical bytes reuse the cached index without extracting again.
func (s *CorpusService) IngestIndex(ctx context.Context, raw *domain.RawDocument) (*SemanticIndex, error) {
	if raw == nil || len(raw.Content) == 0 {
		return nil, fmt.Errorf("%w: empty document", domain.ErrInvalidInput)
	}
	if raw.Fingerprint == "" {
		raw.Fingerprint = domain.Fingerprint(raw.Content)
	}
	key := raw.Fingerprint

	return s.cache.GetOrBuild(ctx, key, func(ctx context.Context) (domain.Corpus, []domain.Passage, error) {
		passages, err := s.passages(ctx, key, raw)
		if err != nil {
			return domain.Corpus{}, nil, err
		}
		return domain.Corpus{Name: key, Kind: domain.CorpusAdHoc}, passages, nil
	})
}

// Lookup returns the index of a previously ingested document.
func (s *CorpusService) Lookup(ctx context.Context, fileID string) (*SemanticIndex, error) {
	s.mu.RLock()
	_, isPredefined := s.predefined[fileID]
	s.mu.RUnlock()
	if isPredefined {
		return nil, fmt.Errorf("%s: %w", fileID, domain.ErrNotFound)
	}
	return s.cache.Lookup(ctx, fileID)
}

// Predefined returns the loaded predefined corpora sorted by name.
func (s *CorpusService) Predefined() []domain.Corpus {
	named := s.PredefinedIndexes()
	out := make([]domain.Corpus, len(named))
	for i, n := range named {
		out[i] = n.Index.(*SemanticIndex).Corpus()
	}
	return out
}

// PredefinedIndexes returns the loaded predefined indexes sorted by label,
// which fixes the aggregator's tie-break order.
func (s *CorpusService) PredefinedIndexes() []NamedIndex {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.predefined))
	for name := range s.predefined {
		names = append(names, name)
	}
	slices.Sort(names)

	out := make([]NamedIndex, len(names))
	for i, name := range names {
		out[i] = NamedIndex{Label: name, Index: s.predefined[name]}
	}
	return out
}

// List returns predefined corpora followed by cached ad hoc corpora.
func (s *CorpusService) List(ctx context.Context) ([]domain.Corpus, error) {
	out := s.Predefined()

	cached, err := s.cache.Corpora(ctx)
	for _, c := range cached {
		if c.Kind == domain.CorpusAdHoc {
			out = append(out, c)
		}
	}
	return out, err
}
