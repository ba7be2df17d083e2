package services

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/lexis/internal/core/domain"
	"github.com/custodia-labs/lexis/internal/logger"
)

// DefaultTopK is the number of passages requested from each corpus.
const DefaultTopK = 5

// contextSeparator joins the winning corpus's passages.
const contextSeparator = "\n\n"

// Searcher is the query side of a semantic index.
type Searcher interface {
	Query(ctx context.Context, text string, k int) ([]domain.RetrievalMatch, error)
}

// NamedIndex pairs a searchable index with its corpus label.
type NamedIndex struct {
	Label string
	Index Searcher
}

// Aggregator retrieves from many corpora and keeps the single corpus whose
// matches are closest to the query on average.
type Aggregator struct {
	topK int
}

// AggregatorOption configures an Aggregator.
type AggregatorOption func(*Aggregator)

// WithTopK sets how many passages are requested per corpus.
func WithTopK(k int) AggregatorOption {
	return func(a *Aggregator) {
		if k > 0 {
			a.topK = k
		}
	}
}

// NewAggregator creates an aggregator.
func NewAggregator(opts ...AggregatorOption) *Aggregator {
	a := &Aggregator{topK: DefaultTopK}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// sourceScores accumulates the matches of one source label.
type sourceScores struct {
	label   string
	matches []domain.RetrievalMatch
	sum     float64
}

func (s *sourceScores) mean() float64 {
	return s.sum / float64(len(s.matches))
}

// RetrieveBest queries every corpus concurrently, pools the matches in the
// order corpora were given, groups them by source label and returns the
// passages of the label with the lowest mean distance. On equal means the
// label seen first wins. A corpus whose query fails is logged and skipped.
func (a *Aggregator) RetrieveBest(ctx context.Context, query string, corpora []NamedIndex) (domain.RetrievalResult, error) {
	if len(corpora) == 0 {
		return domain.RetrievalResult{}, domain.ErrNoCorpora
	}

	perCorpus := make([][]domain.RetrievalMatch, len(corpora))
	var g errgroup.Group
	for i, c := range corpora {
		g.Go(func() error {
			matches, err := c.Index.Query(ctx, query, a.topK)
			if err != nil {
				logger.Warn("retrieve from %s: %v", c.Label, err)
				return nil
			}
			perCorpus[i] = matches
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return domain.RetrievalResult{}, err
	}

	var order []*sourceScores
	bySource := make(map[string]*sourceScores)
	for i, matches := range perCorpus {
		for _, m := range matches {
			label := m.Source
			if label == "" {
				label = corpora[i].Label
				m.Source = label
			}
			group, ok := bySource[label]
			if !ok {
				group = &sourceScores{label: label}
				bySource[label] = group
				order = append(order, group)
			}
			group.matches = append(group.matches, m)
			group.sum += m.Score
		}
	}

	if len(order) == 0 {
		return domain.RetrievalResult{}, domain.ErrNoMatchFound
	}

	best := order[0]
	for _, group := range order[1:] {
		if group.mean() < best.mean() {
			best = group
		}
	}
	logger.Debug("retrieval: %d sources, best %q mean %.4f", len(order), best.label, best.mean())

	texts := make([]string, len(best.matches))
	for i, m := range best.matches {
		texts[i] = m.Text
	}
	return domain.RetrievalResult{
		Source:    best.label,
		Context:   strings.Join(texts, contextSeparator),
		Matches:   best.matches,
		MeanScore: best.mean(),
	}, nil
}
