package normalisers

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/custodia-labs/lexis/internal/core/domain"
	"github.com/custodia-labs/lexis/internal/core/ports/driven"
	"github.com/custodia-labs/lexis/internal/logger"
)

// DefaultStrategyTimeout bounds a single strategy attempt.
const DefaultStrategyTimeout = 2 * time.Minute

// Ensure Chain implements the interface.
var _ driven.TextExtractor = (*Chain)(nil)

// Chain runs extraction strategies in priority order.
type Chain struct {
	normalisers []driven.Normaliser
	timeout     time.Duration
}

// ChainOption configures a Chain.
type ChainOption func(*Chain)

// WithStrategyTimeout sets the per-attempt timeout. Zero disables it.
func WithStrategyTimeout(d time.Duration) ChainOption {
	return func(c *Chain) {
		c.timeout = d
	}
}

// NewChain creates a chain over the given strategies. Nil entries are skipped.
func NewChain(normalisers []driven.Normaliser, opts ...ChainOption) *Chain {
	c := &Chain{timeout: DefaultStrategyTimeout}
	for _, n := range normalisers {
		if n != nil {
			c.normalisers = append(c.normalisers, n)
		}
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Strategies returns the names of the strategies that would run for
// mimeType, in the order they would be tried.
func (c *Chain) Strategies(mimeType string) []string {
	candidates := c.candidates(mimeType)
	names := make([]string, len(candidates))
	for i, n := range candidates {
		names[i] = n.Name()
	}
	return names
}

// Extract returns the text of the first strategy producing usable output.
// Strategy errors, timeouts and panics are recorded as attempts. Only
// cancellation of ctx itself stops the chain early.
func (c *Chain) Extract(ctx context.Context, raw *domain.RawDocument) (domain.ExtractionResult, error) {
	var result domain.ExtractionResult
	if raw == nil {
		return result, domain.ErrInvalidInput
	}

	candidates := c.candidates(raw.MIMEType)
	if len(candidates) == 0 {
		return result, fmt.Errorf("%w: %w: %s", domain.ErrExtractionFailed, domain.ErrUnsupportedType, raw.MIMEType)
	}

	for _, n := range candidates {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		pages, attempt := c.attempt(ctx, n, raw)
		result.Attempts = append(result.Attempts, attempt)

		switch attempt.Status {
		case domain.ExtractionUsable:
			logger.Debug("extract %s: %s produced usable text", raw.Name, n.Name())
			result.Pages = pages
			result.Strategy = n.Name()
			return result, nil
		case domain.ExtractionEmpty:
			logger.Debug("extract %s: %s found no text", raw.Name, n.Name())
		default:
			logger.Warn("extract %s: %s failed: %v", raw.Name, n.Name(), attempt.Err)
		}
	}

	return result, fmt.Errorf("%w: %s after %d strategies", domain.ErrExtractionFailed, raw.Name, len(result.Attempts))
}

func (c *Chain) candidates(mimeType string) []driven.Normaliser {
	var out []driven.Normaliser
	for _, n := range c.normalisers {
		if slices.Contains(n.SupportedMIMETypes(), mimeType) {
			out = append(out, n)
		}
	}
	slices.SortStableFunc(out, func(a, b driven.Normaliser) int {
		return b.Priority() - a.Priority()
	})
	return out
}

func (c *Chain) attempt(ctx context.Context, n driven.Normaliser, raw *domain.RawDocument) (pages []string, attempt domain.ExtractionAttempt) {
	attempt.Strategy = n.Name()

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			pages = nil
			attempt.Status = domain.ExtractionFailed
			attempt.Err = fmt.Errorf("%s panicked: %v", n.Name(), r)
		}
	}()

	res, err := n.Normalise(ctx, raw)
	switch {
	case err != nil:
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			err = fmt.Errorf("%s timed out: %w", n.Name(), err)
		}
		attempt.Status = domain.ExtractionFailed
		attempt.Err = err
	case res == nil || !domain.IsUsableText(joinPages(res.Pages)):
		attempt.Status = domain.ExtractionEmpty
	default:
		attempt.Status = domain.ExtractionUsable
		pages = res.Pages
	}
	return pages, attempt
}

func joinPages(pages []string) string {
	return domain.ExtractionResult{Pages: pages}.Text()
}
