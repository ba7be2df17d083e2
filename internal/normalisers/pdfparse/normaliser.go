// Package pdfparse extracts PDF text in pure Go by rebuilding lines from
// positioned text runs. It copes with layouts that confuse pdftotext and
// needs no external tools.
package pdfparse

import (
	"bytes"
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/custodia-labs/lexis/internal/core/domain"
	"github.com/custodia-labs/lexis/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// gapRatio is the horizontal gap, relative to font size, above which two
// runs on the same row are treated as separate words.
const gapRatio = 0.2

// Normaliser parses PDF content streams directly.
type Normaliser struct{}

// New creates a new parser-based PDF normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Name identifies the strategy.
func (n *Normaliser) Name() string {
	return "pdfparse"
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{domain.MIMETypePDF}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 70
}

// Normalise reads every page row by row. The parser panics on some
// malformed files; those panics are returned as errors.
func (n *Normaliser) Normalise(ctx context.Context, raw *domain.RawDocument) (result *driven.NormaliseResult, err error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}
	if len(raw.Content) == 0 {
		return nil, fmt.Errorf("pdfparse: %w: empty document", domain.ErrInvalidInput)
	}

	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("pdfparse: malformed document: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(raw.Content), int64(len(raw.Content)))
	if err != nil {
		return nil, fmt.Errorf("pdfparse: open: %w", err)
	}

	total := reader.NumPage()
	pages := make([]string, 0, total)
	for i := 1; i <= total; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}

		rows, err := page.GetTextByRow()
		if err != nil {
			return nil, fmt.Errorf("pdfparse: page %d: %w", i, err)
		}

		lines := make([]string, 0, len(rows))
		for _, row := range rows {
			if line := joinRow(row.Content); line != "" {
				lines = append(lines, line)
			}
		}
		pages = append(pages, strings.Join(lines, "\n"))
	}

	return &driven.NormaliseResult{Pages: pages}, nil
}

// joinRow orders the runs of one row left to right and inserts a space
// wherever the gap between runs is wider than a fraction of the font size.
func joinRow(runs []pdf.Text) string {
	sorted := slices.Clone(runs)
	slices.SortStableFunc(sorted, func(a, b pdf.Text) int {
		switch {
		case a.X < b.X:
			return -1
		case a.X > b.X:
			return 1
		default:
			return 0
		}
	})

	var sb strings.Builder
	var prev *pdf.Text
	for i := range sorted {
		run := &sorted[i]
		if prev != nil {
			gap := run.X - (prev.X + prev.W)
			if gap > run.FontSize*gapRatio && !strings.HasSuffix(sb.String(), " ") && !strings.HasPrefix(run.S, " ") {
				sb.WriteByte(' ')
			}
		}
		sb.WriteString(run.S)
		prev = run
	}
	return strings.TrimSpace(sb.String())
}
