// Package html extracts readable text from HTML documents such as saved
// judgments and statute pages. Scripts, styles and the document head are
// dropped and block elements become line breaks.
package html

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"

	"golang.org/x/net/html"

	"github.com/custodia-labs/lexis/internal/core/domain"
	"github.com/custodia-labs/lexis/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// skipped elements contribute no text.
var skipped = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"head":     true,
	"svg":      true,
	"template": true,
}

// blocks start and end on their own line.
var blocks = map[string]bool{
	"p": true, "div": true, "br": true, "hr": true, "li": true, "tr": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"blockquote": true, "pre": true, "table": true, "section": true,
	"article": true, "ul": true, "ol": true, "dd": true, "dt": true,
}

// Normaliser handles HTML documents.
type Normaliser struct{}

// New creates a new HTML normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Name identifies the strategy.
func (n *Normaliser) Name() string {
	return "html"
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{domain.MIMETypeHTML, "application/xhtml+xml"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 60
}

// Normalise returns the visible text as a single page.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	text, err := extractText(raw.Content)
	if err != nil {
		return nil, err
	}
	return &driven.NormaliseResult{Pages: []string{text}}, nil
}

// extractText tokenizes content and keeps text outside skipped elements.
// Entities are decoded by the tokenizer. Lines are trimmed and blank
// lines dropped.
func extractText(content []byte) (string, error) {
	var (
		sb   strings.Builder
		skip int
	)
	z := html.NewTokenizer(bytes.NewReader(content))
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if errors.Is(z.Err(), io.EOF) {
				return tidy(sb.String()), nil
			}
			return "", z.Err()

		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			tag := string(name)
			switch {
			case tag == "body":
				skip = 0
			case skipped[tag] && tt == html.StartTagToken:
				skip++
			case blocks[tag]:
				sb.WriteByte('\n')
			case tag == "td" || tag == "th":
				sb.WriteByte(' ')
			}

		case html.EndTagToken:
			name, _ := z.TagName()
			tag := string(name)
			switch {
			case skipped[tag]:
				if skip > 0 {
					skip--
				}
			case blocks[tag]:
				sb.WriteByte('\n')
			}

		case html.TextToken:
			if skip == 0 {
				sb.Write(z.Text())
			}
		}
	}
}

func tidy(s string) string {
	lines := strings.Split(s, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}
