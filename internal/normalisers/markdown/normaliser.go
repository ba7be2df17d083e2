// Package markdown reduces Markdown briefs and notes to plain text.
package markdown

import (
	"context"
	"regexp"
	"strings"

	"github.com/custodia-labs/lexis/internal/core/domain"
	"github.com/custodia-labs/lexis/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

var (
	codeFence     = regexp.MustCompile("(?m)^[ \t]*(```|~~~).*$")
	inlineCode    = regexp.MustCompile("`([^`\n]+)`")
	images        = regexp.MustCompile(`!\[([^\]]*)\]\([^)]*\)`)
	links         = regexp.MustCompile(`\[([^\]]+)\]\([^)]*\)`)
	headings      = regexp.MustCompile(`(?m)^[ \t]*#{1,6}[ \t]+`)
	strong        = regexp.MustCompile(`\*\*([^*\n]+)\*\*|__([^_\n]+)__`)
	starEmphasis  = regexp.MustCompile(`\*([^*\n]+)\*`)
	underEmphasis = regexp.MustCompile(`(^|\W)_([^_\n]+)_(\W|$)`)
	blockquote    = regexp.MustCompile(`(?m)^[ \t]*>[ \t]?`)
	rule          = regexp.MustCompile(`(?m)^[ \t]*([-*_][ \t]*){3,}$`)
	bullets       = regexp.MustCompile(`(?m)^([ \t]*)[-*+][ \t]+`)
	multiNewlines = regexp.MustCompile(`\n{3,}`)
)

// Normaliser handles Markdown documents.
type Normaliser struct{}

// New creates a new Markdown normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Name identifies the strategy.
func (n *Normaliser) Name() string {
	return "markdown"
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{domain.MIMETypeMarkdown, "text/x-markdown"}
}

// Priority returns the selection priority, above plaintext.
func (n *Normaliser) Priority() int {
	return 60
}

// Normalise returns the stripped text as a single page.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	content := strings.ToValidUTF8(string(raw.Content), "�")
	content = strings.ReplaceAll(content, "\r\n", "\n")
	return &driven.NormaliseResult{Pages: []string{stripMarkdown(content)}}, nil
}

// stripMarkdown removes formatting but keeps the words. Code and image alt
// text survive; numbered lists keep their numbers since they often carry
// section numbering.
func stripMarkdown(content string) string {
	content = codeFence.ReplaceAllString(content, "")
	content = inlineCode.ReplaceAllString(content, "$1")
	content = images.ReplaceAllString(content, "$1")
	content = links.ReplaceAllString(content, "$1")
	content = rule.ReplaceAllString(content, "")
	content = headings.ReplaceAllString(content, "")
	content = blockquote.ReplaceAllString(content, "")
	content = bullets.ReplaceAllString(content, "$1")
	content = strong.ReplaceAllString(content, "$1$2")
	content = starEmphasis.ReplaceAllString(content, "$1")
	content = underEmphasis.ReplaceAllString(content, "$1$2$3")
	content = multiNewlines.ReplaceAllString(content, "\n\n")
	return strings.TrimSpace(content)
}
