// Package plaintext passes text documents such as case descriptions
// straight through the extraction chain.
package plaintext

import (
	"context"
	"strings"

	"github.com/custodia-labs/lexis/internal/core/domain"
	"github.com/custodia-labs/lexis/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles plain text documents.
type Normaliser struct{}

// New creates a new plain text normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Name identifies the strategy.
func (n *Normaliser) Name() string {
	return "plaintext"
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{
		domain.MIMETypePlainText,
		domain.MIMETypeMarkdown,
	}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50
}

// Normalise returns the content as a single page. Invalid UTF-8 sequences
// are replaced and Windows line endings are folded to "\n".
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	content := strings.ToValidUTF8(string(raw.Content), "�")
	content = strings.ReplaceAll(content, "\r\n", "\n")

	return &driven.NormaliseResult{Pages: []string{content}}, nil
}
