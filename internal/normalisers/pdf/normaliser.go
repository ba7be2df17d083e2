// Package pdf extracts the embedded text layer of PDF documents with
// poppler's pdftotext.
package pdf

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/custodia-labs/lexis/internal/core/domain"
	"github.com/custodia-labs/lexis/internal/core/ports/driven"
	"github.com/custodia-labs/lexis/internal/normalisers"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// ErrPDFToolNotFound indicates pdftotext is not installed.
var ErrPDFToolNotFound = errors.New("pdftotext not found: install poppler")

const (
	toolName = "pdftotext"

	// pdftotext separates pages with a form feed.
	pageBreak = "\f"
)

// Normaliser handles PDF documents with a text layer.
type Normaliser struct {
	runner normalisers.CommandRunner
	tool   string
}

// New creates a PDF normaliser. popplerPath may be empty to use PATH.
func New(popplerPath string) *Normaliser {
	return NewWithRunner(normalisers.ExecRunner{}, popplerPath)
}

// NewWithRunner creates a PDF normaliser with a custom command runner.
func NewWithRunner(runner normalisers.CommandRunner, popplerPath string) *Normaliser {
	return &Normaliser{
		runner: runner,
		tool:   normalisers.ToolPath(popplerPath, toolName),
	}
}

// Name identifies the strategy.
func (n *Normaliser) Name() string {
	return toolName
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{domain.MIMETypePDF}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 90
}

// Normalise runs pdftotext in layout mode and splits its output into pages.
func (n *Normaliser) Normalise(ctx context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	path, cleanup, err := normalisers.WriteTemp(raw.Content, "input.pdf")
	if err != nil {
		return nil, err
	}
	defer cleanup()

	output, err := n.runner.Run(ctx, n.tool, "-layout", "-enc", "UTF-8", path, "-")
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return nil, ErrPDFToolNotFound
		}
		return nil, fmt.Errorf("pdftotext failed: %w", err)
	}

	return &driven.NormaliseResult{Pages: splitPages(string(output))}, nil
}

// splitPages breaks pdftotext output on form feeds, dropping the empty
// remainder after the final page break.
func splitPages(output string) []string {
	pages := strings.Split(output, pageBreak)
	if len(pages) > 1 && strings.TrimSpace(pages[len(pages)-1]) == "" {
		pages = pages[:len(pages)-1]
	}
	return pages
}

// CheckAvailable verifies pdftotext is installed in popplerPath, or on
// PATH when popplerPath is empty.
func CheckAvailable(popplerPath string) error {
	if _, err := exec.LookPath(normalisers.ToolPath(popplerPath, toolName)); err != nil {
		return ErrPDFToolNotFound
	}
	return nil
}

// InstallInstructions returns platform-specific installation instructions.
func InstallInstructions() string {
	return `pdftotext is required for PDF text extraction.

Install poppler:
  macOS:   brew install poppler
  Ubuntu:  apt install poppler-utils
  Fedora:  dnf install poppler-utils
  Windows: download poppler and set POPPLER_PATH to its bin directory`
}
