// Package ocr recognises text in scanned PDFs. Pages are rasterised with
// poppler's pdftoppm and each page image is read by tesseract.
package ocr

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/custodia-labs/lexis/internal/core/domain"
	"github.com/custodia-labs/lexis/internal/core/ports/driven"
	"github.com/custodia-labs/lexis/internal/logger"
	"github.com/custodia-labs/lexis/internal/normalisers"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

const (
	defaultDPI      = 300
	defaultLanguage = "eng"
	imagePrefix     = "page"
)

var pageNumber = regexp.MustCompile(`-(\d+)\.png$`)

// Config holds OCR tool locations and recognition parameters.
type Config struct {
	// TesseractPath is the tesseract binary. Empty means PATH lookup.
	TesseractPath string

	// PopplerPath is the directory containing pdftoppm. Empty means PATH lookup.
	PopplerPath string

	// Language is the tesseract language code (default: eng).
	Language string

	// DPI is the rasterisation resolution (default: 300).
	DPI int
}

// Normaliser runs local OCR over every page of a PDF.
type Normaliser struct {
	runner    normalisers.CommandRunner
	pdftoppm  string
	tesseract string
	language  string
	dpi       int
}

// New creates an OCR normaliser that executes the real tools.
func New(cfg Config) *Normaliser {
	return NewWithRunner(normalisers.ExecRunner{}, cfg)
}

// NewWithRunner creates an OCR normaliser with a custom command runner.
func NewWithRunner(runner normalisers.CommandRunner, cfg Config) *Normaliser {
	if cfg.Language == "" {
		cfg.Language = defaultLanguage
	}
	if cfg.DPI <= 0 {
		cfg.DPI = defaultDPI
	}
	tesseract := cfg.TesseractPath
	if tesseract == "" {
		tesseract = "tesseract"
	}
	return &Normaliser{
		runner:    runner,
		pdftoppm:  normalisers.ToolPath(cfg.PopplerPath, "pdftoppm"),
		tesseract: tesseract,
		language:  cfg.Language,
		dpi:       cfg.DPI,
	}
}

// Name identifies the strategy.
func (n *Normaliser) Name() string {
	return "tesseract"
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{domain.MIMETypePDF}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 30
}

// Normalise rasterises the document and recognises each page in order.
// A page that tesseract cannot read is kept as an empty page; the
// attempt only fails when no page could be read.
func (n *Normaliser) Normalise(ctx context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	input, cleanup, err := normalisers.WriteTemp(raw.Content, "input.pdf")
	if err != nil {
		return nil, err
	}
	defer cleanup()

	prefix := filepath.Join(filepath.Dir(input), imagePrefix)
	if _, err := n.runner.Run(ctx, n.pdftoppm, "-r", strconv.Itoa(n.dpi), "-png", input, prefix); err != nil {
		return nil, fmt.Errorf("pdftoppm failed: %w", err)
	}

	images, err := filepath.Glob(prefix + "-*.png")
	if err != nil {
		return nil, fmt.Errorf("list page images: %w", err)
	}
	if len(images) == 0 {
		return nil, fmt.Errorf("pdftoppm produced no page images")
	}
	sortByPage(images)

	pages := make([]string, len(images))
	read := 0
	for i, img := range images {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out, err := n.runner.Run(ctx, n.tesseract, img, "stdout", "-l", n.language, "--psm", "3")
		if err != nil {
			logger.Warn("tesseract page %d of %s: %v", i+1, raw.Name, err)
			continue
		}
		pages[i] = strings.TrimSpace(string(out))
		read++
	}

	if read == 0 {
		return nil, fmt.Errorf("tesseract could not read any of %d pages", len(images))
	}
	logger.Debug("ocr %s: read %d of %d pages", raw.Name, read, len(images))

	return &driven.NormaliseResult{Pages: pages}, nil
}

// sortByPage orders pdftoppm images numerically. pdftoppm zero-pads page
// numbers only to the width of the last page, so lexical order is not enough.
func sortByPage(images []string) {
	slices.SortStableFunc(images, func(a, b string) int {
		return pageOf(a) - pageOf(b)
	})
}

func pageOf(path string) int {
	m := pageNumber.FindStringSubmatch(filepath.Base(path))
	if len(m) < 2 {
		return 0
	}
	num, _ := strconv.Atoi(m[1])
	return num
}
