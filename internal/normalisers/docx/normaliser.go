// Package docx extracts the text of Word documents such as petitions and
// case summaries. Explicit page breaks split the text into pages.
package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/custodia-labs/lexis/internal/core/domain"
	"github.com/custodia-labs/lexis/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

const documentPart = "word/document.xml"

// Normaliser handles DOCX documents.
type Normaliser struct{}

// New creates a new DOCX normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Name identifies the strategy.
func (n *Normaliser) Name() string {
	return "docx"
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{domain.MIMETypeDOCX}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 80
}

// Normalise reads word/document.xml from the archive. Paragraphs in table
// cells are included in document order.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	reader, err := zip.NewReader(bytes.NewReader(raw.Content), int64(len(raw.Content)))
	if err != nil {
		return nil, fmt.Errorf("%w: not a docx archive: %w", domain.ErrInvalidInput, err)
	}

	part, err := reader.Open(documentPart)
	if err != nil {
		return nil, fmt.Errorf("%w: %s missing", domain.ErrInvalidInput, documentPart)
	}
	defer part.Close()

	pages, err := parseDocument(part)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", documentPart, err)
	}
	return &driven.NormaliseResult{Pages: pages}, nil
}

// parseDocument walks the WordprocessingML tokens. Text runs, tabs and
// line breaks are kept. A page break starts a new page.
func parseDocument(r io.Reader) ([]string, error) {
	var (
		pages   []string
		current strings.Builder
		inText  bool
	)
	flush := func() {
		pages = append(pages, strings.TrimSpace(current.String()))
		current.Reset()
	}

	decoder := xml.NewDecoder(r)
	for {
		tok, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				current.WriteByte('\t')
			case "br":
				if attr(t, "type") == "page" {
					flush()
				} else {
					current.WriteByte('\n')
				}
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				current.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				current.Write(t)
			}
		}
	}
	flush()

	kept := pages[:0]
	for _, page := range pages {
		if page != "" {
			kept = append(kept, page)
		}
	}
	if len(kept) == 0 {
		return []string{""}, nil
	}
	return kept, nil
}

func attr(el xml.StartElement, local string) string {
	for _, a := range el.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}
