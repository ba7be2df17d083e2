// Package cloudocr is the last-resort extraction strategy: the whole
// document is handed to a hosted multimodal model for transcription.
package cloudocr

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/lexis/internal/core/domain"
	"github.com/custodia-labs/lexis/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Instruction is sent alongside the document bytes.
const Instruction = "Extract readable text from this scanned PDF document."

// ErrNoTranscriber is returned when no transcription service is configured.
var ErrNoTranscriber = errors.New("cloud ocr: no transcriber configured")

// Normaliser delegates extraction to a Transcriber.
type Normaliser struct {
	transcriber driven.Transcriber
}

// New creates a cloud OCR normaliser.
func New(transcriber driven.Transcriber) *Normaliser {
	return &Normaliser{transcriber: transcriber}
}

// Name identifies the strategy.
func (n *Normaliser) Name() string {
	return "cloud-ocr"
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{domain.MIMETypePDF}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 10
}

// Normalise returns the transcription as a single page.
func (n *Normaliser) Normalise(ctx context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}
	if n.transcriber == nil {
		return nil, ErrNoTranscriber
	}

	text, err := n.transcriber.Transcribe(ctx, raw.Content, raw.MIMEType, Instruction)
	if err != nil {
		return nil, fmt.Errorf("cloud ocr: %w", err)
	}
	return &driven.NormaliseResult{Pages: []string{text}}, nil
}
