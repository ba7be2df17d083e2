// Package httpapi serves the legal assistant over a small form-based HTTP API.
package httpapi

import (
	"errors"

	"github.com/custodia-labs/lexis/internal/core/ports/driving"
)

// ErrMissingAskService is returned when the API is built without an ask service.
var ErrMissingAskService = errors.New("httpapi: ask service is required")

// Ports holds the services the API drives. Corpora is optional; without it
// GET /corpora answers with an empty list.
type Ports struct {
	Ask     driving.AskService
	Corpora driving.CorpusService
}

// Validate checks the required ports are set.
func (p *Ports) Validate() error {
	if p == nil || p.Ask == nil {
		return ErrMissingAskService
	}
	return nil
}
