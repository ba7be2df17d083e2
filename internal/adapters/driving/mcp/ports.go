package mcp

import (
	"github.com/custodia-labs/lexis/internal/core/ports/driving"
)

// Ports aggregates the driving ports the MCP server uses.
type Ports struct {
	// Ask answers questions.
	Ask driving.AskService

	// Corpora lists and ingests corpora. Optional: without it the
	// ingest tool and corpus resources are not registered.
	Corpora driving.CorpusService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Ask == nil {
		return ErrMissingAskService
	}
	return nil
}
