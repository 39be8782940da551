package mcp

import (
	"github.com/custodia-labs/kensho/internal/core/ports/driving"
)

// Ports aggregates the driving ports used by the MCP server.
type Ports struct {
	// Retrieval runs searches and chunk selection.
	Retrieval driving.RetrievalService

	// Citation attributes results. Optional.
	Citation driving.CitationService

	// Session lists sessions for resources. Optional.
	Session driving.SessionService

	// Index reports index statistics. Optional.
	Index driving.IndexService

	// Study generates flashcards and quizzes. Optional.
	Study driving.StudyService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Retrieval == nil {
		return ErrMissingRetrievalService
	}
	return nil
}
