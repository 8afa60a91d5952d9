package mcp

import (
	"github.com/custodia-labs/folio/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Session holds the open document and its table of contents.
	Session driving.SessionService

	// Chat answers questions about the document.
	Chat driving.ChatService

	// Store is the semantic memory searched by the search tool.
	Store driving.EmbeddingStore
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Session == nil {
		return ErrMissingSessionService
	}
	// Chat and Store are optional; their tools report an error when missing.
	return nil
}
