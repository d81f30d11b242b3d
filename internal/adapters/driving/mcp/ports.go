package mcp

import (
	"github.com/custodia-labs/loanform/internal/core/ports/driving"
)

// Ports aggregates the driving port interfaces required by the MCP server.
type Ports struct {
	// Application drives sessions and stored applications.
	Application driving.ApplicationService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Application == nil {
		return ErrMissingApplicationService
	}
	return nil
}
