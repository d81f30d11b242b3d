// Package mcp provides an MCP (Model Context Protocol) server adapter for loanform.
// It lets AI assistants fill, review and save loan applications on an
// applicant's behalf.
package mcp

import "errors"

// ErrMissingApplicationService is returned when the application service is not provided.
var ErrMissingApplicationService = errors.New("mcp: application service is required")
