package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/loanform/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for loanform resources.
	uriScheme = "loanform://"

	applicationsPrefix = uriScheme + "applications/"
	documentsSuffix    = "/documents"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "applications",
		Name:        "applications",
		Description: "List of all stored loan applications",
		MIMEType:    "application/json",
	}, s.handleApplicationsResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "applications/{applicationId}",
		Name:        "application",
		Description: "A stored loan application record",
		MIMEType:    "application/json",
	}, s.handleApplicationResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "applications/{applicationId}/documents",
		Name:        "application-documents",
		Description: "Documents uploaded for a loan application",
		MIMEType:    "application/json",
	}, s.handleDocumentsResource)
}

// handleApplicationsResource returns a summary of every stored application.
func (s *Server) handleApplicationsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	apps, err := s.ports.Application.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing applications: %w", err)
	}

	type applicationInfo struct {
		ID             string    `json:"application_id"`
		Status         string    `json:"status"`
		EnterpriseName string    `json:"enterprise_name"`
		UpdatedAt      time.Time `json:"updated_at"`
	}

	infos := make([]applicationInfo, len(apps))
	for i := range apps {
		infos[i] = applicationInfo{
			ID:             apps[i].ID,
			Status:         string(apps[i].Status),
			EnterpriseName: apps[i].Record.BasicInfo["enterprise_name"],
			UpdatedAt:      apps[i].UpdatedAt,
		}
	}

	return jsonResult(req.Params.URI, infos)
}

// handleApplicationResource returns one stored application.
func (s *Server) handleApplicationResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	// loanform://applications/{applicationId}
	id := extractApplicationID(req.Params.URI)
	if id == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	app, err := s.ports.Application.Get(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("getting application: %w", err)
	}

	return jsonResult(req.Params.URI, app)
}

// handleDocumentsResource returns the documents of a stored application.
func (s *Server) handleDocumentsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	// loanform://applications/{applicationId}/documents
	id := extractDocumentsApplicationID(req.Params.URI)
	if id == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	docs, err := s.ports.Application.Documents(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}

	return jsonResult(req.Params.URI, docs)
}

func jsonResult(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling resource: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractApplicationID extracts the ID from loanform://applications/{applicationId}.
func extractApplicationID(uri string) string {
	id, ok := strings.CutPrefix(uri, applicationsPrefix)
	if !ok || strings.Contains(id, "/") {
		return ""
	}
	return id
}

// extractDocumentsApplicationID extracts the ID from
// loanform://applications/{applicationId}/documents.
func extractDocumentsApplicationID(uri string) string {
	rest, ok := strings.CutPrefix(uri, applicationsPrefix)
	if !ok {
		return ""
	}
	id, ok := strings.CutSuffix(rest, documentsSuffix)
	if !ok || strings.Contains(id, "/") {
		return ""
	}
	return id
}
