package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/loanform/internal/core/domain"
)

// StartSessionInput is the input schema for the start_session tool.
type StartSessionInput struct {
	ApplicationID string `json:"application_id,omitempty" jsonschema:"resume this stored application instead of starting empty"`
}

// SessionOutput describes a session.
type SessionOutput struct {
	SessionID     string `json:"session_id"`
	ApplicationID string `json:"application_id,omitempty"`
	Section       string `json:"section"`
}

// SetFieldInput is the input schema for the set_field tool.
type SetFieldInput struct {
	SessionID string `json:"session_id" jsonschema:"the session to edit"`
	Key       string `json:"key" jsonschema:"flat field key, e.g. enterprise_name or director_name_0"`
	Value     string `json:"value" jsonschema:"the value entered by the applicant; empty clears the field"`
}

// SetFieldOutput is the output schema for the set_field tool.
type SetFieldOutput struct {
	Key           string `json:"key"`
	Value         string `json:"value"`
	Origin        string `json:"origin"`
	ApplicationID string `json:"application_id,omitempty"`
	Saved         bool   `json:"saved"`
}

// ApplyExtractionInput is the input schema for the apply_extraction tool.
type ApplyExtractionInput struct {
	SessionID  string            `json:"session_id" jsonschema:"the session to fill"`
	Fields     map[string]string `json:"fields" jsonschema:"extracted field name to value"`
	Slot       string            `json:"slot,omitempty" jsonschema:"upload slot of the source document, e.g. director_kyc_1"`
	DocumentID string            `json:"document_id,omitempty" jsonschema:"identifier of the source document"`
}

// ApplyExtractionOutput is the output schema for the apply_extraction tool.
type ApplyExtractionOutput struct {
	Written  []string `json:"written"`
	Skipped  []string `json:"skipped"`
	Unmapped []string `json:"unmapped"`
}

// SessionInput identifies a session.
type SessionInput struct {
	SessionID string `json:"session_id" jsonschema:"the session to act on"`
}

// SaveOutput is the output schema for the save_application tool.
type SaveOutput struct {
	ApplicationID string `json:"application_id"`
}

// ReviewOutput is the output schema for the review_application tool.
type ReviewOutput struct {
	Record   map[string]any `json:"record"`
	Issues   []IssueOutput  `json:"issues"`
	Complete bool           `json:"complete"`
}

// IssueOutput is one completeness problem.
type IssueOutput struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "start_session",
		Description: "Start a loan application session, optionally resuming a stored application",
	}, s.handleStartSession)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "set_field",
		Description: "Record a value the applicant entered for a form field",
	}, s.handleSetField)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "apply_extraction",
		Description: "Auto-fill empty form fields from values extracted from a document",
	}, s.handleApplyExtraction)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "save_application",
		Description: "Save the session's application and return its application ID",
	}, s.handleSave)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "review_application",
		Description: "Show the aggregated application record and its completeness issues",
	}, s.handleReview)
}

func sessionOutput(session *domain.Session) SessionOutput {
	return SessionOutput{
		SessionID:     session.ID,
		ApplicationID: session.ApplicationID,
		Section:       session.SectionName(),
	}
}

func (s *Server) handleStartSession(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input StartSessionInput,
) (*mcp.CallToolResult, SessionOutput, error) {
	var session *domain.Session
	var err error
	if input.ApplicationID != "" {
		session, err = s.ports.Application.ResumeSession(ctx, input.ApplicationID)
	} else {
		session, err = s.ports.Application.StartSession(ctx)
	}
	if err != nil {
		return nil, SessionOutput{}, err
	}
	return nil, sessionOutput(session), nil
}

func (s *Server) handleSetField(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SetFieldInput,
) (*mcp.CallToolResult, SetFieldOutput, error) {
	update, err := s.ports.Application.SetField(ctx, input.SessionID, input.Key, input.Value)
	if err != nil {
		return nil, SetFieldOutput{}, err
	}

	output := SetFieldOutput{
		Key:           update.Field.Key.String(),
		Value:         update.Field.Value,
		Origin:        update.Field.Origin.String(),
		ApplicationID: update.ApplicationID,
		Saved:         update.Saved,
	}
	return nil, output, nil
}

func (s *Server) handleApplyExtraction(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ApplyExtractionInput,
) (*mcp.CallToolResult, ApplyExtractionOutput, error) {
	source := domain.DocumentSource{ID: input.DocumentID, Slot: input.Slot}
	applied, err := s.ports.Application.ApplyExtraction(ctx, input.SessionID, input.Fields, source)
	if err != nil {
		return nil, ApplyExtractionOutput{}, err
	}

	output := ApplyExtractionOutput{
		Written:  applied.Written,
		Skipped:  applied.Skipped,
		Unmapped: applied.Unmapped,
	}
	return nil, output, nil
}

func (s *Server) handleSave(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SessionInput,
) (*mcp.CallToolResult, SaveOutput, error) {
	id, err := s.ports.Application.Save(ctx, input.SessionID)
	if err != nil {
		return nil, SaveOutput{}, err
	}
	return nil, SaveOutput{ApplicationID: id}, nil
}

func (s *Server) handleReview(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SessionInput,
) (*mcp.CallToolResult, ReviewOutput, error) {
	record, err := s.ports.Application.Review(ctx, input.SessionID)
	if err != nil {
		return nil, ReviewOutput{}, err
	}
	issues, err := s.ports.Application.Validate(ctx, input.SessionID)
	if err != nil {
		return nil, ReviewOutput{}, err
	}

	recordMap, err := toMap(record)
	if err != nil {
		return nil, ReviewOutput{}, err
	}

	output := ReviewOutput{
		Record:   recordMap,
		Issues:   make([]IssueOutput, len(issues)),
		Complete: len(issues) == 0,
	}
	for i, issue := range issues {
		output.Issues[i] = IssueOutput{Field: issue.Field, Message: issue.Message}
	}
	return nil, output, nil
}

// toMap converts a record to its JSON object form.
func toMap(record *domain.ApplicationRecord) (map[string]any, error) {
	data, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("marshalling record: %w", err)
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("unmarshalling record: %w", err)
	}
	return out, nil
}
