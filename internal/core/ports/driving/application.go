package driving

import (
	"context"

	"github.com/custodia-labs/loanform/internal/core/domain"
)

// ApplicationService drives one or more loan-application sessions.
type ApplicationService interface {
	// StartSession begins a new, empty application session.
	StartSession(ctx context.Context) (*domain.Session, error)

	// ResumeSession opens a new session pre-filled from a stored application.
	ResumeSession(ctx context.Context, applicationID string) (*domain.Session, error)

	// GetSession retrieves a session by ID.
	GetSession(ctx context.Context, sessionID string) (*domain.Session, error)

	// ListSessions returns all sessions.
	ListSessions(ctx context.Context) ([]domain.Session, error)

	// GetField returns a field by flat key.
	GetField(ctx context.Context, sessionID, key string) (domain.FieldValue, error)

	// SetField records a user edit.
	SetField(ctx context.Context, sessionID, key, value string) (*FieldUpdate, error)

	// ClearField blanks a field as a user action, blocking later auto-fill.
	ClearField(ctx context.Context, sessionID, key string) (*FieldUpdate, error)

	// UploadDocument stores a document in a slot and auto-fills from it.
	UploadDocument(ctx context.Context, sessionID, slot string, raw *domain.RawDocument) (*domain.UploadResult, error)

	// ApplyExtraction merges externally extracted fields into the session.
	ApplyExtraction(
		ctx context.Context,
		sessionID string,
		extracted map[string]string,
		source domain.DocumentSource,
	) (*domain.AppliedFields, error)

	// Save aggregates the session and upserts the application record.
	// Returns the application ID.
	Save(ctx context.Context, sessionID string) (string, error)

	// Next saves and moves to the following section.
	Next(ctx context.Context, sessionID string) (*domain.Session, error)

	// Previous saves and moves to the preceding section.
	Previous(ctx context.Context, sessionID string) (*domain.Session, error)

	// Submit validates, saves and marks the application submitted.
	// Incomplete applications fail with domain.ErrIncomplete unless force is set.
	Submit(ctx context.Context, sessionID string, force bool) (*SubmitResult, error)

	// Review returns the aggregated record without persisting it.
	Review(ctx context.Context, sessionID string) (*domain.ApplicationRecord, error)

	// Validate returns the completeness issues of the current record.
	Validate(ctx context.Context, sessionID string) ([]domain.Issue, error)

	// Get retrieves a stored application.
	Get(ctx context.Context, applicationID string) (*domain.Application, error)

	// List returns every stored application.
	List(ctx context.Context) ([]domain.Application, error)

	// Documents returns the documents attached to a stored application.
	Documents(ctx context.Context, applicationID string) ([]domain.DocumentMetadata, error)
}

// FieldUpdate is the outcome of a user edit.
type FieldUpdate struct {
	// Field is the field after the edit.
	Field domain.FieldValue

	// ApplicationID is set when the edit was autosaved.
	ApplicationID string

	// Saved reports whether the application was persisted.
	Saved bool
}

// SubmitResult is the outcome of a submission.
type SubmitResult struct {
	// ApplicationID is the confirmation reference shown to the applicant.
	ApplicationID string

	// Issues lists completeness problems. Non-empty only for forced or
	// refused submissions.
	Issues []domain.Issue
}
