package driven

import (
	"context"

	"github.com/custodia-labs/loanform/internal/core/domain"
)

// SessionStore keeps in-progress sessions, including field provenance,
// between command invocations.
type SessionStore interface {
	// Save stores or replaces a session.
	Save(ctx context.Context, session *domain.Session) error

	// Get retrieves a session by ID.
	// Returns domain.ErrNotFound if absent.
	Get(ctx context.Context, id string) (*domain.Session, error)

	// List returns all sessions, most recently updated first.
	List(ctx context.Context) ([]domain.Session, error)

	// Delete removes a session.
	Delete(ctx context.Context, id string) error
}
