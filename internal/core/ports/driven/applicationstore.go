package driven

import (
	"context"

	"github.com/custodia-labs/loanform/internal/core/domain"
)

// ApplicationStore persists application records and document metadata.
// It is the persistence adapter of the core: connectivity and
// authentication failures must be reported wrapped in
// domain.ErrStorageUnavailable, never as empty results.
type ApplicationStore interface {
	// Insert stores a new application and returns the identifier it assigned.
	Insert(ctx context.Context, app *domain.Application) (string, error)

	// Update replaces the stored application with the given ID.
	// Returns domain.ErrNotFound if no application has that ID.
	Update(ctx context.Context, id string, app *domain.Application) error

	// Get retrieves an application by ID.
	// Returns domain.ErrNotFound if absent.
	Get(ctx context.Context, id string) (*domain.Application, error)

	// List returns every stored application, oldest first.
	List(ctx context.Context) ([]domain.Application, error)

	// SaveDocumentMeta stores document metadata and returns its ID.
	// An empty meta.ID is assigned by the store.
	SaveDocumentMeta(ctx context.Context, meta *domain.DocumentMetadata) (string, error)

	// GetDocuments returns the documents attached to an application, oldest first.
	GetDocuments(ctx context.Context, applicationID string) ([]domain.DocumentMetadata, error)
}
