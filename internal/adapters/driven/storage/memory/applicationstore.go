package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/loanform/internal/core/domain"
	"github.com/custodia-labs/loanform/internal/core/ports/driven"
)

// Ensure ApplicationStore implements the interface.
var _ driven.ApplicationStore = (*ApplicationStore)(nil)

// ApplicationStore is an in-memory implementation of driven.ApplicationStore.
// Records are kept encoded so callers never share maps with the store.
type ApplicationStore struct {
	mu        sync.RWMutex
	apps      map[string][]byte
	order     []string
	documents map[string][]domain.DocumentMetadata
}

// NewApplicationStore creates a new in-memory application store.
func NewApplicationStore() *ApplicationStore {
	return &ApplicationStore{
		apps:      make(map[string][]byte),
		documents: make(map[string][]domain.DocumentMetadata),
	}
}

// Insert stores a new application under a generated ID.
func (s *ApplicationStore) Insert(_ context.Context, app *domain.Application) (string, error) {
	id := uuid.New().String()

	stored := *app
	stored.ID = id
	data, err := json.Marshal(&stored)
	if err != nil {
		return "", fmt.Errorf("marshal application: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.apps[id] = data
	s.order = append(s.order, id)
	return id, nil
}

// Update replaces a stored application, keeping its creation time.
func (s *ApplicationStore) Update(_ context.Context, id string, app *domain.Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.apps[id]
	if !ok {
		return domain.ErrNotFound
	}
	var prev domain.Application
	if err := json.Unmarshal(existing, &prev); err != nil {
		return fmt.Errorf("unmarshal application: %w", err)
	}

	stored := *app
	stored.ID = id
	stored.CreatedAt = prev.CreatedAt
	data, err := json.Marshal(&stored)
	if err != nil {
		return fmt.Errorf("marshal application: %w", err)
	}
	s.apps[id] = data
	return nil
}

// Get retrieves an application by ID.
func (s *ApplicationStore) Get(_ context.Context, id string) (*domain.Application, error) {
	s.mu.RLock()
	data, ok := s.apps[id]
	s.mu.RUnlock()
	if !ok {
		return nil, domain.ErrNotFound
	}

	var app domain.Application
	if err := json.Unmarshal(data, &app); err != nil {
		return nil, fmt.Errorf("unmarshal application: %w", err)
	}
	return &app, nil
}

// List returns every application in insertion order.
func (s *ApplicationStore) List(ctx context.Context) ([]domain.Application, error) {
	s.mu.RLock()
	ids := make([]string, len(s.order))
	copy(ids, s.order)
	s.mu.RUnlock()

	result := make([]domain.Application, 0, len(ids))
	for _, id := range ids {
		app, err := s.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		result = append(result, *app)
	}
	return result, nil
}

// SaveDocumentMeta stores document metadata, assigning an ID when empty.
func (s *ApplicationStore) SaveDocumentMeta(_ context.Context, meta *domain.DocumentMetadata) (string, error) {
	stored := *meta
	if stored.ID == "" {
		stored.ID = uuid.New().String()
	}
	if stored.UploadedAt.IsZero() {
		stored.UploadedAt = time.Now().UTC()
	}
	stored.ExtractedFields = copyFields(meta.ExtractedFields)

	s.mu.Lock()
	defer s.mu.Unlock()
	docs := s.documents[stored.ApplicationID]
	for i := range docs {
		if docs[i].ID == stored.ID {
			docs[i] = stored
			return stored.ID, nil
		}
	}
	s.documents[stored.ApplicationID] = append(docs, stored)
	return stored.ID, nil
}

// GetDocuments returns the documents of an application in upload order.
func (s *ApplicationStore) GetDocuments(_ context.Context, applicationID string) ([]domain.DocumentMetadata, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	docs := s.documents[applicationID]
	result := make([]domain.DocumentMetadata, len(docs))
	for i, d := range docs {
		result[i] = d
		result[i].ExtractedFields = copyFields(d.ExtractedFields)
	}
	return result, nil
}

func copyFields(src map[string]string) map[string]string {
	if src == nil {
		return nil
	}
	dst := make(map[string]string, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
