package mcp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/loanform/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/loanform/internal/core/domain"
	"github.com/custodia-labs/loanform/internal/core/ports/driving"
	"github.com/custodia-labs/loanform/internal/core/services"
)

// failingApplicationService fails every call it overrides. Calls it does
// not override panic through the nil embedded interface.
type failingApplicationService struct {
	driving.ApplicationService
	err error
}

func (m *failingApplicationService) StartSession(_ context.Context) (*domain.Session, error) {
	return nil, m.err
}

func (m *failingApplicationService) SetField(_ context.Context, _, _, _ string) (*driving.FieldUpdate, error) {
	return nil, m.err
}

func (m *failingApplicationService) Save(_ context.Context, _ string) (string, error) {
	return "", m.err
}

func (m *failingApplicationService) Review(_ context.Context, _ string) (*domain.ApplicationRecord, error) {
	return nil, m.err
}

func (m *failingApplicationService) List(_ context.Context) ([]domain.Application, error) {
	return nil, m.err
}

func (m *failingApplicationService) Get(_ context.Context, _ string) (*domain.Application, error) {
	return nil, m.err
}

func (m *failingApplicationService) Documents(_ context.Context, _ string) ([]domain.DocumentMetadata, error) {
	return nil, m.err
}

// newTestServer returns a server over an in-memory application service.
func newTestServer(t *testing.T) (*Server, *services.ApplicationService) {
	t.Helper()
	svc := services.NewApplicationService(
		memory.NewSessionStore(),
		memory.NewApplicationStore(),
		memory.NewBlobStore(),
		services.NewExtractorRegistry(),
		nil,
		services.ApplicationOptions{Autosave: false},
	)
	server, err := NewServer(&Ports{Application: svc})
	require.NoError(t, err)
	return server, svc
}
