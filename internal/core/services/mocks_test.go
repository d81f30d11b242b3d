package services

import (
	"context"

	"github.com/custodia-labs/loanform/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/loanform/internal/core/domain"
)

// recordingStore wraps the memory store, counting calls and injecting failures.
type recordingStore struct {
	*memory.ApplicationStore
	inserts   int
	updates   int
	insertErr error
	updateErr error
	docErr    error
}

func newRecordingStore() *recordingStore {
	return &recordingStore{ApplicationStore: memory.NewApplicationStore()}
}

func (r *recordingStore) Insert(ctx context.Context, app *domain.Application) (string, error) {
	r.inserts++
	if r.insertErr != nil {
		return "", r.insertErr
	}
	return r.ApplicationStore.Insert(ctx, app)
}

func (r *recordingStore) Update(ctx context.Context, id string, app *domain.Application) error {
	r.updates++
	if r.updateErr != nil {
		return r.updateErr
	}
	return r.ApplicationStore.Update(ctx, id, app)
}

func (r *recordingStore) SaveDocumentMeta(ctx context.Context, meta *domain.DocumentMetadata) (string, error) {
	if r.docErr != nil {
		return "", r.docErr
	}
	return r.ApplicationStore.SaveDocumentMeta(ctx, meta)
}

// mockExtractor returns fixed fields for its MIME types.
type mockExtractor struct {
	mimeTypes []string
	fields    map[string]string
	err       error
	calls     int
}

func (m *mockExtractor) Name() string { return "mock" }

func (m *mockExtractor) SupportedMIMETypes() []string { return m.mimeTypes }

func (m *mockExtractor) Extract(_ context.Context, _ *domain.RawDocument) (map[string]string, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	out := make(map[string]string, len(m.fields))
	for k, v := range m.fields {
		out[k] = v
	}
	return out, nil
}
