package bolt

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/loanform/internal/core/domain"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func testApplication(name string, created time.Time) *domain.Application {
	return &domain.Application{
		Status: domain.StatusDraft,
		Record: domain.ApplicationRecord{
			BasicInfo: domain.FieldSet{"enterprise_name": name},
			Directors: []domain.FieldSet{{"name": "Asha"}},
		},
		CreatedAt: created,
		UpdatedAt: created,
	}
}

var day1 = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func TestNewStore_Path(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, filepath.Join(dir, FileName), store.Path())
}

func TestStore_InsertAndGet(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	id, err := store.Insert(ctx, testApplication("Acme Traders", day1))
	require.NoError(t, err)
	require.NotEmpty(t, id)

	app, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, app.ID)
	assert.Equal(t, "Acme Traders", app.Record.BasicInfo["enterprise_name"])
	assert.Equal(t, "Asha", app.Record.Directors[0]["name"])
}

func TestStore_Get_NotFound(t *testing.T) {
	_, err := setupTestStore(t).Get(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_Update(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	id, err := store.Insert(ctx, testApplication("Acme Traders", day1))
	require.NoError(t, err)

	submitted := day1.Add(24 * time.Hour)
	replacement := testApplication("Acme Pvt Ltd", submitted)
	replacement.Status = domain.StatusSubmitted
	replacement.SubmittedAt = &submitted
	require.NoError(t, store.Update(ctx, id, replacement))

	app, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, app.ID)
	assert.Equal(t, "Acme Pvt Ltd", app.Record.BasicInfo["enterprise_name"])
	assert.Equal(t, domain.StatusSubmitted, app.Status)
	assert.True(t, app.CreatedAt.Equal(day1))
	require.NotNil(t, app.SubmittedAt)

	// A later draft save keeps the submission time.
	draft := testApplication("Acme Pvt Ltd", submitted)
	require.NoError(t, store.Update(ctx, id, draft))
	app, err = store.Get(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, app.SubmittedAt)
	assert.True(t, app.SubmittedAt.Equal(submitted))
}

func TestStore_Update_NotFound(t *testing.T) {
	err := setupTestStore(t).Update(context.Background(), "missing", testApplication("x", day1))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_List_OldestFirst(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	_, err := store.Insert(ctx, testApplication("Later", day1.Add(time.Hour)))
	require.NoError(t, err)
	_, err = store.Insert(ctx, testApplication("Tie A", day1))
	require.NoError(t, err)
	_, err = store.Insert(ctx, testApplication("Tie B", day1))
	require.NoError(t, err)

	apps, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, apps, 3)
	assert.Equal(t, "Tie A", apps[0].Record.BasicInfo["enterprise_name"])
	assert.Equal(t, "Tie B", apps[1].Record.BasicInfo["enterprise_name"])
	assert.Equal(t, "Later", apps[2].Record.BasicInfo["enterprise_name"])
}

func TestStore_Documents(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	first, err := store.SaveDocumentMeta(ctx, &domain.DocumentMetadata{
		ApplicationID:   "app-1",
		Slot:            "udyam_certificate",
		FileName:        "udyam.txt",
		ExtractedFields: map[string]string{"Applicant Name": "Ramesh Kumar"},
	})
	require.NoError(t, err)
	second, err := store.SaveDocumentMeta(ctx, &domain.DocumentMetadata{
		ApplicationID: "app-1",
		Slot:          "pan_card",
		FileName:      "pan.pdf",
	})
	require.NoError(t, err)
	_, err = store.SaveDocumentMeta(ctx, &domain.DocumentMetadata{ApplicationID: "app-2", Slot: "pan_card"})
	require.NoError(t, err)

	docs, err := store.GetDocuments(ctx, "app-1")
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, first, docs[0].ID)
	assert.Equal(t, second, docs[1].ID)
	assert.Equal(t, "Ramesh Kumar", docs[0].ExtractedFields["Applicant Name"])
	assert.False(t, docs[0].UploadedAt.IsZero())
}

func TestStore_SaveDocumentMeta_ReplacesSameID(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	meta := &domain.DocumentMetadata{ID: "doc-1", ApplicationID: "app-1", Slot: "pan_card"}
	_, err := store.SaveDocumentMeta(ctx, meta)
	require.NoError(t, err)
	meta.ExtractionError = "no text layer"
	_, err = store.SaveDocumentMeta(ctx, meta)
	require.NoError(t, err)

	docs, err := store.GetDocuments(ctx, "app-1")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "no text layer", docs[0].ExtractionError)
}

func TestStore_GetDocuments_UnknownApplication(t *testing.T) {
	docs, err := setupTestStore(t).GetDocuments(context.Background(), "none")
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestStore_Closed_ReportsUnavailable(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Close())

	_, err = store.Insert(context.Background(), testApplication("x", day1))
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)

	_, err = store.List(context.Background())
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
}
