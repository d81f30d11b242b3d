package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/loanform/internal/core/domain"
)

func newTestSessionStore(t *testing.T) (*SessionStore, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "sessions")
	store, err := NewSessionStore(dir)
	require.NoError(t, err)
	return store, dir
}

func TestSessionStore_SaveAndGet_PreservesProvenance(t *testing.T) {
	store, _ := newTestSessionStore(t)
	ctx := context.Background()

	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	session := domain.NewSession("s-1", now)
	session.ApplicationID = "app-1"
	session.Section = 2
	session.Fields.SetUser(domain.ScalarKey("enterprise_name"), "Acme Traders")
	session.Fields.Clear(domain.ScalarKey("pan"))
	session.Fields.SetDerived(domain.GroupKey(domain.GroupDirectors, 1, "name"), "Asha", "doc-1")
	session.Fields.SetUser(domain.YearKey("Present Year", "net_sales"), "1200000")
	session.Documents["director_kyc_1"] = domain.DocumentRef{DocumentID: "doc-1", FileName: "kyc.txt"}

	require.NoError(t, store.Save(ctx, session))

	got, err := store.Get(ctx, "s-1")
	require.NoError(t, err)
	assert.Equal(t, "app-1", got.ApplicationID)
	assert.Equal(t, 2, got.Section)
	assert.True(t, got.CreatedAt.Equal(now))
	assert.Equal(t, 4, got.Fields.Len())

	pan := got.Fields.Get(domain.ScalarKey("pan"))
	assert.Equal(t, domain.OriginUserEntered, pan.Origin)
	assert.Empty(t, pan.Value)

	director := got.Fields.Get(domain.GroupKey(domain.GroupDirectors, 1, "name"))
	assert.Equal(t, domain.OriginDocumentDerived, director.Origin)
	assert.Equal(t, "doc-1", director.SourceDocument)

	assert.Equal(t, "1200000", got.Fields.Get(domain.YearKey("Present Year", "net_sales")).Value)
	assert.Equal(t, "kyc.txt", got.Documents["director_kyc_1"].FileName)
}

func TestSessionStore_ClearedFieldStaysSticky(t *testing.T) {
	store, _ := newTestSessionStore(t)
	ctx := context.Background()

	session := domain.NewSession("s-1", time.Now())
	session.Fields.Clear(domain.ScalarKey("address"))
	require.NoError(t, store.Save(ctx, session))

	got, err := store.Get(ctx, "s-1")
	require.NoError(t, err)

	assert.False(t, got.Fields.SetDerived(domain.ScalarKey("address"), "12 MG Road", "doc-2"))
}

func TestSessionStore_Get_NotFound(t *testing.T) {
	store, _ := newTestSessionStore(t)

	_, err := store.Get(context.Background(), "missing")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSessionStore_RejectsPathLikeIDs(t *testing.T) {
	store, _ := newTestSessionStore(t)

	for _, id := range []string{"", "../escape", `a\b`, ".hidden"} {
		_, err := store.Get(context.Background(), id)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, id)
	}
}

func TestSessionStore_List_NewestFirst(t *testing.T) {
	store, dir := newTestSessionStore(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	older := domain.NewSession("older", base)
	newer := domain.NewSession("newer", base)
	newer.UpdatedAt = base.Add(time.Hour)
	require.NoError(t, store.Save(ctx, older))
	require.NoError(t, store.Save(ctx, newer))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "junk"+sessionExt), []byte("not msgpack"), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0600))

	sessions, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "newer", sessions[0].ID)
	assert.Equal(t, "older", sessions[1].ID)
}

func TestSessionStore_Delete(t *testing.T) {
	store, _ := newTestSessionStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, domain.NewSession("s-1", time.Now())))
	require.NoError(t, store.Delete(ctx, "s-1"))
	require.NoError(t, store.Delete(ctx, "s-1"))

	_, err := store.Get(ctx, "s-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
