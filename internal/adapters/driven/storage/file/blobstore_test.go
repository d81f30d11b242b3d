package file

import (
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/loanform/internal/core/domain"
)

func TestBlobStore_PutAndOpen(t *testing.T) {
	store, err := NewBlobStore(filepath.Join(t.TempDir(), "blobs"))
	require.NoError(t, err)
	ctx := context.Background()

	ref, size, err := store.Put(ctx, "Udyam.TXT", strings.NewReader("Applicant Name: Ramesh Kumar"))
	require.NoError(t, err)
	assert.Equal(t, int64(28), size)
	assert.True(t, strings.HasSuffix(ref, ".txt"))

	r, err := store.Open(ctx, ref)
	require.NoError(t, err)
	defer r.Close()
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "Applicant Name: Ramesh Kumar", string(data))
}

func TestBlobStore_DistinctRefs(t *testing.T) {
	store, err := NewBlobStore(t.TempDir())
	require.NoError(t, err)

	a, _, err := store.Put(context.Background(), "pan.pdf", strings.NewReader("a"))
	require.NoError(t, err)
	b, _, err := store.Put(context.Background(), "pan.pdf", strings.NewReader("b"))
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestBlobStore_Open_Unknown(t *testing.T) {
	store, err := NewBlobStore(t.TempDir())
	require.NoError(t, err)

	for _, ref := range []string{"missing", "", "../etc/passwd", "."} {
		_, err := store.Open(context.Background(), ref)
		assert.ErrorIs(t, err, domain.ErrNotFound, ref)
	}
}
