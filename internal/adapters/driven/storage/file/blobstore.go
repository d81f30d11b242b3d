package file

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/custodia-labs/loanform/internal/core/domain"
	"github.com/custodia-labs/loanform/internal/core/ports/driven"
)

// Ensure BlobStore implements the interface.
var _ driven.BlobStore = (*BlobStore)(nil)

// BlobStore keeps uploaded files in a directory. References are the
// generated file names; the original extension is kept for inspection.
type BlobStore struct {
	dir string
}

// NewBlobStore creates a blob store rooted at dir, creating it if needed.
func NewBlobStore(dir string) (*BlobStore, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("%w: creating blob directory: %w", domain.ErrStorageUnavailable, err)
	}
	return &BlobStore{dir: dir}, nil
}

// Put copies r into a new file and returns its reference and size.
func (s *BlobStore) Put(_ context.Context, name string, r io.Reader) (string, int64, error) {
	ref := uuid.New().String() + strings.ToLower(filepath.Ext(name))

	f, err := os.OpenFile(filepath.Join(s.dir, ref), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
	if err != nil {
		return "", 0, fmt.Errorf("%w: creating blob: %w", domain.ErrStorageUnavailable, err)
	}

	size, err := io.Copy(f, r)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(filepath.Join(s.dir, ref))
		return "", 0, fmt.Errorf("%w: writing blob: %w", domain.ErrStorageUnavailable, err)
	}
	return ref, size, nil
}

// Open returns a reader for a stored blob.
func (s *BlobStore) Open(_ context.Context, ref string) (io.ReadCloser, error) {
	if ref == "" || ref != filepath.Base(ref) || strings.HasPrefix(ref, ".") {
		return nil, domain.ErrNotFound
	}
	f, err := os.Open(filepath.Join(s.dir, ref))
	if errors.Is(err, os.ErrNotExist) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: opening blob: %w", domain.ErrStorageUnavailable, err)
	}
	return f, nil
}
