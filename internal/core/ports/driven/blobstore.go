package driven

import (
	"context"
	"io"
)

// BlobStore keeps the raw bytes of uploaded documents.
type BlobStore interface {
	// Put stores the content and returns an opaque storage reference.
	Put(ctx context.Context, name string, r io.Reader) (ref string, size int64, err error)

	// Open returns a reader for a stored blob.
	// Returns domain.ErrNotFound if the reference is unknown.
	Open(ctx context.Context, ref string) (io.ReadCloser, error)
}
