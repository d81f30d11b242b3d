// Package bolt provides a bbolt-backed implementation of driven.ApplicationStore.
//
// Applications and document metadata are kept as JSON values in a single
// embedded key-value file, one bucket per collection. It suits deployments
// that want a document store without a SQL engine.
package bolt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.etcd.io/bbolt"

	"github.com/custodia-labs/loanform/internal/core/domain"
	"github.com/custodia-labs/loanform/internal/core/ports/driven"
)

var (
	bucketApplications = []byte("applications")
	bucketDocuments    = []byte("documents")
)

// FileName is the database file created inside the data directory.
const FileName = "loanform.bolt"

// Store is a bbolt-based application store.
type Store struct {
	db   *bbolt.DB
	path string
}

var _ driven.ApplicationStore = (*Store)(nil)

// storedApplication wraps an application with its insertion sequence so listings keep a
// stable order for equal timestamps.
type storedApplication struct {
	Seq         uint64             `json:"seq"`
	Application domain.Application `json:"application"`
}

// storedDocument wraps document metadata with its insertion sequence.
type storedDocument struct {
	Seq      uint64                  `json:"seq"`
	Document domain.DocumentMetadata `json:"document"`
}

// NewStore opens (or creates) the bolt database in dataDir.
// If dataDir is empty, defaults to ~/.loanform/data.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".loanform", "data")
	}
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("%w: creating data directory: %w", domain.ErrStorageUnavailable, err)
	}

	path := filepath.Join(dataDir, FileName)
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("%w: opening bolt database: %w", domain.ErrStorageUnavailable, err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketApplications); err != nil {
			return err
		}
		if _, err := tx.CreateBucketIfNotExists(bucketDocuments); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: creating buckets: %w", domain.ErrStorageUnavailable, err)
	}

	return &Store{db: db, path: path}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

var errMissing = errors.New("missing")

func wrap(op string, err error) error {
	if errors.Is(err, errMissing) {
		return domain.ErrNotFound
	}
	return fmt.Errorf("%w: %s: %w", domain.ErrStorageUnavailable, op, err)
}

// Insert stores a new application under a generated ID.
func (s *Store) Insert(_ context.Context, app *domain.Application) (string, error) {
	id := uuid.New().String()
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketApplications)
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		stored := storedApplication{Seq: seq, Application: *app}
		stored.Application.ID = id
		data, err := json.Marshal(stored)
		if err != nil {
			return err
		}
		return b.Put([]byte(id), data)
	})
	if err != nil {
		return "", wrap("inserting application", err)
	}
	return id, nil
}

// Update replaces an existing application, keeping its creation time.
func (s *Store) Update(_ context.Context, id string, app *domain.Application) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketApplications)
		data := b.Get([]byte(id))
		if data == nil {
			return errMissing
		}
		var existing storedApplication
		if err := json.Unmarshal(data, &existing); err != nil {
			return err
		}

		replacement := *app
		replacement.ID = id
		replacement.CreatedAt = existing.Application.CreatedAt
		if replacement.SubmittedAt == nil {
			replacement.SubmittedAt = existing.Application.SubmittedAt
		}
		updated, err := json.Marshal(storedApplication{Seq: existing.Seq, Application: replacement})
		if err != nil {
			return err
		}
		return b.Put([]byte(id), updated)
	})
	if err != nil {
		return wrap("updating application", err)
	}
	return nil
}

// Get retrieves an application by ID.
func (s *Store) Get(_ context.Context, id string) (*domain.Application, error) {
	var stored storedApplication
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketApplications).Get([]byte(id))
		if data == nil {
			return errMissing
		}
		return json.Unmarshal(data, &stored)
	})
	if err != nil {
		return nil, wrap("getting application", err)
	}
	return &stored.Application, nil
}

// List returns every application, oldest first.
func (s *Store) List(_ context.Context) ([]domain.Application, error) {
	var all []storedApplication
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketApplications).ForEach(func(_, v []byte) error {
			var stored storedApplication
			if err := json.Unmarshal(v, &stored); err != nil {
				return err
			}
			all = append(all, stored)
			return nil
		})
	})
	if err != nil {
		return nil, wrap("listing applications", err)
	}

	sort.Slice(all, func(i, j int) bool {
		a, b := all[i].Application.CreatedAt, all[j].Application.CreatedAt
		if !a.Equal(b) {
			return a.Before(b)
		}
		return all[i].Seq < all[j].Seq
	})

	apps := make([]domain.Application, len(all))
	for i, stored := range all {
		apps[i] = stored.Application
	}
	return apps, nil
}

// SaveDocumentMeta stores document metadata in the application's
// sub-bucket, assigning an ID when empty.
func (s *Store) SaveDocumentMeta(_ context.Context, meta *domain.DocumentMetadata) (string, error) {
	doc := *meta
	if doc.ID == "" {
		doc.ID = uuid.New().String()
	}
	if doc.UploadedAt.IsZero() {
		doc.UploadedAt = time.Now().UTC()
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.Bucket(bucketDocuments).CreateBucketIfNotExists([]byte(doc.ApplicationID))
		if err != nil {
			return err
		}

		stored := storedDocument{Document: doc}
		if existing := b.Get([]byte(doc.ID)); existing != nil {
			var prev storedDocument
			if err := json.Unmarshal(existing, &prev); err != nil {
				return err
			}
			stored.Seq = prev.Seq
			stored.Document.UploadedAt = prev.Document.UploadedAt
		} else {
			seq, err := b.NextSequence()
			if err != nil {
				return err
			}
			stored.Seq = seq
		}

		data, err := json.Marshal(stored)
		if err != nil {
			return err
		}
		return b.Put([]byte(doc.ID), data)
	})
	if err != nil {
		return "", wrap("saving document metadata", err)
	}
	return doc.ID, nil
}

// GetDocuments returns an application's documents, oldest first.
func (s *Store) GetDocuments(_ context.Context, applicationID string) ([]domain.DocumentMetadata, error) {
	var all []storedDocument
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketDocuments).Bucket([]byte(applicationID))
		if b == nil {
			return nil
		}
		return b.ForEach(func(_, v []byte) error {
			var stored storedDocument
			if err := json.Unmarshal(v, &stored); err != nil {
				return err
			}
			all = append(all, stored)
			return nil
		})
	})
	if err != nil {
		return nil, wrap("listing documents", err)
	}

	sort.Slice(all, func(i, j int) bool { return all[i].Seq < all[j].Seq })

	docs := make([]domain.DocumentMetadata, len(all))
	for i, stored := range all {
		docs[i] = stored.Document
	}
	return docs, nil
}
