package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/custodia-labs/loanform/internal/core/domain"
	"github.com/custodia-labs/loanform/internal/core/ports/driven"
)

// Ensure SessionStore implements the interface.
var _ driven.SessionStore = (*SessionStore)(nil)

const sessionExt = ".session"

// SessionStore keeps sessions as msgpack files in a directory.
type SessionStore struct {
	mu  sync.RWMutex
	dir string
}

// sessionFile is the on-disk shape. Field keys are stored flat.
type sessionFile struct {
	ID            string                        `msgpack:"id"`
	ApplicationID string                        `msgpack:"application_id"`
	Section       int                           `msgpack:"section"`
	Submitted     bool                          `msgpack:"submitted"`
	CreatedAt     time.Time                     `msgpack:"created_at"`
	UpdatedAt     time.Time                     `msgpack:"updated_at"`
	Fields        []fieldEntry                  `msgpack:"fields"`
	Documents     map[string]domain.DocumentRef `msgpack:"documents"`
}

type fieldEntry struct {
	Key            string    `msgpack:"key"`
	Value          string    `msgpack:"value"`
	Origin         int       `msgpack:"origin"`
	SourceDocument string    `msgpack:"source_document,omitempty"`
	UpdatedAt      time.Time `msgpack:"updated_at"`
}

// NewSessionStore creates a store rooted at dir, creating it if needed.
func NewSessionStore(dir string) (*SessionStore, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("%w: creating session directory: %w", domain.ErrStorageUnavailable, err)
	}
	return &SessionStore{dir: dir}, nil
}

func (s *SessionStore) path(id string) (string, error) {
	if id == "" || strings.ContainsAny(id, `/\`) || strings.HasPrefix(id, ".") {
		return "", fmt.Errorf("%w: invalid session id %q", domain.ErrInvalidInput, id)
	}
	return filepath.Join(s.dir, id+sessionExt), nil
}

// Save writes the session atomically.
func (s *SessionStore) Save(_ context.Context, session *domain.Session) error {
	path, err := s.path(session.ID)
	if err != nil {
		return err
	}
	data, err := msgpack.Marshal(encodeSession(session))
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("%w: writing session: %w", domain.ErrStorageUnavailable, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("%w: writing session: %w", domain.ErrStorageUnavailable, err)
	}
	return nil
}

// Get reads a session by ID.
func (s *SessionStore) Get(_ context.Context, id string) (*domain.Session, error) {
	path, err := s.path(id)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return readSession(path)
}

// List returns all sessions, most recently updated first. Unreadable
// files are skipped.
func (s *SessionStore) List(_ context.Context) ([]domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("%w: listing sessions: %w", domain.ErrStorageUnavailable, err)
	}

	result := make([]domain.Session, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != sessionExt {
			continue
		}
		session, err := readSession(filepath.Join(s.dir, entry.Name()))
		if err != nil {
			continue
		}
		result = append(result, *session)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].UpdatedAt.After(result[j].UpdatedAt)
	})
	return result, nil
}

// Delete removes a session. Deleting an unknown session is not an error.
func (s *SessionStore) Delete(_ context.Context, id string) error {
	path, err := s.path(id)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: deleting session: %w", domain.ErrStorageUnavailable, err)
	}
	return nil
}

func readSession(path string) (*domain.Session, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: reading session: %w", domain.ErrStorageUnavailable, err)
	}

	var sf sessionFile
	if err := msgpack.Unmarshal(data, &sf); err != nil {
		return nil, fmt.Errorf("decoding session %s: %w", filepath.Base(path), err)
	}
	return decodeSession(&sf)
}

func encodeSession(session *domain.Session) *sessionFile {
	sf := &sessionFile{
		ID:            session.ID,
		ApplicationID: session.ApplicationID,
		Section:       session.Section,
		Submitted:     session.Submitted,
		CreatedAt:     session.CreatedAt,
		UpdatedAt:     session.UpdatedAt,
		Documents:     session.Documents,
	}
	if session.Fields != nil {
		for _, v := range session.Fields.Fields() {
			sf.Fields = append(sf.Fields, fieldEntry{
				Key:            v.Key.String(),
				Value:          v.Value,
				Origin:         int(v.Origin),
				SourceDocument: v.SourceDocument,
				UpdatedAt:      v.UpdatedAt,
			})
		}
	}
	return sf
}

func decodeSession(sf *sessionFile) (*domain.Session, error) {
	session := domain.NewSession(sf.ID, sf.CreatedAt)
	session.ApplicationID = sf.ApplicationID
	session.Section = sf.Section
	session.Submitted = sf.Submitted
	session.UpdatedAt = sf.UpdatedAt
	for slot, ref := range sf.Documents {
		session.Documents[slot] = ref
	}

	fields := make([]domain.FieldValue, 0, len(sf.Fields))
	for _, entry := range sf.Fields {
		key, err := domain.ParseFieldKey(entry.Key)
		if err != nil {
			return nil, fmt.Errorf("session %s: %w", sf.ID, err)
		}
		fields = append(fields, domain.FieldValue{
			Key:            key,
			Value:          entry.Value,
			Origin:         domain.Origin(entry.Origin),
			SourceDocument: entry.SourceDocument,
			UpdatedAt:      entry.UpdatedAt,
		})
	}
	session.Fields.Restore(fields)
	return session, nil
}
