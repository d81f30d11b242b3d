package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/loanform/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/loanform/internal/core/domain"
	"github.com/custodia-labs/loanform/internal/core/ports/driven"
)

// Store is a SQLite-based storage for applications and document metadata.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.loanform/data/loanform.db.
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

	dbPath := filepath.Join(dataDir, "loanform.db")

	// WAL lets the MCP HTTP server read while a session writes.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("%w: opening database: %w", domain.ErrStorageUnavailable, err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: enabling foreign keys: %w", domain.ErrStorageUnavailable, err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: running migrations: %w", domain.ErrStorageUnavailable, err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// ApplicationStore returns an ApplicationStore interface backed by this store.
func (s *Store) ApplicationStore() driven.ApplicationStore {
	return &applicationStore{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_initial.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", domain.ErrStorageUnavailable, op, err)
}

// ==================== Application Store ====================

// applicationStore implements driven.ApplicationStore.
type applicationStore struct {
	store *Store
}

var _ driven.ApplicationStore = (*applicationStore)(nil)

// Insert stores a new application under a generated ID.
func (s *applicationStore) Insert(ctx context.Context, app *domain.Application) (string, error) {
	recordJSON, err := json.Marshal(app.Record)
	if err != nil {
		return "", fmt.Errorf("marshalling record: %w", err)
	}

	id := uuid.New().String()
	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO applications (id, status, record, created_at, updated_at, submitted_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, id, string(app.Status), string(recordJSON), app.CreatedAt, app.UpdatedAt, nullTime(app.SubmittedAt))
	if err != nil {
		return "", unavailable("inserting application", err)
	}
	return id, nil
}

// Update replaces the record of an existing application. The creation
// time is kept.
func (s *applicationStore) Update(ctx context.Context, id string, app *domain.Application) error {
	recordJSON, err := json.Marshal(app.Record)
	if err != nil {
		return fmt.Errorf("marshalling record: %w", err)
	}

	result, err := s.store.db.ExecContext(ctx, `
		UPDATE applications
		SET status = ?, record = ?, updated_at = ?, submitted_at = COALESCE(?, submitted_at)
		WHERE id = ?
	`, string(app.Status), string(recordJSON), app.UpdatedAt, nullTime(app.SubmittedAt), id)
	if err != nil {
		return unavailable("updating application", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return unavailable("updating application", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Get retrieves an application by ID.
func (s *applicationStore) Get(ctx context.Context, id string) (*domain.Application, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, status, record, created_at, updated_at, submitted_at
		FROM applications WHERE id = ?
	`, id)

	app, err := scanApplication(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return app, nil
}

// List returns every application, oldest first.
func (s *applicationStore) List(ctx context.Context) ([]domain.Application, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, status, record, created_at, updated_at, submitted_at
		FROM applications ORDER BY created_at, rowid
	`)
	if err != nil {
		return nil, unavailable("listing applications", err)
	}
	defer rows.Close()

	var apps []domain.Application
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		apps = append(apps, *app)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("listing applications", err)
	}
	return apps, nil
}

// SaveDocumentMeta stores document metadata, assigning an ID when empty.
func (s *applicationStore) SaveDocumentMeta(ctx context.Context, meta *domain.DocumentMetadata) (string, error) {
	id := meta.ID
	if id == "" {
		id = uuid.New().String()
	}
	uploadedAt := meta.UploadedAt
	if uploadedAt.IsZero() {
		uploadedAt = time.Now().UTC()
	}

	fieldsJSON, err := json.Marshal(meta.ExtractedFields)
	if err != nil {
		return "", fmt.Errorf("marshalling extracted fields: %w", err)
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO documents (id, application_id, slot, file_name, mime_type, size,
			storage_ref, extracted_fields, extraction_error, uploaded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			slot = excluded.slot,
			file_name = excluded.file_name,
			mime_type = excluded.mime_type,
			size = excluded.size,
			storage_ref = excluded.storage_ref,
			extracted_fields = excluded.extracted_fields,
			extraction_error = excluded.extraction_error
	`, id, meta.ApplicationID, meta.Slot, meta.FileName, meta.MIMEType, meta.Size,
		meta.StorageRef, string(fieldsJSON), meta.ExtractionError, uploadedAt)
	if err != nil {
		return "", unavailable("saving document metadata", err)
	}
	return id, nil
}

// GetDocuments returns the documents of an application, oldest first.
func (s *applicationStore) GetDocuments(ctx context.Context, applicationID string) ([]domain.DocumentMetadata, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, application_id, slot, file_name, mime_type, size,
			storage_ref, extracted_fields, extraction_error, uploaded_at
		FROM documents WHERE application_id = ?
		ORDER BY uploaded_at, rowid
	`, applicationID)
	if err != nil {
		return nil, unavailable("listing documents", err)
	}
	defer rows.Close()

	docs := []domain.DocumentMetadata{}
	for rows.Next() {
		var doc domain.DocumentMetadata
		var fieldsJSON string
		if err := rows.Scan(&doc.ID, &doc.ApplicationID, &doc.Slot, &doc.FileName, &doc.MIMEType,
			&doc.Size, &doc.StorageRef, &fieldsJSON, &doc.ExtractionError, &doc.UploadedAt); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		if fieldsJSON != "" && fieldsJSON != "null" {
			if err := json.Unmarshal([]byte(fieldsJSON), &doc.ExtractedFields); err != nil {
				return nil, fmt.Errorf("unmarshaling extracted fields: %w", err)
			}
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("listing documents", err)
	}
	return docs, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanApplication(row scanner) (*domain.Application, error) {
	var app domain.Application
	var status, recordJSON string
	var submittedAt sql.NullTime

	if err := row.Scan(&app.ID, &status, &recordJSON, &app.CreatedAt, &app.UpdatedAt, &submittedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, unavailable("scanning application", err)
	}

	app.Status = domain.ApplicationStatus(status)
	if submittedAt.Valid {
		t := submittedAt.Time
		app.SubmittedAt = &t
	}
	if err := json.Unmarshal([]byte(recordJSON), &app.Record); err != nil {
		return nil, fmt.Errorf("unmarshaling record: %w", err)
	}
	return &app, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
