package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/loanform/internal/core/domain"
	"github.com/custodia-labs/loanform/internal/core/ports/driven"
	"github.com/custodia-labs/loanform/internal/core/ports/driving"
	"github.com/custodia-labs/loanform/internal/logger"
)

// Ensure ApplicationService implements the interface.
var _ driving.ApplicationService = (*ApplicationService)(nil)

// ApplicationOptions controls when the service persists records.
type ApplicationOptions struct {
	// Autosave persists the application after every edit and upload.
	Autosave bool

	// InsertOnStale re-inserts the record when its stored ID has vanished.
	InsertOnStale bool
}

// ApplicationService drives loan-application sessions. Each session owns
// its field store; the service loads it, applies one operation and saves
// it back.
type ApplicationService struct {
	sessions   driven.SessionStore
	apps       driven.ApplicationStore
	blobs      driven.BlobStore
	extractor  driven.ExtractorRegistry
	reconciler *Reconciler
	aggregator *Aggregator
	builder    *RecordBuilder
	validator  *Validator
	opts       ApplicationOptions
	now        func() time.Time
}

// NewApplicationService creates a new application service.
func NewApplicationService(
	sessions driven.SessionStore,
	apps driven.ApplicationStore,
	blobs driven.BlobStore,
	extractor driven.ExtractorRegistry,
	reconciler *Reconciler,
	opts ApplicationOptions,
) *ApplicationService {
	if reconciler == nil {
		reconciler = NewReconciler(nil)
	}
	return &ApplicationService{
		sessions:   sessions,
		apps:       apps,
		blobs:      blobs,
		extractor:  extractor,
		reconciler: reconciler,
		aggregator: NewAggregator(),
		builder:    NewRecordBuilder(apps),
		validator:  NewValidator(),
		opts:       opts,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// StartSession begins a new, empty application session.
func (s *ApplicationService) StartSession(ctx context.Context) (*domain.Session, error) {
	session := domain.NewSession(uuid.New().String(), s.now())
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	logger.Debug("started session %s", session.ID)
	return session, nil
}

// ResumeSession opens a new session pre-filled from a stored application.
// Restored values count as user-entered, so uploads never overwrite them.
func (s *ApplicationService) ResumeSession(ctx context.Context, applicationID string) (*domain.Session, error) {
	if strings.TrimSpace(applicationID) == "" {
		return nil, fmt.Errorf("%w: application id is required", domain.ErrInvalidInput)
	}

	app, err := s.apps.Get(ctx, applicationID)
	if err != nil {
		return nil, fmt.Errorf("get application %s: %w", applicationID, err)
	}

	session := domain.NewSession(uuid.New().String(), s.now())
	session.ApplicationID = app.ID
	session.Fields = s.aggregator.Populate(&app.Record)
	for slot, ref := range app.Record.Documents {
		session.Documents[slot] = ref
	}
	if app.Status == domain.StatusSubmitted {
		session.Submitted = true
		session.Section = len(domain.Sections) - 1
	}

	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	logger.Debug("resumed application %s in session %s", app.ID, session.ID)
	return session, nil
}

// GetSession retrieves a session by ID.
func (s *ApplicationService) GetSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	return s.session(ctx, sessionID)
}

// ListSessions returns all sessions.
func (s *ApplicationService) ListSessions(ctx context.Context) ([]domain.Session, error) {
	return s.sessions.List(ctx)
}

// GetField returns a field by flat key.
func (s *ApplicationService) GetField(ctx context.Context, sessionID, key string) (domain.FieldValue, error) {
	fieldKey, err := domain.ParseFieldKey(key)
	if err != nil {
		return domain.FieldValue{}, err
	}
	session, err := s.session(ctx, sessionID)
	if err != nil {
		return domain.FieldValue{}, err
	}
	return session.Fields.Get(fieldKey), nil
}

// SetField records a user edit. The edit is kept in the session even if
// the autosave that follows it fails.
func (s *ApplicationService) SetField(ctx context.Context, sessionID, key, value string) (*driving.FieldUpdate, error) {
	return s.editField(ctx, sessionID, key, func(store *domain.FieldStore, k domain.FieldKey) domain.FieldValue {
		return store.SetUser(k, value)
	})
}

// ClearField blanks a field as a user action, blocking later auto-fill.
func (s *ApplicationService) ClearField(ctx context.Context, sessionID, key string) (*driving.FieldUpdate, error) {
	return s.editField(ctx, sessionID, key, func(store *domain.FieldStore, k domain.FieldKey) domain.FieldValue {
		return store.Clear(k)
	})
}

func (s *ApplicationService) editField(
	ctx context.Context,
	sessionID, key string,
	edit func(*domain.FieldStore, domain.FieldKey) domain.FieldValue,
) (*driving.FieldUpdate, error) {
	fieldKey, err := domain.ParseFieldKey(key)
	if err != nil {
		return nil, err
	}
	session, err := s.editableSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	field := edit(session.Fields, fieldKey)
	if err := s.commit(ctx, session, s.opts.Autosave); err != nil {
		return nil, err
	}

	return &driving.FieldUpdate{
		Field:         field,
		ApplicationID: session.ApplicationID,
		Saved:         s.opts.Autosave,
	}, nil
}

// UploadDocument stores a document in a slot and auto-fills from it.
// The application is saved first if it has no ID yet, so the document
// metadata can reference it. Extraction failures are recorded on the
// document and skip auto-fill; they do not fail the upload.
func (s *ApplicationService) UploadDocument(
	ctx context.Context,
	sessionID, slot string,
	raw *domain.RawDocument,
) (*domain.UploadResult, error) {
	slot = strings.TrimSpace(slot)
	if _, _, err := domain.ParseDocumentSlot(slot); err != nil {
		return nil, err
	}
	if raw == nil || len(raw.Content) == 0 {
		return nil, fmt.Errorf("%w: empty document", domain.ErrInvalidInput)
	}
	if raw.MIMEType == "" {
		raw.MIMEType = domain.DetectMIMEType(raw.FileName)
	}

	session, err := s.editableSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if session.ApplicationID == "" {
		if err := s.commit(ctx, session, true); err != nil {
			return nil, err
		}
	}

	ref, size, err := s.blobs.Put(ctx, raw.FileName, bytes.NewReader(raw.Content))
	if err != nil {
		return nil, storageError("store document "+raw.FileName, err)
	}

	meta := &domain.DocumentMetadata{
		ApplicationID: session.ApplicationID,
		Slot:          slot,
		FileName:      raw.FileName,
		MIMEType:      raw.MIMEType,
		Size:          size,
		StorageRef:    ref,
		UploadedAt:    s.now(),
	}

	extracted, extractErr := s.extract(ctx, raw)
	if extractErr != nil {
		logger.Warn("auto-fill skipped for %s: %v", raw.FileName, extractErr)
		meta.ExtractionError = extractErr.Error()
	}
	meta.ExtractedFields = extracted

	id, err := s.apps.SaveDocumentMeta(ctx, meta)
	if err != nil {
		return nil, storageError("save document metadata", err)
	}
	meta.ID = id
	session.Documents[slot] = meta.Ref()

	result := &domain.UploadResult{
		Document:      *meta,
		ApplicationID: session.ApplicationID,
		Applied:       domain.AppliedFields{Written: []string{}, Skipped: []string{}, Unmapped: []string{}},
	}
	if extractErr == nil {
		result.Applied = s.reconciler.ApplyExtraction(session.Fields, extracted, domain.DocumentSource{ID: id, Slot: slot})
	}

	if err := s.commit(ctx, session, s.opts.Autosave); err != nil {
		return nil, err
	}
	result.ApplicationID = session.ApplicationID
	return result, nil
}

func (s *ApplicationService) extract(ctx context.Context, raw *domain.RawDocument) (map[string]string, error) {
	if s.extractor == nil {
		return nil, fmt.Errorf("%w: no extractor configured", domain.ErrExtractionFailure)
	}
	fields, err := s.extractor.Extract(ctx, raw)
	if err != nil {
		if !errors.Is(err, domain.ErrExtractionFailure) {
			err = fmt.Errorf("%w: %w", domain.ErrExtractionFailure, err)
		}
		return nil, err
	}
	return fields, nil
}

// ApplyExtraction merges externally extracted fields into the session.
func (s *ApplicationService) ApplyExtraction(
	ctx context.Context,
	sessionID string,
	extracted map[string]string,
	source domain.DocumentSource,
) (*domain.AppliedFields, error) {
	if source.Slot != "" {
		if _, _, err := domain.ParseDocumentSlot(source.Slot); err != nil {
			return nil, err
		}
	}
	session, err := s.editableSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	applied := s.reconciler.ApplyExtraction(session.Fields, extracted, source)
	if err := s.commit(ctx, session, s.opts.Autosave && len(applied.Written) > 0); err != nil {
		return nil, err
	}
	return &applied, nil
}

// Save aggregates the session and upserts the application record.
func (s *ApplicationService) Save(ctx context.Context, sessionID string) (string, error) {
	session, err := s.editableSession(ctx, sessionID)
	if err != nil {
		return "", err
	}
	if err := s.commit(ctx, session, true); err != nil {
		return "", err
	}
	return session.ApplicationID, nil
}

// Next saves and moves to the following section. The move happens only
// if the save succeeds.
func (s *ApplicationService) Next(ctx context.Context, sessionID string) (*domain.Session, error) {
	return s.move(ctx, sessionID, 1)
}

// Previous saves and moves to the preceding section.
func (s *ApplicationService) Previous(ctx context.Context, sessionID string) (*domain.Session, error) {
	return s.move(ctx, sessionID, -1)
}

func (s *ApplicationService) move(ctx context.Context, sessionID string, delta int) (*domain.Session, error) {
	session, err := s.session(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	target := session.Section + delta
	if target < 0 || target >= len(domain.Sections) {
		return nil, fmt.Errorf("%w: no section beyond %q", domain.ErrInvalidInput, session.SectionName())
	}

	if !session.Submitted {
		if err := s.persist(ctx, session); err != nil {
			return nil, err
		}
	}
	session.Section = target
	if err := s.commit(ctx, session, false); err != nil {
		return nil, err
	}
	logger.Debug("session %s moved to %q", session.ID, session.SectionName())
	return session, nil
}

// Submit validates, saves and marks the application submitted.
// When validation finds issues and force is false, the returned result
// lists them together with an error wrapping domain.ErrIncomplete.
func (s *ApplicationService) Submit(ctx context.Context, sessionID string, force bool) (*driving.SubmitResult, error) {
	session, err := s.editableSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	record := s.aggregator.Aggregate(session.Fields, session.Documents)
	issues := s.validator.Validate(&record)
	result := &driving.SubmitResult{ApplicationID: session.ApplicationID, Issues: issues}
	if len(issues) > 0 && !force {
		return result, fmt.Errorf("%w: %d issue(s)", domain.ErrIncomplete, len(issues))
	}

	session.Submitted = true
	if err := s.persist(ctx, session); err != nil {
		return nil, err
	}
	session.Section = len(domain.Sections) - 1
	if err := s.commit(ctx, session, false); err != nil {
		return nil, err
	}

	result.ApplicationID = session.ApplicationID
	logger.Info("submitted application %s", session.ApplicationID)
	return result, nil
}

// Review returns the aggregated record without persisting it.
func (s *ApplicationService) Review(ctx context.Context, sessionID string) (*domain.ApplicationRecord, error) {
	session, err := s.session(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	for _, orphan := range s.aggregator.Orphans(session.Fields) {
		logger.Debug("retained out-of-range value %s", orphan.Key)
	}
	record := s.aggregator.Aggregate(session.Fields, session.Documents)
	return &record, nil
}

// Validate returns the completeness issues of the current record.
func (s *ApplicationService) Validate(ctx context.Context, sessionID string) ([]domain.Issue, error) {
	record, err := s.Review(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.validator.Validate(record), nil
}

// Get retrieves a stored application.
func (s *ApplicationService) Get(ctx context.Context, applicationID string) (*domain.Application, error) {
	return s.apps.Get(ctx, applicationID)
}

// List returns every stored application.
func (s *ApplicationService) List(ctx context.Context) ([]domain.Application, error) {
	return s.apps.List(ctx)
}

// Documents returns the documents attached to a stored application.
func (s *ApplicationService) Documents(ctx context.Context, applicationID string) ([]domain.DocumentMetadata, error) {
	return s.apps.GetDocuments(ctx, applicationID)
}

func (s *ApplicationService) session(ctx context.Context, sessionID string) (*domain.Session, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, fmt.Errorf("%w: session id is required", domain.ErrInvalidInput)
	}
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session %s: %w", sessionID, err)
	}
	return session, nil
}

func (s *ApplicationService) editableSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	session, err := s.session(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Submitted {
		return nil, fmt.Errorf("session %s: %w", sessionID, domain.ErrSessionSubmitted)
	}
	return session, nil
}

// commit optionally persists the application, then saves the session.
// The session is saved even when persisting fails.
func (s *ApplicationService) commit(ctx context.Context, session *domain.Session, persist bool) error {
	var persistErr error
	if persist {
		persistErr = s.persist(ctx, session)
	}

	session.UpdatedAt = s.now()
	if err := s.sessions.Save(ctx, session); err != nil {
		if persistErr != nil {
			return persistErr
		}
		return fmt.Errorf("save session: %w", err)
	}
	return persistErr
}

// persist aggregates the session and stores the record, remembering the
// assigned ID on the session.
func (s *ApplicationService) persist(ctx context.Context, session *domain.Session) error {
	status := domain.StatusDraft
	if session.Submitted {
		status = domain.StatusSubmitted
	}
	record := s.aggregator.Aggregate(session.Fields, session.Documents)

	id, err := s.builder.BuildAndPersist(ctx, record, session.ApplicationID, status)
	if errors.Is(err, domain.ErrStaleApplicationID) && s.opts.InsertOnStale {
		logger.Warn("application %s no longer exists, inserting a new record", session.ApplicationID)
		id, err = s.builder.BuildAndPersist(ctx, record, "", status)
	}
	if err != nil {
		logger.Error("save application: %v", err)
		return err
	}

	session.ApplicationID = id
	return nil
}
