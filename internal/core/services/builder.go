package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/loanform/internal/core/domain"
	"github.com/custodia-labs/loanform/internal/core/ports/driven"
	"github.com/custodia-labs/loanform/internal/logger"
)

// RecordBuilder persists aggregated records through the application store.
type RecordBuilder struct {
	store driven.ApplicationStore
	now   func() time.Time
}

// NewRecordBuilder creates a record builder.
func NewRecordBuilder(store driven.ApplicationStore) *RecordBuilder {
	return &RecordBuilder{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// BuildAndPersist normalises record and stores it. With an empty
// existingID the record is inserted and the new ID returned; otherwise the
// stored application is replaced as a whole and existingID returned.
//
// An update of an ID the store does not know fails with
// domain.ErrStaleApplicationID. Every other store failure is wrapped in
// domain.ErrStorageUnavailable. Nothing is retried.
func (b *RecordBuilder) BuildAndPersist(
	ctx context.Context,
	record domain.ApplicationRecord,
	existingID string,
	status domain.ApplicationStatus,
) (string, error) {
	if !status.IsValid() {
		return "", fmt.Errorf("%w: application status %q", domain.ErrInvalidInput, status)
	}

	now := b.now()
	app := &domain.Application{
		ID:        existingID,
		Status:    status,
		Record:    Normalize(record),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if status == domain.StatusSubmitted {
		app.SubmittedAt = &now
	}

	if existingID == "" {
		id, err := b.store.Insert(ctx, app)
		if err != nil {
			return "", storageError("insert application", err)
		}
		if id == "" {
			return "", fmt.Errorf("%w: insert application: store returned no id", domain.ErrStorageUnavailable)
		}
		logger.Info("inserted application %s", id)
		return id, nil
	}

	if err := b.store.Update(ctx, existingID, app); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", fmt.Errorf("update application %s: %w", existingID, domain.ErrStaleApplicationID)
		}
		return "", storageError("update application "+existingID, err)
	}
	logger.Debug("updated application %s", existingID)
	return existingID, nil
}

func storageError(op string, err error) error {
	if errors.Is(err, domain.ErrStorageUnavailable) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%w: %s: %w", domain.ErrStorageUnavailable, op, err)
}

// Normalize returns a copy of record in which every schema leaf is
// present, values are trimmed and fields outside the schema are dropped.
func Normalize(record domain.ApplicationRecord) domain.ApplicationRecord {
	out := domain.ApplicationRecord{
		BasicInfo: make(domain.FieldSet, len(domain.BasicInfoFields)),
		Performance: domain.Performance{
			PastPerformance: make(map[string]domain.FieldSet, len(domain.PerformanceLabels)),
		},
		Undertakings: make([]string, domain.UndertakingCount),
		Documents:    make(map[string]domain.DocumentRef, len(record.Documents)),
	}

	for _, field := range domain.BasicInfoFields {
		out.BasicInfo[field] = strings.TrimSpace(record.BasicInfo[field])
	}

	for _, schema := range domain.Groups() {
		in := record.Group(schema.Name)
		rows := make([]domain.FieldSet, len(in))
		for i, row := range in {
			rows[i] = make(domain.FieldSet, len(schema.Fields))
			for _, fs := range schema.Fields {
				rows[i][fs.Name] = strings.TrimSpace(row[fs.Name])
			}
		}
		out.SetGroup(schema.Name, rows)
	}

	for _, label := range domain.PerformanceLabels {
		in := record.Performance.PastPerformance[label]
		row := make(domain.FieldSet, len(domain.PerformanceFields))
		for _, fs := range domain.PerformanceFields {
			row[fs.Name] = strings.TrimSpace(in[fs.Name])
		}
		out.Performance.PastPerformance[label] = row
	}

	for i := range out.Undertakings {
		if i < len(record.Undertakings) {
			out.Undertakings[i] = strings.TrimSpace(record.Undertakings[i])
		}
	}

	for slot, ref := range record.Documents {
		out.Documents[slot] = ref
	}

	return out
}
