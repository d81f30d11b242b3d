package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown document type or storage backend.
	ErrUnsupportedType = errors.New("unsupported type")

	// Persistence Errors.

	// ErrStorageUnavailable indicates a connection or authentication failure
	// at the persistence layer. It is fatal to the current operation and is
	// never retried by the core.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrStaleApplicationID indicates an update targeted an application ID
	// the store reports as absent. Callers may decide to fall back to insert.
	ErrStaleApplicationID = errors.New("stale application id")

	// Auto-fill Errors.

	// ErrExtractionFailure indicates the extractor could not parse a document.
	// Auto-fill is skipped for that document; manual entry is unaffected.
	ErrExtractionFailure = errors.New("extraction failure")

	// ErrUnmappedField indicates an extracted field name has no form-key mapping.
	// It is counted and logged, never fatal.
	ErrUnmappedField = errors.New("unmapped extracted field")

	// Submission Errors.

	// ErrIncomplete indicates a submission failed completeness validation.
	ErrIncomplete = errors.New("application incomplete")

	// ErrSessionSubmitted indicates an edit was attempted on a submitted session.
	ErrSessionSubmitted = errors.New("session already submitted")
)
