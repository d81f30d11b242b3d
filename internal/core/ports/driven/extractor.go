package driven

import (
	"context"

	"github.com/custodia-labs/loanform/internal/core/domain"
)

// DocumentExtractor reads field values out of an uploaded document.
// Field names are extractor-defined free text; values are untrusted.
type DocumentExtractor interface {
	// Name identifies the extractor in logs.
	Name() string

	// SupportedMIMETypes returns the MIME types this extractor handles.
	SupportedMIMETypes() []string

	// Extract returns a mapping of field name to extracted value.
	// Failures wrap domain.ErrExtractionFailure.
	Extract(ctx context.Context, raw *domain.RawDocument) (map[string]string, error)
}

// ExtractorRegistry selects the extractor for a document by MIME type.
type ExtractorRegistry interface {
	// Extract dispatches to the registered extractor for raw.MIMEType.
	// Unsupported types fail with domain.ErrExtractionFailure.
	Extract(ctx context.Context, raw *domain.RawDocument) (map[string]string, error)

	// Register adds an extractor. Later registrations win for shared MIME types.
	Register(extractor DocumentExtractor)

	// SupportedMIMETypes returns all MIME types that can be extracted.
	SupportedMIMETypes() []string
}
