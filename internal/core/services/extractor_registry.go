package services

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/loanform/internal/core/domain"
	"github.com/custodia-labs/loanform/internal/core/ports/driven"
	"github.com/custodia-labs/loanform/internal/logger"
)

// Ensure ExtractorRegistry implements the interface.
var _ driven.ExtractorRegistry = (*ExtractorRegistry)(nil)

// ExtractorRegistry dispatches documents to extractors by MIME type.
type ExtractorRegistry struct {
	mu     sync.RWMutex
	byMIME map[string]driven.DocumentExtractor
}

// NewExtractorRegistry creates a registry holding the given extractors.
func NewExtractorRegistry(extractors ...driven.DocumentExtractor) *ExtractorRegistry {
	r := &ExtractorRegistry{byMIME: make(map[string]driven.DocumentExtractor)}
	for _, e := range extractors {
		r.Register(e)
	}
	return r
}

// Register adds an extractor. Later registrations win for shared MIME types.
func (r *ExtractorRegistry) Register(extractor driven.DocumentExtractor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, mime := range extractor.SupportedMIMETypes() {
		r.byMIME[mime] = extractor
	}
}

// Extract runs the extractor registered for raw.MIMEType.
func (r *ExtractorRegistry) Extract(ctx context.Context, raw *domain.RawDocument) (map[string]string, error) {
	if raw == nil {
		return nil, fmt.Errorf("%w: nil document", domain.ErrExtractionFailure)
	}

	r.mu.RLock()
	extractor, ok := r.byMIME[raw.MIMEType]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: no extractor for %s (%s)", domain.ErrExtractionFailure, raw.FileName, raw.MIMEType)
	}

	logger.Debug("extracting %s with %s", raw.FileName, extractor.Name())
	fields, err := extractor.Extract(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", raw.FileName, err)
	}
	return fields, nil
}

// SupportedMIMETypes returns all MIME types that can be extracted, sorted.
func (r *ExtractorRegistry) SupportedMIMETypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]string, 0, len(r.byMIME))
	for mime := range r.byMIME {
		types = append(types, mime)
	}
	sort.Strings(types)
	return types
}
