package keyvalue

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/loanform/internal/core/domain"
	"github.com/custodia-labs/loanform/internal/core/ports/driven"
)

// Ensure TextExtractor implements the interface.
var _ driven.DocumentExtractor = (*TextExtractor)(nil)

// TextExtractor handles text-based uploads.
type TextExtractor struct{}

// NewTextExtractor creates a new text extractor.
func NewTextExtractor() *TextExtractor {
	return &TextExtractor{}
}

// Name identifies the extractor in logs.
func (e *TextExtractor) Name() string {
	return "text"
}

// SupportedMIMETypes returns the MIME types this extractor handles.
func (e *TextExtractor) SupportedMIMETypes() []string {
	return []string{"text/plain", "text/csv", "application/json"}
}

// Extract reads labelled values according to the document's MIME type.
func (e *TextExtractor) Extract(_ context.Context, raw *domain.RawDocument) (map[string]string, error) {
	if raw == nil {
		return nil, fmt.Errorf("%w: nil document", domain.ErrExtractionFailure)
	}
	if !utf8.Valid(raw.Content) {
		return nil, fmt.Errorf("%w: %s is not valid UTF-8 text", domain.ErrExtractionFailure, raw.FileName)
	}

	switch raw.MIMEType {
	case "text/csv":
		return parseCSV(raw.Content)
	case "application/json":
		return parseJSON(raw.Content)
	default:
		return ParseLines(string(raw.Content)), nil
	}
}

// parseCSV reads rows whose first column is the label and second the value.
// Rows with fewer than two columns are ignored.
func parseCSV(content []byte) (map[string]string, error) {
	r := csv.NewReader(bytes.NewReader(content))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: parse csv: %w", domain.ErrExtractionFailure, err)
	}

	fields := make(map[string]string)
	for _, row := range rows {
		if len(row) < 2 {
			continue
		}
		label := strings.Join(strings.Fields(row[0]), " ")
		value := strings.TrimSpace(row[1])
		if label == "" || value == "" {
			continue
		}
		put(fields, label, value)
	}
	return fields, nil
}

// parseJSON reads a flat object. String, number and boolean members are
// kept; nested values are ignored.
func parseJSON(content []byte) (map[string]string, error) {
	var obj map[string]any
	if err := json.Unmarshal(content, &obj); err != nil {
		return nil, fmt.Errorf("%w: parse json: %w", domain.ErrExtractionFailure, err)
	}

	fields := make(map[string]string, len(obj))
	for label, v := range obj {
		var value string
		switch v := v.(type) {
		case string:
			value = strings.TrimSpace(v)
		case float64:
			value = strconv.FormatFloat(v, 'f', -1, 64)
		case bool:
			value = strconv.FormatBool(v)
		default:
			continue
		}
		if value != "" {
			fields[label] = value
		}
	}
	return fields, nil
}
