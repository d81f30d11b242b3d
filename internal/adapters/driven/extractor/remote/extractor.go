// Package remote provides a document extractor that delegates to an HTTP
// extraction service (typically OCR for scanned certificates).
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/loanform/internal/core/domain"
	"github.com/custodia-labs/loanform/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.DocumentExtractor = (*Extractor)(nil)

// Default configuration values.
const (
	DefaultTimeout           = 60 * time.Second
	DefaultRequestsPerSecond = 1.0
	DefaultBurst             = 2
)

// DefaultMIMETypes are the types sent to the service when none are configured.
var DefaultMIMETypes = []string{"application/pdf", "image/png", "image/jpeg"}

// Config holds configuration for the remote extractor.
type Config struct {
	// Endpoint is the URL documents are POSTed to.
	Endpoint string

	// APIKey is sent as a bearer token when set.
	APIKey string

	// RequestsPerSecond throttles calls to the service.
	RequestsPerSecond float64

	// Timeout is the per-request timeout.
	Timeout time.Duration

	// MIMETypes overrides DefaultMIMETypes.
	MIMETypes []string
}

// Extractor sends uploaded documents to a remote extraction service.
type Extractor struct {
	client    *http.Client
	endpoint  string
	apiKey    string
	limiter   *rate.Limiter
	mimeTypes []string
}

// extractRequest is the service request format.
type extractRequest struct {
	FileName string `json:"file_name"`
	MIMEType string `json:"mime_type"`
	Content  []byte `json:"content"`
}

// extractResponse is the service response format.
type extractResponse struct {
	Fields map[string]string `json:"fields"`
	Error  string            `json:"error,omitempty"`
}

// New creates a remote extractor.
func New(cfg Config) (*Extractor, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("%w: remote extractor requires an endpoint", domain.ErrInvalidInput)
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = DefaultRequestsPerSecond
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if len(cfg.MIMETypes) == 0 {
		cfg.MIMETypes = DefaultMIMETypes
	}

	return &Extractor{
		client:    &http.Client{Timeout: cfg.Timeout},
		endpoint:  cfg.Endpoint,
		apiKey:    cfg.APIKey,
		limiter:   rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), DefaultBurst),
		mimeTypes: append([]string(nil), cfg.MIMETypes...),
	}, nil
}

// Name identifies the extractor in logs.
func (e *Extractor) Name() string {
	return "remote"
}

// SupportedMIMETypes returns the MIME types sent to the service.
func (e *Extractor) SupportedMIMETypes() []string {
	return append([]string(nil), e.mimeTypes...)
}

// Extract posts the document and returns the fields the service found.
func (e *Extractor) Extract(ctx context.Context, raw *domain.RawDocument) (map[string]string, error) {
	if raw == nil {
		return nil, fmt.Errorf("%w: nil document", domain.ErrExtractionFailure)
	}

	if err := e.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: rate limit wait: %w", domain.ErrExtractionFailure, err)
	}

	body, err := json.Marshal(extractRequest{
		FileName: raw.FileName,
		MIMEType: raw.MIMEType,
		Content:  raw.Content,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: marshal request: %w", domain.ErrExtractionFailure, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %w", domain.ErrExtractionFailure, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if e.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+e.apiKey)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: send request: %w", domain.ErrExtractionFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, readErr := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if readErr != nil {
			return nil, fmt.Errorf("%w: service returned status %d", domain.ErrExtractionFailure, resp.StatusCode)
		}
		return nil, fmt.Errorf("%w: service returned status %d: %s",
			domain.ErrExtractionFailure, resp.StatusCode, bytes.TrimSpace(msg))
	}

	var out extractResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: decode response: %w", domain.ErrExtractionFailure, err)
	}
	if out.Error != "" {
		return nil, fmt.Errorf("%w: %s", domain.ErrExtractionFailure, out.Error)
	}
	if out.Fields == nil {
		out.Fields = make(map[string]string)
	}
	return out.Fields, nil
}
