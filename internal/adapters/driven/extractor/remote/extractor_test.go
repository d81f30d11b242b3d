package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/loanform/internal/core/domain"
)

func TestNew_RequiresEndpoint(t *testing.T) {
	_, err := New(Config{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestNew_Defaults(t *testing.T) {
	e, err := New(Config{Endpoint: "http://localhost:9000/extract"})
	require.NoError(t, err)

	assert.Equal(t, "remote", e.Name())
	assert.Equal(t, DefaultMIMETypes, e.SupportedMIMETypes())
	assert.Equal(t, DefaultTimeout, e.client.Timeout)
}

func TestExtractor_Extract(t *testing.T) {
	var got extractRequest
	var auth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(extractResponse{Fields: map[string]string{"Applicant Name": "Ramesh Kumar"}})
	}))
	defer server.Close()

	e, err := New(Config{Endpoint: server.URL, APIKey: "secret", RequestsPerSecond: 100})
	require.NoError(t, err)

	fields, err := e.Extract(context.Background(), &domain.RawDocument{
		FileName: "udyam.png",
		MIMEType: "image/png",
		Content:  []byte{0x89, 'P', 'N', 'G'},
	})

	require.NoError(t, err)
	assert.Equal(t, map[string]string{"Applicant Name": "Ramesh Kumar"}, fields)
	assert.Equal(t, "Bearer secret", auth)
	assert.Equal(t, "udyam.png", got.FileName)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, got.Content)
}

func TestExtractor_Extract_NoAPIKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	e, err := New(Config{Endpoint: server.URL})
	require.NoError(t, err)

	fields, err := e.Extract(context.Background(), &domain.RawDocument{FileName: "a.pdf"})

	require.NoError(t, err)
	assert.NotNil(t, fields)
	assert.Empty(t, fields)
}

func TestExtractor_Extract_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		want    string
	}{
		{
			name: "status error",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, "quota exceeded", http.StatusTooManyRequests)
			},
			want: "status 429: quota exceeded",
		},
		{
			name: "service error",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"error": "unreadable scan"}`))
			},
			want: "unreadable scan",
		},
		{
			name: "bad json",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`not json`))
			},
			want: "decode response",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			e, err := New(Config{Endpoint: server.URL, RequestsPerSecond: 100})
			require.NoError(t, err)

			_, err = e.Extract(context.Background(), &domain.RawDocument{FileName: "a.pdf"})

			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrExtractionFailure)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestExtractor_Extract_CancelledContext(t *testing.T) {
	e, err := New(Config{Endpoint: "http://127.0.0.1:1", RequestsPerSecond: 0.001, Timeout: time.Second})
	require.NoError(t, err)

	// Drain the burst so the next call must wait.
	e.limiter.AllowN(time.Now(), DefaultBurst)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = e.Extract(ctx, &domain.RawDocument{FileName: "a.pdf"})

	assert.ErrorIs(t, err, domain.ErrExtractionFailure)
}

func TestExtractor_Extract_Nil(t *testing.T) {
	e, err := New(Config{Endpoint: "http://localhost"})
	require.NoError(t, err)

	_, err = e.Extract(context.Background(), nil)

	assert.ErrorIs(t, err, domain.ErrExtractionFailure)
}
