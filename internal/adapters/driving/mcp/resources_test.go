package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/loanform/internal/core/domain"
)

func makeReadResourceRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{
			URI: uri,
		},
	}
}

func TestExtractApplicationID(t *testing.T) {
	tests := []struct {
		uri      string
		expected string
	}{
		{"loanform://applications/app-1", "app-1"},
		{"loanform://applications/app-1/documents", ""},
		{"loanform://applications/", ""},
		{"loanform://sources/app-1", ""},
	}

	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			assert.Equal(t, tt.expected, extractApplicationID(tt.uri))
		})
	}
}

func TestExtractDocumentsApplicationID(t *testing.T) {
	tests := []struct {
		uri      string
		expected string
	}{
		{"loanform://applications/app-1/documents", "app-1"},
		{"loanform://applications/app-1", ""},
		{"loanform://applications/a/b/documents", ""},
		{"loanform://applications//documents", ""},
	}

	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			assert.Equal(t, tt.expected, extractDocumentsApplicationID(tt.uri))
		})
	}
}

// savedApplication stores an application with one uploaded document.
func savedApplication(t *testing.T) (*Server, string) {
	t.Helper()
	ctx := context.Background()
	server, svc := newTestServer(t)

	session, err := svc.StartSession(ctx)
	require.NoError(t, err)
	_, err = svc.SetField(ctx, session.ID, "enterprise_name", "Acme Traders")
	require.NoError(t, err)
	_, err = svc.UploadDocument(ctx, session.ID, "pan_card", &domain.RawDocument{
		FileName: "pan.txt",
		MIMEType: "text/plain",
		Content:  []byte("PAN: ABCDE1234F"),
	})
	require.NoError(t, err)
	appID, err := svc.Save(ctx, session.ID)
	require.NoError(t, err)
	return server, appID
}

func TestServer_handleApplicationsResource(t *testing.T) {
	ctx := context.Background()

	t.Run("lists applications", func(t *testing.T) {
		server, appID := savedApplication(t)

		result, err := server.handleApplicationsResource(ctx, makeReadResourceRequest("loanform://applications"))

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "application/json", result.Contents[0].MIMEType)
		assert.Contains(t, result.Contents[0].Text, appID)
		assert.Contains(t, result.Contents[0].Text, "Acme Traders")
		assert.Contains(t, result.Contents[0].Text, `"status": "draft"`)
	})

	t.Run("empty store", func(t *testing.T) {
		server, _ := newTestServer(t)

		result, err := server.handleApplicationsResource(ctx, makeReadResourceRequest("loanform://applications"))

		require.NoError(t, err)
		assert.Equal(t, "[]", result.Contents[0].Text)
	})

	t.Run("returns error on list failure", func(t *testing.T) {
		server, err := NewServer(&Ports{Application: &failingApplicationService{err: errors.New("database error")}})
		require.NoError(t, err)

		_, err = server.handleApplicationsResource(ctx, makeReadResourceRequest("loanform://applications"))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "listing applications")
	})
}

func TestServer_handleApplicationResource(t *testing.T) {
	ctx := context.Background()
	server, appID := savedApplication(t)

	t.Run("returns record", func(t *testing.T) {
		result, err := server.handleApplicationResource(ctx, makeReadResourceRequest("loanform://applications/"+appID))

		require.NoError(t, err)
		assert.Contains(t, result.Contents[0].Text, `"enterprise_name": "Acme Traders"`)
		assert.Contains(t, result.Contents[0].Text, `"pan_card"`)
	})

	t.Run("unknown id is not found", func(t *testing.T) {
		_, err := server.handleApplicationResource(ctx, makeReadResourceRequest("loanform://applications/missing"))
		assert.Error(t, err)
	})

	t.Run("malformed uri is not found", func(t *testing.T) {
		_, err := server.handleApplicationResource(ctx, makeReadResourceRequest("loanform://other"))
		assert.Error(t, err)
	})

	t.Run("storage failure is reported", func(t *testing.T) {
		failing, err := NewServer(&Ports{Application: &failingApplicationService{err: domain.ErrStorageUnavailable}})
		require.NoError(t, err)

		_, err = failing.handleApplicationResource(ctx, makeReadResourceRequest("loanform://applications/app-1"))

		assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
	})
}

func TestServer_handleDocumentsResource(t *testing.T) {
	ctx := context.Background()
	server, appID := savedApplication(t)

	result, err := server.handleDocumentsResource(ctx,
		makeReadResourceRequest("loanform://applications/"+appID+"/documents"))

	require.NoError(t, err)
	assert.Contains(t, result.Contents[0].Text, `"slot": "pan_card"`)
	assert.Contains(t, result.Contents[0].Text, `"file_name": "pan.txt"`)

	_, err = server.handleDocumentsResource(ctx, makeReadResourceRequest("loanform://applications/"+appID))
	assert.Error(t, err)
}
