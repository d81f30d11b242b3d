package cli

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/loanform/internal/core/domain"
)

func TestReviewCmd_RendersSections(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	ctx := context.Background()
	id := startSession(t)
	_, err := applicationService.SetField(ctx, id, "enterprise_name", "Acme Traders")
	require.NoError(t, err)
	_, err = applicationService.ApplyExtraction(ctx, id, map[string]string{"PAN": "ABCDE1234F"}, domain.DocumentSource{ID: "doc-1"})
	require.NoError(t, err)

	out, err := runCommand("review", "--session", id)

	require.NoError(t, err)
	assert.Contains(t, out, "Loan Application Review")
	assert.Contains(t, out, "Basic Information")
	assert.Contains(t, out, "Acme Traders")
	assert.Contains(t, out, "[entered]")
	assert.Contains(t, out, "[from document]")
	assert.Contains(t, out, "Director 1")
	assert.Contains(t, out, "Supplier 3")
	assert.Contains(t, out, "Present Year")
	assert.Contains(t, out, "undertaking 8")
	assert.Contains(t, out, "issue(s) found")
}

func TestReviewCmd_DoesNotSave(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	id := startSession(t)

	_, err := runCommand("review", "--session", id)
	require.NoError(t, err)

	apps, err := applicationService.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, apps)
}

func TestReviewCmd_JSON(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	ctx := context.Background()
	id := startSession(t)
	_, err := applicationService.SetField(ctx, id, "num_directors", "2")
	require.NoError(t, err)
	_, err = applicationService.SetField(ctx, id, "director_name_1", "Asha Rao")
	require.NoError(t, err)

	out, err := runCommand("review", "--json", "--session", id)
	require.NoError(t, err)

	var record domain.ApplicationRecord
	require.NoError(t, json.Unmarshal([]byte(out), &record))
	require.Len(t, record.Directors, 2)
	assert.Equal(t, "", record.Directors[0]["name"])
	assert.Equal(t, "Asha Rao", record.Directors[1]["name"])
	assert.Len(t, record.Undertakings, domain.UndertakingCount)
}

func TestReviewCmd_NoSession(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := runCommand("review")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no session")
}

func TestPrintIssues_None(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	id := startSession(t)
	fillComplete(t, id)

	out, err := runCommand("review", "--session", id)

	require.NoError(t, err)
	assert.Contains(t, out, "All required fields are complete.")
}
