package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/loanform/internal/core/domain"
)

// Document Command Tests

func TestDocumentCmd_Use(t *testing.T) {
	assert.Equal(t, "document", documentCmd.Use)
}

func TestDocumentCmd_Short(t *testing.T) {
	assert.Equal(t, "Manage uploaded documents", documentCmd.Short)
}

func TestDocumentCmd_HasSubcommands(t *testing.T) {
	commands := documentCmd.Commands()
	commandNames := make([]string, 0, len(commands))
	for _, cmd := range commands {
		commandNames = append(commandNames, cmd.Name())
	}

	assert.Contains(t, commandNames, "upload")
	assert.Contains(t, commandNames, "list")
}

// Document Upload Tests

func TestDocumentUploadCmd_Use(t *testing.T) {
	assert.Equal(t, "upload [slot] [file]", documentUploadCmd.Use)
}

func TestDocumentUploadCmd_RequiresTwoArgs(t *testing.T) {
	_, err := runCommand("document", "upload", "pan_card")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 2 arg(s)")
}

func writeTestFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDocumentUploadCmd_AutoFills(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	ctx := context.Background()
	id := startSession(t)
	path := writeTestFile(t, "pan.txt", "PAN: ABCDE1234F\nShoe Size: 9\n")

	out, err := runCommand("document", "upload", "pan_card", path, "--session", id)

	require.NoError(t, err)
	assert.Contains(t, out, "Uploaded pan.txt to pan_card")
	assert.Contains(t, out, "Filled: pan")
	assert.Contains(t, out, "Not recognised: Shoe Size")

	field, err := applicationService.GetField(ctx, id, "pan")
	require.NoError(t, err)
	assert.Equal(t, "ABCDE1234F", field.Value)
	assert.Equal(t, domain.OriginDocumentDerived, field.Origin)
}

func TestDocumentUploadCmd_KeepsUserValue(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	ctx := context.Background()
	id := startSession(t)
	_, err := applicationService.SetField(ctx, id, "pan", "ZZZZZ9999Z")
	require.NoError(t, err)
	path := writeTestFile(t, "pan.txt", "PAN: ABCDE1234F\n")

	out, err := runCommand("document", "upload", "pan_card", path, "--session", id)

	require.NoError(t, err)
	assert.Contains(t, out, "Kept existing: pan")
	field, err := applicationService.GetField(ctx, id, "pan")
	require.NoError(t, err)
	assert.Equal(t, "ZZZZZ9999Z", field.Value)
}

func TestDocumentUploadCmd_ExtractionFailureStillUploads(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	id := startSession(t)
	path := writeTestFile(t, "scan.png", "not really an image")

	out, err := runCommand("document", "upload", "pan_card", path, "--session", id)

	require.NoError(t, err)
	assert.Contains(t, out, "Uploaded scan.png to pan_card")
	assert.Contains(t, out, "Auto-fill skipped")
}

func TestDocumentUploadCmd_InvalidSlot(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	id := startSession(t)
	path := writeTestFile(t, "pan.txt", "PAN: ABCDE1234F\n")

	_, err := runCommand("document", "upload", "passport", path, "--session", id)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestDocumentUploadCmd_MissingFile(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	id := startSession(t)

	_, err := runCommand("document", "upload", "pan_card", filepath.Join(t.TempDir(), "nope.txt"), "--session", id)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read")
}

// Document List Tests

func TestDocumentListCmd_Use(t *testing.T) {
	assert.Equal(t, "list [application-id]", documentListCmd.Use)
}

func TestDocumentListCmd_RejectsExtraArgs(t *testing.T) {
	_, err := runCommand("document", "list", "a", "b")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts at most 1 arg(s)")
}

func TestDocumentListCmd_CurrentSession(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	id := startSession(t)
	path := writeTestFile(t, "udyam.txt", "Udyam Registration Number: UDYAM-MH-01-0000001\n")
	_, err := runCommand("document", "upload", "udyam_certificate", path, "--session", id)
	require.NoError(t, err)

	out, err := runCommand("document", "list", "--session", id)

	require.NoError(t, err)
	assert.Contains(t, out, "Slot: udyam_certificate")
	assert.Contains(t, out, "File: udyam.txt (text/plain")
	assert.Contains(t, out, "Total: 1 documents")
}

func TestDocumentListCmd_UnsavedSession(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	id := startSession(t)

	out, err := runCommand("document", "list", "--session", id)

	require.NoError(t, err)
	assert.Contains(t, out, "No documents uploaded.")
}

func TestDocumentListCmd_ByApplicationID(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := runCommand("document", "list", "app-without-docs")

	require.NoError(t, err)
	assert.Contains(t, out, "No documents found for application: app-without-docs")
}
