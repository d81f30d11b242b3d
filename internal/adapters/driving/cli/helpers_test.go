package cli

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/loanform/internal/adapters/driven/extractor/keyvalue"
	"github.com/custodia-labs/loanform/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/loanform/internal/core/services"
)

// setupTestServices installs in-memory services and returns a cleanup
// function that restores the previous ones.
func setupTestServices() func() {
	origApp := applicationService
	origSettings := settingsService

	applicationService = services.NewApplicationService(
		memory.NewSessionStore(),
		memory.NewApplicationStore(),
		memory.NewBlobStore(),
		services.NewExtractorRegistry(keyvalue.NewTextExtractor()),
		nil,
		services.ApplicationOptions{Autosave: true},
	)
	settingsService = services.NewSettingsService(memory.NewConfigStore())

	return func() {
		applicationService = origApp
		settingsService = origSettings
	}
}

// runCommand executes the root command with args and returns its output.
func runCommand(args ...string) (string, error) {
	return runCommandWithInput(nil, args...)
}

func runCommandWithInput(in io.Reader, args ...string) (string, error) {
	sessionFlag = ""
	verboseFlag = false
	submitForce = false
	reviewJSON = false

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(in)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}

// startSession starts a session directly on the service.
func startSession(t *testing.T) string {
	t.Helper()
	session, err := applicationService.StartSession(context.Background())
	require.NoError(t, err)
	return session.ID
}
