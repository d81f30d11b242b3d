// Package cli provides the loanform command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/loanform/internal/core/ports/driving"
	"github.com/custodia-labs/loanform/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Services used by the commands. Set by SetServices before Execute.
var (
	applicationService driving.ApplicationService
	settingsService    driving.SettingsService
)

// Global flags.
var (
	verboseFlag bool
	sessionFlag string
)

var rootCmd = &cobra.Command{
	Use:   "loanform",
	Short: "MSME loan application intake",
	Long: `loanform collects an MSME loan application section by section.

Values typed by the applicant are never overwritten by values read from
uploaded documents. Progress is saved on every section change.

Start with 'loanform session start', then fill fields with
'loanform field set' or upload documents with 'loanform document upload'.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verboseFlag)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Print debug output to stderr")
	rootCmd.PersistentFlags().StringVarP(&sessionFlag, "session", "s", "", "Session ID (default: most recent session)")
}

// SetServices configures the services the commands use.
func SetServices(app driving.ApplicationService, settings driving.SettingsService) {
	applicationService = app
	settingsService = settings
}

// SetVersion sets the version reported by 'loanform version'.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// resolveSession returns the --session flag or, when unset, the most
// recently updated session.
func resolveSession(ctx context.Context) (string, error) {
	if applicationService == nil {
		return "", errors.New("application service not configured")
	}
	if sessionFlag != "" {
		return sessionFlag, nil
	}

	sessions, err := applicationService.ListSessions(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to list sessions: %w", err)
	}
	if len(sessions) == 0 {
		return "", errors.New("no session; run 'loanform session start'")
	}
	return sessions[0].ID, nil
}
