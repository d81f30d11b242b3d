package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/loanform/internal/core/domain"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage application sessions",
	Long: `Start, resume, list, or inspect application sessions.

A session holds one applicant's in-progress form between commands.
Commands that act on a session use --session, or the most recently
updated session when the flag is not given.`,
}

var sessionStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start a new application",
	Args:  cobra.NoArgs,
	RunE:  runSessionStart,
}

var sessionResumeCmd = &cobra.Command{
	Use:   "resume [application-id]",
	Short: "Resume a stored application in a new session",
	Long: `Loads a stored application into a new session so it can be edited.
Restored values count as entered by the applicant.`,
	Args: cobra.ExactArgs(1),
	RunE: runSessionResume,
}

var sessionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List sessions",
	Args:  cobra.NoArgs,
	RunE:  runSessionList,
}

var sessionShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current session",
	Args:  cobra.NoArgs,
	RunE:  runSessionShow,
}

func init() {
	sessionCmd.AddCommand(sessionStartCmd)
	sessionCmd.AddCommand(sessionResumeCmd)
	sessionCmd.AddCommand(sessionListCmd)
	sessionCmd.AddCommand(sessionShowCmd)
	rootCmd.AddCommand(sessionCmd)
}

func runSessionStart(cmd *cobra.Command, _ []string) error {
	if applicationService == nil {
		return errors.New("application service not configured")
	}

	session, err := applicationService.StartSession(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}

	cmd.Printf("Started session %s\n", session.ID)
	cmd.Printf("Section: %s\n", session.SectionName())
	return nil
}

func runSessionResume(cmd *cobra.Command, args []string) error {
	if applicationService == nil {
		return errors.New("application service not configured")
	}

	session, err := applicationService.ResumeSession(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to resume application: %w", err)
	}

	cmd.Printf("Resumed application %s in session %s\n", session.ApplicationID, session.ID)
	cmd.Printf("Fields restored: %d\n", session.Fields.Len())
	if session.Submitted {
		cmd.Println("This application has been submitted and is read-only.")
	}
	return nil
}

func runSessionList(cmd *cobra.Command, _ []string) error {
	if applicationService == nil {
		return errors.New("application service not configured")
	}

	sessions, err := applicationService.ListSessions(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}

	if len(sessions) == 0 {
		cmd.Println("No sessions found.")
		return nil
	}

	cmd.Println("Sessions:")
	cmd.Println()
	for i := range sessions {
		printSession(cmd, &sessions[i])
		cmd.Println()
	}
	cmd.Printf("Total: %d sessions\n", len(sessions))
	return nil
}

func runSessionShow(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	sessionID, err := resolveSession(ctx)
	if err != nil {
		return err
	}

	session, err := applicationService.GetSession(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("failed to get session: %w", err)
	}

	printSession(cmd, session)
	cmd.Println()
	cmd.Println("  Sections:")
	for i, name := range domain.Sections {
		marker := " "
		if i == session.Section {
			marker = ">"
		}
		cmd.Printf("    %s %d. %s\n", marker, i+1, name)
	}
	return nil
}

func printSession(cmd *cobra.Command, session *domain.Session) {
	appID := session.ApplicationID
	if appID == "" {
		appID = "(not saved)"
	}
	status := "in progress"
	if session.Submitted {
		status = "submitted"
	}

	cmd.Printf("  %s\n", session.ID)
	cmd.Printf("    Application: %s\n", appID)
	cmd.Printf("    Section: %s\n", session.SectionName())
	cmd.Printf("    Status: %s\n", status)
	cmd.Printf("    Fields: %d, Documents: %d\n", session.Fields.Len(), len(session.Documents))
	cmd.Printf("    Updated: %s\n", session.UpdatedAt.Format("2006-01-02 15:04:05"))
}
