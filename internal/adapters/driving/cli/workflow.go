package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/loanform/internal/core/domain"
	"github.com/custodia-labs/loanform/internal/core/ports/driving"
)

var saveCmd = &cobra.Command{
	Use:   "save",
	Short: "Save the current application",
	Long:  `Saves the application. The first save assigns the application ID.`,
	Args:  cobra.NoArgs,
	RunE:  runSave,
}

var nextCmd = &cobra.Command{
	Use:   "next",
	Short: "Save and move to the next section",
	Args:  cobra.NoArgs,
	RunE:  runNext,
}

var prevCmd = &cobra.Command{
	Use:     "prev",
	Aliases: []string{"previous"},
	Short:   "Save and move to the previous section",
	Args:    cobra.NoArgs,
	RunE:    runPrev,
}

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit the application",
	Long: `Checks the application is complete, saves it and marks it submitted.
An incomplete application is refused unless --force is given.`,
	Args: cobra.NoArgs,
	RunE: runSubmit,
}

// submitForce is a flag for the submit command.
var submitForce bool

func init() {
	submitCmd.Flags().BoolVarP(&submitForce, "force", "f", false, "Submit even if required fields are missing")

	rootCmd.AddCommand(saveCmd)
	rootCmd.AddCommand(nextCmd)
	rootCmd.AddCommand(prevCmd)
	rootCmd.AddCommand(submitCmd)
}

func runSave(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	sessionID, err := resolveSession(ctx)
	if err != nil {
		return err
	}

	applicationID, err := applicationService.Save(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("failed to save application: %w", err)
	}

	cmd.Printf("Saved application %s\n", applicationID)
	return nil
}

func runNext(cmd *cobra.Command, _ []string) error {
	return runMove(cmd, true)
}

func runPrev(cmd *cobra.Command, _ []string) error {
	return runMove(cmd, false)
}

func runMove(cmd *cobra.Command, forward bool) error {
	ctx := cmd.Context()
	sessionID, err := resolveSession(ctx)
	if err != nil {
		return err
	}

	var session *domain.Session
	if forward {
		session, err = applicationService.Next(ctx, sessionID)
	} else {
		session, err = applicationService.Previous(ctx, sessionID)
	}
	if err != nil {
		return fmt.Errorf("failed to change section: %w", err)
	}

	if session.ApplicationID != "" {
		cmd.Printf("Saved application %s\n", session.ApplicationID)
	}
	cmd.Printf("Section %d of %d: %s\n", session.Section+1, len(domain.Sections), session.SectionName())
	return nil
}

func runSubmit(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	sessionID, err := resolveSession(ctx)
	if err != nil {
		return err
	}

	result, err := applicationService.Submit(ctx, sessionID, submitForce)
	if errors.Is(err, domain.ErrIncomplete) && result != nil {
		printIssues(cmd, DefaultStyles(), result.Issues)
		cmd.Println("Use --force to submit anyway.")
		return fmt.Errorf("application is incomplete: %w", err)
	}
	if err != nil {
		return fmt.Errorf("failed to submit application: %w", err)
	}

	printSubmitted(cmd, result)
	return nil
}

func printSubmitted(cmd *cobra.Command, result *driving.SubmitResult) {
	if len(result.Issues) > 0 {
		printIssues(cmd, DefaultStyles(), result.Issues)
	}
	cmd.Println("Application submitted.")
	cmd.Printf("Reference: %s\n", result.ApplicationID)
}
