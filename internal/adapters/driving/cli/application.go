package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/loanform/internal/core/domain"
)

var applicationCmd = &cobra.Command{
	Use:     "application",
	Aliases: []string{"app"},
	Short:   "Inspect stored applications",
}

var applicationGetCmd = &cobra.Command{
	Use:   "get [application-id]",
	Short: "Print a stored application as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runApplicationGet,
}

var applicationListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored applications",
	Args:  cobra.NoArgs,
	RunE:  runApplicationList,
}

func init() {
	applicationCmd.AddCommand(applicationGetCmd)
	applicationCmd.AddCommand(applicationListCmd)
	rootCmd.AddCommand(applicationCmd)
}

func runApplicationGet(cmd *cobra.Command, args []string) error {
	if applicationService == nil {
		return errors.New("application service not configured")
	}

	app, err := applicationService.Get(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get application: %w", err)
	}

	data, err := json.MarshalIndent(app, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode application: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func runApplicationList(cmd *cobra.Command, _ []string) error {
	if applicationService == nil {
		return errors.New("application service not configured")
	}

	apps, err := applicationService.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list applications: %w", err)
	}

	if len(apps) == 0 {
		cmd.Println("No applications found.")
		return nil
	}

	cmd.Println("Applications:")
	cmd.Println()
	for i := range apps {
		printApplication(cmd, &apps[i])
		cmd.Println()
	}
	cmd.Printf("Total: %d applications\n", len(apps))
	return nil
}

func printApplication(cmd *cobra.Command, app *domain.Application) {
	name := app.Record.BasicInfo["enterprise_name"]
	if name == "" {
		name = "(unnamed)"
	}

	cmd.Printf("  %s\n", app.ID)
	cmd.Printf("    Enterprise: %s\n", name)
	cmd.Printf("    Status: %s\n", app.Status)
	cmd.Printf("    Updated: %s\n", app.UpdatedAt.Format("2006-01-02 15:04:05"))
	if app.SubmittedAt != nil {
		cmd.Printf("    Submitted: %s\n", app.SubmittedAt.Format("2006-01-02 15:04:05"))
	}
}
