package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/loanform/internal/core/domain"
	"github.com/custodia-labs/loanform/internal/core/ports/driving"
)

var fieldCmd = &cobra.Command{
	Use:   "field",
	Short: "Read and edit form fields",
	Long: `Read and edit form fields by their flat key.

Examples of keys:
  enterprise_name          basic information
  num_directors            row count of a repeated group
  director_name_0          field of the first director
  Net Sales_Present Year   performance table cell
  undertaking_3            one of the eight undertakings`,
}

var fieldGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Show a field and where its value came from",
	Args:  cobra.ExactArgs(1),
	RunE:  runFieldGet,
}

var fieldSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a field value",
	Long: `Sets a field as entered by the applicant. Values entered this way are
never replaced by values read from documents.`,
	Args: cobra.ExactArgs(2),
	RunE: runFieldSet,
}

var fieldClearCmd = &cobra.Command{
	Use:   "clear [key]",
	Short: "Clear a field value",
	Long:  `Blanks a field. A cleared field stays blank when documents are uploaded.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runFieldClear,
}

var fieldListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every field with a value",
	Args:  cobra.NoArgs,
	RunE:  runFieldList,
}

func init() {
	fieldCmd.AddCommand(fieldGetCmd)
	fieldCmd.AddCommand(fieldSetCmd)
	fieldCmd.AddCommand(fieldClearCmd)
	fieldCmd.AddCommand(fieldListCmd)
	rootCmd.AddCommand(fieldCmd)
}

func runFieldGet(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	sessionID, err := resolveSession(ctx)
	if err != nil {
		return err
	}

	field, err := applicationService.GetField(ctx, sessionID, args[0])
	if err != nil {
		return fmt.Errorf("failed to get field: %w", err)
	}

	cmd.Printf("%s: %s\n", args[0], displayValue(field.Value))
	cmd.Printf("  Origin: %s\n", field.Origin)
	if field.SourceDocument != "" {
		cmd.Printf("  Source document: %s\n", field.SourceDocument)
	}
	return nil
}

func runFieldSet(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	sessionID, err := resolveSession(ctx)
	if err != nil {
		return err
	}

	update, err := applicationService.SetField(ctx, sessionID, args[0], args[1])
	if err != nil {
		return fmt.Errorf("failed to set field: %w", err)
	}

	cmd.Printf("Set %s = %s\n", update.Field.Key, displayValue(update.Field.Value))
	printSaved(cmd, update)
	return nil
}

func runFieldClear(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	sessionID, err := resolveSession(ctx)
	if err != nil {
		return err
	}

	update, err := applicationService.ClearField(ctx, sessionID, args[0])
	if err != nil {
		return fmt.Errorf("failed to clear field: %w", err)
	}

	cmd.Printf("Cleared %s\n", update.Field.Key)
	printSaved(cmd, update)
	return nil
}

func runFieldList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	sessionID, err := resolveSession(ctx)
	if err != nil {
		return err
	}

	session, err := applicationService.GetSession(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("failed to get session: %w", err)
	}

	fields := session.Fields.Fields()
	if len(fields) == 0 {
		cmd.Println("No fields set.")
		return nil
	}

	width := 0
	for _, f := range fields {
		width = max(width, len(f.Key.String()))
	}
	for _, f := range fields {
		key := f.Key.String()
		cmd.Printf("  %s%s  %s  [%s]\n", key, strings.Repeat(" ", width-len(key)), displayValue(f.Value), f.Origin)
	}
	cmd.Printf("\nTotal: %d fields\n", len(fields))
	return nil
}

func printSaved(cmd *cobra.Command, update *driving.FieldUpdate) {
	if update.Saved && update.ApplicationID != "" {
		cmd.Printf("Saved application %s\n", update.ApplicationID)
	}
}

func displayValue(v string) string {
	if strings.TrimSpace(v) == "" {
		return "(empty)"
	}
	return v
}

// originLabel is a short label for review output.
func originLabel(o domain.Origin) string {
	switch o {
	case domain.OriginUserEntered:
		return "entered"
	case domain.OriginDocumentDerived:
		return "from document"
	default:
		return ""
	}
}
