package cli

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/loanform/internal/core/domain"
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Review the application before submitting",
	Long: `Shows every section of the application as it would be saved, with the
origin of each value and any missing required fields. Nothing is saved.`,
	Args: cobra.NoArgs,
	RunE: runReview,
}

// reviewJSON is a flag for the review command.
var reviewJSON bool

func init() {
	reviewCmd.Flags().BoolVar(&reviewJSON, "json", false, "Print the application record as JSON")
	rootCmd.AddCommand(reviewCmd)
}

func runReview(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	sessionID, err := resolveSession(ctx)
	if err != nil {
		return err
	}

	record, err := applicationService.Review(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("failed to review application: %w", err)
	}

	if reviewJSON {
		data, err := json.MarshalIndent(record, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode application: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	session, err := applicationService.GetSession(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("failed to get session: %w", err)
	}
	issues, err := applicationService.Validate(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("failed to validate application: %w", err)
	}

	r := &reviewRenderer{cmd: cmd, styles: DefaultStyles(), fields: session.Fields}
	r.render(record, session)
	printIssues(cmd, r.styles, issues)
	return nil
}

// reviewRenderer prints a record section by section.
type reviewRenderer struct {
	cmd    *cobra.Command
	styles *Styles
	fields *domain.FieldStore
}

func (r *reviewRenderer) render(record *domain.ApplicationRecord, session *domain.Session) {
	title := "Loan Application Review"
	if session.ApplicationID != "" {
		title += " (" + session.ApplicationID + ")"
	}
	r.cmd.Println(r.styles.Title.Render(title))

	r.section("Basic Information")
	for _, name := range domain.BasicInfoFields {
		r.field(name, record.BasicInfo[name], domain.ScalarKey(name))
	}

	r.groupSection("Proprietor/Partners/Directors", record, domain.GroupDirectors, "Director")
	r.groupSection("Existing Credit Facilities", record, domain.GroupExistingFacilities, "Facility")
	r.groupSection("Proposed Credit Facilities", record, domain.GroupProposedFacilities, "Facility")
	r.groupSection("Collateral", record, domain.GroupCollateral, "Collateral")

	r.section("Past Performance")
	for _, label := range domain.PerformanceLabels {
		r.cmd.Printf("  %s\n", r.styles.Label.Render(label))
		row := record.Performance.PastPerformance[label]
		for _, fs := range domain.PerformanceFields {
			r.field("  "+fs.Name, row[fs.Name], domain.YearKey(label, fs.Name))
		}
	}

	r.groupSection("Major Suppliers", record, domain.GroupSuppliers, "Supplier")
	r.groupSection("Major Customers", record, domain.GroupCustomers, "Customer")

	r.section("Undertakings")
	for i, v := range record.Undertakings {
		r.field(fmt.Sprintf("undertaking %d", i+1), v, domain.UndertakingKey(i))
	}

	r.section("Documents")
	if len(record.Documents) == 0 {
		r.cmd.Printf("  %s\n", r.styles.Muted.Render("(none)"))
	}
	slots := make([]string, 0, len(record.Documents))
	for slot := range record.Documents {
		slots = append(slots, slot)
	}
	sort.Strings(slots)
	for _, slot := range slots {
		r.cmd.Printf("  %s  %s\n", r.styles.Label.Render(slot), r.styles.Value.Render(record.Documents[slot].FileName))
	}
}

func (r *reviewRenderer) section(name string) {
	r.cmd.Println()
	r.cmd.Println(r.styles.Section.Render(name))
}

func (r *reviewRenderer) groupSection(title string, record *domain.ApplicationRecord, group domain.GroupName, rowName string) {
	r.section(title)
	schema, _ := domain.LookupGroup(group)
	rows := record.Group(group)
	if len(rows) == 0 {
		r.cmd.Printf("  %s\n", r.styles.Muted.Render("(none)"))
		return
	}
	for i, row := range rows {
		r.cmd.Printf("  %s\n", r.styles.Label.Render(fmt.Sprintf("%s %d", rowName, i+1)))
		for _, fs := range schema.Fields {
			r.field("  "+fs.Name, row[fs.Name], domain.GroupKey(group, i, fs.Name))
		}
	}
}

func (r *reviewRenderer) field(label, value string, key domain.FieldKey) {
	const labelWidth = 26

	padded := label
	if len(padded) < labelWidth {
		padded += strings.Repeat(" ", labelWidth-len(padded))
	}

	rendered := r.styles.Muted.Render("(empty)")
	if strings.TrimSpace(value) != "" {
		rendered = r.styles.Value.Render(value)
	}

	note := ""
	if origin := originLabel(r.fields.Get(key).Origin); origin != "" && strings.TrimSpace(value) != "" {
		note = "  " + r.styles.Muted.Render("["+origin+"]")
	}

	r.cmd.Printf("  %s %s%s\n", r.styles.Label.Render(padded), rendered, note)
}

func printIssues(cmd *cobra.Command, styles *Styles, issues []domain.Issue) {
	cmd.Println()
	if len(issues) == 0 {
		cmd.Println(styles.Success.Render("All required fields are complete."))
		return
	}
	cmd.Println(styles.Warning.Render(fmt.Sprintf("%d issue(s) found:", len(issues))))
	for _, issue := range issues {
		cmd.Printf("  - %s: %s\n", issue.Field, issue.Message)
	}
}
