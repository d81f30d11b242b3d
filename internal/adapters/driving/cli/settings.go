package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/loanform/internal/core/domain"
	"github.com/custodia-labs/loanform/internal/core/services"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure storage, autosave, and document extraction.

Settings are stored in ~/.loanform/config.toml and take effect on the
next command.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a single setting",
	Long: `Set a single setting by its configuration key.

Keys:
  ` + strings.Join(services.SettingsKeys(), "\n  "),
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsExtractorCmd = &cobra.Command{
	Use:   "extractor",
	Short: "Configure document extraction",
	Long: `Choose how uploaded documents are read.

Available modes:
  local  - Read labelled values from text, DOCX and PDF files on this machine
  remote - Send documents to an extraction service (supports scanned images)`,
	RunE: runSettingsExtractor,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsExtractorCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Storage]")
	cmd.Printf("  Backend: %s\n", settings.Storage.Backend.Description())
	dataDir := settings.Storage.DataDir
	if dataDir == "" {
		dataDir = "(default)"
	}
	cmd.Printf("  Data directory: %s\n", dataDir)
	cmd.Println()

	cmd.Println("[Application]")
	cmd.Printf("  Autosave: %s\n", yesNo(settings.Application.Autosave))
	cmd.Printf("  Insert on stale ID: %s\n", yesNo(settings.Application.InsertOnStale))
	cmd.Println()

	cmd.Println("[Extraction]")
	cmd.Printf("  Mode: %s\n", settings.Extraction.Mode)
	if settings.Extraction.Mode == domain.ExtractionRemote {
		cmd.Printf("  Endpoint: %s\n", settings.Extraction.Endpoint)
		if settings.Extraction.APIKey != "" {
			cmd.Printf("  API Key: %s\n", maskAPIKey(settings.Extraction.APIKey))
		} else {
			cmd.Printf("  API Key: (not set)\n")
		}
		cmd.Printf("  Requests per second: %g\n", settings.Extraction.RequestsPerSecond)
	}
	if settings.Extraction.MappingFile != "" {
		cmd.Printf("  Mapping file: %s\n", settings.Extraction.MappingFile)
	}
	cmd.Println()

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'loanform settings extractor' to fix configuration issues.")
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	if err := settingsService.Set(args[0], args[1]); err != nil {
		return fmt.Errorf("failed to set %s: %w", args[0], err)
	}

	value := args[1]
	if strings.HasSuffix(args[0], "api_key") {
		value = maskAPIKey(value)
	}
	cmd.Printf("%s set to: %s\n", args[0], value)
	return nil
}

func runSettingsExtractor(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	reader := bufio.NewReader(cmd.InOrStdin())

	cmd.Println("Select Extraction Mode")
	cmd.Println("----------------------")
	modes := []domain.ExtractionMode{domain.ExtractionLocal, domain.ExtractionRemote}
	for i, mode := range modes {
		cmd.Printf("  %d. %s\n", i+1, mode)
	}
	cmd.Print("\nEnter choice [1]: ")
	idx := parseChoice(readLine(reader), len(modes), 1)
	mode := modes[idx-1]

	var endpoint, apiKey string
	if mode == domain.ExtractionRemote {
		cmd.Print("Endpoint URL: ")
		endpoint = readLine(reader)
		cmd.Print("API key (leave empty to keep current): ")
		apiKey = readPassword(cmd.InOrStdin(), reader)
		cmd.Println()
	}

	if err := settingsService.SetExtractor(mode, endpoint, apiKey); err != nil {
		return fmt.Errorf("failed to configure extractor: %w", err)
	}

	cmd.Printf("Extraction mode set to: %s\n", mode)
	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

// readPassword reads without echo when in is the terminal, otherwise
// it reads a line from reader.
func readPassword(in io.Reader, reader *bufio.Reader) string {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		password, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return string(password)
		}
	}
	return readLine(reader)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
