package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/loanform/internal/core/domain"
)

var documentCmd = &cobra.Command{
	Use:   "document",
	Short: "Manage uploaded documents",
	Long: `Upload supporting documents and list what has been uploaded.

Uploading a document reads labelled values from it and fills any form
fields the applicant has not entered.`,
}

var documentUploadCmd = &cobra.Command{
	Use:   "upload [slot] [file]",
	Short: "Upload a document into a slot",
	Long: `Upload a document into one of the form's document slots:

  udyam_certificate, gst_certificate, pan_card,
  incorporation_certificate, financial_statement, bank_statement,
  director_kyc_N, collateral_document_N

Indexed slots take the row number, e.g. director_kyc_1 for the second
director.`,
	Args: cobra.ExactArgs(2),
	RunE: runDocumentUpload,
}

var documentListCmd = &cobra.Command{
	Use:   "list [application-id]",
	Short: "List documents for an application",
	Long:  `Lists the documents of an application, or of the current session's application.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runDocumentList,
}

func init() {
	documentCmd.AddCommand(documentUploadCmd)
	documentCmd.AddCommand(documentListCmd)
	rootCmd.AddCommand(documentCmd)
}

func runDocumentUpload(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	sessionID, err := resolveSession(ctx)
	if err != nil {
		return err
	}
	return uploadFile(ctx, cmd, sessionID, args[0], args[1])
}

func uploadFile(ctx context.Context, cmd *cobra.Command, sessionID, slot, path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	raw := &domain.RawDocument{
		FileName: filepath.Base(path),
		MIMEType: domain.DetectMIMEType(path),
		Content:  content,
	}

	result, err := applicationService.UploadDocument(ctx, sessionID, slot, raw)
	if err != nil {
		return fmt.Errorf("failed to upload document: %w", err)
	}

	cmd.Printf("Uploaded %s to %s (application %s)\n", raw.FileName, slot, result.ApplicationID)
	if result.Document.ExtractionError != "" {
		cmd.Printf("  Auto-fill skipped: %s\n", result.Document.ExtractionError)
		return nil
	}
	if len(result.Applied.Written) > 0 {
		cmd.Printf("  Filled: %s\n", strings.Join(result.Applied.Written, ", "))
	}
	if len(result.Applied.Skipped) > 0 {
		cmd.Printf("  Kept existing: %s\n", strings.Join(result.Applied.Skipped, ", "))
	}
	if len(result.Applied.Unmapped) > 0 {
		cmd.Printf("  Not recognised: %s\n", strings.Join(result.Applied.Unmapped, ", "))
	}
	return nil
}

func runDocumentList(cmd *cobra.Command, args []string) error {
	if applicationService == nil {
		return errors.New("application service not configured")
	}
	ctx := cmd.Context()

	var applicationID string
	if len(args) == 1 {
		applicationID = args[0]
	} else {
		sessionID, err := resolveSession(ctx)
		if err != nil {
			return err
		}
		session, err := applicationService.GetSession(ctx, sessionID)
		if err != nil {
			return fmt.Errorf("failed to get session: %w", err)
		}
		if session.ApplicationID == "" {
			cmd.Println("No documents uploaded.")
			return nil
		}
		applicationID = session.ApplicationID
	}

	docs, err := applicationService.Documents(ctx, applicationID)
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if len(docs) == 0 {
		cmd.Printf("No documents found for application: %s\n", applicationID)
		return nil
	}

	cmd.Printf("Documents for application %s:\n\n", applicationID)
	for i := range docs {
		cmd.Printf("  %s\n", docs[i].ID)
		cmd.Printf("    Slot: %s\n", docs[i].Slot)
		cmd.Printf("    File: %s (%s, %d bytes)\n", docs[i].FileName, docs[i].MIMEType, docs[i].Size)
		cmd.Printf("    Extracted fields: %d\n", len(docs[i].ExtractedFields))
		if docs[i].ExtractionError != "" {
			cmd.Printf("    Extraction error: %s\n", docs[i].ExtractionError)
		}
		cmd.Printf("    Uploaded: %s\n", docs[i].UploadedAt.Format("2006-01-02 15:04:05"))
		cmd.Println()
	}

	cmd.Printf("Total: %d documents\n", len(docs))
	return nil
}
