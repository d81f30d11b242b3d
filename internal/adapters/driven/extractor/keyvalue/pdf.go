package keyvalue

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/custodia-labs/loanform/internal/core/domain"
	"github.com/custodia-labs/loanform/internal/core/ports/driven"
)

// Ensure PDFExtractor implements the interface.
var _ driven.DocumentExtractor = (*PDFExtractor)(nil)

// ErrPDFToolNotFound is returned when pdftotext is not installed.
var ErrPDFToolNotFound = errors.New("pdftotext not found in PATH")

const pdfTool = "pdftotext"

// CommandRunner runs an external command and returns its stdout.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// execRunner runs commands with os/exec.
type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	if _, err := exec.LookPath(name); err != nil {
		return nil, ErrPDFToolNotFound
	}
	return exec.CommandContext(ctx, name, args...).Output()
}

// PDFExtractor reads the text layer of a PDF through pdftotext.
// Scanned PDFs without a text layer produce no fields.
type PDFExtractor struct {
	runner CommandRunner
}

// NewPDFExtractor creates a PDF extractor that shells out to pdftotext.
func NewPDFExtractor() *PDFExtractor {
	return &PDFExtractor{runner: execRunner{}}
}

// NewPDFExtractorWithRunner creates a PDF extractor with a custom runner.
func NewPDFExtractorWithRunner(runner CommandRunner) *PDFExtractor {
	return &PDFExtractor{runner: runner}
}

// CheckAvailable reports whether pdftotext can be found.
func CheckAvailable() error {
	if _, err := exec.LookPath(pdfTool); err != nil {
		return ErrPDFToolNotFound
	}
	return nil
}

// InstallInstructions returns how to install pdftotext.
func InstallInstructions() string {
	return `PDF extraction requires pdftotext (part of poppler).
  macOS:  brew install poppler
  Debian: apt install poppler-utils
  Fedora: dnf install poppler-utils`
}

// Name identifies the extractor in logs.
func (e *PDFExtractor) Name() string {
	return "pdf"
}

// SupportedMIMETypes returns the MIME types this extractor handles.
func (e *PDFExtractor) SupportedMIMETypes() []string {
	return []string{"application/pdf"}
}

// Extract converts the PDF to text and parses labelled lines.
func (e *PDFExtractor) Extract(ctx context.Context, raw *domain.RawDocument) (map[string]string, error) {
	if raw == nil {
		return nil, fmt.Errorf("%w: nil document", domain.ErrExtractionFailure)
	}

	tmp, err := os.CreateTemp("", "loanform-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("%w: create temp file: %w", domain.ErrExtractionFailure, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw.Content); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("%w: write temp file: %w", domain.ErrExtractionFailure, err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("%w: write temp file: %w", domain.ErrExtractionFailure, err)
	}

	out, err := e.runner.Run(ctx, pdfTool, "-enc", "UTF-8", tmp.Name(), "-")
	if err != nil {
		return nil, fmt.Errorf("%w: pdftotext failed: %w", domain.ErrExtractionFailure, err)
	}
	return ParseLines(string(out)), nil
}
