package keyvalue

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/custodia-labs/loanform/internal/core/domain"
	"github.com/custodia-labs/loanform/internal/core/ports/driven"
)

// Ensure DocxExtractor implements the interface.
var _ driven.DocumentExtractor = (*DocxExtractor)(nil)

// DocxMIMEType is the content type of Word documents.
const DocxMIMEType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// DocxExtractor handles DOCX documents.
type DocxExtractor struct{}

// NewDocxExtractor creates a new DOCX extractor.
func NewDocxExtractor() *DocxExtractor {
	return &DocxExtractor{}
}

// Name identifies the extractor in logs.
func (e *DocxExtractor) Name() string {
	return "docx"
}

// SupportedMIMETypes returns the MIME types this extractor handles.
func (e *DocxExtractor) SupportedMIMETypes() []string {
	return []string{DocxMIMEType}
}

// Extract reads "Label: value" paragraphs and two-column table rows.
// Paragraph values win over table values for the same label.
func (e *DocxExtractor) Extract(_ context.Context, raw *domain.RawDocument) (map[string]string, error) {
	if raw == nil {
		return nil, fmt.Errorf("%w: nil document", domain.ErrExtractionFailure)
	}

	reader, err := zip.NewReader(bytes.NewReader(raw.Content), int64(len(raw.Content)))
	if err != nil {
		return nil, fmt.Errorf("%w: %s is not a docx archive: %w", domain.ErrExtractionFailure, raw.FileName, err)
	}

	content, err := readDocumentXML(reader)
	if err != nil {
		return nil, err
	}

	var doc documentXML
	if err := xml.Unmarshal(content, &doc); err != nil {
		return nil, fmt.Errorf("%w: parse word/document.xml: %w", domain.ErrExtractionFailure, err)
	}

	fields := make(map[string]string)
	for _, para := range doc.Body.Paragraphs {
		if label, value, ok := splitLine(para.text()); ok {
			put(fields, label, value)
		}
	}
	for _, table := range doc.Body.Tables {
		for _, row := range table.Rows {
			if len(row.Cells) < 2 {
				continue
			}
			label := strings.TrimSuffix(strings.Join(strings.Fields(row.Cells[0].text()), " "), ":")
			value := strings.TrimSpace(row.Cells[1].text())
			if label == "" || value == "" {
				continue
			}
			put(fields, label, value)
		}
	}
	return fields, nil
}

// readDocumentXML returns the bytes of word/document.xml.
func readDocumentXML(reader *zip.Reader) ([]byte, error) {
	for _, file := range reader.File {
		if file.Name != "word/document.xml" {
			continue
		}

		rc, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("%w: open word/document.xml: %w", domain.ErrExtractionFailure, err)
		}
		defer rc.Close()

		content, err := io.ReadAll(rc)
		if err != nil {
			return nil, fmt.Errorf("%w: read word/document.xml: %w", domain.ErrExtractionFailure, err)
		}
		return content, nil
	}
	return nil, fmt.Errorf("%w: word/document.xml missing", domain.ErrExtractionFailure)
}

// documentXML represents the parts of word/document.xml we read.
type documentXML struct {
	Body struct {
		Paragraphs []paragraph `xml:"p"`
		Tables     []table     `xml:"tbl"`
	} `xml:"body"`
}

type table struct {
	Rows []tableRow `xml:"tr"`
}

type tableRow struct {
	Cells []tableCell `xml:"tc"`
}

type tableCell struct {
	Paragraphs []paragraph `xml:"p"`
}

func (c tableCell) text() string {
	parts := make([]string, 0, len(c.Paragraphs))
	for _, p := range c.Paragraphs {
		parts = append(parts, p.text())
	}
	return strings.Join(parts, " ")
}

type paragraph struct {
	Runs []run `xml:"r"`
}

func (p paragraph) text() string {
	var b strings.Builder
	for _, r := range p.Runs {
		for _, t := range r.Text {
			b.WriteString(t.Content)
		}
	}
	return b.String()
}

type run struct {
	Text []textElement `xml:"t"`
}

type textElement struct {
	Content string `xml:",chardata"`
}
