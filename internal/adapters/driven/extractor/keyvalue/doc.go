// Package keyvalue provides local document extractors that read labelled
// values ("Applicant Name: Ramesh Kumar") out of uploaded files.
//
// Each extractor handles one family of MIME types and is registered with
// the extractor registry at startup:
//   - TextExtractor: plain text, CSV (label,value rows) and flat JSON objects
//   - DocxExtractor: Word documents, paragraphs and two-column tables
//   - PDFExtractor: PDFs via the pdftotext command from poppler
package keyvalue
