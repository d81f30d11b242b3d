package domain

import (
	"path/filepath"
	"strings"
)

// RawDocument is an uploaded file before extraction.
type RawDocument struct {
	// FileName is the original file name.
	FileName string

	// MIMEType is the content type (e.g., "application/pdf").
	MIMEType string

	// Content is the raw bytes.
	Content []byte
}

var mimeByExtension = map[string]string{
	".pdf":  "application/pdf",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".txt":  "text/plain",
	".csv":  "text/csv",
	".json": "application/json",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// DetectMIMEType guesses a content type from the file extension.
// Unknown extensions map to application/octet-stream.
func DetectMIMEType(fileName string) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	if mime, ok := mimeByExtension[ext]; ok {
		return mime
	}
	return "application/octet-stream"
}
