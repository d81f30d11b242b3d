package domain

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// DocumentSlot names an upload field on the form.
// Indexed slots carry a trailing row index, e.g. "director_kyc_1".
type DocumentSlot string

// Upload slots of the form.
const (
	SlotUdyamCertificate         DocumentSlot = "udyam_certificate"
	SlotGSTCertificate           DocumentSlot = "gst_certificate"
	SlotPANCard                  DocumentSlot = "pan_card"
	SlotIncorporationCertificate DocumentSlot = "incorporation_certificate"
	SlotFinancialStatement       DocumentSlot = "financial_statement"
	SlotBankStatement            DocumentSlot = "bank_statement"
	SlotDirectorKYC              DocumentSlot = "director_kyc"
	SlotCollateralDocument       DocumentSlot = "collateral_document"
)

var indexedSlots = map[DocumentSlot]GroupName{
	SlotDirectorKYC:        GroupDirectors,
	SlotCollateralDocument: GroupCollateral,
}

// AllDocumentSlots returns the base slot names.
func AllDocumentSlots() []DocumentSlot {
	return []DocumentSlot{
		SlotUdyamCertificate,
		SlotGSTCertificate,
		SlotPANCard,
		SlotIncorporationCertificate,
		SlotFinancialStatement,
		SlotBankStatement,
		SlotDirectorKYC,
		SlotCollateralDocument,
	}
}

// ParseDocumentSlot splits a slot into its base name and row index.
// Slots without an index return index 0.
func ParseDocumentSlot(s string) (DocumentSlot, int, error) {
	s = strings.TrimSpace(s)
	for _, base := range AllDocumentSlots() {
		if s == string(base) {
			return base, 0, nil
		}
		if _, indexed := indexedSlots[base]; !indexed {
			continue
		}
		rest, ok := strings.CutPrefix(s, string(base)+"_")
		if !ok {
			continue
		}
		idx, err := strconv.Atoi(rest)
		if err != nil || idx < 0 || idx >= MaxGroupSize {
			break
		}
		return base, idx, nil
	}
	return "", 0, fmt.Errorf("%w: unknown document slot %q", ErrInvalidInput, s)
}

// SlotGroup returns the repeated group an indexed slot belongs to.
func SlotGroup(slot DocumentSlot) (GroupName, bool) {
	g, ok := indexedSlots[slot]
	return g, ok
}

// DocumentSource identifies the document an extraction came from.
type DocumentSource struct {
	// ID is the stored document identifier.
	ID string

	// Slot is the upload field, possibly indexed.
	Slot string
}

// DocumentRef is the record's reference to an uploaded document.
type DocumentRef struct {
	DocumentID string    `json:"document_id"`
	FileName   string    `json:"file_name"`
	StorageRef string    `json:"storage_ref"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// DocumentMetadata describes an uploaded document and what was extracted from it.
type DocumentMetadata struct {
	// ID is the unique identifier for the document.
	ID string `json:"id"`

	// ApplicationID links back to the owning application. Non-owning.
	ApplicationID string `json:"application_id"`

	// Slot is the upload field the document satisfies.
	Slot string `json:"slot"`

	// FileName is the original file name.
	FileName string `json:"file_name"`

	// MIMEType is the detected content type.
	MIMEType string `json:"mime_type"`

	// Size is the raw file size in bytes.
	Size int64 `json:"size"`

	// StorageRef locates the raw file in the blob store.
	StorageRef string `json:"storage_ref"`

	// ExtractedFields maps extractor field names to values.
	ExtractedFields map[string]string `json:"extracted_fields"`

	// ExtractionError records why extraction failed, if it did.
	ExtractionError string `json:"extraction_error,omitempty"`

	// UploadedAt is when the document was received.
	UploadedAt time.Time `json:"uploaded_at"`
}

// Ref returns the record reference for this document.
func (d *DocumentMetadata) Ref() DocumentRef {
	return DocumentRef{
		DocumentID: d.ID,
		FileName:   d.FileName,
		StorageRef: d.StorageRef,
		UploadedAt: d.UploadedAt,
	}
}

// AppliedFields reports the outcome of applying one extraction.
type AppliedFields struct {
	// Written lists the flat keys that were filled.
	Written []string `json:"written"`

	// Skipped lists the flat keys left alone because they were already set
	// or the extracted value was blank.
	Skipped []string `json:"skipped"`

	// Unmapped lists extractor field names with no form mapping.
	Unmapped []string `json:"unmapped"`
}

// Sort orders every list so results are deterministic.
func (a *AppliedFields) Sort() {
	sort.Strings(a.Written)
	sort.Strings(a.Skipped)
	sort.Strings(a.Unmapped)
}

// UploadResult is returned after a document upload.
type UploadResult struct {
	// Document is the stored metadata.
	Document DocumentMetadata

	// Applied is the auto-fill outcome. Empty when extraction failed.
	Applied AppliedFields

	// ApplicationID is the application the document was attached to.
	ApplicationID string
}
