package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDocumentSlot(t *testing.T) {
	tests := []struct {
		in    string
		slot  DocumentSlot
		index int
	}{
		{"udyam_certificate", SlotUdyamCertificate, 0},
		{"pan_card", SlotPANCard, 0},
		{"director_kyc", SlotDirectorKYC, 0},
		{"director_kyc_2", SlotDirectorKYC, 2},
		{"collateral_document_1", SlotCollateralDocument, 1},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			slot, idx, err := ParseDocumentSlot(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.slot, slot)
			assert.Equal(t, tt.index, idx)
		})
	}
}

func TestParseDocumentSlot_Invalid(t *testing.T) {
	for _, in := range []string{"", "passport", "pan_card_1", "director_kyc_x", "director_kyc_99"} {
		t.Run(in, func(t *testing.T) {
			_, _, err := ParseDocumentSlot(in)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestSlotGroup(t *testing.T) {
	g, ok := SlotGroup(SlotDirectorKYC)
	assert.True(t, ok)
	assert.Equal(t, GroupDirectors, g)

	_, ok = SlotGroup(SlotGSTCertificate)
	assert.False(t, ok)
}

func TestDocumentMetadata_Ref(t *testing.T) {
	now := time.Now()
	meta := DocumentMetadata{
		ID:         "doc-1",
		FileName:   "udyam.pdf",
		StorageRef: "blob-1",
		UploadedAt: now,
	}

	ref := meta.Ref()

	assert.Equal(t, DocumentRef{DocumentID: "doc-1", FileName: "udyam.pdf", StorageRef: "blob-1", UploadedAt: now}, ref)
}

func TestAppliedFields_Sort(t *testing.T) {
	a := AppliedFields{
		Written:  []string{"pan", "address"},
		Skipped:  []string{"mobile", "email"},
		Unmapped: []string{"Zeta", "Alpha"},
	}

	a.Sort()

	assert.Equal(t, []string{"address", "pan"}, a.Written)
	assert.Equal(t, []string{"email", "mobile"}, a.Skipped)
	assert.Equal(t, []string{"Alpha", "Zeta"}, a.Unmapped)
}

func TestDetectMIMEType(t *testing.T) {
	assert.Equal(t, "application/pdf", DetectMIMEType("udyam.PDF"))
	assert.Equal(t, "text/plain", DetectMIMEType("notes.txt"))
	assert.Equal(t, "image/jpeg", DetectMIMEType("/tmp/pan.jpeg"))
	assert.Equal(t, "application/octet-stream", DetectMIMEType("archive.tar"))
}

func TestSession_Sections(t *testing.T) {
	s := NewSession("s-1", time.Now())
	require.NotNil(t, s.Fields)
	assert.Equal(t, "Basic Information", s.SectionName())
	assert.False(t, s.IsLastSection())

	s.Section = len(Sections) - 1
	assert.Equal(t, "Review Application", s.SectionName())
	assert.True(t, s.IsLastSection())

	s.Section = 99
	assert.Equal(t, "", s.SectionName())
}

func TestSession_Clone(t *testing.T) {
	s := NewSession("s-1", time.Now())
	s.Fields.SetUser(ScalarKey("pan"), "ABCDE1234F")
	s.Documents["pan_card"] = DocumentRef{DocumentID: "doc-1"}

	c := s.Clone()
	c.Fields.SetUser(ScalarKey("pan"), "changed")
	c.Documents["gst_certificate"] = DocumentRef{DocumentID: "doc-2"}

	assert.Equal(t, "ABCDE1234F", s.Fields.Get(ScalarKey("pan")).Value)
	assert.Len(t, s.Documents, 1)
	assert.Equal(t, "s-1", c.ID)
}
