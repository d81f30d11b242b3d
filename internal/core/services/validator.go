package services

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"

	"github.com/custodia-labs/loanform/internal/core/domain"
)

var (
	panPattern    = regexp.MustCompile(`^[A-Z]{5}[0-9]{4}[A-Z]$`)
	gstinPattern  = regexp.MustCompile(`^[0-9]{2}[A-Z]{5}[0-9]{4}[A-Z][0-9A-Z]Z[0-9A-Z]$`)
	udyamPattern  = regexp.MustCompile(`^UDYAM-[A-Z]{2}-[0-9]{2}-[0-9]{7}$`)
	mobilePattern = regexp.MustCompile(`^(\+91)?[6-9][0-9]{9}$`)
)

// requiredBasicInfo are the basic information fields a submission needs.
var requiredBasicInfo = []string{
	"enterprise_name",
	"udyam_number",
	"address",
	"state",
	"mobile",
	"email",
	"pan",
	"constitution",
}

// Validator checks an aggregated record for completeness before
// submission. It is never part of aggregation.
type Validator struct{}

// NewValidator creates a new validator.
func NewValidator() *Validator {
	return &Validator{}
}

// Validate returns every completeness or format problem found in record.
// An empty result means the record may be submitted.
func (v *Validator) Validate(record *domain.ApplicationRecord) []domain.Issue {
	var issues []domain.Issue
	add := func(field, format string, args ...any) {
		issues = append(issues, domain.Issue{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	for _, field := range requiredBasicInfo {
		if blank(record.BasicInfo[field]) {
			add(field, "is required")
		}
	}

	checkFormat := func(field, value string, pattern *regexp.Regexp, what string) {
		if !blank(value) && !pattern.MatchString(strings.ToUpper(strings.TrimSpace(value))) {
			add(field, "is not a valid %s", what)
		}
	}
	checkFormat("pan", record.BasicInfo["pan"], panPattern, "PAN")
	checkFormat("gst_number", record.BasicInfo["gst_number"], gstinPattern, "GSTIN")
	checkFormat("udyam_number", record.BasicInfo["udyam_number"], udyamPattern, "Udyam registration number")
	checkFormat("mobile", strings.ReplaceAll(record.BasicInfo["mobile"], " ", ""), mobilePattern, "mobile number")

	if email := record.BasicInfo["email"]; !blank(email) {
		if _, err := mail.ParseAddress(email); err != nil {
			add("email", "is not a valid email address")
		}
	}

	if len(record.Directors) == 0 {
		add("num_directors", "at least one director is required")
	}
	for i, d := range record.Directors {
		if blank(d["name"]) {
			add(domain.GroupKey(domain.GroupDirectors, i, "name").String(), "is required")
		}
		key := domain.GroupKey(domain.GroupDirectors, i, "pan").String()
		if blank(d["pan"]) {
			add(key, "is required")
		} else {
			checkFormat(key, d["pan"], panPattern, "PAN")
		}
	}

	if len(record.CreditFacilities.Proposed) == 0 {
		add("num_proposed_facilities", "at least one proposed facility is required")
	}
	for i, f := range record.CreditFacilities.Proposed {
		for _, field := range []string{"type", "amount"} {
			if blank(f[field]) {
				add(domain.GroupKey(domain.GroupProposedFacilities, i, field).String(), "is required")
			}
		}
	}

	for i, u := range record.Undertakings {
		if !IsAccepted(u) {
			add(domain.UndertakingKey(i).String(), "must be accepted")
		}
	}

	return issues
}

// IsAccepted reports whether an undertaking value means the applicant agreed.
func IsAccepted(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "yes", "y", "1", "on", "accepted":
		return true
	default:
		return false
	}
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
