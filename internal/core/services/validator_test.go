package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/loanform/internal/core/domain"
)

func completeStore() *domain.FieldStore {
	store := domain.NewFieldStore()
	for key, value := range map[string]string{
		"enterprise_name":            "Acme Traders",
		"udyam_number":               "UDYAM-MH-01-0000001",
		"address":                    "12 MG Road, Pune",
		"state":                      "Maharashtra",
		"mobile":                     "9876543210",
		"email":                      "owner@acme.example",
		"pan":                        "ABCDE1234F",
		"gst_number":                 "27ABCDE1234F1Z5",
		"constitution":               "Proprietorship",
		"director_name_0":            "Asha Rao",
		"director_pan_0":             "ABCDE1234G",
		"proposed_facility_type_0":   "Term Loan",
		"proposed_facility_amount_0": "1000000",
	} {
		k, err := domain.ParseFieldKey(key)
		if err != nil {
			panic(err)
		}
		store.SetUser(k, value)
	}
	for i := 0; i < domain.UndertakingCount; i++ {
		store.SetUser(domain.UndertakingKey(i), "yes")
	}
	return store
}

func issueFields(issues []domain.Issue) []string {
	fields := make([]string, 0, len(issues))
	for _, i := range issues {
		fields = append(fields, i.Field)
	}
	return fields
}

func TestValidator_Validate_Complete(t *testing.T) {
	record := NewAggregator().Aggregate(completeStore(), nil)

	assert.Empty(t, NewValidator().Validate(&record))
}

func TestValidator_Validate_EmptyRecord(t *testing.T) {
	record := NewAggregator().Aggregate(domain.NewFieldStore(), nil)

	fields := issueFields(NewValidator().Validate(&record))

	assert.Contains(t, fields, "enterprise_name")
	assert.Contains(t, fields, "pan")
	assert.Contains(t, fields, "director_name_0")
	assert.Contains(t, fields, "proposed_facility_amount_0")
	assert.Contains(t, fields, "undertaking_0")
	assert.Contains(t, fields, "undertaking_7")
	assert.NotContains(t, fields, "gst_number")
}

func TestValidator_Validate_Formats(t *testing.T) {
	store := completeStore()
	store.SetUser(domain.ScalarKey("pan"), "12345")
	store.SetUser(domain.ScalarKey("gst_number"), "not-a-gstin")
	store.SetUser(domain.ScalarKey("email"), "no-at-sign")
	store.SetUser(domain.ScalarKey("mobile"), "12345")
	store.SetUser(domain.ScalarKey("udyam_number"), "UDYAM-1")
	record := NewAggregator().Aggregate(store, nil)

	fields := issueFields(NewValidator().Validate(&record))

	assert.ElementsMatch(t, []string{"pan", "gst_number", "email", "mobile", "udyam_number"}, fields)
}

func TestValidator_Validate_NoDirectors(t *testing.T) {
	store := completeStore()
	store.SetUser(domain.CountKey(domain.GroupDirectors), "0")
	record := NewAggregator().Aggregate(store, nil)

	fields := issueFields(NewValidator().Validate(&record))

	assert.Equal(t, []string{"num_directors"}, fields)
}

func TestIsAccepted(t *testing.T) {
	for _, v := range []string{"true", "Yes", " y ", "1", "on", "ACCEPTED"} {
		assert.True(t, IsAccepted(v), v)
	}
	for _, v := range []string{"", "no", "false", "0", "maybe"} {
		assert.False(t, IsAccepted(v), v)
	}
}
