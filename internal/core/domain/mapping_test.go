package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeExtractedName(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{"Applicant Name", "applicant name"},
		{"  Udyam   Registration\tNumber: ", "udyam registration number"},
		{"GSTIN", "gstin"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeExtractedName(tt.in))
		})
	}
}

func TestParseFieldTarget(t *testing.T) {
	target, err := ParseFieldTarget("enterprise_name")
	require.NoError(t, err)
	assert.Equal(t, FieldTarget{Key: ScalarKey("enterprise_name")}, target)

	target, err = ParseFieldTarget("director_pan_*")
	require.NoError(t, err)
	assert.True(t, target.SlotRelative)
	assert.Equal(t, GroupKey(GroupDirectors, 0, "pan"), target.Key)
	assert.Equal(t, "director_pan_*", target.String())

	target, err = ParseFieldTarget("supplier_business_*")
	require.NoError(t, err)
	assert.Equal(t, GroupKey(GroupSuppliers, 0, "business_percentage"), target.Key)
}

func TestParseFieldTarget_Invalid(t *testing.T) {
	for _, in := range []string{"", "nickname", "enterprise_name_*", "director_height_*"} {
		t.Run(in, func(t *testing.T) {
			_, err := ParseFieldTarget(in)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestFieldTarget_Resolve(t *testing.T) {
	relative := FieldTarget{Key: GroupKey(GroupDirectors, 0, "name"), SlotRelative: true}
	assert.Equal(t, GroupKey(GroupDirectors, 2, "name"), relative.Resolve(2))

	fixed := FieldTarget{Key: GroupKey(GroupDirectors, 1, "name")}
	assert.Equal(t, GroupKey(GroupDirectors, 1, "name"), fixed.Resolve(4))
}
