package domain

import (
	"fmt"
	"strings"
)

// slotIndexSuffix marks a mapping target whose row index comes from the
// document slot, e.g. "director_name_*".
const slotIndexSuffix = "_*"

// FieldTarget is the form field an extracted name translates to.
type FieldTarget struct {
	// Key is the destination field. For slot-relative targets the index
	// is replaced by the index of the uploading slot.
	Key FieldKey

	// SlotRelative takes the group row from the document slot.
	SlotRelative bool
}

// Resolve returns the concrete key for a document uploaded into slotIndex.
func (t FieldTarget) Resolve(slotIndex int) FieldKey {
	if !t.SlotRelative {
		return t.Key
	}
	key := t.Key
	key.Index = slotIndex
	return key
}

// String returns the flat form used in mapping files.
func (t FieldTarget) String() string {
	if !t.SlotRelative {
		return t.Key.String()
	}
	flat := t.Key.String()
	return flat[:strings.LastIndex(flat, "_")] + slotIndexSuffix
}

// FieldMapping translates normalised extractor field names to form fields.
type FieldMapping map[string]FieldTarget

// ParseFieldTarget parses a flat mapping target. A trailing "_*" on a
// repeated-group key makes the target slot-relative.
func ParseFieldTarget(s string) (FieldTarget, error) {
	s = strings.TrimSpace(s)
	if base, ok := strings.CutSuffix(s, slotIndexSuffix); ok {
		key, err := ParseFieldKey(base + "_0")
		if err != nil {
			return FieldTarget{}, err
		}
		if key.Kind != KeyGroup {
			return FieldTarget{}, fmt.Errorf("%w: %q is not a repeated-group field", ErrInvalidInput, s)
		}
		return FieldTarget{Key: key, SlotRelative: true}, nil
	}

	key, err := ParseFieldKey(s)
	if err != nil {
		return FieldTarget{}, err
	}
	return FieldTarget{Key: key}, nil
}

// NormalizeExtractedName folds an extractor field name for lookup:
// lower case, surrounding colons and whitespace removed, inner runs of
// whitespace collapsed to one space.
func NormalizeExtractedName(name string) string {
	name = strings.Trim(strings.TrimSpace(name), ":")
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}
