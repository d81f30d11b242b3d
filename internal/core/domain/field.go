package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Origin records where a field's current value came from.
type Origin int

const (
	// OriginUnset means the field has never been written.
	OriginUnset Origin = iota

	// OriginUserEntered means the user typed (or cleared) the value.
	// It is sticky: document extraction never overwrites it.
	OriginUserEntered

	// OriginDocumentDerived means the value was auto-filled from a document.
	OriginDocumentDerived
)

// String returns the string representation.
func (o Origin) String() string {
	switch o {
	case OriginUserEntered:
		return "user_entered"
	case OriginDocumentDerived:
		return "document_derived"
	default:
		return "unset"
	}
}

// KeyKind distinguishes the shapes a FieldKey can take.
type KeyKind int

const (
	// KeyScalar is a flat field such as "enterprise_name" or "num_directors".
	KeyScalar KeyKind = iota

	// KeyGroup is a field inside a repeated group row.
	KeyGroup

	// KeyYear is a cell of the year-indexed performance table.
	KeyYear

	// KeyUndertaking is one of the fixed undertakings.
	KeyUndertaking
)

// FieldKey is the structured address of a form field.
// Flat string keys exist only at the storage and command-line boundary.
type FieldKey struct {
	Kind  KeyKind
	Group GroupName
	Index int
	Row   string
	Field string
}

// ScalarKey addresses a flat field.
func ScalarKey(field string) FieldKey {
	return FieldKey{Kind: KeyScalar, Field: field}
}

// GroupKey addresses field (a record name) in row index of group.
func GroupKey(group GroupName, index int, field string) FieldKey {
	return FieldKey{Kind: KeyGroup, Group: group, Index: index, Field: field}
}

// YearKey addresses field (a record name) in the performance row labelled row.
func YearKey(row, field string) FieldKey {
	return FieldKey{Kind: KeyYear, Row: row, Field: field}
}

// UndertakingKey addresses the undertaking at index.
func UndertakingKey(index int) FieldKey {
	return FieldKey{Kind: KeyUndertaking, Index: index}
}

// CountKey addresses the row-count field of a repeated group.
func CountKey(group GroupName) FieldKey {
	schema, _ := LookupGroup(group)
	return ScalarKey(schema.CountKey)
}

// String serialises the key to its flat form, e.g. "director_name_2".
func (k FieldKey) String() string {
	switch k.Kind {
	case KeyGroup:
		schema, ok := LookupGroup(k.Group)
		if !ok {
			return fmt.Sprintf("%s_%s_%d", k.Group, k.Field, k.Index)
		}
		stem := k.Field
		if fs, ok := schema.Field(k.Field); ok {
			stem = fs.Stem
		}
		return fmt.Sprintf("%s_%s_%d", schema.Prefix, stem, k.Index)
	case KeyYear:
		stem := k.Field
		for _, fs := range PerformanceFields {
			if fs.Name == k.Field {
				stem = fs.Stem
				break
			}
		}
		return stem + "_" + k.Row
	case KeyUndertaking:
		return "undertaking_" + strconv.Itoa(k.Index)
	default:
		return k.Field
	}
}

// Validate checks the key addresses a field that exists in the schema.
func (k FieldKey) Validate() error {
	switch k.Kind {
	case KeyScalar:
		if IsBasicInfoField(k.Field) || isCountField(k.Field) {
			return nil
		}
	case KeyGroup:
		schema, ok := LookupGroup(k.Group)
		if ok && k.Index >= 0 && k.Index < MaxGroupSize {
			if _, ok := schema.Field(k.Field); ok {
				return nil
			}
		}
	case KeyYear:
		if IsPerformanceLabel(k.Row) {
			for _, fs := range PerformanceFields {
				if fs.Name == k.Field {
					return nil
				}
			}
		}
	case KeyUndertaking:
		if k.Index >= 0 && k.Index < UndertakingCount {
			return nil
		}
	}
	return fmt.Errorf("%w: unknown field %q", ErrInvalidInput, k.String())
}

// ParseFieldKey converts a flat key back into its structured form.
// Only keys that exist in the form schema are accepted.
func ParseFieldKey(flat string) (FieldKey, error) {
	flat = strings.TrimSpace(flat)
	if flat == "" {
		return FieldKey{}, fmt.Errorf("%w: empty field key", ErrInvalidInput)
	}

	if rest, ok := strings.CutPrefix(flat, "undertaking_"); ok {
		if idx, err := strconv.Atoi(rest); err == nil {
			key := UndertakingKey(idx)
			return key, key.Validate()
		}
	}

	for _, fs := range PerformanceFields {
		if row, ok := strings.CutPrefix(flat, fs.Stem+"_"); ok && IsPerformanceLabel(row) {
			return YearKey(row, fs.Name), nil
		}
	}

	for _, schema := range groupSchemas {
		for _, fs := range schema.Fields {
			rest, ok := strings.CutPrefix(flat, schema.Prefix+"_"+fs.Stem+"_")
			if !ok {
				continue
			}
			idx, err := strconv.Atoi(rest)
			if err != nil {
				continue
			}
			key := GroupKey(schema.Name, idx, fs.Name)
			return key, key.Validate()
		}
	}

	key := ScalarKey(flat)
	return key, key.Validate()
}

func isCountField(name string) bool {
	for _, g := range groupSchemas {
		if g.CountKey == name {
			return true
		}
	}
	return false
}

// FieldValue is one named field with its provenance.
type FieldValue struct {
	// Key addresses the field.
	Key FieldKey

	// Value is the current value; blank means unset.
	Value string

	// Origin records who supplied Value.
	Origin Origin

	// SourceDocument references the supplying document when Origin is OriginDocumentDerived.
	SourceDocument string

	// UpdatedAt is when the value last changed.
	UpdatedAt time.Time
}

// IsBlank reports whether the value is empty or whitespace.
func (v FieldValue) IsBlank() bool {
	return strings.TrimSpace(v.Value) == ""
}
