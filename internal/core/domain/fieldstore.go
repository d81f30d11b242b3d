package domain

import (
	"sort"
	"strings"
	"time"
)

// FieldStore holds the current value and provenance of every form field
// for one session. It is owned by the session and passed explicitly to
// the components that read or mutate it.
//
// FieldStore is not safe for concurrent use.
type FieldStore struct {
	fields map[FieldKey]FieldValue
	now    func() time.Time
}

// NewFieldStore creates an empty field store.
func NewFieldStore() *FieldStore {
	return &FieldStore{
		fields: make(map[FieldKey]FieldValue),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Get returns the field at key. Unwritten fields come back with OriginUnset
// and an empty value.
func (s *FieldStore) Get(key FieldKey) FieldValue {
	if v, ok := s.fields[key]; ok {
		return v
	}
	return FieldValue{Key: key, Origin: OriginUnset}
}

// SetUser records a user edit. It always overwrites.
func (s *FieldStore) SetUser(key FieldKey, value string) FieldValue {
	v := FieldValue{
		Key:       key,
		Value:     value,
		Origin:    OriginUserEntered,
		UpdatedAt: s.now(),
	}
	s.fields[key] = v
	return v
}

// Clear blanks a field as a user action. The blank is sticky and blocks
// later auto-fill until the user enters a value again.
func (s *FieldStore) Clear(key FieldKey) FieldValue {
	return s.SetUser(key, "")
}

// SetDerived fills key from a document. It writes only when the incoming
// value is non-blank and the field is unset, or holds a blank value that
// was not put there by the user. It reports whether the store changed.
func (s *FieldStore) SetDerived(key FieldKey, value, sourceDocument string) bool {
	if strings.TrimSpace(value) == "" {
		return false
	}

	existing := s.Get(key)
	switch {
	case existing.Origin == OriginUserEntered:
		return false
	case existing.Origin != OriginUnset && !existing.IsBlank():
		return false
	}

	s.fields[key] = FieldValue{
		Key:            key,
		Value:          value,
		Origin:         OriginDocumentDerived,
		SourceDocument: sourceDocument,
		UpdatedAt:      s.now(),
	}
	return true
}

// Snapshot returns the current values keyed by flat field key.
func (s *FieldStore) Snapshot() map[string]string {
	out := make(map[string]string, len(s.fields))
	for key, v := range s.fields {
		out[key.String()] = v.Value
	}
	return out
}

// Fields returns every written field ordered by flat key.
func (s *FieldStore) Fields() []FieldValue {
	out := make([]FieldValue, 0, len(s.fields))
	for _, v := range s.fields {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Key.String() < out[j].Key.String()
	})
	return out
}

// Restore loads previously saved fields, replacing any with the same key.
func (s *FieldStore) Restore(fields []FieldValue) {
	for _, v := range fields {
		s.fields[v.Key] = v
	}
}

// Len returns the number of written fields.
func (s *FieldStore) Len() int {
	return len(s.fields)
}
