package domain

import "time"

// Session is one applicant's in-progress application. It owns the field
// store for the form and remembers the application ID once storage has
// assigned one.
type Session struct {
	// ID is the unique identifier for the session.
	ID string

	// ApplicationID is empty until the first save.
	ApplicationID string

	// Fields holds every form value with its provenance.
	Fields *FieldStore

	// Documents maps an upload slot to the stored document.
	Documents map[string]DocumentRef

	// Section is the index into Sections of the current step.
	Section int

	// Submitted is set once the application has been submitted.
	Submitted bool

	// CreatedAt is when the session started.
	CreatedAt time.Time

	// UpdatedAt is when the session last changed.
	UpdatedAt time.Time
}

// NewSession starts an empty session.
func NewSession(id string, now time.Time) *Session {
	return &Session{
		ID:        id,
		Fields:    NewFieldStore(),
		Documents: make(map[string]DocumentRef),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// SectionName returns the name of the current section.
func (s *Session) SectionName() string {
	if s.Section < 0 || s.Section >= len(Sections) {
		return ""
	}
	return Sections[s.Section]
}

// IsLastSection reports whether the session is on the review step.
func (s *Session) IsLastSection() bool {
	return s.Section >= len(Sections)-1
}

// Issue is one completeness problem found by validation.
type Issue struct {
	// Field is the flat key or record path the issue refers to.
	Field string `json:"field"`

	// Message describes the problem.
	Message string `json:"message"`
}

// Clone returns a deep copy of the session.
func (s *Session) Clone() *Session {
	c := *s
	c.Fields = NewFieldStore()
	if s.Fields != nil {
		c.Fields.Restore(s.Fields.Fields())
	}
	c.Documents = make(map[string]DocumentRef, len(s.Documents))
	for slot, ref := range s.Documents {
		c.Documents[slot] = ref
	}
	return &c
}
