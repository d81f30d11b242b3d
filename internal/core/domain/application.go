package domain

import "time"

// FieldSet is one homogeneous set of named values: a director, a facility,
// a performance row. Keys are record field names.
type FieldSet map[string]string

// ApplicationRecord is the canonical aggregate of a loan application.
// It is the shape used both in memory and in storage. Every leaf is
// present; unset values are empty strings.
type ApplicationRecord struct {
	BasicInfo         FieldSet               `json:"basic_info"`
	Directors         []FieldSet             `json:"directors"`
	CreditFacilities  CreditFacilities       `json:"credit_facilities"`
	Collateral        []FieldSet             `json:"collateral"`
	Performance       Performance            `json:"performance"`
	BusinessRelations BusinessRelations      `json:"business_relations"`
	Undertakings      []string               `json:"undertakings"`
	Documents         map[string]DocumentRef `json:"documents"`
}

// CreditFacilities holds existing and proposed facilities.
type CreditFacilities struct {
	Existing []FieldSet `json:"existing"`
	Proposed []FieldSet `json:"proposed"`
}

// Performance holds the year-indexed past performance table.
type Performance struct {
	PastPerformance map[string]FieldSet `json:"past_performance"`
}

// BusinessRelations holds the major suppliers and customers.
type BusinessRelations struct {
	Suppliers []FieldSet `json:"suppliers"`
	Customers []FieldSet `json:"customers"`
}

// Group returns the rows of a repeated group.
func (r *ApplicationRecord) Group(name GroupName) []FieldSet {
	switch name {
	case GroupDirectors:
		return r.Directors
	case GroupExistingFacilities:
		return r.CreditFacilities.Existing
	case GroupProposedFacilities:
		return r.CreditFacilities.Proposed
	case GroupCollateral:
		return r.Collateral
	case GroupSuppliers:
		return r.BusinessRelations.Suppliers
	case GroupCustomers:
		return r.BusinessRelations.Customers
	default:
		return nil
	}
}

// SetGroup replaces the rows of a repeated group.
func (r *ApplicationRecord) SetGroup(name GroupName, rows []FieldSet) {
	switch name {
	case GroupDirectors:
		r.Directors = rows
	case GroupExistingFacilities:
		r.CreditFacilities.Existing = rows
	case GroupProposedFacilities:
		r.CreditFacilities.Proposed = rows
	case GroupCollateral:
		r.Collateral = rows
	case GroupSuppliers:
		r.BusinessRelations.Suppliers = rows
	case GroupCustomers:
		r.BusinessRelations.Customers = rows
	}
}

// ApplicationStatus is the lifecycle state of a stored application.
type ApplicationStatus string

// Application states.
const (
	// StatusDraft is an application saved during data entry.
	StatusDraft ApplicationStatus = "draft"

	// StatusSubmitted is an application the applicant has submitted.
	StatusSubmitted ApplicationStatus = "submitted"
)

// IsValid returns true if the status is recognised.
func (s ApplicationStatus) IsValid() bool {
	return s == StatusDraft || s == StatusSubmitted
}

// Application is a stored application record.
type Application struct {
	// ID is the opaque identifier assigned by storage on first save.
	// It is shown to the applicant as the confirmation reference.
	ID string `json:"application_id"`

	// Status is the lifecycle state.
	Status ApplicationStatus `json:"status"`

	// Record is the full application data.
	Record ApplicationRecord `json:"record"`

	// CreatedAt is when the application was first stored.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is when the application was last replaced.
	UpdatedAt time.Time `json:"updated_at"`

	// SubmittedAt is set once the application is submitted.
	SubmittedAt *time.Time `json:"submitted_at,omitempty"`
}
