package domain

// GroupName identifies a repeated, index-addressed field group.
type GroupName string

// Repeated groups of the application form.
const (
	GroupDirectors          GroupName = "directors"
	GroupExistingFacilities GroupName = "existing_facilities"
	GroupProposedFacilities GroupName = "proposed_facilities"
	GroupCollateral         GroupName = "collateral"
	GroupSuppliers          GroupName = "suppliers"
	GroupCustomers          GroupName = "customers"
)

// MaxGroupSize caps the number of rows a repeated group may declare.
// Larger counts are clamped when aggregating.
const MaxGroupSize = 50

// UndertakingCount is the fixed number of undertakings acknowledged on the form.
const UndertakingCount = 8

// FieldSpec names one field of a row. Name is the field's name in the
// persisted record; Stem is the fragment used in the flat form key.
type FieldSpec struct {
	Name string
	Stem string
}

// GroupSchema describes a repeated group.
type GroupSchema struct {
	// Name identifies the group.
	Name GroupName

	// Prefix starts every flat key of the group (e.g. "director" in "director_name_0").
	Prefix string

	// CountKey is the scalar field holding the number of rows.
	CountKey string

	// DefaultCount applies when the count field is unset or unparsable.
	DefaultCount int

	// Fields is the fixed schema of each row, in display order.
	Fields []FieldSpec
}

// Field returns the field with the given record name.
func (g GroupSchema) Field(name string) (FieldSpec, bool) {
	for _, f := range g.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldSpec{}, false
}

var groupSchemas = []GroupSchema{
	{
		Name:         GroupDirectors,
		Prefix:       "director",
		CountKey:     "num_directors",
		DefaultCount: 1,
		Fields: []FieldSpec{
			{Name: "name", Stem: "name"},
			{Name: "designation", Stem: "designation"},
			{Name: "dob", Stem: "dob"},
			{Name: "pan", Stem: "pan"},
			{Name: "aadhaar", Stem: "aadhaar"},
			{Name: "address", Stem: "address"},
			{Name: "mobile", Stem: "mobile"},
			{Name: "networth", Stem: "networth"},
		},
	},
	{
		Name:         GroupExistingFacilities,
		Prefix:       "existing_facility",
		CountKey:     "num_facilities",
		DefaultCount: 0,
		Fields: []FieldSpec{
			{Name: "type", Stem: "type"},
			{Name: "limit", Stem: "limit"},
			{Name: "outstanding", Stem: "outstanding"},
			{Name: "bank", Stem: "bank"},
			{Name: "security", Stem: "security"},
		},
	},
	{
		Name:         GroupProposedFacilities,
		Prefix:       "proposed_facility",
		CountKey:     "num_proposed_facilities",
		DefaultCount: 1,
		Fields: []FieldSpec{
			{Name: "type", Stem: "type"},
			{Name: "amount", Stem: "amount"},
			{Name: "purpose", Stem: "purpose"},
			{Name: "security", Stem: "security"},
		},
	},
	{
		Name:         GroupCollateral,
		Prefix:       "collateral",
		CountKey:     "num_collaterals",
		DefaultCount: 0,
		Fields: []FieldSpec{
			{Name: "owner", Stem: "owner"},
			{Name: "type", Stem: "type"},
			{Name: "details", Stem: "details"},
			{Name: "value", Stem: "value"},
		},
	},
	{
		Name:         GroupSuppliers,
		Prefix:       "supplier",
		CountKey:     "num_suppliers",
		DefaultCount: 3,
		Fields: []FieldSpec{
			{Name: "name", Stem: "name"},
			{Name: "contact", Stem: "contact"},
			{Name: "association", Stem: "association"},
			{Name: "business_percentage", Stem: "business"},
		},
	},
	{
		Name:         GroupCustomers,
		Prefix:       "customer",
		CountKey:     "num_customers",
		DefaultCount: 3,
		Fields: []FieldSpec{
			{Name: "name", Stem: "name"},
			{Name: "contact", Stem: "contact"},
			{Name: "association", Stem: "association"},
			{Name: "business_percentage", Stem: "business"},
		},
	},
}

// Groups returns the schemas of all repeated groups in record order.
func Groups() []GroupSchema {
	out := make([]GroupSchema, len(groupSchemas))
	copy(out, groupSchemas)
	return out
}

// LookupGroup returns the schema for a repeated group.
func LookupGroup(name GroupName) (GroupSchema, bool) {
	for _, g := range groupSchemas {
		if g.Name == name {
			return g, true
		}
	}
	return GroupSchema{}, false
}

// BasicInfoFields lists the flat fields of the basic information section.
var BasicInfoFields = []string{
	"enterprise_name",
	"udyam_number",
	"classification",
	"date_of_classification",
	"social_category",
	"address",
	"state",
	"major_activity",
	"nic_5_digit",
	"mobile",
	"email",
	"date_of_incorporation",
	"date_of_commencement",
	"gst_number",
	"pan",
	"constitution",
}

// PerformanceLabels are the fixed rows of the past-performance table, oldest first.
var PerformanceLabels = []string{"Past Year-II", "Past Year-I", "Present Year", "Next Year"}

// PerformanceFields are the columns of the past-performance table.
var PerformanceFields = []FieldSpec{
	{Name: "net_sales", Stem: "Net Sales"},
	{Name: "net_profit", Stem: "Net Profit"},
	{Name: "capital", Stem: "Capital"},
}

// IsBasicInfoField reports whether name is a basic information field.
func IsBasicInfoField(name string) bool {
	for _, f := range BasicInfoFields {
		if f == name {
			return true
		}
	}
	return false
}

// IsPerformanceLabel reports whether label is a past-performance row.
func IsPerformanceLabel(label string) bool {
	for _, l := range PerformanceLabels {
		if l == label {
			return true
		}
	}
	return false
}

// Sections are the ordered steps of the form.
var Sections = []string{
	"Basic Information",
	"Proprietor/Partners/Directors",
	"Credit Facilities",
	"Collateral and Guarantors",
	"Past Performance and Business Relations",
	"Associate Concerns and Statutory Obligations",
	"Undertakings and Document Upload",
	"Review Application",
}
