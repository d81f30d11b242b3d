package services

import (
	"sort"

	"github.com/custodia-labs/loanform/internal/core/domain"
	"github.com/custodia-labs/loanform/internal/logger"
)

// DefaultFieldMapping is the built-in translation table from normalised
// extractor field names to form fields.
var DefaultFieldMapping = domain.FieldMapping{
	// Udyam registration certificate.
	"applicant name":                   scalar("enterprise_name"),
	"name of enterprise":               scalar("enterprise_name"),
	"enterprise name":                  scalar("enterprise_name"),
	"udyam registration number":        scalar("udyam_number"),
	"udyam number":                     scalar("udyam_number"),
	"type of enterprise":               scalar("classification"),
	"classification":                   scalar("classification"),
	"date of classification":           scalar("date_of_classification"),
	"social category":                  scalar("social_category"),
	"official address":                 scalar("address"),
	"address":                          scalar("address"),
	"state":                            scalar("state"),
	"major activity":                   scalar("major_activity"),
	"nic 5 digit code":                 scalar("nic_5_digit"),
	"nic code":                         scalar("nic_5_digit"),
	"mobile":                           scalar("mobile"),
	"mobile number":                    scalar("mobile"),
	"email":                            scalar("email"),
	"email id":                         scalar("email"),
	"date of incorporation":            scalar("date_of_incorporation"),
	"date of commencement":             scalar("date_of_commencement"),
	"date of commencement of business": scalar("date_of_commencement"),

	// GST, PAN and incorporation certificates.
	"gstin":                    scalar("gst_number"),
	"gst number":               scalar("gst_number"),
	"pan":                      scalar("pan"),
	"permanent account number": scalar("pan"),
	"constitution of business": scalar("constitution"),
	"constitution":             scalar("constitution"),

	// Director KYC documents, indexed by the upload slot.
	"director name":       slotRelative(domain.GroupDirectors, "name"),
	"designation":         slotRelative(domain.GroupDirectors, "designation"),
	"date of birth":       slotRelative(domain.GroupDirectors, "dob"),
	"dob":                 slotRelative(domain.GroupDirectors, "dob"),
	"director pan":        slotRelative(domain.GroupDirectors, "pan"),
	"aadhaar number":      slotRelative(domain.GroupDirectors, "aadhaar"),
	"aadhaar":             slotRelative(domain.GroupDirectors, "aadhaar"),
	"residential address": slotRelative(domain.GroupDirectors, "address"),
	"director mobile":     slotRelative(domain.GroupDirectors, "mobile"),
	"net worth":           slotRelative(domain.GroupDirectors, "networth"),

	// Collateral documents, indexed by the upload slot.
	"property owner":   slotRelative(domain.GroupCollateral, "owner"),
	"property type":    slotRelative(domain.GroupCollateral, "type"),
	"property details": slotRelative(domain.GroupCollateral, "details"),
	"market value":     slotRelative(domain.GroupCollateral, "value"),
	"valuation":        slotRelative(domain.GroupCollateral, "value"),

	// Financial statements.
	"net sales":               year("Present Year", "net_sales"),
	"turnover":                year("Present Year", "net_sales"),
	"net profit":              year("Present Year", "net_profit"),
	"capital":                 year("Present Year", "capital"),
	"net sales past year-i":   year("Past Year-I", "net_sales"),
	"net sales past year-ii":  year("Past Year-II", "net_sales"),
	"net sales next year":     year("Next Year", "net_sales"),
	"net profit past year-i":  year("Past Year-I", "net_profit"),
	"net profit past year-ii": year("Past Year-II", "net_profit"),
	"net profit next year":    year("Next Year", "net_profit"),
	"capital past year-i":     year("Past Year-I", "capital"),
	"capital past year-ii":    year("Past Year-II", "capital"),
	"capital next year":       year("Next Year", "capital"),
}

// SlotFieldMappings override DefaultFieldMapping for documents uploaded
// into an indexed slot. Identity and property documents use generic
// labels that name the person or property of that row, not the enterprise.
var SlotFieldMappings = map[domain.DocumentSlot]domain.FieldMapping{
	domain.SlotDirectorKYC: {
		"name":                     slotRelative(domain.GroupDirectors, "name"),
		"full name":                slotRelative(domain.GroupDirectors, "name"),
		"applicant name":           slotRelative(domain.GroupDirectors, "name"),
		"pan":                      slotRelative(domain.GroupDirectors, "pan"),
		"pan number":               slotRelative(domain.GroupDirectors, "pan"),
		"permanent account number": slotRelative(domain.GroupDirectors, "pan"),
		"address":                  slotRelative(domain.GroupDirectors, "address"),
		"mobile":                   slotRelative(domain.GroupDirectors, "mobile"),
		"mobile number":            slotRelative(domain.GroupDirectors, "mobile"),
		"phone":                    slotRelative(domain.GroupDirectors, "mobile"),
		"aadhaar":                  slotRelative(domain.GroupDirectors, "aadhaar"),
		"aadhaar number":           slotRelative(domain.GroupDirectors, "aadhaar"),
	},
	domain.SlotCollateralDocument: {
		"name":          slotRelative(domain.GroupCollateral, "owner"),
		"owner":         slotRelative(domain.GroupCollateral, "owner"),
		"owner name":    slotRelative(domain.GroupCollateral, "owner"),
		"address":       slotRelative(domain.GroupCollateral, "details"),
		"type":          slotRelative(domain.GroupCollateral, "type"),
		"value":         slotRelative(domain.GroupCollateral, "value"),
		"property name": slotRelative(domain.GroupCollateral, "details"),
	},
}

func scalar(field string) domain.FieldTarget {
	return domain.FieldTarget{Key: domain.ScalarKey(field)}
}

func slotRelative(group domain.GroupName, field string) domain.FieldTarget {
	return domain.FieldTarget{Key: domain.GroupKey(group, 0, field), SlotRelative: true}
}

func year(label, field string) domain.FieldTarget {
	return domain.FieldTarget{Key: domain.YearKey(label, field)}
}

// Reconciler merges extracted document fields into a session's field
// store without overwriting values the user supplied.
// The translation table is fixed for the lifetime of the Reconciler.
type Reconciler struct {
	mapping domain.FieldMapping
}

// NewReconciler creates a reconciler using DefaultFieldMapping extended
// by extra. Entries in extra replace built-in entries with the same name.
func NewReconciler(extra domain.FieldMapping) *Reconciler {
	mapping := make(domain.FieldMapping, len(DefaultFieldMapping)+len(extra))
	for name, target := range DefaultFieldMapping {
		mapping[name] = target
	}
	for name, target := range extra {
		mapping[domain.NormalizeExtractedName(name)] = target
	}
	return &Reconciler{mapping: mapping}
}

// Lookup translates an extractor field name for a document uploaded into
// slot. Indexed slots consult their own table before the shared one.
func (r *Reconciler) Lookup(name, slot string) (domain.FieldKey, bool) {
	name = domain.NormalizeExtractedName(name)
	base, slotIndex, err := domain.ParseDocumentSlot(slot)
	if err != nil {
		base, slotIndex = "", 0
	}
	if target, ok := SlotFieldMappings[base][name]; ok {
		return target.Resolve(slotIndex), true
	}
	target, ok := r.mapping[name]
	if !ok {
		return domain.FieldKey{}, false
	}
	return target.Resolve(slotIndex), true
}

// ApplyExtraction writes every mapped extracted value into store through
// the derived-value merge rule. Names are processed in sorted order so
// that when two names map to the same field the first one wins.
// Applying the same extraction twice leaves the store as applying it once.
func (r *Reconciler) ApplyExtraction(
	store *domain.FieldStore,
	extracted map[string]string,
	source domain.DocumentSource,
) domain.AppliedFields {
	names := make([]string, 0, len(extracted))
	for name := range extracted {
		names = append(names, name)
	}
	sort.Strings(names)

	result := domain.AppliedFields{
		Written:  []string{},
		Skipped:  []string{},
		Unmapped: []string{},
	}
	written := make(map[domain.FieldKey]bool)
	skipped := make(map[domain.FieldKey]bool)

	for _, name := range names {
		key, ok := r.Lookup(name, source.Slot)
		if !ok {
			logger.Debug("%v: %q in document %s", domain.ErrUnmappedField, name, source.ID)
			result.Unmapped = append(result.Unmapped, name)
			continue
		}
		if store.SetDerived(key, extracted[name], source.ID) {
			written[key] = true
		} else {
			skipped[key] = true
		}
	}

	for key := range written {
		result.Written = append(result.Written, key.String())
	}
	for key := range skipped {
		if !written[key] {
			result.Skipped = append(result.Skipped, key.String())
		}
	}

	if len(result.Unmapped) > 0 {
		logger.Warn("document %s: %d unmapped field(s)", source.ID, len(result.Unmapped))
	}
	logger.Debug("document %s: %d written, %d skipped", source.ID, len(result.Written), len(result.Skipped))

	result.Sort()
	return result
}
