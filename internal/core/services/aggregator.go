package services

import (
	"strconv"
	"strings"

	"github.com/custodia-labs/loanform/internal/core/domain"
)

// Aggregator assembles the flat field store into the nested application
// record, and back.
type Aggregator struct{}

// NewAggregator creates a new aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// Aggregate builds the application record from the store. It never
// mutates the store and never fails: missing fields are empty strings.
// Repeated groups take their row count from the store, falling back to
// the group default when the count is unset or unparsable.
func (a *Aggregator) Aggregate(store *domain.FieldStore, documents map[string]domain.DocumentRef) domain.ApplicationRecord {
	record := domain.ApplicationRecord{
		BasicInfo: make(domain.FieldSet, len(domain.BasicInfoFields)),
		Performance: domain.Performance{
			PastPerformance: make(map[string]domain.FieldSet, len(domain.PerformanceLabels)),
		},
		Undertakings: make([]string, domain.UndertakingCount),
		Documents:    make(map[string]domain.DocumentRef, len(documents)),
	}

	for _, field := range domain.BasicInfoFields {
		record.BasicInfo[field] = store.Get(domain.ScalarKey(field)).Value
	}

	for _, schema := range domain.Groups() {
		count := GroupCount(store, schema)
		rows := make([]domain.FieldSet, count)
		for i := range rows {
			row := make(domain.FieldSet, len(schema.Fields))
			for _, fs := range schema.Fields {
				row[fs.Name] = store.Get(domain.GroupKey(schema.Name, i, fs.Name)).Value
			}
			rows[i] = row
		}
		record.SetGroup(schema.Name, rows)
	}

	for _, label := range domain.PerformanceLabels {
		row := make(domain.FieldSet, len(domain.PerformanceFields))
		for _, fs := range domain.PerformanceFields {
			row[fs.Name] = store.Get(domain.YearKey(label, fs.Name)).Value
		}
		record.Performance.PastPerformance[label] = row
	}

	for i := range record.Undertakings {
		record.Undertakings[i] = store.Get(domain.UndertakingKey(i)).Value
	}

	for slot, ref := range documents {
		record.Documents[slot] = ref
	}

	return record
}

// Populate is the inverse of Aggregate. It returns a new store holding
// every non-blank value of the record as user-entered, with each group
// count set to the number of rows in the record.
func (a *Aggregator) Populate(record *domain.ApplicationRecord) *domain.FieldStore {
	store := domain.NewFieldStore()

	set := func(key domain.FieldKey, value string) {
		if strings.TrimSpace(value) != "" {
			store.SetUser(key, value)
		}
	}

	for _, field := range domain.BasicInfoFields {
		set(domain.ScalarKey(field), record.BasicInfo[field])
	}

	for _, schema := range domain.Groups() {
		rows := record.Group(schema.Name)
		if len(rows) > domain.MaxGroupSize {
			rows = rows[:domain.MaxGroupSize]
		}
		store.SetUser(domain.CountKey(schema.Name), strconv.Itoa(len(rows)))
		for i, row := range rows {
			for _, fs := range schema.Fields {
				set(domain.GroupKey(schema.Name, i, fs.Name), row[fs.Name])
			}
		}
	}

	for _, label := range domain.PerformanceLabels {
		row := record.Performance.PastPerformance[label]
		for _, fs := range domain.PerformanceFields {
			set(domain.YearKey(label, fs.Name), row[fs.Name])
		}
	}

	for i, value := range record.Undertakings {
		if i >= domain.UndertakingCount {
			break
		}
		set(domain.UndertakingKey(i), value)
	}

	return store
}

// Orphans returns non-blank group values whose row index lies beyond the
// group's current count. They are kept in the store but left out of the
// aggregated record, so growing the count again brings them back.
func (a *Aggregator) Orphans(store *domain.FieldStore) []domain.FieldValue {
	counts := make(map[domain.GroupName]int)
	for _, schema := range domain.Groups() {
		counts[schema.Name] = GroupCount(store, schema)
	}

	var orphans []domain.FieldValue
	for _, v := range store.Fields() {
		if v.Key.Kind != domain.KeyGroup || v.IsBlank() {
			continue
		}
		if v.Key.Index >= counts[v.Key.Group] {
			orphans = append(orphans, v)
		}
	}
	return orphans
}

// GroupCount reads the row count of a repeated group. Unset, unparsable
// or negative counts give the group default; counts above
// domain.MaxGroupSize are clamped.
func GroupCount(store *domain.FieldStore, schema domain.GroupSchema) int {
	raw := strings.TrimSpace(store.Get(domain.ScalarKey(schema.CountKey)).Value)
	if raw == "" {
		return schema.DefaultCount
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return schema.DefaultCount
	}
	if n > domain.MaxGroupSize {
		return domain.MaxGroupSize
	}
	return n
}
