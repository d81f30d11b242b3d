package file

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/loanform/internal/core/domain"
)

// mappingFile is the YAML shape of a field-mapping override file:
//
//	fields:
//	  "Enterprise Title": enterprise_name
//	  "Partner Name": director_name_*
type mappingFile struct {
	Fields map[string]string `yaml:"fields"`
}

// LoadFieldMapping reads extractor-name overrides from a YAML file.
// An empty path yields an empty mapping. Every target must be a valid
// field key; the first invalid entry (in name order) fails the load.
func LoadFieldMapping(path string) (domain.FieldMapping, error) {
	mapping := make(domain.FieldMapping)
	if path == "" {
		return mapping, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: mapping file %s does not exist", domain.ErrNotFound, path)
		}
		return nil, fmt.Errorf("read mapping file: %w", err)
	}

	var mf mappingFile
	if err := yaml.Unmarshal(data, &mf); err != nil {
		return nil, fmt.Errorf("%w: parse mapping file %s: %w", domain.ErrInvalidInput, path, err)
	}

	names := make([]string, 0, len(mf.Fields))
	for name := range mf.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		normalised := domain.NormalizeExtractedName(name)
		if normalised == "" {
			return nil, fmt.Errorf("%w: mapping file %s: empty field name", domain.ErrInvalidInput, path)
		}
		target, err := domain.ParseFieldTarget(mf.Fields[name])
		if err != nil {
			return nil, fmt.Errorf("mapping %q: %w", name, err)
		}
		mapping[normalised] = target
	}

	return mapping, nil
}

// WriteFieldMapping writes mapping in the format LoadFieldMapping reads.
func WriteFieldMapping(path string, mapping domain.FieldMapping) error {
	mf := mappingFile{Fields: make(map[string]string, len(mapping))}
	for name, target := range mapping {
		mf.Fields[name] = target.String()
	}

	data, err := yaml.Marshal(&mf)
	if err != nil {
		return fmt.Errorf("encode mapping: %w", err)
	}
	return os.WriteFile(path, data, 0600)
}
