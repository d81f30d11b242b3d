// Package file provides file-based configuration adapters.
//
// Adapters:
//   - ConfigStore: TOML-based settings storage at ~/.loanform/config.toml
//   - LoadFieldMapping / WriteFieldMapping: YAML extractor-name overrides
package file
