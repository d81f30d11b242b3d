// Package domain defines the core business entities for loanform.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - FieldStore: Per-session field values with provenance
//   - FieldKey: Structured (group, index, field) address of a form field
//   - ApplicationRecord: The canonical aggregate persisted for an application
//   - DocumentMetadata: An uploaded document and the fields extracted from it
//   - Session: One user's in-progress application
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
