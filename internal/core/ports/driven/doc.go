// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - ApplicationStore: Application record and document metadata persistence
//   - SessionStore: Draft session persistence between invocations
//   - BlobStore: Raw uploaded file storage
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - ExtractorRegistry: Document field extraction. Without it, uploads are
//     stored but nothing is auto-filled.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or extractor package
package driven
