// Package services implements the driving port interfaces.
// Services contain the core business logic of the loan application:
// auto-fill reconciliation, record aggregation, persistence and
// submission. They orchestrate calls to driven ports (adapters).
//
// Services are pure Go with no CGO dependencies.
package services
