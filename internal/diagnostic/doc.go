// Package diagnostic provides structured, non-fatal observations collected
// while mapping records between the local and the service representation.
//
// Key capabilities:
//   - Unmapped field reports (partial mapping is normal, but visible)
//   - Type divergence reports when a value is stored with its service type
//   - Skipped self-alias reports
//   - Structured logging of collected diagnostics
package diagnostic
