// Package errors provides the error kinds used across the enrichment engine.
//
// Every failure is classified into one of five kinds:
//
//   - Configuration: empty alias table, missing URL template binding, bad profile
//   - Mapping: malformed index-keyed sub-record, unsupported conversion, alias conflicts
//   - Fetch: network failure, unexpected HTTP status, timeout
//   - Parse: malformed response body
//   - Persist: metadata store read or write failure
//
// Errors are wrapped following the pattern
//
//	"component.operation: action failed: %w"
//
// and keep their kind through further wrapping, so callers can branch with
// KindOf, IsConfiguration and friends, or errors.Is against the sentinels.
package errors
