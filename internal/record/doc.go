// Package record provides the typed, multi-valued record model shared by
// local attribute records and service parameter records.
//
// Key capabilities:
//   - Value: a closed set of value variants (String, Int32, Float64, Float32,
//     Bool, Bytes, Nested)
//   - Visitor: compile-time exhaustive dispatch over the value variants
//   - Record: an ordered mapping from field name to one or more values of the
//     same kind, preserving insertion order for index-based conversions
package record
