// Package collection converts between the three encodings of a multi-valued
// field:
//
//   - delimiter-joined strings, as stored in flat local attributes ("a;b;c")
//   - repeated values under one field name, as used for service parameters
//   - index-keyed nested records ({"0": a, "1": b}), as produced by generic
//     JSON parsing of arrays
//
// Flatten turns index-keyed nested records into repeated values; Split and
// Join convert between joined strings and repeated values.
package collection
