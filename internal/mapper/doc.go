// Package mapper translates records between the local attribute
// representation and the parameter/response representation of an external
// lookup service.
//
// The outbound direction (ToServiceParameters) renames fields through the
// alias table and splits joined string collections into repeated values.
// Non-string values pass through typed and unconverted.
//
// The inbound direction (FromServiceParameters) renames fields back, joins
// repeated string values into one delimited string, and applies the
// conversion policy where the expected local kind differs from the service
// kind.
//
// Unmapped fields are dropped in both directions and reported as
// diagnostics: local records routinely carry fields without a service
// counterpart. An empty alias table is a configuration error, because it
// almost always means a setup step was skipped.
package mapper
