// Package convert implements the narrow type coercion policy applied when a
// service value is written back into a local record whose expected kind
// differs from the kind the service reported.
//
// Only two coercions exist, both covering services that encode whole numbers
// as floating point:
//
//   - float -> Int32: floored, then narrowed
//   - float -> String: floored, narrowed to Int32, then formatted in decimal
//
// Every other disagreement keeps the service value and kind unchanged and is
// reported as OutcomeAsIs so the caller can surface the divergence.
package convert

import (
	"math"
	"strconv"

	"metadata-enricher/internal/record"
)

// Outcome describes what the policy did with a value.
type Outcome int

const (
	// OutcomeUnchanged means the value already had the expected kind.
	OutcomeUnchanged Outcome = iota
	// OutcomeConverted means the value was coerced into the expected kind.
	OutcomeConverted
	// OutcomeAsIs means no coercion applies; the value keeps its service kind.
	OutcomeAsIs
)

// String returns a human-readable outcome name.
func (o Outcome) String() string {
	switch o {
	case OutcomeUnchanged:
		return "unchanged"
	case OutcomeConverted:
		return "converted"
	case OutcomeAsIs:
		return "as_is"
	default:
		return "unknown"
	}
}

// Registry maps local field names to the kind the local store expects.
type Registry map[string]record.Kind

// Expected returns the expected kind for name. Fields without an entry are
// expected to be strings, which is how untyped local attributes are stored.
func (r Registry) Expected(name string) record.Kind {
	if k, ok := r[name]; ok && k.IsValid() {
		return k
	}

	return record.KindString
}

// Policy applies the coercion rules. The zero value is ready to use.
type Policy struct{}

// Convert coerces v into the expected kind where a rule exists.
func (Policy) Convert(v record.Value, expected record.Kind) (record.Value, Outcome) {
	if v == nil || v.Kind() == expected {
		return v, OutcomeUnchanged
	}

	f, ok := floatOf(v)
	if !ok {
		return v, OutcomeAsIs
	}

	n, ok := floorInt32(f)
	if !ok {
		return v, OutcomeAsIs
	}

	switch expected {
	case record.KindInt32:
		return record.Int32(n), OutcomeConverted
	case record.KindString:
		return record.String(strconv.FormatInt(int64(n), 10)), OutcomeConverted
	}

	return v, OutcomeAsIs
}

func floatOf(v record.Value) (float64, bool) {
	switch tv := v.(type) {
	case record.Float64:
		return float64(tv), true
	case record.Float32:
		return float64(tv), true
	}

	return 0, false
}

// floorInt32 floors f and reports whether the result fits into an int32.
func floorInt32(f float64) (int32, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}

	fl := math.Floor(f)
	if fl < math.MinInt32 || fl > math.MaxInt32 {
		return 0, false
	}

	return int32(fl), true
}
