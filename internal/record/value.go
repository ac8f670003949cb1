package record

import (
	"bytes"
	"encoding/hex"
	"strconv"
)

// Value is a single typed value. The set of implementations is closed: only the
// variants declared in this package satisfy it.
type Value interface {
	Kind() Kind
	sealed()
}

type (
	// String is a UTF-8 text value.
	String string
	// Int32 is a 32-bit signed integer value.
	Int32 int32
	// Float64 is a double precision value. JSON numbers decode to this kind.
	Float64 float64
	// Float32 is a single precision value.
	Float32 float32
	// Bool is a boolean value.
	Bool bool
	// Bytes holds raw binary data such as image content.
	Bytes []byte
	// Nested holds a sub-record, e.g. a JSON object or an index-keyed array.
	Nested struct{ Record *Record }
)

func (String) Kind() Kind  { return KindString }
func (Int32) Kind() Kind   { return KindInt32 }
func (Float64) Kind() Kind { return KindFloat64 }
func (Float32) Kind() Kind { return KindFloat32 }
func (Bool) Kind() Kind    { return KindBool }
func (Bytes) Kind() Kind   { return KindBytes }
func (Nested) Kind() Kind  { return KindRecord }

func (String) sealed()  {}
func (Int32) sealed()   {}
func (Float64) sealed() {}
func (Float32) sealed() {}
func (Bool) sealed()    {}
func (Bytes) sealed()   {}
func (Nested) sealed()  {}

// NewNested wraps r as a value.
func NewNested(r *Record) Nested {
	return Nested{Record: r}
}

// Visitor dispatches over every value variant. Implementations must handle all
// variants, so adding a variant breaks every visitor at compile time.
type Visitor[T any] interface {
	VisitString(String) T
	VisitInt32(Int32) T
	VisitFloat64(Float64) T
	VisitFloat32(Float32) T
	VisitBool(Bool) T
	VisitBytes(Bytes) T
	VisitNested(Nested) T
}

// Visit calls the visitor method matching the variant of v.
// A nil value yields the zero T.
func Visit[T any](v Value, vis Visitor[T]) T {
	switch tv := v.(type) {
	case String:
		return vis.VisitString(tv)
	case Int32:
		return vis.VisitInt32(tv)
	case Float64:
		return vis.VisitFloat64(tv)
	case Float32:
		return vis.VisitFloat32(tv)
	case Bool:
		return vis.VisitBool(tv)
	case Bytes:
		return vis.VisitBytes(tv)
	case Nested:
		return vis.VisitNested(tv)
	}

	var zero T

	return zero
}

// Equal reports whether two values have the same kind and content.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	if a.Kind() != b.Kind() {
		return false
	}

	switch av := a.(type) {
	case Bytes:
		return bytes.Equal(av, b.(Bytes))
	case Nested:
		return av.Record.Equal(b.(Nested).Record)
	default:
		return a == b
	}
}

// Format renders a value as text for logs and query strings.
func Format(v Value) string {
	return Visit[string](v, formatter{})
}

type formatter struct{}

func (formatter) VisitString(v String) string { return string(v) }
func (formatter) VisitInt32(v Int32) string   { return strconv.FormatInt(int64(v), 10) }
func (formatter) VisitFloat64(v Float64) string {
	return strconv.FormatFloat(float64(v), 'f', -1, 64)
}
func (formatter) VisitFloat32(v Float32) string {
	return strconv.FormatFloat(float64(v), 'f', -1, 32)
}
func (formatter) VisitBool(v Bool) string { return strconv.FormatBool(bool(v)) }
func (formatter) VisitBytes(v Bytes) string {
	if len(v) > 16 {
		return hex.EncodeToString(v[:16]) + "..."
	}

	return hex.EncodeToString(v)
}
func (formatter) VisitNested(v Nested) string {
	if v.Record == nil {
		return "{}"
	}

	return v.Record.String()
}
