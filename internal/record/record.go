package record

import (
	"errors"
	"fmt"
	"iter"
	"strings"
)

// ErrKindMismatch is returned when appending a value whose kind differs from
// the kind already stored under the field.
var ErrKindMismatch = errors.New("value kind does not match field kind")

// Field is a named, non-empty sequence of values sharing one kind.
type Field struct {
	Name   string
	Values []Value
}

// Kind returns the kind of the field's values.
func (f Field) Kind() Kind {
	if len(f.Values) == 0 {
		return 0
	}

	return f.Values[0].Kind()
}

// Record is an ordered mapping from field name to one or more values.
// The zero value is not usable; create records with New.
type Record struct {
	fields []*Field
	index  map[string]int
}

// New creates an empty record.
func New() *Record {
	return &Record{index: make(map[string]int)}
}

// Set replaces all values under name with v, keeping the field's position if
// it already exists. A nil v removes the field.
func (r *Record) Set(name string, v Value) {
	if v == nil {
		r.Delete(name)
		return
	}

	_ = r.Replace(name, v)
}

// Replace sets the values under name, replacing any previous values. All
// values must share one kind. Passing no values removes the field.
func (r *Record) Replace(name string, values ...Value) error {
	if len(values) == 0 {
		r.Delete(name)
		return nil
	}

	kind := values[0].Kind()
	for _, v := range values[1:] {
		if v.Kind() != kind {
			return fmt.Errorf("field %q: %w: %s vs %s", name, ErrKindMismatch, kind, v.Kind())
		}
	}

	vals := append([]Value(nil), values...)
	if i, ok := r.index[name]; ok {
		r.fields[i].Values = vals
		return nil
	}

	r.index[name] = len(r.fields)
	r.fields = append(r.fields, &Field{Name: name, Values: vals})

	return nil
}

// Add appends v to the values under name. Adding a value of a different kind
// than the stored values fails with ErrKindMismatch; callers that want to
// change the kind must Replace explicitly.
func (r *Record) Add(name string, v Value) error {
	if v == nil {
		return nil
	}

	i, ok := r.index[name]
	if !ok {
		r.index[name] = len(r.fields)
		r.fields = append(r.fields, &Field{Name: name, Values: []Value{v}})

		return nil
	}

	f := r.fields[i]
	if f.Kind() != v.Kind() {
		return fmt.Errorf("field %q: %w: %s vs %s", name, ErrKindMismatch, f.Kind(), v.Kind())
	}

	f.Values = append(f.Values, v)

	return nil
}

// Get returns the value at index under name.
func (r *Record) Get(name string, index int) (Value, bool) {
	f, ok := r.find(name)
	if !ok {
		return nil, false
	}

	vals := f.Values
	if index < 0 || index >= len(vals) {
		return nil, false
	}

	return vals[index], true
}

// GetOr returns the value at index under name, or def if absent.
func (r *Record) GetOr(name string, index int, def Value) Value {
	if v, ok := r.Get(name, index); ok {
		return v
	}

	return def
}

// Values returns a copy of the values stored under name.
func (r *Record) Values(name string) []Value {
	f, ok := r.find(name)
	if !ok {
		return nil
	}

	return append([]Value(nil), f.Values...)
}

// Strings returns the string values stored under name; other kinds are skipped.
func (r *Record) Strings(name string) []string {
	var out []string

	for _, v := range r.Values(name) {
		if s, ok := v.(String); ok {
			out = append(out, string(s))
		}
	}

	return out
}

// Count returns the number of values under name, 0 if absent.
func (r *Record) Count(name string) int {
	f, ok := r.find(name)
	if !ok {
		return 0
	}

	return len(f.Values)
}

// Has reports whether the field exists.
func (r *Record) Has(name string) bool {
	_, ok := r.find(name)
	return ok
}

// KindOf returns the kind stored under name.
func (r *Record) KindOf(name string) (Kind, bool) {
	f, ok := r.find(name)
	if !ok {
		return 0, false
	}

	return f.Kind(), true
}

func (r *Record) find(name string) (*Field, bool) {
	if r == nil {
		return nil, false
	}

	i, ok := r.index[name]
	if !ok {
		return nil, false
	}

	return r.fields[i], true
}

// Delete removes the field and keeps the order of the remaining fields.
func (r *Record) Delete(name string) {
	i, ok := r.index[name]
	if !ok {
		return
	}

	r.fields = append(r.fields[:i], r.fields[i+1:]...)
	delete(r.index, name)

	for j := i; j < len(r.fields); j++ {
		r.index[r.fields[j].Name] = j
	}
}

// Len returns the number of fields.
func (r *Record) Len() int {
	if r == nil {
		return 0
	}

	return len(r.fields)
}

// IsEmpty reports whether the record has no fields.
func (r *Record) IsEmpty() bool {
	return r.Len() == 0
}

// Names returns the field names in insertion order.
func (r *Record) Names() []string {
	names := make([]string, r.Len())
	if r == nil {
		return names
	}

	for i, f := range r.fields {
		names[i] = f.Name
	}

	return names
}

// All iterates over the fields in insertion order. The sequence can be
// restarted and yields copies, so callers cannot mutate the record through it.
func (r *Record) All() iter.Seq[Field] {
	return func(yield func(Field) bool) {
		if r == nil {
			return
		}

		for _, f := range r.fields {
			if !yield(Field{Name: f.Name, Values: append([]Value(nil), f.Values...)}) {
				return
			}
		}
	}
}

// Clone returns a deep copy of the record.
func (r *Record) Clone() *Record {
	out := New()
	if r == nil {
		return out
	}

	for _, f := range r.fields {
		vals := make([]Value, len(f.Values))
		for i, v := range f.Values {
			vals[i] = cloneValue(v)
		}

		out.index[f.Name] = len(out.fields)
		out.fields = append(out.fields, &Field{Name: f.Name, Values: vals})
	}

	return out
}

func cloneValue(v Value) Value {
	switch tv := v.(type) {
	case Bytes:
		return append(Bytes(nil), tv...)
	case Nested:
		return Nested{Record: tv.Record.Clone()}
	default:
		return v
	}
}

// Equal reports whether both records hold the same fields in the same order.
func (r *Record) Equal(other *Record) bool {
	if r.Len() != other.Len() {
		return false
	}

	if r.Len() == 0 {
		return true
	}

	for i, f := range r.fields {
		o := other.fields[i]
		if f.Name != o.Name || len(f.Values) != len(o.Values) {
			return false
		}

		for j := range f.Values {
			if !Equal(f.Values[j], o.Values[j]) {
				return false
			}
		}
	}

	return true
}

// SameValues reports whether the field holds equal values in both records.
func SameValues(a, b *Record, name string) bool {
	av, bv := a.Values(name), b.Values(name)
	if len(av) != len(bv) {
		return false
	}

	for i := range av {
		if !Equal(av[i], bv[i]) {
			return false
		}
	}

	return true
}

// ToAny converts the record into plain Go values (maps, slices, scalars)
// suitable for JSON pointer evaluation. Single-valued fields become scalars,
// multi-valued fields become slices.
func (r *Record) ToAny() map[string]any {
	out := make(map[string]any, r.Len())
	if r == nil {
		return out
	}

	for _, f := range r.fields {
		if len(f.Values) == 1 {
			out[f.Name] = valueToAny(f.Values[0])
			continue
		}

		items := make([]any, len(f.Values))
		for i, v := range f.Values {
			items[i] = valueToAny(v)
		}

		out[f.Name] = items
	}

	return out
}

func valueToAny(v Value) any {
	switch tv := v.(type) {
	case String:
		return string(tv)
	case Int32:
		return int32(tv)
	case Float64:
		return float64(tv)
	case Float32:
		return float32(tv)
	case Bool:
		return bool(tv)
	case Bytes:
		return []byte(tv)
	case Nested:
		return tv.Record.ToAny()
	}

	return nil
}

// String renders the record compactly for diagnostics.
func (r *Record) String() string {
	if r == nil {
		return "{}"
	}

	var b strings.Builder

	b.WriteByte('{')

	for i, f := range r.fields {
		if i > 0 {
			b.WriteString(", ")
		}

		b.WriteString(f.Name)
		b.WriteString(": ")

		if len(f.Values) == 1 {
			b.WriteString(Format(f.Values[0]))
			continue
		}

		b.WriteByte('[')

		for j, v := range f.Values {
			if j > 0 {
				b.WriteString(", ")
			}

			b.WriteString(Format(v))
		}

		b.WriteByte(']')
	}

	b.WriteByte('}')

	return b.String()
}
