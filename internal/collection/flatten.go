package collection

import (
	"fmt"
	"slices"
	"strconv"

	"metadata-enricher/internal/errors"
	"metadata-enricher/internal/record"
)

// FieldError reports a field whose index-keyed sub-record could not be
// flattened.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field %q: %v", e.Field, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// IsIndexed reports whether nested looks like an array encoded as a map, i.e.
// it has a field named "0".
func IsIndexed(nested *record.Record) bool {
	return nested != nil && nested.Has("0")
}

type indexed struct {
	pos    int
	values []record.Value
}

// Flatten converts an index-keyed nested record into its element values,
// ordered by ascending numeric key. Gaps in the numbering are tolerated.
// A key that is not a non-negative decimal integer, two keys naming the same
// index, or elements of different kinds fail with errors.ErrBadValue.
func Flatten(nested *record.Record) ([]record.Value, error) {
	if nested == nil {
		return nil, nil
	}

	items := make([]indexed, 0, nested.Len())
	seen := make(map[int]string, nested.Len())

	for f := range nested.All() {
		pos, err := parseIndex(f.Name)
		if err != nil {
			return nil, errors.WrapMapping(err, "Normalizer", "Flatten", "index key parse")
		}

		if prev, dup := seen[pos]; dup {
			return nil, errors.WrapMapping(
				fmt.Errorf("%w: keys %q and %q name index %d", errors.ErrBadValue, prev, f.Name, pos),
				"Normalizer", "Flatten", "index key parse")
		}

		seen[pos] = f.Name
		items = append(items, indexed{pos: pos, values: f.Values})
	}

	slices.SortFunc(items, func(a, b indexed) int { return a.pos - b.pos })

	var out []record.Value

	for _, it := range items {
		for _, v := range it.values {
			if len(out) > 0 && out[0].Kind() != v.Kind() {
				return nil, errors.WrapMapping(
					fmt.Errorf("%w: mixed element kinds %s and %s", errors.ErrBadValue, out[0].Kind(), v.Kind()),
					"Normalizer", "Flatten", "element kind check")
			}

			out = append(out, v)
		}
	}

	return out, nil
}

func parseIndex(key string) (int, error) {
	if key == "" {
		return 0, fmt.Errorf("%w: empty index key", errors.ErrBadValue)
	}

	for _, r := range key {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("%w: index key %q is not a non-negative integer", errors.ErrBadValue, key)
		}
	}

	n, err := strconv.Atoi(key)
	if err != nil {
		return 0, fmt.Errorf("%w: index key %q: %v", errors.ErrBadValue, key, err)
	}

	return n, nil
}

// Normalize returns a copy of rec in which every index-keyed nested record,
// at any depth, is replaced by repeated values under the field's name.
// Nested records that are not index-keyed are kept (their contents are
// normalized too). Fields that cannot be flattened are copied unchanged and
// reported as *FieldError values joined into the returned error, so the caller
// can decide whether to skip them or abort.
func Normalize(rec *record.Record) (*record.Record, error) {
	return normalize(rec, "")
}

func normalize(rec *record.Record, path string) (*record.Record, error) {
	out := record.New()
	if rec == nil {
		return out, nil
	}

	var errs []error

	for f := range rec.All() {
		name := f.Name
		if path != "" {
			name = path + "." + f.Name
		}

		values, err := normalizeValues(f.Values, name)
		if err != nil {
			errs = append(errs, err)
			values = f.Values
		}

		if len(values) == 0 {
			continue
		}

		if err := out.Replace(f.Name, values...); err != nil {
			errs = append(errs, &FieldError{Field: name, Err: fmt.Errorf("%w: %v", errors.ErrBadValue, err)})
			_ = out.Replace(f.Name, f.Values...)
		}
	}

	return out, errors.Join(errs...)
}

func normalizeValues(values []record.Value, name string) ([]record.Value, error) {
	var (
		out  []record.Value
		errs []error
	)

	for _, v := range values {
		nested, ok := v.(record.Nested)
		if !ok {
			out = append(out, v)
			continue
		}

		inner, err := normalize(nested.Record, name)
		if err != nil {
			errs = append(errs, err)
		}

		if !IsIndexed(nested.Record) {
			out = append(out, record.NewNested(inner))
			continue
		}

		elems, err := Flatten(inner)
		if err != nil {
			return nil, &FieldError{Field: name, Err: err}
		}

		out = append(out, elems...)
	}

	return out, errors.Join(errs...)
}

// FieldErrors collects the *FieldError values from an error returned by
// Normalize.
func FieldErrors(err error) []*FieldError {
	switch e := err.(type) {
	case nil:
		return nil
	case *FieldError:
		return []*FieldError{e}
	case interface{ Unwrap() []error }:
		var out []*FieldError
		for _, inner := range e.Unwrap() {
			out = append(out, FieldErrors(inner)...)
		}

		return out
	}

	var fe *FieldError
	if errors.As(err, &fe) {
		return []*FieldError{fe}
	}

	return nil
}
