package fetch

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"metadata-enricher/internal/errors"
	"metadata-enricher/internal/record"
)

// Decode reads one JSON object from r into a record, keeping key order.
func Decode(r io.Reader) (*record.Record, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errors.ErrMalformedBody, err)
	}

	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("%w: top-level value is not an object", errors.ErrMalformedBody)
	}

	rec, err := decodeObject(dec)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errors.ErrMalformedBody, err)
	}

	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after object", errors.ErrMalformedBody)
	}

	return rec, nil
}

// decodeObject reads members until the closing brace. The opening brace has
// been consumed.
func decodeObject(dec *json.Decoder) (*record.Record, error) {
	rec := record.New()

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}

		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("object key %v is not a string", tok)
		}

		v, err := decodeValue(dec)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}

		rec.Set(key, v)
	}

	if _, err := dec.Token(); err != nil {
		return nil, err
	}

	return rec, nil
}

// decodeArray reads elements into an index-keyed record. Null elements keep
// their index free. An empty array yields nil.
func decodeArray(dec *json.Decoder) (*record.Record, error) {
	rec := record.New()
	i := 0

	for dec.More() {
		v, err := decodeValue(dec)
		if err != nil {
			return nil, fmt.Errorf("[%d]: %w", i, err)
		}

		rec.Set(strconv.Itoa(i), v)
		i++
	}

	if _, err := dec.Token(); err != nil {
		return nil, err
	}

	if rec.IsEmpty() {
		return nil, nil
	}

	return rec, nil
}

// decodeValue returns the next value, or nil for null and empty arrays.
func decodeValue(dec *json.Decoder) (record.Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			rec, err := decodeObject(dec)
			if err != nil {
				return nil, err
			}

			return record.NewNested(rec), nil
		case '[':
			rec, err := decodeArray(dec)
			if err != nil || rec == nil {
				return nil, err
			}

			return record.NewNested(rec), nil
		}

		return nil, fmt.Errorf("unexpected delimiter %q", t)
	case string:
		return record.String(t), nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return nil, fmt.Errorf("number %s: %w", t, err)
		}

		return record.Float64(f), nil
	case bool:
		return record.Bool(t), nil
	case nil:
		return nil, nil
	}

	return nil, fmt.Errorf("unexpected token %v", tok)
}
