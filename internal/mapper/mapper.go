package mapper

import (
	"fmt"
	"log/slog"
	"strings"

	"metadata-enricher/internal/alias"
	"metadata-enricher/internal/collection"
	"metadata-enricher/internal/convert"
	"metadata-enricher/internal/diagnostic"
	"metadata-enricher/internal/errors"
	"metadata-enricher/internal/record"
)

const (
	componentOut = "map_out"
	componentIn  = "map_in"
)

// Mapper applies an alias table, a collection delimiter and a conversion
// policy. A Mapper is safe for concurrent use once its alias table is no
// longer modified.
type Mapper struct {
	aliases   *alias.Table
	delimiter collection.Delimiter
	policy    convert.Policy
	logger    *slog.Logger
}

// Option configures a Mapper.
type Option func(*Mapper)

// WithDelimiter sets the delimiter of joined local string collections.
func WithDelimiter(d collection.Delimiter) Option {
	return func(m *Mapper) { m.delimiter = d }
}

// WithPolicy sets the conversion policy used on the inbound path.
func WithPolicy(p convert.Policy) Option {
	return func(m *Mapper) { m.policy = p }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Mapper) { m.logger = l }
}

// New creates a Mapper over the given alias table.
func New(aliases *alias.Table, opts ...Option) *Mapper {
	m := &Mapper{
		aliases:   aliases,
		delimiter: collection.Semicolon,
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Delimiter returns the configured collection delimiter.
func (m *Mapper) Delimiter() collection.Delimiter {
	return m.delimiter
}

// Aliases returns the alias table.
func (m *Mapper) Aliases() *alias.Table {
	return m.aliases
}

func (m *Mapper) checkConfigured(method string) error {
	if m.aliases == nil || m.aliases.IsEmpty() {
		return errors.WrapConfiguration(errors.ErrNotConfigured, "Mapper", method, "alias lookup")
	}

	return nil
}

// ToServiceParameters maps a local record to service parameters.
func (m *Mapper) ToServiceParameters(local *record.Record) (*record.Record, diagnostic.Diagnostics, error) {
	var diags diagnostic.Diagnostics

	if err := m.checkConfigured("ToServiceParameters"); err != nil {
		return nil, diags, err
	}

	params := record.New()

	for f := range local.All() {
		param, ok := m.aliases.Lookup(f.Name)
		if !ok {
			diags.AddInfo(diagnostic.CodeUnmappedField,
				"no parameter mapping for attribute, skipping", componentOut, f.Name)
			continue
		}

		for _, v := range f.Values {
			s, isString := v.(record.String)
			if !isString {
				m.add(params, param, v, componentOut, &diags)
				continue
			}

			segments := collection.Split(string(s), m.delimiter)
			if len(segments) == 0 {
				diags.AddInfo(diagnostic.CodeEmptyValue,
					fmt.Sprintf("ignoring empty string value for parameter %q", param), componentOut, f.Name)
				continue
			}

			for _, seg := range segments {
				m.add(params, param, record.String(seg), componentOut, &diags)
			}
		}
	}

	return params, diags, nil
}

// FromServiceParameters maps a service record back to local field names.
// expected supplies the local kind per field for the conversion policy.
func (m *Mapper) FromServiceParameters(
	service *record.Record,
	expected convert.Registry,
) (*record.Record, diagnostic.Diagnostics, error) {
	var diags diagnostic.Diagnostics

	if err := m.checkConfigured("FromServiceParameters"); err != nil {
		return nil, diags, err
	}

	local := record.New()

	for f := range service.All() {
		key, ok := m.aliases.Lookup(f.Name)
		if !ok {
			diags.AddInfo(diagnostic.CodeUnmappedField,
				"no attribute mapping for parameter, skipping", componentIn, f.Name)
			continue
		}

		switch f.Kind() {
		case record.KindRecord:
			diags.AddWarning(diagnostic.CodeNestedUnsupported,
				"nested record values cannot be stored as attributes, skipping", componentIn, f.Name)

		case record.KindString:
			joined := collection.Join(stringsOf(f.Values), m.delimiter)
			if joined == "" {
				diags.AddInfo(diagnostic.CodeEmptyValue, "all values empty, skipping", componentIn, f.Name)
				continue
			}

			v := m.convert(record.String(joined), expected.Expected(key), key, &diags)
			m.add(local, key, v, componentIn, &diags)

		default:
			want := expected.Expected(key)

			converted := make([]record.Value, len(f.Values))
			for i, v := range f.Values {
				converted[i] = m.convert(v, want, key, &diags)
			}

			// converted string collections are stored joined, like service strings
			if strs, ok := allStrings(converted); ok && len(strs) > 1 {
				converted = []record.Value{record.String(collection.Join(strs, m.delimiter))}
			}

			for _, v := range converted {
				m.add(local, key, v, componentIn, &diags)
			}
		}
	}

	return local, diags, nil
}

func (m *Mapper) convert(v record.Value, want record.Kind, key string, diags *diagnostic.Diagnostics) record.Value {
	out, outcome := m.policy.Convert(v, want)

	switch outcome {
	case convert.OutcomeConverted:
		diags.AddInfo(diagnostic.CodeConverted,
			fmt.Sprintf("converted %s to %s: %s", v.Kind(), want, record.Format(out)), componentIn, key)
	case convert.OutcomeAsIs:
		diags.AddWarning(diagnostic.CodeTypeDivergence,
			fmt.Sprintf("conflicting kinds %s (service) vs %s (attribute), storing as %s",
				v.Kind(), want, v.Kind()), componentIn, key)
	case convert.OutcomeUnchanged:
	}

	return out
}

func (m *Mapper) add(r *record.Record, name string, v record.Value, component string, diags *diagnostic.Diagnostics) {
	if err := r.Add(name, v); err != nil {
		diags.AddWarning(diagnostic.CodeKindMismatch,
			"value skipped: "+err.Error(), component, name)
	}
}

func stringsOf(values []record.Value) []string {
	out := make([]string, 0, len(values))

	for _, v := range values {
		if s, ok := v.(record.String); ok {
			out = append(out, strings.TrimSpace(string(s)))
		}
	}

	return out
}

func allStrings(values []record.Value) ([]string, bool) {
	out := make([]string, 0, len(values))

	for _, v := range values {
		s, ok := v.(record.String)
		if !ok {
			return nil, false
		}

		out = append(out, string(s))
	}

	return out, true
}
