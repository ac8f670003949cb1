// Package store holds what the metadata store implementations share: the
// name pseudo-field, the internal attribute filter and the write plan that
// decides which fields survive the overwrite policy.
//
// Two implementations live in subpackages: memstore keeps everything in
// memory, sqlitestore persists entities and their attributes in SQLite.
package store

import (
	"metadata-enricher/internal/common"
	"metadata-enricher/internal/record"
)

// NameField is the pseudo-field carrying the entity's name. ReadRecord adds
// it; WriteRecord never stores it as an attribute.
const NameField = "SEN:NAME"

// DefaultInternalPrefixes name attributes that belong to the file system or
// other applications and are never exposed for enrichment.
var DefaultInternalPrefixes = []string{
	"be:",
	"BEOS:",
	"META:",
	"_trk/",
	"Media:Thumbnail",
	"bepdf:",
	"pe-info",
	"PDF:",
	"StyledEdit",
}

// Entity identifies one stored entity.
type Entity struct {
	Ref      string
	Name     string
	MimeType string
}

// Filter hides internal attributes.
type Filter struct {
	Prefixes []string
}

// DefaultFilter returns a filter over DefaultInternalPrefixes.
func DefaultFilter() Filter {
	return Filter{Prefixes: append([]string(nil), DefaultInternalPrefixes...)}
}

// IsInternal reports whether name is hidden by the filter.
func (f Filter) IsInternal(name string) bool {
	return name == NameField || common.HasAnyPrefix(name, f.Prefixes)
}

// View returns the visible fields of rec followed by the name pseudo-field.
func (f Filter) View(rec *record.Record, name string) *record.Record {
	out := record.New()

	if rec != nil {
		for fld := range rec.All() {
			if f.IsInternal(fld.Name) {
				continue
			}

			_ = out.Replace(fld.Name, fld.Values...)
		}
	}

	out.Set(NameField, record.String(name))

	return out
}

// Plan returns the fields of rec to persist. The name pseudo-field is never
// written; with overwrite unset, fields for which exists reports true are
// skipped.
func Plan(rec *record.Record, overwrite bool, exists func(name string) bool) []record.Field {
	var out []record.Field

	for fld := range rec.All() {
		if fld.Name == NameField {
			continue
		}

		if !overwrite && exists(fld.Name) {
			continue
		}

		out = append(out, fld)
	}

	return out
}
