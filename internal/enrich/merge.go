package enrich

import (
	"metadata-enricher/internal/record"
)

// Conflict is a field present locally and remotely with different values
// that was left untouched because overwrite was not set.
type Conflict struct {
	Field  string
	Local  []record.Value
	Remote []record.Value
}

// Merge combines a local record with a mapped remote result. The output
// starts as a copy of local. Without overwrite, only fields absent locally
// are added and differing same-named fields are reported as conflicts; with
// overwrite, remote fields replace local ones. Neither input is modified.
func Merge(local, remote *record.Record, overwrite bool) (*record.Record, []Conflict) {
	out := local.Clone()

	var conflicts []Conflict

	for f := range remote.All() {
		if out.Has(f.Name) && !overwrite {
			if !record.SameValues(out, remote, f.Name) {
				conflicts = append(conflicts, Conflict{
					Field:  f.Name,
					Local:  out.Values(f.Name),
					Remote: f.Values,
				})
			}

			continue
		}

		_ = out.Replace(f.Name, f.Values...)
	}

	return out, conflicts
}
