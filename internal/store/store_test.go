package store

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"metadata-enricher/internal/record"
)

func TestFilter_IsInternal(t *testing.T) {
	f := DefaultFilter()

	tests := []struct {
		name string
		want bool
	}{
		{"BEOS:TYPE", true},
		{"be:volume", true},
		{"_trk/pinfo_le", true},
		{"Media:Thumbnail:CreationTime", true},
		{"PDF:Title", true},
		{NameField, true},
		{"BOOK:title", false},
		{"Media:Title", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, f.IsInternal(tt.name))
		})
	}
}

func TestFilter_View(t *testing.T) {
	rec := record.New()
	rec.Set("BEOS:TYPE", record.String("application/pdf"))
	rec.Set("BOOK:title", record.String("Dune"))
	rec.Set(NameField, record.String("stale"))

	view := Filter{Prefixes: []string{"BEOS:"}}.View(rec, "dune.pdf")

	assert.Equal(t, []string{"BOOK:title", NameField}, view.Names())
	assert.Equal(t, []string{"dune.pdf"}, view.Strings(NameField))
	assert.True(t, rec.Has("BEOS:TYPE"))
}

func TestPlan(t *testing.T) {
	rec := record.New()
	rec.Set("BOOK:title", record.String("Dune"))
	rec.Set("BOOK:isbn", record.String("123"))
	rec.Set(NameField, record.String("dune.pdf"))

	existing := map[string]bool{"BOOK:title": true}
	exists := func(name string) bool { return existing[name] }

	names := func(fields []record.Field) []string {
		var out []string
		for _, f := range fields {
			out = append(out, f.Name)
		}

		return out
	}

	assert.Equal(t, []string{"BOOK:isbn"}, names(Plan(rec, false, exists)))
	assert.Equal(t, []string{"BOOK:title", "BOOK:isbn"}, names(Plan(rec, true, exists)))
}
