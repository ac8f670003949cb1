package enrich

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"metadata-enricher/internal/record"
)

func TestMerge(t *testing.T) {
	local := record.New()
	local.Set("title", record.String("Untitled"))

	remote := record.New()
	remote.Set("title", record.String("Real Title"))
	remote.Set("isbn", record.String("123"))

	tests := []struct {
		name          string
		overwrite     bool
		wantTitle     string
		wantConflicts int
	}{
		{"fill gaps", false, "Untitled", 1},
		{"overwrite", true, "Real Title", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			merged, conflicts := Merge(local, remote, tt.overwrite)

			assert.Equal(t, []string{tt.wantTitle}, merged.Strings("title"))
			assert.Equal(t, []string{"123"}, merged.Strings("isbn"))
			assert.Equal(t, []string{"title", "isbn"}, merged.Names())
			assert.Len(t, conflicts, tt.wantConflicts)

			// inputs untouched
			assert.Equal(t, []string{"Untitled"}, local.Strings("title"))
			assert.False(t, local.Has("isbn"))
		})
	}
}

func TestMerge_ConflictDetails(t *testing.T) {
	local := record.New()
	local.Set("year", record.Int32(1965))
	local.Set("title", record.String("Dune"))

	remote := record.New()
	remote.Set("year", record.String("1965"))
	remote.Set("title", record.String("Dune"))

	_, conflicts := Merge(local, remote, false)
	require.Len(t, conflicts, 1)

	c := conflicts[0]
	assert.Equal(t, "year", c.Field)
	assert.Equal(t, []record.Value{record.Int32(1965)}, c.Local)
	assert.Equal(t, []record.Value{record.String("1965")}, c.Remote)
}

func TestMerge_NilInputs(t *testing.T) {
	remote := record.New()
	remote.Set("isbn", record.String("123"))

	merged, conflicts := Merge(nil, remote, false)
	assert.Equal(t, []string{"123"}, merged.Strings("isbn"))
	assert.Empty(t, conflicts)

	merged, _ = Merge(remote, nil, true)
	assert.True(t, merged.Equal(remote))
}
