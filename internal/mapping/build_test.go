package mapping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"metadata-enricher/internal/collection"
	"metadata-enricher/internal/enrich"
	"metadata-enricher/internal/errors"
	"metadata-enricher/internal/store"
)

func TestAliasEntries_Order(t *testing.T) {
	p := &Profile{
		OneToOne: map[string]string{"b": "B", "a": "A", "c": "C"},
		Aliases:  []AliasDef{{Source: "z", Target: "Z"}},
	}

	assert.Equal(t, []AliasDef{
		{Source: "a", Target: "A", Bidirectional: true},
		{Source: "b", Target: "B", Bidirectional: true},
		{Source: "c", Target: "C", Bidirectional: true},
		{Source: "z", Target: "Z"},
	}, p.AliasEntries())
}

func TestProfile_Mapper(t *testing.T) {
	p := validProfile(t)

	m, err := p.Mapper(nil)
	require.NoError(t, err)

	assert.Equal(t, collection.Semicolon, m.Delimiter())
	assert.Equal(t, "q", m.Aliases().ResolveAlias(store.NameField, ""))
	assert.Equal(t, "BOOK:author_bio", m.Aliases().ResolveAlias("bio", ""))
	assert.Equal(t, "", m.Aliases().ResolveAlias("BOOK:author_bio", ""))
	assert.Equal(t, "BOOK:title", m.Aliases().ResolveAlias("title", ""))

	p.Delimiter = "|"
	_, err = p.Mapper(nil)
	assert.ErrorIs(t, err, errors.ErrInvalidConfig)

	p.Delimiter = ","
	p.Aliases = append(p.Aliases, AliasDef{Source: "BOOK:title", Target: "name"})
	_, err = p.Mapper(nil)
	assert.ErrorIs(t, err, errors.ErrAliasConflict)
}

func TestProfile_EnrichConfig(t *testing.T) {
	p := validProfile(t)
	cfg := p.EnrichConfig()

	require.NoError(t, cfg.Validate())

	assert.Equal(t, "https://openlibrary.org/search.json", cfg.SearchURL)
	assert.Equal(t, "docs", cfg.CandidatesField)
	assert.Equal(t, store.NameField, cfg.NameField)
	assert.Contains(t, cfg.PlaceholderTitles, "Untitled")

	require.Len(t, cfg.Secondary, 2)
	assert.Equal(t, enrich.LookupBytes, cfg.Secondary[0].Kind)
	assert.Equal(t, "coverId", cfg.Secondary[0].KeyBinding)
	assert.Equal(t, enrich.LookupJSON, cfg.Secondary[1].Kind)
	assert.Equal(t, "/author_key/0", cfg.Secondary[1].KeyPointer)
}

func TestProfile_Selector(t *testing.T) {
	p := validProfile(t)

	sel, ok := p.Selector().(enrich.ClosestTitle)
	require.True(t, ok)
	assert.Equal(t, []string{"BOOK:title", store.NameField}, sel.QueryFields)
	assert.Equal(t, "BOOK:title", sel.TitleField)

	p.Service.QueryFields = nil
	sel = p.Selector().(enrich.ClosestTitle)
	assert.Equal(t, []string{"BOOK:title", store.NameField}, sel.QueryFields)

	p.Service.Selector = SelectorFirst
	assert.Equal(t, "first", p.Selector().Name())
}

func TestProfile_Filter(t *testing.T) {
	p := validProfile(t)
	assert.True(t, p.Filter().IsInternal("BEOS:TYPE"))

	p.InternalPrefixes = StringOrArray{}
	assert.False(t, p.Filter().IsInternal("BEOS:TYPE"))
	assert.True(t, p.Filter().IsInternal(store.NameField))

	p.InternalPrefixes = StringOrArray{"x:"}
	assert.True(t, p.Filter().IsInternal("x:secret"))
}

func TestProfile_MimeType(t *testing.T) {
	p := validProfile(t)

	assert.Equal(t, "application/pdf", p.MimeType("/books/Dune.PDF"))
	assert.Equal(t, "application/epub+zip", p.MimeType("dune.epub"))
	assert.Equal(t, DefaultMimeType, p.MimeType("notes.txt"))
	assert.Equal(t, DefaultMimeType, p.MimeType("README"))
}

func TestProfile_FetchOptions(t *testing.T) {
	p := validProfile(t)
	assert.Len(t, p.FetchOptions(), 3)

	p.HTTP.RateLimit = 0
	assert.Len(t, p.FetchOptions(), 2)
}

func TestProfile_SelectorMinScore(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want float64
	}{
		{"unset", ``, DefaultMinScore},
		{"explicit zero", "  min_score: 0\n", 0},
		{"explicit", "  min_score: 0.8\n", 0.8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := "service:\n  search: https://x.example/s\n  selector: closest_title\n  title_field: BOOK:title\n" + tt.yaml

			p, err := Parse([]byte(src))
			require.NoError(t, err)

			sel, ok := p.Selector().(enrich.ClosestTitle)
			require.True(t, ok)
			assert.InDelta(t, tt.want, sel.MinScore, 0)
			assert.InDelta(t, tt.want, p.Service.Threshold(), 0)
		})
	}
}
