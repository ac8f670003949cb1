package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"metadata-enricher/internal/collection"
	"metadata-enricher/internal/diagnostic"
	"metadata-enricher/internal/record"
)

func TestEncodeQuery(t *testing.T) {
	params := record.New()
	params.Set("title", record.String("mybook.pdf"))
	require.NoError(t, params.Replace("author", record.String(" "), record.String("Jane Doe"), record.String("John")))
	params.Set("year", record.Int32(1984))
	params.Set("rating", record.Float64(4.5))
	params.Set("ebook", record.Bool(true))
	params.Set("cover", record.Bytes{0x1})

	q, diags := EncodeQuery(params, collection.Semicolon)

	assert.Equal(t, "title=mybook.pdf&author=Jane+Doe&year=1984&rating=4.5&ebook=true", q)
	assert.Len(t, diags.WithCode(diagnostic.CodeQueryValueSkipped), 1)
	assert.Len(t, diags.WithCode(diagnostic.CodeQueryListTruncated), 1)
}

func TestEncodeQuery_Collections(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  string
	}{
		{"first segment", "Frank Herbert; Brian Herbert", "q=Frank+Herbert"},
		{"leading delimiter kept", ";odd", "q=%3Bodd"},
		{"plain", "Dune", "q=Dune"},
		{"blank skipped", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := record.New()
			params.Set("q", record.String(tt.value))

			q, _ := EncodeQuery(params, collection.Semicolon)
			assert.Equal(t, tt.want, q)
		})
	}
}

func TestWithQuery(t *testing.T) {
	assert.Equal(t, "http://x/s?q=a", WithQuery("http://x/s", "q=a"))
	assert.Equal(t, "http://x/s?f=1&q=a", WithQuery("http://x/s?f=1", "q=a"))
	assert.Equal(t, "http://x/s?q=a", WithQuery("http://x/s?", "q=a"))
	assert.Equal(t, "http://x/s", WithQuery("http://x/s", ""))
}
