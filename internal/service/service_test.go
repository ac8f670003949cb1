package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"metadata-enricher/internal/errors"
)

func TestNewCallSpec_MissingBinding(t *testing.T) {
	_, err := NewCallSpec("https://openlibrary.org/authors/$id.json?fields=$fields", map[string]string{"id": "OL1A"})
	require.Error(t, err)

	assert.True(t, errors.IsConfiguration(err))
	assert.ErrorIs(t, err, errors.ErrMissingParameter)
	assert.Contains(t, err.Error(), "$fields")
}

func TestNewCallSpec_EmptyTemplate(t *testing.T) {
	_, err := NewCallSpec("  ", nil)
	assert.ErrorIs(t, err, errors.ErrInvalidConfig)
}

func TestCallSpec_URL(t *testing.T) {
	tests := []struct {
		name     string
		template string
		bindings map[string]string
		want     string
	}{
		{
			name:     "path segment",
			template: "https://openlibrary.org/authors/$id.json",
			bindings: map[string]string{"id": "OL23919A"},
			want:     "https://openlibrary.org/authors/OL23919A.json",
		},
		{
			name:     "path and query escaping",
			template: "https://covers.openlibrary.org/b/id/$key-$size.jpg?title=$title",
			bindings: map[string]string{"key": "a b", "size": "L", "title": "War & Peace"},
			want:     "https://covers.openlibrary.org/b/id/a%20b-L.jpg?title=War+%26+Peace",
		},
		{
			name:     "no placeholders",
			template: "https://openlibrary.org/search.json",
			want:     "https://openlibrary.org/search.json",
		},
		{
			name:     "repeated placeholder",
			template: "http://x/$a/$a",
			bindings: map[string]string{"a": "1"},
			want:     "http://x/1/1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			call, err := NewCallSpec(tt.template, tt.bindings)
			require.NoError(t, err)
			assert.Equal(t, tt.want, call.URL())
		})
	}
}

func TestCallSpec_With(t *testing.T) {
	base, err := NewCallSpec("http://x/$size/$key", map[string]string{"size": "M", "key": ""})
	require.NoError(t, err)

	call, err := base.With(map[string]string{"key": "42"})
	require.NoError(t, err)

	assert.Equal(t, "http://x/M/42", call.URL())
	assert.Equal(t, "http://x/M/", base.URL())
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, []string{"id", "size"}, Placeholders("$size/$id/$size"))
	assert.Empty(t, Placeholders("plain"))
}
