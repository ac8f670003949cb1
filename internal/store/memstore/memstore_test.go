package memstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"metadata-enricher/internal/convert"
	"metadata-enricher/internal/errors"
	"metadata-enricher/internal/record"
	"metadata-enricher/internal/store"
)

func seeded(t *testing.T) *Store {
	t.Helper()

	attrs := record.New()
	attrs.Set("BEOS:TYPE", record.String("application/pdf"))
	attrs.Set("BOOK:title", record.String("Untitled"))

	s := New()
	s.Put(store.Entity{Ref: "e1", Name: "mybook.pdf", MimeType: "application/pdf"}, attrs)
	s.SetTypes("application/pdf", convert.Registry{"BOOK:year": record.KindInt32})

	return s
}

func TestStore_ReadRecord(t *testing.T) {
	s := seeded(t)

	rec, err := s.ReadRecord(context.Background(), "e1")
	require.NoError(t, err)

	assert.Equal(t, []string{"BOOK:title", store.NameField}, rec.Names())
	assert.Equal(t, []string{"mybook.pdf"}, rec.Strings(store.NameField))
}

func TestStore_NotFound(t *testing.T) {
	s := New()
	ctx := context.Background()

	_, err := s.ReadRecord(ctx, "nope")
	assert.True(t, errors.IsPersist(err))
	assert.ErrorIs(t, err, errors.ErrEntityNotFound)

	assert.ErrorIs(t, s.WriteRecord(ctx, "nope", record.New(), true), errors.ErrEntityNotFound)
	assert.ErrorIs(t, s.Rename(ctx, "nope", "x"), errors.ErrEntityNotFound)

	_, err = s.TypeRegistryFor(ctx, "nope")
	assert.ErrorIs(t, err, errors.ErrEntityNotFound)
}

func TestStore_WriteRecord(t *testing.T) {
	tests := []struct {
		name      string
		overwrite bool
		wantTitle string
	}{
		{"keep existing", false, "Untitled"},
		{"overwrite", true, "Real Title"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := seeded(t)

			rec := record.New()
			rec.Set("BOOK:title", record.String("Real Title"))
			rec.Set("BOOK:isbn", record.String("123"))
			rec.Set(store.NameField, record.String("ignored.pdf"))

			require.NoError(t, s.WriteRecord(context.Background(), "e1", rec, tt.overwrite))

			e, attrs, ok := s.Snapshot("e1")
			require.True(t, ok)

			assert.Equal(t, "mybook.pdf", e.Name)
			assert.Equal(t, []string{tt.wantTitle}, attrs.Strings("BOOK:title"))
			assert.Equal(t, []string{"123"}, attrs.Strings("BOOK:isbn"))
			assert.False(t, attrs.Has(store.NameField))
		})
	}
}

func TestStore_TypeRegistryFor(t *testing.T) {
	s := seeded(t)
	s.Put(store.Entity{Ref: "e2", Name: "x", MimeType: "text/plain"}, nil)

	reg, err := s.TypeRegistryFor(context.Background(), "e1")
	require.NoError(t, err)
	assert.Equal(t, record.KindInt32, reg.Expected("BOOK:year"))

	reg, err = s.TypeRegistryFor(context.Background(), "e2")
	require.NoError(t, err)
	assert.Empty(t, reg)
	assert.Equal(t, record.KindString, reg.Expected("BOOK:year"))
}

func TestStore_Rename(t *testing.T) {
	s := seeded(t)
	ctx := context.Background()

	require.NoError(t, s.Rename(ctx, "e1", "Dune.pdf"))

	e, _, _ := s.Snapshot("e1")
	assert.Equal(t, "Dune.pdf", e.Name)

	err := s.Rename(ctx, "e1", " ")
	assert.True(t, errors.IsPersist(err))
}
