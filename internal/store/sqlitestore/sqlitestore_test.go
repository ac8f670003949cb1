package sqlitestore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"metadata-enricher/internal/convert"
	"metadata-enricher/internal/errors"
	"metadata-enricher/internal/record"
	"metadata-enricher/internal/store"
)

func openTest(t *testing.T) *Store {
	t.Helper()

	s, err := Open(filepath.Join(t.TempDir(), "db", "enricher.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	return s
}

func seed(t *testing.T, s *Store) {
	t.Helper()

	ctx := context.Background()
	require.NoError(t, s.Register(ctx, store.Entity{Ref: "/books/mybook.pdf", Name: "mybook.pdf", MimeType: "application/pdf"}))

	attrs := record.New()
	attrs.Set("BEOS:TYPE", record.String("application/pdf"))
	attrs.Set("BOOK:title", record.String("Untitled"))
	attrs.Set("BOOK:year", record.Int32(1965))
	require.NoError(t, s.WriteRecord(ctx, "/books/mybook.pdf", attrs, true))
}

func TestStore_RoundTripValues(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()
	require.NoError(t, s.Register(ctx, store.Entity{Ref: "r", Name: "r"}))

	rec := record.New()
	rec.Set("s", record.String("Dune"))
	rec.Set("empty", record.String(""))
	require.NoError(t, rec.Replace("i", record.Int32(-7), record.Int32(42)))
	rec.Set("f64", record.Float64(1984.9))
	rec.Set("f32", record.Float32(0.5))
	rec.Set("b", record.Bool(true))
	rec.Set("raw", record.Bytes{0x89, 'P', 'N', 'G'})

	require.NoError(t, s.WriteRecord(ctx, "r", rec, true))

	got, err := s.RawRecord(ctx, "r")
	require.NoError(t, err)
	assert.True(t, rec.Equal(got), "got %s", got)
}

func TestStore_ReadRecord(t *testing.T) {
	s := openTest(t)
	seed(t, s)

	rec, err := s.ReadRecord(context.Background(), "/books/mybook.pdf")
	require.NoError(t, err)

	assert.Equal(t, []string{"BOOK:title", "BOOK:year", store.NameField}, rec.Names())
	assert.Equal(t, []string{"mybook.pdf"}, rec.Strings(store.NameField))
}

func TestStore_WriteRecord_Overwrite(t *testing.T) {
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
			s := openTest(t)
			seed(t, s)
			ctx := context.Background()

			rec := record.New()
			rec.Set("BOOK:title", record.String("Real Title"))
			rec.Set("BOOK:isbn", record.String("123"))
			rec.Set(store.NameField, record.String("other.pdf"))

			require.NoError(t, s.WriteRecord(ctx, "/books/mybook.pdf", rec, tt.overwrite))

			raw, err := s.RawRecord(ctx, "/books/mybook.pdf")
			require.NoError(t, err)

			// replaced fields keep their position
			assert.Equal(t, []string{"BEOS:TYPE", "BOOK:title", "BOOK:year", "BOOK:isbn"}, raw.Names())
			assert.Equal(t, []string{tt.wantTitle}, raw.Strings("BOOK:title"))

			e, err := s.Entity(ctx, "/books/mybook.pdf")
			require.NoError(t, err)
			assert.Equal(t, "mybook.pdf", e.Name)
		})
	}
}

func TestStore_NestedRejected(t *testing.T) {
	s := openTest(t)
	seed(t, s)

	rec := record.New()
	rec.Set("BOOK:links", record.NewNested(record.New()))

	err := s.WriteRecord(context.Background(), "/books/mybook.pdf", rec, true)
	require.Error(t, err)
	assert.True(t, errors.IsPersist(err))
	assert.ErrorIs(t, err, errors.ErrUnsupportedConversion)
}

func TestStore_Types(t *testing.T) {
	s := openTest(t)
	seed(t, s)
	ctx := context.Background()

	require.NoError(t, s.SetTypes(ctx, "application/pdf", convert.Registry{
		"BOOK:year":  record.KindInt32,
		"BOOK:cover": record.KindBytes,
	}))

	reg, err := s.TypeRegistryFor(ctx, "/books/mybook.pdf")
	require.NoError(t, err)
	assert.Equal(t, convert.Registry{"BOOK:year": record.KindInt32, "BOOK:cover": record.KindBytes}, reg)

	require.NoError(t, s.SetTypes(ctx, "application/pdf", convert.Registry{"BOOK:pages": record.KindInt32}))

	reg, err = s.TypeRegistryFor(ctx, "/books/mybook.pdf")
	require.NoError(t, err)
	assert.Equal(t, convert.Registry{"BOOK:pages": record.KindInt32}, reg)
}

func TestStore_Rename(t *testing.T) {
	s := openTest(t)
	seed(t, s)
	ctx := context.Background()

	require.NoError(t, s.Rename(ctx, "/books/mybook.pdf", "Dune.pdf"))

	e, err := s.Entity(ctx, "/books/mybook.pdf")
	require.NoError(t, err)
	assert.Equal(t, "Dune.pdf", e.Name)

	err = s.Rename(ctx, "/missing", "x")
	assert.ErrorIs(t, err, errors.ErrEntityNotFound)

	err = s.Rename(ctx, "/books/mybook.pdf", "")
	assert.True(t, errors.IsPersist(err))
}

func TestStore_Entities(t *testing.T) {
	s := openTest(t)
	seed(t, s)
	ctx := context.Background()
	require.NoError(t, s.Register(ctx, store.Entity{Ref: "/a", Name: "a"}))

	all, err := s.Entities(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "/a", all[0].Ref)
}

func TestStore_NotFound(t *testing.T) {
	s := openTest(t)

	_, err := s.ReadRecord(context.Background(), "/missing")
	assert.True(t, errors.IsPersist(err))
	assert.ErrorIs(t, err, errors.ErrEntityNotFound)
}
