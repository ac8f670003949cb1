package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"metadata-enricher/internal/enrich"
	"metadata-enricher/internal/mapping"
	"metadata-enricher/internal/record"
)

const testProfile = `
version: "1"
121:
  BOOK:title: title
  BOOK:authors: author_name
  BOOK:year: first_publish_year
aliases:
  - SEN:NAME -> q
types:
  application/pdf:
    BOOK:year: int32
extensions:
  .pdf: application/pdf
service:
  search: %SERVER%/search.json
  candidates: docs
  title_field: BOOK:title
placeholder_titles: [Untitled]
`

func newTestApp(t *testing.T) (*app, string) {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") == "" {
			http.Error(w, "missing q", http.StatusBadRequest)
			return
		}

		_, _ = w.Write([]byte(`{"docs": [{"title": "Dune", "author_name": ["Frank Herbert"], "first_publish_year": 1965}]}`))
	}))
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "enricher.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(strings.ReplaceAll(testProfile, "%SERVER%", srv.URL)), 0o644))

	g := &globalFlags{
		ConfigPath: cfgPath,
		DBPath:     filepath.Join(dir, "db", "metadata.db"),
		LogLevel:   "error",
		LogFormat:  "text",
	}

	a, err := newApp(context.Background(), g, io.Discard)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	return a, dir
}

func TestRunEnrich(t *testing.T) {
	a, dir := newTestApp(t)
	ctx := context.Background()

	path := filepath.Join(dir, "Untitled.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.7"), 0o644))

	var out bytes.Buffer
	require.NoError(t, runEnrich(ctx, a, []string{path}, enrich.Options{}, 1, false, &out))
	assert.Contains(t, out.String(), "ok   "+path)
	assert.Contains(t, out.String(), `renamed to "Dune"`)

	e, err := a.store.Entity(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, "Dune", e.Name)
	assert.Equal(t, "application/pdf", e.MimeType)

	rec, err := a.store.RawRecord(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Dune"}, rec.Strings("BOOK:title"))
	assert.Equal(t, []string{"Frank Herbert"}, rec.Strings("BOOK:authors"))
	assert.Equal(t, record.Int32(1965), rec.GetOr("BOOK:year", 0, nil))

	// a second run keeps the assigned name
	out.Reset()
	require.NoError(t, runEnrich(ctx, a, []string{path}, enrich.Options{}, 1, true, &out))

	var summaries []outcomeSummary
	require.NoError(t, json.Unmarshal(out.Bytes(), &summaries))
	require.Len(t, summaries, 1)
	assert.Empty(t, summaries[0].Renamed)
	assert.Equal(t, 1, summaries[0].Candidates)
	assert.Equal(t, "Emit", summaries[0].Completed)
	assert.Equal(t, "Dune", summaries[0].Record["SEN:NAME"])
}

func TestRunEnrich_Failures(t *testing.T) {
	a, dir := newTestApp(t)

	var out bytes.Buffer
	err := runEnrich(context.Background(), a, []string{filepath.Join(dir, "missing.pdf"), dir},
		enrich.Options{}, 1, false, &out)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 of 2 files failed")
	assert.Equal(t, 2, strings.Count(out.String(), "FAIL"))
}

func TestRunValidate(t *testing.T) {
	p, err := mapping.DefaultProfile()
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, runValidate(&out, p))
	assert.Contains(t, out.String(), "profile ok")

	p.Service.Search = ""
	out.Reset()
	require.Error(t, runValidate(&out, p))
	assert.Contains(t, out.String(), "missing_search_url")
}

func TestPrintTypes(t *testing.T) {
	p, err := mapping.DefaultProfile()
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, printTypes(&out, p))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.True(t, strings.HasPrefix(lines[0], "MIME TYPE"))
	assert.Contains(t, out.String(), "BOOK:year")
	assert.Contains(t, out.String(), "Int32")
}

func TestPrintRecord(t *testing.T) {
	rec := record.New()
	rec.Set("BOOK:title", record.String("Dune"))
	require.NoError(t, rec.Add("BOOK:tags", record.String("sf")))
	require.NoError(t, rec.Add("BOOK:tags", record.String("classic")))

	var out bytes.Buffer
	require.NoError(t, printRecord(&out, rec))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "BOOK:title"))
	assert.True(t, strings.HasPrefix(lines[2], " "))
	assert.Contains(t, lines[2], "classic")
}

func TestGlobalFlags_Validate(t *testing.T) {
	g := &globalFlags{LogLevel: "info", LogFormat: "json", Debug: true}
	require.NoError(t, g.validate())
	assert.Equal(t, "debug", g.LogLevel)

	assert.Error(t, (&globalFlags{LogLevel: "loud", LogFormat: "json"}).validate())
	assert.Error(t, (&globalFlags{LogLevel: "info", LogFormat: "xml"}).validate())
}

func TestGetEnv(t *testing.T) {
	t.Setenv("ENRICHER_TEST_STRING", "value")
	t.Setenv("ENRICHER_TEST_INT", "nope")
	t.Setenv("ENRICHER_TEST_DURATION", "2s")

	assert.Equal(t, "value", getEnv("ENRICHER_TEST_STRING", "default"))
	assert.Equal(t, "default", getEnv("ENRICHER_TEST_UNSET", "default"))
	assert.Equal(t, 3, getEnvInt("ENRICHER_TEST_INT", 3))
	assert.Equal(t, 2*time.Second, getEnvDuration("ENRICHER_TEST_DURATION", time.Second))
	assert.False(t, getEnvBool("ENRICHER_TEST_UNSET", false))
}

func TestSetupLogger(t *testing.T) {
	var buf bytes.Buffer

	logger := setupLogger(&buf, "warn", "json")
	logger.Info("hidden")
	logger.Warn("shown", "k", "v")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
	assert.Contains(t, buf.String(), `"service":"metadata-enricher"`)
}

func TestRootCmd(t *testing.T) {
	cmd := newRootCmd()

	names := map[string]bool{}
	for _, c := range cmd.Commands() {
		names[c.Name()] = true
	}

	for _, want := range []string{"enrich", "watch", "validate", "types", "show", "init"} {
		assert.True(t, names[want], want)
	}

	path := filepath.Join(t.TempDir(), "profile.yaml")

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"init", path})
	require.NoError(t, cmd.Execute())

	p, err := mapping.LoadFile(path)
	require.NoError(t, err)
	assert.True(t, mapping.Validate(p).IsValid())
}
