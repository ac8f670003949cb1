package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"metadata-enricher/internal/errors"
	"metadata-enricher/internal/metrics"
	"metadata-enricher/internal/record"
)

func TestClient_FetchJSON(t *testing.T) {
	var gotUA, gotAccept string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"numFound": 1, "docs": [{"title": "Dune"}]}`))
	}))
	defer srv.Close()

	m, err := metrics.New(prometheus.NewRegistry())
	require.NoError(t, err)

	c := NewClient(WithUserAgent("test-agent"), WithMetrics(m), WithRateLimiter(rate.NewLimiter(rate.Inf, 1)))

	rec, err := c.FetchJSON(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.Equal(t, "test-agent", gotUA)
	assert.Equal(t, "*/*", gotAccept)
	assert.Equal(t, record.Float64(1), rec.GetOr("numFound", 0, nil))
	assert.True(t, rec.Has("docs"))
}

func TestClient_StatusRange(t *testing.T) {
	tests := []struct {
		status  int
		wantErr bool
	}{
		{http.StatusOK, false},
		{http.StatusNoContent, false},
		{http.StatusNotModified, false},
		{http.StatusBadRequest, false},
		{http.StatusUnauthorized, true},
		{http.StatusNotFound, true},
		{http.StatusInternalServerError, true},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			_, err := NewClient().FetchBytes(context.Background(), srv.URL)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.True(t, errors.IsFetch(err))
			assert.ErrorIs(t, err, errors.ErrHTTPStatus)
		})
	}
}

func TestClient_Timeout(t *testing.T) {
	release := make(chan struct{})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c := NewClient(WithTimeout(50 * time.Millisecond))

	_, err := c.FetchJSON(context.Background(), srv.URL)
	require.Error(t, err)
	assert.True(t, errors.IsFetch(err))
	assert.ErrorIs(t, err, errors.ErrTimeout)
}

func TestClient_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"title": `))
	}))
	defer srv.Close()

	_, err := NewClient().FetchJSON(context.Background(), srv.URL)
	require.Error(t, err)
	assert.True(t, errors.IsParse(err))
	assert.ErrorIs(t, err, errors.ErrMalformedBody)
}

func TestClient_BodyTooLarge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(make([]byte, 64))
	}))
	defer srv.Close()

	_, err := NewClient(WithMaxBodySize(16)).FetchBytes(context.Background(), srv.URL)
	require.Error(t, err)
	assert.True(t, errors.IsParse(err))
}

func TestClient_BadURL(t *testing.T) {
	_, err := NewClient().FetchBytes(context.Background(), "http://[::1")
	require.Error(t, err)
	assert.True(t, errors.IsConfiguration(err))
}

func TestSniffImage(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

	ct, ok := SniffImage(png)
	assert.True(t, ok)
	assert.Equal(t, "image/png", ct)

	_, ok = SniffImage([]byte("<html><body>not found</body></html>"))
	assert.False(t, ok)
}
