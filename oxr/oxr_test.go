package oxr

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/etnz/fxgains/date"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeServer serves the historical endpoint with a JPY rate of 130 plus the day of the month / 100.
func fakeServer(t *testing.T, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Query().Get("app_id") != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"error": true, "status": 401, "message": "invalid_app_id", "description": "Invalid App ID provided."}`)
			return
		}
		assert.Equal(t, "USD", r.URL.Query().Get("base"))
		day, err := date.Parse(strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/historical/"), ".json"))
		if err != nil {
			http.NotFound(w, r)
			return
		}
		symbol := r.URL.Query().Get("symbols")
		if symbol != "JPY" {
			fmt.Fprint(w, `{"base": "USD", "rates": {}}`)
			return
		}
		fmt.Fprintf(w, `{"disclaimer": "test", "timestamp": 1, "base": "USD", "rates": {"JPY": 130.%02d}}`, day.Day())
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(t *testing.T, srv *httptest.Server, appID string) *Client {
	return New(appID, WithBaseURL(srv.URL+"/"), WithHTTPClient(srv.Client()), WithRequestsPerSecond(0))
}

func TestRate(t *testing.T) {
	var hits atomic.Int32
	srv := fakeServer(t, &hits)
	c := newTestClient(t, srv, "secret")
	ctx := context.Background()

	got, err := c.Rate(ctx, "jpy", date.MustParse("2023-03-07"))
	require.NoError(t, err)
	assert.True(t, got.Equal(decimal.RequireFromString("130.07")), "got %v", got)

	// memoized
	_, err = c.Rate(ctx, "JPY", date.MustParse("2023-03-07"))
	require.NoError(t, err)
	assert.Equal(t, int32(1), hits.Load())

	usd, err := c.Rate(ctx, "USD", date.MustParse("2023-03-07"))
	require.NoError(t, err)
	assert.True(t, usd.Equal(decimal.NewFromInt(1)))
	assert.Equal(t, int32(1), hits.Load(), "USD is never fetched")
}

func TestRate_DiskCache(t *testing.T) {
	var hits atomic.Int32
	srv := fakeServer(t, &hits)
	dir := t.TempDir()
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		// a new client has an empty memory cache
		c := New("secret", WithBaseURL(srv.URL), WithDiskCache(dir), WithRequestsPerSecond(0))
		_, err := c.Rate(ctx, "JPY", date.MustParse("2023-03-08"))
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), hits.Load())
}

func TestRate_Errors(t *testing.T) {
	var hits atomic.Int32
	srv := fakeServer(t, &hits)
	ctx := context.Background()

	_, err := newTestClient(t, srv, "wrong").Rate(ctx, "JPY", date.MustParse("2023-03-07"))
	assert.ErrorContains(t, err, "Invalid App ID provided.")

	_, err = newTestClient(t, srv, "secret").Rate(ctx, "EUR", date.MustParse("2023-03-07"))
	assert.ErrorContains(t, err, "cannot read EUR rate")

	_, err = newTestClient(t, srv, "").Rate(ctx, "JPY", date.MustParse("2023-03-07"))
	assert.ErrorContains(t, err, "missing openexchangerates app id")
}

func TestFetch(t *testing.T) {
	var hits atomic.Int32
	srv := fakeServer(t, &hits)
	c := newTestClient(t, srv, "secret")

	days := []date.Date{date.MustParse("2023-03-09"), date.MustParse("2023-03-01"), date.MustParse("2023-03-09")}
	h, err := c.Fetch(context.Background(), "JPY", days)
	require.NoError(t, err)
	assert.Equal(t, 2, h.Len())
	assert.Equal(t, []date.Date{date.MustParse("2023-03-01"), date.MustParse("2023-03-09")}, h.Days())
	v, ok := h.Get(date.MustParse("2023-03-09"))
	require.True(t, ok)
	assert.True(t, v.Equal(decimal.RequireFromString("130.09")))
	assert.Equal(t, int32(2), hits.Load())

	_, err = c.Fetch(context.Background(), "EUR", days)
	assert.Error(t, err)
}

func TestExtract(t *testing.T) {
	v, err := extract(map[string]any{"rates": map[string]any{"JPY": 131.5}}, "JPY")
	require.NoError(t, err)
	assert.True(t, v.Equal(decimal.RequireFromString("131.5")))

	_, err = extract(map[string]any{"rates": map[string]any{"JPY": "abc"}}, "JPY")
	assert.Error(t, err)
	_, err = extract(map[string]any{"rates": map[string]any{"JPY": 0.0}}, "JPY")
	assert.Error(t, err)
}
