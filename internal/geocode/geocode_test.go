package geocode_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/cockroachdb/errors"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ErlanBelekov/jobbee-api/internal/cache"
	"github.com/ErlanBelekov/jobbee-api/internal/domain"
	"github.com/ErlanBelekov/jobbee-api/internal/geocode"
)

const bostonResponse = `{
  "info": {"statuscode": 0, "messages": []},
  "results": [{"locations": [{
    "street": "1 Main St", "adminArea5": "Boston", "adminArea3": "MA",
    "adminArea1": "US", "postalCode": "02108",
    "latLng": {"lat": 42.3588, "lng": -71.0707}
  }]}]
}`

func newServer(t *testing.T, status int, body string, calls *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls != nil {
			calls.Add(1)
		}
		if r.URL.Query().Get("key") != "test-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestMapQuest_Geocode(t *testing.T) {
	srv := newServer(t, http.StatusOK, bostonResponse, nil)
	g := geocode.NewMapQuest(srv.URL, "test-key", 100)

	r, err := g.Geocode(context.Background(), "02108")
	require.NoError(t, err)

	assert.Equal(t, 42.3588, r.Latitude)
	assert.Equal(t, -71.0707, r.Longitude)
	assert.Equal(t, "1 Main St, Boston, MA 02108, US", r.FormattedAddress)

	loc := r.Location()
	assert.Equal(t, "Point", loc.Type)
	assert.Equal(t, [2]float64{-71.0707, 42.3588}, loc.Coordinates)
	assert.Equal(t, "02108", loc.Zipcode)
}

func TestMapQuest_NoResultIsNotFound(t *testing.T) {
	srv := newServer(t, http.StatusOK, `{"info":{"statuscode":0},"results":[{"locations":[]}]}`, nil)

	_, err := geocode.NewMapQuest(srv.URL, "test-key", 100).Geocode(context.Background(), "00000")

	assert.True(t, errors.Is(err, domain.ErrNoLocation))
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestMapQuest_EmptyAddressIsNotFound(t *testing.T) {
	_, err := geocode.NewMapQuest("http://127.0.0.1:1", "test-key", 100).Geocode(context.Background(), "  ")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestMapQuest_FailuresAreUpstream(t *testing.T) {
	cases := map[string]*httptest.Server{
		"http error":     newServer(t, http.StatusInternalServerError, "", nil),
		"bad body":       newServer(t, http.StatusOK, "<html>", nil),
		"service status": newServer(t, http.StatusOK, `{"info":{"statuscode":403,"messages":["bad key"]}}`, nil),
	}
	for name, srv := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := geocode.NewMapQuest(srv.URL, "test-key", 100).Geocode(context.Background(), "02108")
			assert.True(t, errors.Is(err, domain.ErrUpstream))
		})
	}

	srv := newServer(t, http.StatusOK, bostonResponse, nil)
	_, err := geocode.NewMapQuest(srv.URL, "wrong-key", 100).Geocode(context.Background(), "02108")
	assert.True(t, errors.Is(err, domain.ErrUpstream))
}

func TestMapQuest_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := geocode.NewMapQuest(url, "test-key", 100).Geocode(context.Background(), "02108")
	assert.True(t, errors.Is(err, domain.ErrUpstream))
}

func TestCached_SecondLookupSkipsUpstream(t *testing.T) {
	var calls atomic.Int32
	srv := newServer(t, http.StatusOK, bostonResponse, &calls)

	mr := miniredis.RunT(t)
	c := cache.NewFromRedis(redis.NewClient(&redis.Options{Addr: mr.Addr()}),
		slog.New(slog.NewTextHandler(io.Discard, nil)))
	g := geocode.NewCached(geocode.NewMapQuest(srv.URL, "test-key", 100), c)

	first, err := g.Geocode(context.Background(), "02108")
	require.NoError(t, err)
	second, err := g.Geocode(context.Background(), " 02108 ")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), calls.Load())
}

func TestCached_ErrorsAreNotCached(t *testing.T) {
	var calls atomic.Int32
	srv := newServer(t, http.StatusOK, `{"info":{"statuscode":0},"results":[]}`, &calls)
	g := geocode.NewCached(geocode.NewMapQuest(srv.URL, "test-key", 100), nil)

	for range 2 {
		_, err := g.Geocode(context.Background(), "nowhere")
		assert.True(t, errors.Is(err, domain.ErrNoLocation))
	}
	assert.Equal(t, int32(2), calls.Load())
}
