package geocode

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-trip-day-planner/config"
	"github.com/FACorreiaa/go-trip-day-planner/internal/types"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func newTestClient(baseURL string) *NominatimClient {
	return NewNominatimClient(config.GeocoderConfig{
		BaseURL:     baseURL,
		UserAgent:   "planner-test/0.1",
		Timeout:     50 * time.Millisecond,
		MaxAttempts: 3,
		RetryDelay:  time.Millisecond,
		CacheTTL:    time.Minute,
	}, discard)
}

func TestGeocode_Found(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "Torre de Belém", r.URL.Query().Get("q"))
		assert.Equal(t, "jsonv2", r.URL.Query().Get("format"))
		assert.Equal(t, "1", r.URL.Query().Get("limit"))
		assert.Equal(t, "planner-test/0.1", r.Header.Get("User-Agent"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `[{"lat":"38.6916","lon":"-9.2160","display_name":"Torre de Belém, Lisboa, Portugal"}]`)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	got, err := c.Geocode(context.Background(), "  Torre de Belém ")
	require.NoError(t, err)
	assert.Equal(t, &types.GeocodeResult{Latitude: 38.6916, Longitude: -9.2160, Address: "Torre de Belém, Lisboa, Portugal"}, got)

	// Served from cache regardless of case and spacing; callers get their own copy.
	got.Latitude = 0
	again, err := c.Geocode(context.Background(), "torre  de belém")
	require.NoError(t, err)
	assert.Equal(t, 38.6916, again.Latitude)
	assert.Equal(t, int32(1), hits.Load())
}

func TestGeocode_NotFoundIsCached(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = io.WriteString(w, `[]`)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	for range 3 {
		got, err := c.Geocode(context.Background(), "Atlantis")
		require.NoError(t, err)
		assert.Nil(t, got)
	}
	assert.Equal(t, int32(1), hits.Load())
}

func TestGeocode_EmptyPlaceName(t *testing.T) {
	c := newTestClient("http://127.0.0.1:1")
	_, err := c.Geocode(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyPlaceName)
}

func slowThenOK(slowCalls int32, hits *atomic.Int32) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) <= slowCalls {
			select {
			case <-r.Context().Done():
			case <-time.After(time.Second):
			}
			return
		}
		_, _ = io.WriteString(w, `[{"lat":"48.8606","lon":"2.3376","display_name":"Louvre"}]`)
	}
}

func TestGeocode_RetriesTimeouts(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(slowThenOK(2, &hits))
	defer srv.Close()

	got, err := newTestClient(srv.URL).Geocode(context.Background(), "Louvre")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 48.8606, got.Latitude)
	assert.Equal(t, int32(3), hits.Load())
}

func TestGeocode_GivesUpAfterMaxAttempts(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(slowThenOK(10, &hits))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Geocode(context.Background(), "Louvre")
	assert.ErrorIs(t, err, ErrTimeout)
	assert.Equal(t, int32(3), hits.Load())
}

func TestGeocode_ServerErrorIsNotRetriedOrCached(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	_, err := c.Geocode(context.Background(), "Prado")
	assert.ErrorContains(t, err, "status 500")
	_, err = c.Geocode(context.Background(), "Prado")
	assert.Error(t, err)
	assert.Equal(t, int32(2), hits.Load())
}

func TestGeocode_GatewayTimeoutIsRetried(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusGatewayTimeout)
			return
		}
		_, _ = io.WriteString(w, `[{"lat":"40.4138","lon":"-3.6921","display_name":"Museo del Prado"}]`)
	}))
	defer srv.Close()

	got, err := newTestClient(srv.URL).Geocode(context.Background(), "Prado")
	require.NoError(t, err)
	assert.Equal(t, "Museo del Prado", got.Address)
	assert.Equal(t, int32(2), hits.Load())
}

func TestGeocode_ConcurrentCallersAgree(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(10 * time.Millisecond)
		_, _ = io.WriteString(w, `[{"lat":"52.5163","lon":"13.3777","display_name":"Brandenburger Tor"}]`)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	var wg sync.WaitGroup
	results := make([]*types.GeocodeResult, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = c.Geocode(context.Background(), "Brandenburg Gate")
		}(i)
	}
	wg.Wait()

	for _, r := range results {
		require.NotNil(t, r)
		assert.Equal(t, 13.3777, r.Longitude)
	}
}

func TestNewNominatimClient_Defaults(t *testing.T) {
	c := NewNominatimClient(config.GeocoderConfig{}, discard)
	assert.Equal(t, defaultBaseURL, c.baseURL)
	assert.Equal(t, defaultUserAgent, c.userAgent)
	assert.Equal(t, defaultMaxAttempts, c.maxAttempts)
	assert.Equal(t, defaultTimeout, c.httpClient.Timeout)
}

func TestGeocode_CancelledCallerDoesNotFailSharedLookup(t *testing.T) {
	var hits atomic.Int32
	started := make(chan struct{})
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			close(started)
		}
		<-release
		_, _ = io.WriteString(w, `[{"lat":"41.9022","lon":"12.4539","display_name":"Basilica di San Pietro"}]`)
	}))
	defer srv.Close()
	defer func() {
		select {
		case <-release:
		default:
			close(release)
		}
	}()

	c := NewNominatimClient(config.GeocoderConfig{
		BaseURL:     srv.URL,
		UserAgent:   "planner-test/0.1",
		Timeout:     2 * time.Second,
		MaxAttempts: 1,
		CacheTTL:    time.Minute,
	}, discard)

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := c.Geocode(firstCtx, "St. Peter's Basilica")
		firstErr <- err
	}()
	<-started

	type outcome struct {
		res *types.GeocodeResult
		err error
	}
	second := make(chan outcome, 1)
	go func() {
		res, err := c.Geocode(context.Background(), "St. Peter's Basilica")
		second <- outcome{res, err}
	}()
	time.Sleep(20 * time.Millisecond)

	cancelFirst()
	assert.ErrorIs(t, <-firstErr, context.Canceled)

	close(release)
	got := <-second
	require.NoError(t, got.err)
	require.NotNil(t, got.res)
	assert.Equal(t, "Basilica di San Pietro", got.res.Address)
	assert.Equal(t, int32(1), hits.Load())
}
