package iconify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chandu-machineni/iconify/internal/errors"
	"github.com/chandu-machineni/iconify/internal/icon"
)

type recordingObserver struct {
	mu       sync.Mutex
	outcomes []string
}

func (r *recordingObserver) ObserveUpstream(endpoint, outcome string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, endpoint+":"+outcome)
}

func newTestServer(t *testing.T, h http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(h)
	srv.Config.SetKeepAlivesEnabled(false)
	t.Cleanup(srv.Close)
	return srv
}

func noRetry() errors.RetryConfig {
	cfg := errors.DefaultRetryConfig()
	cfg.MaxRetries = 0
	return cfg
}

func TestClient_Search(t *testing.T) {
	var gotQuery, gotUA, gotAccept string
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		gotQuery = r.URL.RawQuery
		gotUA = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"icons":["mdi:home","mdi:home-outline"],"total":2,"limit":100,"start":0,` +
			`"collections":{"mdi":{"name":"Material Design Icons","total":7447}}}`))
	})

	obs := &recordingObserver{}
	c := New(WithBaseURL(srv.URL), WithUserAgent("test-agent"), WithObserver(obs))

	resp, err := c.Search(context.Background(), SearchParams{
		Query:    "home",
		Prefixes: []string{"mdi", "material-symbols"},
		Limit:    100,
		Offset:   100,
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"mdi:home", "mdi:home-outline"}, resp.Icons)
	assert.Equal(t, "Material Design Icons", resp.Collections["mdi"].Name)
	assert.Equal(t, "limit=100&offset=100&prefix=mdi%2Cmaterial-symbols&query=home", gotQuery)
	assert.Equal(t, "test-agent", gotUA)
	assert.Equal(t, "application/json", gotAccept)
	assert.Equal(t, []string{"search:ok"}, obs.outcomes)
}

func TestClient_SearchURL_OmitsZeroValues(t *testing.T) {
	c := New(WithBaseURL("https://icons.example.com/"))
	assert.Equal(t, "https://icons.example.com/search?limit=50&prefix=bi", c.SearchURL(SearchParams{Prefixes: []string{"bi"}, Limit: 50}))
}

func TestClient_Search_HTTPErrorNotRetried(t *testing.T) {
	var calls atomic.Int64
	srv := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	})

	c := New(WithBaseURL(srv.URL))
	_, err := c.Search(context.Background(), SearchParams{Query: "x"})

	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeUpstreamRejected, errors.GetCode(err))
	assert.Equal(t, int64(1), calls.Load())
}

func TestClient_Search_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int64
	srv := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"icons":["bi:house"]}`))
	})

	retry := errors.DefaultRetryConfig()
	retry.InitialDelay = time.Millisecond
	retry.Jitter = false
	c := New(WithBaseURL(srv.URL), WithRetry(retry))

	resp, err := c.Search(context.Background(), SearchParams{Query: "house"})
	require.NoError(t, err)
	assert.Equal(t, []string{"bi:house"}, resp.Icons)
	assert.Equal(t, int64(3), calls.Load())
}

func TestClient_Search_InvalidJSON(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"icons": [`))
	})

	c := New(WithBaseURL(srv.URL))
	_, err := c.Search(context.Background(), SearchParams{Query: "x"})
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeUpstreamDecode, errors.GetCode(err))
}

func TestClient_CircuitOpensAfterFailures(t *testing.T) {
	var calls atomic.Int64
	srv := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	})

	c := New(
		WithBaseURL(srv.URL),
		WithRetry(noRetry()),
		WithCircuitBreaker(errors.NewCircuitBreaker("test", errors.WithMaxFailures(2))),
	)

	for i := 0; i < 2; i++ {
		_, err := c.Search(context.Background(), SearchParams{Query: "x"})
		require.Error(t, err)
	}
	_, err := c.Search(context.Background(), SearchParams{Query: "x"})

	assert.ErrorIs(t, err, errors.ErrCircuitOpen)
	assert.Equal(t, int64(2), calls.Load())
	assert.Equal(t, errors.StateOpen, c.Breaker().State())
}

func TestClient_SVG(t *testing.T) {
	var gotPath, gotQuery string
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "image/svg+xml")
		_, _ = w.Write([]byte(`<svg xmlns="http://www.w3.org/2000/svg"/>`))
	})

	c := New(WithBaseURL(srv.URL))
	body, err := c.SVG(context.Background(),
		icon.QualifiedName{Prefix: "tabler", Name: "arrow-right"},
		icon.SVGOptions{Size: 32, StrokeWidth: 1.5, Color: "#ff0000"})

	require.NoError(t, err)
	assert.Equal(t, `<svg xmlns="http://www.w3.org/2000/svg"/>`, string(body))
	assert.Equal(t, "/tabler/arrow-right.svg", gotPath)
	assert.Equal(t, "color=ff0000&height=32&stroke-width=1.5&width=32", gotQuery)
}

func TestClient_SVGURL_CurrentColorOmitted(t *testing.T) {
	c := New()
	got := c.SVGURL(icon.QualifiedName{Prefix: "mdi", Name: "home"}, icon.SVGOptions{Color: "currentColor"})
	assert.Equal(t, "https://api.iconify.design/mdi/home.svg?height=24&width=24", got)
}

func TestClient_ContextCancelled(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"icons":[]}`))
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := New(WithBaseURL(srv.URL))
	_, err := c.Search(ctx, SearchParams{Query: "x"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, errors.StateClosed, c.Breaker().State())
}
