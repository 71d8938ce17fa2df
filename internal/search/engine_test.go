package search

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chandu-machineni/iconify/internal/cache"
	ierrors "github.com/chandu-machineni/iconify/internal/errors"
	"github.com/chandu-machineni/iconify/internal/icon"
	"github.com/chandu-machineni/iconify/internal/iconify"
	"github.com/chandu-machineni/iconify/internal/provider"
	"github.com/chandu-machineni/iconify/internal/telemetry"
)

// =============================================================================
// Test doubles
// =============================================================================

// mockProvider answers from funcs and counts calls.
type mockProvider struct {
	id       string
	pageSize int

	searchCalls  atomic.Int64
	popularCalls atomic.Int64

	search  func(ctx context.Context, query string, page int) []provider.RawHit
	popular func(ctx context.Context) []provider.RawHit
}

func (m *mockProvider) ID() string   { return m.id }
func (m *mockProvider) Name() string { return m.id }
func (m *mockProvider) PageSize() int {
	if m.pageSize == 0 {
		return 100
	}
	return m.pageSize
}

func (m *mockProvider) Search(ctx context.Context, query string, page int) []provider.RawHit {
	m.searchCalls.Add(1)
	if m.search == nil {
		return []provider.RawHit{}
	}
	return m.search(ctx, query, page)
}

func (m *mockProvider) Popular(ctx context.Context) []provider.RawHit {
	m.popularCalls.Add(1)
	if m.popular == nil {
		return []provider.RawHit{}
	}
	return m.popular(ctx)
}

// browsingProvider adds provider.Browser to mockProvider.
type browsingProvider struct {
	mockProvider
	browseCalls atomic.Int64
}

func (b *browsingProvider) Browse(_ context.Context, prefix string, limit int) []provider.RawHit {
	b.browseCalls.Add(1)
	hits := make([]provider.RawHit, 0, limit)
	for i := 0; i < limit+5; i++ {
		hits = append(hits, provider.RawHit{QualifiedName: fmt.Sprintf("%s:icon-%d", prefix, i)})
	}
	return hits
}

// failingSearcher is an icon API client that is always down.
type failingSearcher struct{}

func (failingSearcher) Search(context.Context, iconify.SearchParams) (*iconify.SearchResponse, error) {
	return nil, ierrors.UpstreamError("connection refused", nil)
}

func hits(qns ...string) []provider.RawHit {
	out := make([]provider.RawHit, len(qns))
	for i, qn := range qns {
		out[i] = provider.RawHit{QualifiedName: qn}
	}
	return out
}

func fixed(qns ...string) func(context.Context, string, int) []provider.RawHit {
	return func(context.Context, string, int) []provider.RawHit { return hits(qns...) }
}

func generated(prefix string, n int) func(context.Context, string, int) []provider.RawHit {
	return func(_ context.Context, _ string, page int) []provider.RawHit {
		out := make([]provider.RawHit, n)
		for i := range out {
			out[i] = provider.RawHit{QualifiedName: fmt.Sprintf("%s:p%d-icon-%d", prefix, page, i)}
		}
		return out
	}
}

func newTestEngine(t *testing.T, providers ...provider.Provider) *Engine {
	t.Helper()
	e, err := NewEngine(providers)
	require.NoError(t, err)
	return e
}

func ids(icons []icon.Icon) []string {
	out := make([]string, len(icons))
	for i, ic := range icons {
		out[i] = ic.ID
	}
	return out
}

// =============================================================================
// Construction
// =============================================================================

func TestNewEngine_RequiresProviders(t *testing.T) {
	_, err := NewEngine(nil)
	assert.ErrorIs(t, err, ErrNilDependency)

	_, err = NewEngine([]provider.Provider{&mockProvider{id: "a"}, nil})
	assert.ErrorIs(t, err, ErrNilDependency)
}

// =============================================================================
// Search
// =============================================================================

func TestSearch_DiscardsMalformedHits(t *testing.T) {
	p := &mockProvider{id: "iconify", search: fixed("mdi:home", "broken", ":x", "mdi:", "bi:house")}
	e := newTestEngine(t, p)

	got, err := e.Search(context.Background(), "home", Filters{}, 1)

	require.NoError(t, err)
	assert.Equal(t, []string{"mdi:home", "bi:house"}, ids(got))
}

func TestSearch_DedupesKeepingFirstProvider(t *testing.T) {
	first := &mockProvider{id: "iconify", search: fixed("mdi:home", "tabler:home", "mdi:home")}
	second := &mockProvider{id: "material", search: fixed("mdi:home", "mdi:home-outline")}
	e := newTestEngine(t, first, second)

	got, err := e.Search(context.Background(), "home", Filters{}, 1)

	require.NoError(t, err)
	assert.Equal(t, []string{"mdi:home", "tabler:home", "mdi:home-outline"}, ids(got))
	assert.Equal(t, "iconify", got[0].SourceProvider)
	assert.Equal(t, "material", got[2].SourceProvider)
}

func TestSearch_RepeatIsCacheHit(t *testing.T) {
	a := &mockProvider{id: "a", search: fixed("mdi:home")}
	b := &mockProvider{id: "b", search: fixed("bi:house")}
	e := newTestEngine(t, a, b)
	f := Filters{Libraries: []string{"mdi", "bi"}}

	first, err := e.Search(context.Background(), "home", f, 1)
	require.NoError(t, err)
	second, err := e.Search(context.Background(), "home", f, 1)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int64(1), a.searchCalls.Load())
	assert.Equal(t, int64(1), b.searchCalls.Load())

	// Filter order does not matter, surrounding whitespace is ignored
	_, err = e.Search(context.Background(), "  home ", Filters{Libraries: []string{"bi", "mdi", "bi"}}, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), a.searchCalls.Load())

	// A different page is a different key
	_, err = e.Search(context.Background(), "home", f, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(2), a.searchCalls.Load())
}

func TestSearch_CallerCannotCorruptCache(t *testing.T) {
	p := &mockProvider{id: "a", search: fixed("mdi:home")}
	e := newTestEngine(t, p)

	got, _ := e.Search(context.Background(), "home", Filters{}, 1)
	got[0].Name = "tampered"

	again, _ := e.Search(context.Background(), "home", Filters{}, 1)
	assert.Equal(t, "Home", again[0].Name)
}

func TestSearch_CallerCannotCorruptCachedTags(t *testing.T) {
	p := &mockProvider{id: "a", search: fixed("tabler:arrow-right")}
	e := newTestEngine(t, p)

	// Given: a first, uncached result whose tags are edited in place
	first, err := e.Search(context.Background(), "arrow", Filters{}, 1)
	require.NoError(t, err)
	first[0].Tags[0] = "tampered"

	// When: the cached result is fetched and edited as well
	second, err := e.Search(context.Background(), "arrow", Filters{}, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"arrow", "right"}, second[0].Tags)
	second[0].Tags[1] = "tampered"

	// Then: the cache still holds the original tags
	third, err := e.Search(context.Background(), "arrow", Filters{}, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"arrow", "right"}, third[0].Tags)
	assert.Equal(t, int64(1), p.searchCalls.Load())
}

func TestSearch_RejectsPageBeyondMax(t *testing.T) {
	p := &mockProvider{id: "a", search: fixed("mdi:home")}
	e := newTestEngine(t, p)

	got, err := e.Search(context.Background(), "home", Filters{}, 46116860184273881)

	require.Error(t, err)
	assert.Equal(t, ierrors.ErrCodeInvalidPage, ierrors.GetCode(err))
	assert.Empty(t, got)
	assert.Equal(t, int64(0), p.searchCalls.Load())
}

func TestSearch_ProviderIsolation(t *testing.T) {
	down := provider.NewIconifyAdapter(provider.Spec{ID: "remix", Prefixes: []string{"ri"}}, failingSearcher{})
	up := &mockProvider{id: "bootstrap", search: fixed("bi:house", "bi:house-fill")}
	e := newTestEngine(t, down, up)

	got, err := e.Search(context.Background(), "house", Filters{}, 1)

	require.NoError(t, err)
	assert.Equal(t, []string{"bi:house", "bi:house-fill"}, ids(got))
}

func TestSearch_TruncatesPerProviderPageSize(t *testing.T) {
	p := &mockProvider{id: "a", pageSize: 10, search: generated("mdi", 15)}
	e := newTestEngine(t, p)

	got, err := e.Search(context.Background(), "icon", Filters{}, 1)
	require.NoError(t, err)
	assert.Len(t, got, 10)
	assert.Equal(t, "mdi:p1-icon-9", got[9].ID)
}

func TestSearch_CapsAtMaxResults(t *testing.T) {
	var providers []provider.Provider
	for i := 0; i < 6; i++ {
		providers = append(providers, &mockProvider{
			id:       fmt.Sprintf("p%d", i),
			pageSize: 200,
			search:   generated(fmt.Sprintf("set%d", i), 200),
		})
	}
	e := newTestEngine(t, providers...)

	got, err := e.Search(context.Background(), "icon", Filters{}, 1)

	require.NoError(t, err)
	require.Len(t, got, DefaultMaxResults)
	// The last kept icon is the final one of the fifth provider
	assert.Equal(t, "set4:p1-icon-199", got[999].ID)
}

func TestSearch_ArrowRightScenario(t *testing.T) {
	p := &mockProvider{id: "iconify", search: fixed("tabler:arrow-right", "mdi:arrow-right-bold")}
	e := newTestEngine(t, p)

	got, err := e.Search(context.Background(), "arrow right", Filters{}, 1)

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, icon.CategoryArrows, got[0].Category)
	assert.Equal(t, icon.CategoryArrows, got[1].Category)
	assert.Equal(t, icon.StyleOutline, got[0].Style)
	assert.Equal(t, icon.StyleBold, got[1].Style)

	bold, err := e.Search(context.Background(), "arrow right", Filters{Styles: []icon.Style{icon.StyleBold}}, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"mdi:arrow-right-bold"}, ids(bold))
}

func TestSearch_Filters(t *testing.T) {
	p := &mockProvider{id: "iconify", search: fixed(
		"mdi:home", "mdi:cart", "bi:cart-fill", "tabler:user", "ph:user-thin",
	)}
	e := newTestEngine(t, p)
	ctx := context.Background()

	tests := []struct {
		name string
		f    Filters
		want []string
	}{
		{"none", Filters{}, []string{"mdi:home", "mdi:cart", "bi:cart-fill", "tabler:user", "ph:user-thin"}},
		{"library", Filters{Libraries: []string{"mdi"}}, []string{"mdi:home", "mdi:cart"}},
		{"style", Filters{Styles: []icon.Style{icon.StyleSolid, icon.StyleThin}}, []string{"bi:cart-fill", "ph:user-thin"}},
		{"category", Filters{Categories: []icon.Category{icon.CategoryEcommerce}}, []string{"mdi:cart", "bi:cart-fill"}},
		{"combined", Filters{Libraries: []string{"mdi", "bi"}, Categories: []icon.Category{icon.CategoryEcommerce}, Styles: []icon.Style{icon.StyleOutline}}, []string{"mdi:cart"}},
		{"no match", Filters{Libraries: []string{"lucide"}}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.Search(ctx, "x", tt.f, 1)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestSearch_BlankQueryDelegatesToPopular(t *testing.T) {
	p := &mockProvider{id: "iconify", popular: func(context.Context) []provider.RawHit { return hits("mdi:home") }}
	e := newTestEngine(t, p)

	for _, q := range []string{"", "   ", "\t\n"} {
		got, err := e.Search(context.Background(), q, Filters{}, 3)
		require.NoError(t, err)
		assert.Equal(t, []string{"mdi:home"}, ids(got))
	}

	assert.Zero(t, p.searchCalls.Load())
	assert.Equal(t, int64(1), p.popularCalls.Load())
}

func TestSearch_PanicIsTotalFailureAndNotCached(t *testing.T) {
	var panics atomic.Bool
	panics.Store(true)
	bad := &mockProvider{id: "bad", search: func(context.Context, string, int) []provider.RawHit {
		if panics.Load() {
			panic("boom")
		}
		return hits("ri:home")
	}}
	good := &mockProvider{id: "good", search: fixed("mdi:home")}
	e := newTestEngine(t, good, bad)

	got, err := e.Search(context.Background(), "home", Filters{}, 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAggregationFailed)
	assert.NotNil(t, got)
	assert.Empty(t, got)

	// Nothing was cached: the next call fans out again
	panics.Store(false)
	got, err = e.Search(context.Background(), "home", Filters{}, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"mdi:home", "ri:home"}, ids(got))
	assert.Equal(t, int64(2), good.searchCalls.Load())
}

func TestSearch_CancelledContextNotCached(t *testing.T) {
	p := &mockProvider{id: "a", search: fixed("mdi:home")}
	e := newTestEngine(t, p)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	got, err := e.Search(ctx, "home", Filters{}, 1)
	assert.ErrorIs(t, err, ErrAggregationFailed)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, got)

	_, err = e.Search(context.Background(), "home", Filters{}, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), p.searchCalls.Load())
}

func TestSearch_PageOneThenPageTwo(t *testing.T) {
	a := &mockProvider{id: "a", pageSize: 3, search: generated("mdi", 3)}
	b := &mockProvider{id: "b", pageSize: 3, search: generated("bi", 3)}
	e := newTestEngine(t, a, b)

	p1, err := e.Search(context.Background(), "home", Filters{}, 1)
	require.NoError(t, err)
	p2, err := e.Search(context.Background(), "home", Filters{}, 2)
	require.NoError(t, err)

	all := append(ids(p1), ids(p2)...)
	seen := map[string]bool{}
	for _, id := range all {
		assert.False(t, seen[id], "duplicate %s", id)
		seen[id] = true
	}
	assert.Equal(t, "mdi:p1-icon-0", all[0])
	assert.Equal(t, "mdi:p2-icon-0", all[len(p1)])
}

// =============================================================================
// Popular
// =============================================================================

func TestPopular_DedupedAndIdempotent(t *testing.T) {
	a := &mockProvider{id: "iconify", popular: func(context.Context) []provider.RawHit {
		return hits("mdi:home", "tabler:user", "mdi:home")
	}}
	b := &mockProvider{id: "material", popular: func(context.Context) []provider.RawHit {
		return hits("mdi:home", "mdi:account", "nope")
	}}
	e := newTestEngine(t, a, b)

	first, err := e.Popular(context.Background())
	require.NoError(t, err)
	second, err := e.Popular(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"mdi:home", "tabler:user", "mdi:account"}, ids(first))
	assert.Equal(t, first, second)
	assert.Equal(t, int64(1), a.popularCalls.Load())
	assert.Equal(t, int64(1), b.popularCalls.Load())
}

// =============================================================================
// Library
// =============================================================================

func TestLibrary_UsesFirstBrowser(t *testing.T) {
	plain := &mockProvider{id: "plain"}
	browser := &browsingProvider{mockProvider: mockProvider{id: "iconify"}}
	e := newTestEngine(t, plain, browser)

	got, err := e.Library(context.Background(), "lucide", 20)
	require.NoError(t, err)
	assert.Len(t, got, 20)
	assert.Equal(t, "lucide:icon-0", got[0].ID)
	assert.Equal(t, "iconify", got[0].SourceProvider)

	_, err = e.Library(context.Background(), "lucide", 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), browser.browseCalls.Load())
}

func TestLibrary_Errors(t *testing.T) {
	e := newTestEngine(t, &mockProvider{id: "plain"})

	_, err := e.Library(context.Background(), "lucide", 0)
	assert.ErrorIs(t, err, ErrNoBrowser)

	_, err = e.Library(context.Background(), " ", 10)
	assert.Equal(t, ierrors.ErrCodeInvalidInput, ierrors.GetCode(err))
}

// =============================================================================
// Keys, catalogs and options
// =============================================================================

func TestSearchKey(t *testing.T) {
	base := SearchKey("home", Filters{Libraries: []string{"mdi", "bi"}}, 1)

	assert.Equal(t, base, SearchKey("home", Filters{Libraries: []string{"bi", "mdi"}}, 1))
	assert.NotEqual(t, base, SearchKey("home", Filters{Libraries: []string{"bi", "mdi"}}, 2))
	assert.NotEqual(t, base, SearchKey("home", Filters{Libraries: []string{"bi"}, Styles: []icon.Style{"mdi"}}, 1))
	assert.NotEqual(t, base, SearchKey("home|mdi", Filters{Libraries: []string{"bi"}}, 1))
	assert.NotEqual(t, popularKey, SearchKey("popular", Filters{}, 1))
	assert.NotEqual(t, LibraryKey("mdi", 200), SearchKey("library:mdi:200", Filters{}, 1))
}

func TestEngine_Catalogs(t *testing.T) {
	e := newTestEngine(t, &mockProvider{id: "a"})
	assert.Len(t, e.Libraries(), 24)
	assert.Len(t, e.Categories(), 20)
	assert.Equal(t, icon.EstimateTotalIconCount(), e.EstimateTotalIconCount())
	assert.Len(t, e.Providers(), 1)
}

func TestEngine_CacheEvictionAndTelemetry(t *testing.T) {
	p := &mockProvider{id: "a", search: fixed("mdi:home")}
	rec := telemetry.NewRecorder(telemetry.NewMetrics(prometheus.NewRegistry()), telemetry.NewQueryLog(telemetry.DefaultQueryLogConfig()))
	e, err := NewEngine([]provider.Provider{p},
		WithCache(cache.New[[]icon.Icon](4, 2)),
		WithMaxResults(10),
		WithRecorder(rec),
	)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		_, err := e.Search(context.Background(), fmt.Sprintf("q%d", i), Filters{}, 1)
		require.NoError(t, err)
	}
	_, _ = e.Search(context.Background(), "q4", Filters{}, 1)

	st := e.CacheStats()
	assert.Equal(t, 3, st.Entries)
	assert.Equal(t, uint64(2), st.Evictions)

	snap := rec.Snapshot()
	assert.Equal(t, int64(6), snap.TotalQueries)
	assert.Equal(t, int64(1), snap.CacheHits)

	// q0 was evicted so it fans out again
	_, _ = e.Search(context.Background(), "q0", Filters{}, 1)
	assert.Equal(t, int64(6), p.searchCalls.Load())
}

func TestErrAggregationFailed_IsInternal(t *testing.T) {
	err := fmt.Errorf("%w: boom", ErrAggregationFailed)
	assert.True(t, errors.Is(err, ErrAggregationFailed))
	assert.Equal(t, ierrors.CategoryInternal, ierrors.GetCategory(err))
}
