package provider

import (
	"context"
	"math"
	"sort"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chandu-machineni/iconify/internal/errors"
	"github.com/chandu-machineni/iconify/internal/iconify"
)

// mockSearcher records every request and answers from respond.
type mockSearcher struct {
	calls   atomic.Int64
	mu      sync.Mutex
	params  []iconify.SearchParams
	respond func(p iconify.SearchParams) (*iconify.SearchResponse, error)
}

func (m *mockSearcher) Search(_ context.Context, p iconify.SearchParams) (*iconify.SearchResponse, error) {
	m.calls.Add(1)
	m.mu.Lock()
	m.params = append(m.params, p)
	m.mu.Unlock()
	return m.respond(p)
}

type failureCounter struct {
	mu    sync.Mutex
	byKey map[string]int
}

func (f *failureCounter) ProviderFailed(providerID, op string, _ error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.byKey == nil {
		f.byKey = map[string]int{}
	}
	f.byKey[providerID+"/"+op]++
}

func TestIconifyAdapter_SearchPaging(t *testing.T) {
	m := &mockSearcher{respond: func(p iconify.SearchParams) (*iconify.SearchResponse, error) {
		return &iconify.SearchResponse{
			Icons:       []string{"mdi:home", "material-symbols:home"},
			Collections: map[string]iconify.Collection{"mdi": {Name: "Material Design Icons"}},
		}, nil
	}}
	a := NewIconifyAdapter(Spec{ID: "material", Name: "Material Design", Prefixes: []string{"mdi", "material-symbols"}, PageSize: 100}, m)

	hits := a.Search(context.Background(), "home", 3)

	require.Len(t, hits, 2)
	assert.Equal(t, RawHit{QualifiedName: "mdi:home", Collection: "Material Design Icons"}, hits[0])
	assert.Equal(t, RawHit{QualifiedName: "material-symbols:home"}, hits[1])

	require.Len(t, m.params, 1)
	assert.Equal(t, iconify.SearchParams{Query: "home", Prefixes: []string{"mdi", "material-symbols"}, Limit: 100, Offset: 200}, m.params[0])
}

func TestIconifyAdapter_FailureBecomesEmpty(t *testing.T) {
	m := &mockSearcher{respond: func(iconify.SearchParams) (*iconify.SearchResponse, error) {
		return nil, errors.UpstreamError("connection refused", nil)
	}}
	fc := &failureCounter{}
	a := NewIconifyAdapter(Spec{ID: "remix", Prefixes: []string{"ri"}}, m, WithFailureRecorder(fc))

	hits := a.Search(context.Background(), "home", 1)
	assert.NotNil(t, hits)
	assert.Empty(t, hits)

	assert.Empty(t, a.Popular(context.Background()))
	assert.Equal(t, map[string]int{"remix/search": 1, "remix/popular": 1}, fc.byKey)
}

func TestIconifyAdapter_PopularPrefixOnly(t *testing.T) {
	m := &mockSearcher{respond: func(iconify.SearchParams) (*iconify.SearchResponse, error) {
		return &iconify.SearchResponse{Icons: []string{"heroicons:home"}}, nil
	}}
	a := NewIconifyAdapter(Spec{ID: "heroicons", Prefixes: []string{"heroicons"}, PopularLimit: 50}, m)

	hits := a.Popular(context.Background())

	require.Len(t, hits, 1)
	require.Len(t, m.params, 1)
	assert.Equal(t, iconify.SearchParams{Prefixes: []string{"heroicons"}, Limit: 50}, m.params[0])
}

func TestIconifyAdapter_PopularSeedQueriesKeepOrder(t *testing.T) {
	m := &mockSearcher{respond: func(p iconify.SearchParams) (*iconify.SearchResponse, error) {
		if p.Query == "cart" {
			return nil, errors.StatusError(500, "http://x")
		}
		return &iconify.SearchResponse{Icons: []string{"tabler:" + p.Query}}, nil
	}}
	a := NewIconifyAdapter(Spec{ID: "iconify", PopularQueries: []string{"home", "cart", "star"}, PopularLimit: 10}, m)

	hits := a.Popular(context.Background())

	// Query order is preserved and a failed seed query just contributes nothing
	require.Len(t, hits, 2)
	assert.Equal(t, "tabler:home", hits[0].QualifiedName)
	assert.Equal(t, "tabler:star", hits[1].QualifiedName)
	assert.Equal(t, int64(3), m.calls.Load())

	limits := make([]int, 0, len(m.params))
	for _, p := range m.params {
		limits = append(limits, p.Limit)
	}
	sort.Ints(limits)
	assert.Equal(t, []int{10, 10, 10}, limits)
}

func TestIconifyAdapter_Browse(t *testing.T) {
	m := &mockSearcher{respond: func(iconify.SearchParams) (*iconify.SearchResponse, error) {
		return &iconify.SearchResponse{Icons: []string{"lucide:a", "lucide:b"}}, nil
	}}
	a := NewIconifyAdapter(Spec{ID: "iconify"}, m)

	var b Browser = a
	hits := b.Browse(context.Background(), "lucide", 200)

	assert.Len(t, hits, 2)
	assert.Equal(t, iconify.SearchParams{Prefixes: []string{"lucide"}, Limit: 200}, m.params[0])
}

func TestOffset(t *testing.T) {
	assert.Equal(t, 0, Offset(1, 100))
	assert.Equal(t, 200, Offset(2, 200))
	assert.Equal(t, 0, Offset(0, 100))
	assert.Equal(t, 0, Offset(-4, 100))
	assert.Equal(t, 0, Offset(3, 0))
}

func TestOffset_SaturatesInsteadOfWrapping(t *testing.T) {
	tests := []struct {
		name     string
		page     int
		pageSize int
		want     int
	}{
		{"largest exact", math.MaxInt/200 + 1, 200, (math.MaxInt / 200) * 200},
		{"one past", math.MaxInt/200 + 2, 200, math.MaxInt},
		{"max page", math.MaxInt, 100, math.MaxInt},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Offset(tt.page, tt.pageSize)
			assert.Equal(t, tt.want, got)
			assert.GreaterOrEqual(t, got, 0)
		})
	}
}

func TestDefaultSpecs(t *testing.T) {
	specs := DefaultSpecs()
	ids := make([]string, len(specs))
	for i, s := range specs {
		ids[i] = s.ID
	}
	assert.Equal(t, []string{"iconify", "fontawesome", "material", "bootstrap", "heroicons", "remix"}, ids)
	assert.Equal(t, 200, specs[0].PageSize)
	assert.Empty(t, specs[0].Prefixes)
	assert.Len(t, specs[0].PopularQueries, 10)

	providers := FromSpecs(specs, &mockSearcher{})
	require.Len(t, providers, 6)
	assert.Equal(t, "Font Awesome", providers[1].Name())
	assert.Equal(t, 100, providers[1].PageSize())
}
