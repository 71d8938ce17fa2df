package provider

import (
	"context"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/chandu-machineni/iconify/internal/iconify"
)

// Searcher is the slice of the icon API client the adapters need.
type Searcher interface {
	Search(ctx context.Context, p iconify.SearchParams) (*iconify.SearchResponse, error)
}

// Spec describes one Iconify-backed provider.
type Spec struct {
	ID   string `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`

	// Prefixes restricts searches to these collections. Empty means all collections.
	Prefixes []string `yaml:"prefixes,omitempty" json:"prefixes,omitempty"`

	PageSize int `yaml:"page_size" json:"page_size"`

	// PopularQueries, when set, are searched concurrently to build the popular sample.
	// Otherwise the sample is a prefix-only listing.
	PopularQueries []string `yaml:"popular_queries,omitempty" json:"popular_queries,omitempty"`

	// PopularLimit is the limit per popular request.
	PopularLimit int `yaml:"popular_limit" json:"popular_limit"`
}

// IconifyAdapter is a Provider backed by the Iconify search endpoint.
type IconifyAdapter struct {
	spec     Spec
	client   Searcher
	failures FailureRecorder
	logger   *slog.Logger
}

// AdapterOption configures an IconifyAdapter.
type AdapterOption func(*IconifyAdapter)

// WithFailureRecorder reports swallowed upstream errors to r.
func WithFailureRecorder(r FailureRecorder) AdapterOption {
	return func(a *IconifyAdapter) {
		a.failures = r
	}
}

// WithLogger sets the adapter logger.
func WithLogger(l *slog.Logger) AdapterOption {
	return func(a *IconifyAdapter) {
		if l != nil {
			a.logger = l
		}
	}
}

// NewIconifyAdapter creates an adapter for spec.
func NewIconifyAdapter(spec Spec, client Searcher, opts ...AdapterOption) *IconifyAdapter {
	if spec.PageSize <= 0 {
		spec.PageSize = 100
	}
	if spec.PopularLimit <= 0 {
		spec.PopularLimit = 50
	}
	a := &IconifyAdapter{
		spec:   spec,
		client: client,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// ID implements Provider.
func (a *IconifyAdapter) ID() string { return a.spec.ID }

// Name implements Provider.
func (a *IconifyAdapter) Name() string { return a.spec.Name }

// PageSize implements Provider.
func (a *IconifyAdapter) PageSize() int { return a.spec.PageSize }

// Spec returns the adapter's configuration.
func (a *IconifyAdapter) Spec() Spec { return a.spec }

// Search implements Provider. Oversized upstream pages are passed through
// untouched; the engine slices them.
func (a *IconifyAdapter) Search(ctx context.Context, query string, page int) []RawHit {
	return a.fetch(ctx, "search", iconify.SearchParams{
		Query:    query,
		Prefixes: a.spec.Prefixes,
		Limit:    a.spec.PageSize,
		Offset:   Offset(page, a.spec.PageSize),
	})
}

// Popular implements Provider.
func (a *IconifyAdapter) Popular(ctx context.Context) []RawHit {
	if len(a.spec.PopularQueries) == 0 {
		return a.fetch(ctx, "popular", iconify.SearchParams{
			Prefixes: a.spec.Prefixes,
			Limit:    a.spec.PopularLimit,
		})
	}

	perQuery := make([][]RawHit, len(a.spec.PopularQueries))
	g, gctx := errgroup.WithContext(ctx)
	for i, q := range a.spec.PopularQueries {
		g.Go(func() error {
			perQuery[i] = a.fetch(gctx, "popular", iconify.SearchParams{
				Query:    q,
				Prefixes: a.spec.Prefixes,
				Limit:    a.spec.PopularLimit,
			})
			return nil
		})
	}
	_ = g.Wait()

	var out []RawHit
	for _, hits := range perQuery {
		out = append(out, hits...)
	}
	return out
}

// Browse implements Browser by listing one collection without a query.
func (a *IconifyAdapter) Browse(ctx context.Context, prefix string, limit int) []RawHit {
	return a.fetch(ctx, "browse", iconify.SearchParams{
		Prefixes: []string{prefix},
		Limit:    limit,
	})
}

func (a *IconifyAdapter) fetch(ctx context.Context, op string, p iconify.SearchParams) []RawHit {
	resp, err := a.client.Search(ctx, p)
	if err != nil {
		a.logger.Warn("provider_failed",
			slog.String("provider", a.spec.ID),
			slog.String("op", op),
			slog.String("query", p.Query),
			slog.String("error", err.Error()))
		if a.failures != nil {
			a.failures.ProviderFailed(a.spec.ID, op, err)
		}
		return []RawHit{}
	}
	return toRawHits(resp)
}

func toRawHits(resp *iconify.SearchResponse) []RawHit {
	if resp == nil {
		return []RawHit{}
	}
	hits := make([]RawHit, 0, len(resp.Icons))
	for _, qn := range resp.Icons {
		h := RawHit{QualifiedName: qn}
		if prefix, _, ok := strings.Cut(qn, ":"); ok {
			h.Collection = resp.Collections[prefix].Name
		}
		hits = append(hits, h)
	}
	return hits
}
