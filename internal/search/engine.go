package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/chandu-machineni/iconify/internal/cache"
	ierrors "github.com/chandu-machineni/iconify/internal/errors"
	"github.com/chandu-machineni/iconify/internal/icon"
	"github.com/chandu-machineni/iconify/internal/normalize"
	"github.com/chandu-machineni/iconify/internal/provider"
	"github.com/chandu-machineni/iconify/internal/telemetry"
)

// ErrNilDependency is returned when a required dependency is nil.
var ErrNilDependency = errors.New("nil dependency")

// ErrAggregationFailed marks a call where the fan-out itself broke down
// (a provider panicked or the caller gave up). Such results are never cached.
var ErrAggregationFailed = ierrors.New(ierrors.ErrCodeAggregationFailed, "icon aggregation failed", nil)

// ErrNoBrowser is returned by Library when no provider can list collections.
var ErrNoBrowser = ierrors.New(ierrors.ErrCodeUnsupported, "no provider supports library listing", nil)

// Engine aggregates icon searches across providers.
type Engine struct {
	providers  []provider.Provider
	normalizer *normalize.Normalizer
	cache      *cache.Cache[[]icon.Icon]
	maxResults int
	recorder   *telemetry.Recorder
	logger     *slog.Logger
}

// EngineOption configures the engine.
type EngineOption func(*Engine)

// WithCache replaces the default 200/50 result cache.
func WithCache(c *cache.Cache[[]icon.Icon]) EngineOption {
	return func(e *Engine) {
		if c != nil {
			e.cache = c
		}
	}
}

// WithMaxResults sets the cap applied to every merged search list.
func WithMaxResults(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.maxResults = n
		}
	}
}

// WithNormalizer replaces the built-in rule tables.
func WithNormalizer(n *normalize.Normalizer) EngineOption {
	return func(e *Engine) {
		if n != nil {
			e.normalizer = n
		}
	}
}

// WithRecorder sets an optional telemetry recorder.
func WithRecorder(r *telemetry.Recorder) EngineOption {
	return func(e *Engine) {
		e.recorder = r
	}
}

// WithLogger sets the engine logger.
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewEngine creates an engine over providers. Provider order is significant:
// when two providers report the same icon, the earlier one wins.
func NewEngine(providers []provider.Provider, opts ...EngineOption) (*Engine, error) {
	if len(providers) == 0 {
		return nil, fmt.Errorf("%w: at least one provider is required", ErrNilDependency)
	}
	for i, p := range providers {
		if p == nil {
			return nil, fmt.Errorf("%w: provider %d is nil", ErrNilDependency, i)
		}
	}

	e := &Engine{
		providers:  slices.Clone(providers),
		normalizer: normalize.Default(),
		cache:      cache.New[[]icon.Icon](cache.DefaultMaxEntries, cache.DefaultEvictBatch),
		maxResults: DefaultMaxResults,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Search returns the merged, filtered, deduplicated results for page of text.
// Blank text returns Popular instead. Pages outside 0..MaxPage are rejected. A
// failed fan-out yields an empty list and an error wrapping ErrAggregationFailed.
func (e *Engine) Search(ctx context.Context, text string, f Filters, page int) ([]icon.Icon, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return e.Popular(ctx)
	}
	if err := ValidatePage(page); err != nil {
		return []icon.Icon{}, err
	}
	if page < 1 {
		page = 1
	}

	start := time.Now()
	key := SearchKey(text, f, page)
	if cached, ok := e.cache.Get(key); ok {
		e.record(telemetry.KindSearch, text, page, len(cached), true, false, start)
		return icon.CloneAll(cached), nil
	}

	perProvider, err := e.fanOut(ctx, func(ctx context.Context, p provider.Provider) []provider.RawHit {
		hits := p.Search(ctx, text, page)
		if n := p.PageSize(); n > 0 && len(hits) > n {
			hits = hits[:n]
		}
		return hits
	})
	if err != nil {
		e.record(telemetry.KindSearch, text, page, 0, false, true, start)
		return []icon.Icon{}, err
	}

	merged := make([]icon.Icon, 0)
	seen := make(map[string]struct{})
	for _, icons := range perProvider {
		if !f.IsZero() {
			icons = slices.DeleteFunc(icons, func(ic icon.Icon) bool { return !f.Match(ic) })
		}
		merged = append(merged, dedupe(icons, seen)...)
	}
	if len(merged) > e.maxResults {
		merged = merged[:e.maxResults]
	}

	e.store(key, merged)
	e.record(telemetry.KindSearch, text, page, len(merged), false, false, start)
	e.logger.Debug("search_complete",
		slog.String("query", text),
		slog.Int("page", page),
		slog.Int("results", len(merged)),
		slog.Duration("duration", time.Since(start)))

	return icon.CloneAll(merged), nil
}

// Popular returns the deduplicated popular sample of every provider.
func (e *Engine) Popular(ctx context.Context) ([]icon.Icon, error) {
	start := time.Now()
	if cached, ok := e.cache.Get(popularKey); ok {
		e.record(telemetry.KindPopular, "", 0, len(cached), true, false, start)
		return icon.CloneAll(cached), nil
	}

	perProvider, err := e.fanOut(ctx, func(ctx context.Context, p provider.Provider) []provider.RawHit {
		return p.Popular(ctx)
	})
	if err != nil {
		e.record(telemetry.KindPopular, "", 0, 0, false, true, start)
		return []icon.Icon{}, err
	}

	merged := make([]icon.Icon, 0)
	seen := make(map[string]struct{})
	for _, icons := range perProvider {
		merged = append(merged, dedupe(icons, seen)...)
	}

	e.store(popularKey, merged)
	e.record(telemetry.KindPopular, "", 0, len(merged), false, false, start)
	return icon.CloneAll(merged), nil
}

// Library lists up to limit icons of one collection using the first provider
// that implements provider.Browser.
func (e *Engine) Library(ctx context.Context, prefix string, limit int) ([]icon.Icon, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" || strings.Contains(prefix, ":") {
		return []icon.Icon{}, ierrors.New(ierrors.ErrCodeInvalidInput, fmt.Sprintf("invalid library prefix %q", prefix), nil)
	}
	if limit <= 0 {
		limit = DefaultLibraryLimit
	}
	if limit > e.maxResults {
		limit = e.maxResults
	}

	var (
		src     provider.Provider
		browser provider.Browser
	)
	for _, p := range e.providers {
		if b, ok := p.(provider.Browser); ok {
			src, browser = p, b
			break
		}
	}
	if browser == nil {
		return []icon.Icon{}, ErrNoBrowser
	}

	start := time.Now()
	key := LibraryKey(prefix, limit)
	if cached, ok := e.cache.Get(key); ok {
		e.record(telemetry.KindLibrary, prefix, 0, len(cached), true, false, start)
		return icon.CloneAll(cached), nil
	}

	hits := browser.Browse(ctx, prefix, limit)
	if err := ctx.Err(); err != nil {
		e.record(telemetry.KindLibrary, prefix, 0, 0, false, true, start)
		return []icon.Icon{}, fmt.Errorf("%w: %w", ErrAggregationFailed, err)
	}

	icons := dedupe(e.normalizer.NormalizeAll(src.ID(), hits), make(map[string]struct{}))
	if len(icons) > limit {
		icons = icons[:limit]
	}

	e.store(key, icons)
	e.record(telemetry.KindLibrary, prefix, 0, len(icons), false, false, start)
	return icon.CloneAll(icons), nil
}

// fanOut calls fetch on every provider concurrently and waits for all of them.
// The result holds one normalized list per provider, in provider order.
func (e *Engine) fanOut(ctx context.Context, fetch func(context.Context, provider.Provider) []provider.RawHit) ([][]icon.Icon, error) {
	perProvider := make([][]icon.Icon, len(e.providers))

	g, gctx := errgroup.WithContext(ctx)
	for i, p := range e.providers {
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					e.logger.Error("provider_panic",
						slog.String("provider", p.ID()),
						slog.Any("panic", r))
					err = fmt.Errorf("%w: provider %s panicked: %v", ErrAggregationFailed, p.ID(), r)
				}
			}()
			perProvider[i] = e.normalizer.NormalizeAll(p.ID(), fetch(gctx, p))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	// Adapters swallow cancellation as empty results; do not let that pass as a real answer.
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAggregationFailed, err)
	}
	return perProvider, nil
}

func (e *Engine) store(key string, icons []icon.Icon) {
	e.cache.Put(key, icon.CloneAll(icons))
	if e.recorder != nil {
		e.recorder.Metrics.SetCacheEntries(e.cache.Len())
	}
}

func (e *Engine) record(kind telemetry.QueryKind, query string, page, n int, hit, failed bool, start time.Time) {
	e.recorder.Record(telemetry.QueryEvent{
		Kind:        kind,
		Query:       query,
		Page:        page,
		ResultCount: n,
		CacheHit:    hit,
		Failed:      failed,
		Latency:     time.Since(start),
		Timestamp:   start,
	})
}

// Providers returns the engine's providers in iteration order.
func (e *Engine) Providers() []provider.Provider {
	return slices.Clone(e.providers)
}

// CacheStats reports result cache activity.
func (e *Engine) CacheStats() cache.Stats {
	return e.cache.Stats()
}

// Libraries returns the static library catalog.
func (e *Engine) Libraries() []icon.Library {
	return icon.Libraries()
}

// Categories returns the static category catalog.
func (e *Engine) Categories() []icon.CategoryInfo {
	return icon.Categories()
}

// EstimateTotalIconCount sums the approximate catalog library sizes.
func (e *Engine) EstimateTotalIconCount() int {
	return icon.EstimateTotalIconCount()
}
