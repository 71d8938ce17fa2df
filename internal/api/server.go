// Package api provides the REST API over the aggregation engine.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/chandu-machineni/iconify/internal/cache"
	"github.com/chandu-machineni/iconify/internal/icon"
	"github.com/chandu-machineni/iconify/internal/search"
	"github.com/chandu-machineni/iconify/internal/telemetry"
)

// Engine is the part of search.Engine the API serves.
type Engine interface {
	Search(ctx context.Context, text string, f search.Filters, page int) ([]icon.Icon, error)
	Popular(ctx context.Context) ([]icon.Icon, error)
	Library(ctx context.Context, prefix string, limit int) ([]icon.Icon, error)
	Libraries() []icon.Library
	Categories() []icon.CategoryInfo
	EstimateTotalIconCount() int
	CacheStats() cache.Stats
}

// SVGFetcher returns rendered SVG documents.
type SVGFetcher interface {
	SVG(ctx context.Context, qn icon.QualifiedName, opts icon.SVGOptions) ([]byte, error)
}

// ServerOption configures the API server.
type ServerOption func(*serverConfig)

type serverConfig struct {
	svg         SVGFetcher
	gatherer    prometheus.Gatherer
	recorder    *telemetry.Recorder
	logger      *slog.Logger
	timeout     time.Duration
	middlewares []func(http.Handler) http.Handler
}

// WithSVG enables the SVG endpoint.
func WithSVG(f SVGFetcher) ServerOption {
	return func(cfg *serverConfig) {
		cfg.svg = f
	}
}

// WithGatherer exposes g on /metrics.
func WithGatherer(g prometheus.Gatherer) ServerOption {
	return func(cfg *serverConfig) {
		cfg.gatherer = g
	}
}

// WithRecorder adds query statistics to /api/v1/stats.
func WithRecorder(r *telemetry.Recorder) ServerOption {
	return func(cfg *serverConfig) {
		cfg.recorder = r
	}
}

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) ServerOption {
	return func(cfg *serverConfig) {
		if l != nil {
			cfg.logger = l
		}
	}
}

// WithTimeout bounds each request. Zero disables the bound.
func WithTimeout(d time.Duration) ServerOption {
	return func(cfg *serverConfig) {
		cfg.timeout = d
	}
}

// WithMiddlewares adds middleware to the server.
func WithMiddlewares(mw ...func(http.Handler) http.Handler) ServerOption {
	return func(cfg *serverConfig) {
		cfg.middlewares = append(cfg.middlewares, mw...)
	}
}

// NewServer creates the HTTP router for engine.
func NewServer(engine Engine, opts ...ServerOption) *chi.Mux {
	cfg := &serverConfig{
		logger:  slog.Default(),
		timeout: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(LoggingMiddleware(cfg.logger))
	if cfg.timeout > 0 {
		r.Use(middleware.Timeout(cfg.timeout))
	}
	for _, mw := range cfg.middlewares {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		WriteJSONResponse(w, map[string]string{"status": "ok"}, http.StatusOK)
	})
	if cfg.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.gatherer, promhttp.HandlerOpts{}))
	}

	r.Mount("/api/v1", Router(engine, cfg.svg, cfg.recorder))
	return r
}

// LoggingMiddleware logs every request at debug level.
func LoggingMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			logger.Debug("http_request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.Status()),
				slog.Duration("duration", time.Since(start)),
				slog.String("request_id", middleware.GetReqID(r.Context())))
		})
	}
}
