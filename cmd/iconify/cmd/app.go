package cmd

import (
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/chandu-machineni/iconify/internal/cache"
	"github.com/chandu-machineni/iconify/internal/config"
	ierrors "github.com/chandu-machineni/iconify/internal/errors"
	"github.com/chandu-machineni/iconify/internal/icon"
	"github.com/chandu-machineni/iconify/internal/iconify"
	"github.com/chandu-machineni/iconify/internal/provider"
	"github.com/chandu-machineni/iconify/internal/search"
	"github.com/chandu-machineni/iconify/internal/telemetry"
)

// app holds the wired components shared by the commands.
type app struct {
	cfg      *config.Config
	registry *prometheus.Registry
	metrics  *telemetry.Metrics
	recorder *telemetry.Recorder
	client   *iconify.Client
	engine   *search.Engine
	logger   *slog.Logger
}

// loadApp loads configuration from projectDir and wires the engine.
func loadApp() (*app, error) {
	cfg, err := config.Load(projectDir)
	if err != nil {
		return nil, err
	}
	return newApp(cfg, slog.Default())
}

func newApp(cfg *config.Config, logger *slog.Logger) (*app, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := telemetry.NewMetrics(reg)
	recorder := telemetry.NewRecorder(metrics, telemetry.NewQueryLog(telemetry.DefaultQueryLogConfig()))

	up := cfg.Upstream
	breaker := ierrors.NewCircuitBreaker("iconify",
		ierrors.WithMaxFailures(up.BreakerFailures),
		ierrors.WithResetTimeout(up.BreakerReset),
		ierrors.WithStateChange(metrics.BreakerChanged),
	)
	client := iconify.New(
		iconify.WithBaseURL(up.BaseURL),
		iconify.WithTimeout(up.Timeout),
		iconify.WithUserAgent(up.UserAgent),
		iconify.WithRetry(up.RetryConfig()),
		iconify.WithCircuitBreaker(breaker),
		iconify.WithObserver(metrics),
		iconify.WithLogger(logger),
	)

	providers := provider.FromSpecs(cfg.Providers, client,
		provider.WithFailureRecorder(metrics),
		provider.WithLogger(logger),
	)
	engine, err := search.NewEngine(providers,
		search.WithCache(cache.New[[]icon.Icon](cfg.Cache.MaxEntries, cfg.Cache.EvictBatch)),
		search.WithMaxResults(cfg.Search.MaxResults),
		search.WithRecorder(recorder),
		search.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create search engine: %w", err)
	}

	logger.Debug("app_ready",
		slog.Int("providers", len(providers)),
		slog.String("upstream", client.BaseURL()))

	return &app{
		cfg:      cfg,
		registry: reg,
		metrics:  metrics,
		recorder: recorder,
		client:   client,
		engine:   engine,
		logger:   logger,
	}, nil
}
