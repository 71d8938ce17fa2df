package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/chandu-machineni/iconify/internal/errors"
)

// Metrics holds the Prometheus collectors for the aggregator.
// All methods are nil-safe so components can run without metrics.
type Metrics struct {
	// Engine calls by kind (search, popular, library) and outcome (cache_hit, fetched, failed)
	Queries *prometheus.CounterVec

	// Engine call latency by kind and outcome
	QueryDuration *prometheus.HistogramVec

	// Icons returned per engine call
	ResultSize prometheus.Histogram

	// Upstream failures swallowed by provider adapters
	ProviderFailures *prometheus.CounterVec

	// Individual HTTP attempts against the icon API
	UpstreamRequests *prometheus.CounterVec
	UpstreamDuration *prometheus.HistogramVec

	// 0 closed, 1 half-open, 2 open
	BreakerState *prometheus.GaugeVec

	// Cache size after each store
	CacheEntries prometheus.Gauge
}

// NewMetrics registers every collector with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Queries: f.NewCounterVec(prometheus.CounterOpts{
			Name: "iconify_queries_total",
			Help: "Engine calls by kind and outcome",
		}, []string{"kind", "outcome"}),

		QueryDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "iconify_query_duration_seconds",
			Help:    "Engine call latency including provider fan-out",
			Buckets: []float64{0.001, 0.005, 0.025, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"kind", "outcome"}),

		ResultSize: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "iconify_query_results",
			Help:    "Icons returned per engine call",
			Buckets: []float64{0, 10, 50, 100, 250, 500, 1000},
		}),

		ProviderFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "iconify_provider_failures_total",
			Help: "Upstream errors converted to empty results by provider adapters",
		}, []string{"provider", "op"}),

		UpstreamRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "iconify_upstream_requests_total",
			Help: "HTTP attempts against the icon API by endpoint and outcome",
		}, []string{"endpoint", "outcome"}),

		UpstreamDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "iconify_upstream_request_duration_seconds",
			Help:    "Latency of single HTTP attempts against the icon API",
			Buckets: []float64{0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"endpoint"}),

		BreakerState: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "iconify_circuit_breaker_state",
			Help: "Circuit breaker state: 0 closed, 1 half-open, 2 open",
		}, []string{"name"}),

		CacheEntries: f.NewGauge(prometheus.GaugeOpts{
			Name: "iconify_cache_entries",
			Help: "Result lists currently cached",
		}),
	}
}

// ObserveQuery records one engine call.
func (m *Metrics) ObserveQuery(e QueryEvent) {
	if m == nil {
		return
	}
	outcome := "fetched"
	switch {
	case e.Failed:
		outcome = "failed"
	case e.CacheHit:
		outcome = "cache_hit"
	}
	m.Queries.WithLabelValues(string(e.Kind), outcome).Inc()
	m.QueryDuration.WithLabelValues(string(e.Kind), outcome).Observe(e.Latency.Seconds())
	if !e.Failed {
		m.ResultSize.Observe(float64(e.ResultCount))
	}
}

// ProviderFailed implements provider.FailureRecorder.
func (m *Metrics) ProviderFailed(providerID, op string, _ error) {
	if m != nil {
		m.ProviderFailures.WithLabelValues(providerID, op).Inc()
	}
}

// ObserveUpstream implements iconify.Observer.
func (m *Metrics) ObserveUpstream(endpoint, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.UpstreamRequests.WithLabelValues(endpoint, outcome).Inc()
	m.UpstreamDuration.WithLabelValues(endpoint).Observe(d.Seconds())
}

// BreakerChanged is an errors.WithStateChange callback.
func (m *Metrics) BreakerChanged(name string, _, to errors.State) {
	if m == nil {
		return
	}
	var v float64
	switch to {
	case errors.StateHalfOpen:
		v = 1
	case errors.StateOpen:
		v = 2
	}
	m.BreakerState.WithLabelValues(name).Set(v)
}

// SetCacheEntries records the current cache size.
func (m *Metrics) SetCacheEntries(n int) {
	if m != nil {
		m.CacheEntries.Set(float64(n))
	}
}
