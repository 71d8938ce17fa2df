// Package telemetry records search activity: Prometheus metrics for scraping
// and an in-memory query log for the stats endpoint. Nothing leaves the process
// unless something scrapes it.
package telemetry

import (
	"sort"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// =============================================================================
// Query Kinds
// =============================================================================

// QueryKind distinguishes the engine entry points.
type QueryKind string

const (
	KindSearch  QueryKind = "search"
	KindPopular QueryKind = "popular"
	KindLibrary QueryKind = "library"
)

// =============================================================================
// Latency Buckets
// =============================================================================

// LatencyBucket is a coarse latency histogram bucket for the stats view.
type LatencyBucket string

const (
	BucketP10   LatencyBucket = "p10"   // <10ms, effectively cache hits
	BucketP100  LatencyBucket = "p100"  // 10-100ms
	BucketP500  LatencyBucket = "p500"  // 100-500ms
	BucketP1000 LatencyBucket = "p1000" // 500ms-2s
	BucketSlow  LatencyBucket = "slow"  // >=2s
)

// LatencyToBucket converts a duration to its bucket.
func LatencyToBucket(d time.Duration) LatencyBucket {
	ms := d.Milliseconds()
	switch {
	case ms < 10:
		return BucketP10
	case ms < 100:
		return BucketP100
	case ms < 500:
		return BucketP500
	case ms < 2000:
		return BucketP1000
	default:
		return BucketSlow
	}
}

// =============================================================================
// Query Event
// =============================================================================

// QueryEvent is one completed engine call.
type QueryEvent struct {
	Kind        QueryKind
	Query       string
	Page        int
	ResultCount int
	CacheHit    bool
	Failed      bool
	Latency     time.Duration
	Timestamp   time.Time
}

// IsZeroResult reports a successful search that found nothing.
func (e QueryEvent) IsZeroResult() bool {
	return !e.Failed && e.ResultCount == 0
}

// =============================================================================
// Circular Buffer
// =============================================================================

// CircularBuffer is a fixed-capacity FIFO buffer.
type CircularBuffer[T any] struct {
	items    []T
	head     int // next write position
	size     int
	capacity int
	mu       sync.RWMutex
}

// NewCircularBuffer creates a new circular buffer with the given capacity.
func NewCircularBuffer[T any](capacity int) *CircularBuffer[T] {
	if capacity <= 0 {
		capacity = 100
	}
	return &CircularBuffer[T]{
		items:    make([]T, capacity),
		capacity: capacity,
	}
}

// Add appends item, overwriting the oldest when full.
func (b *CircularBuffer[T]) Add(item T) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.items[b.head] = item
	b.head = (b.head + 1) % b.capacity
	if b.size < b.capacity {
		b.size++
	}
}

// Items returns all items oldest first.
func (b *CircularBuffer[T]) Items() []T {
	b.mu.RLock()
	defer b.mu.RUnlock()

	result := make([]T, b.size)
	if b.size < b.capacity {
		copy(result, b.items[:b.size])
	} else {
		copy(result, b.items[b.head:])
		copy(result[b.capacity-b.head:], b.items[:b.head])
	}
	return result
}

// Size returns the current number of items.
func (b *CircularBuffer[T]) Size() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.size
}

// =============================================================================
// Term Extraction
// =============================================================================

// ExtractTerms lowercases a query and keeps words of 3+ bytes.
func ExtractTerms(query string) []string {
	var terms []string
	for _, w := range strings.Fields(strings.ToLower(query)) {
		if len(w) >= 3 {
			terms = append(terms, w)
		}
	}
	return terms
}

// TermCount represents a term and its frequency count.
type TermCount struct {
	Term  string `json:"term"`
	Count int64  `json:"count"`
}

// =============================================================================
// Snapshot
// =============================================================================

// QuerySnapshot is an immutable view of the query log.
type QuerySnapshot struct {
	TotalQueries        int64                   `json:"total_queries"`
	KindCounts          map[QueryKind]int64     `json:"kind_counts"`
	CacheHits           int64                   `json:"cache_hits"`
	Failures            int64                   `json:"failures"`
	ZeroResultCount     int64                   `json:"zero_result_count"`
	TopTerms            []TermCount             `json:"top_terms"`
	ZeroResultQueries   []string                `json:"zero_result_queries"`
	LatencyDistribution map[LatencyBucket]int64 `json:"latency_distribution"`
	Since               time.Time               `json:"since"`
}

// CacheHitRate returns cache hits as a fraction of all queries.
func (s *QuerySnapshot) CacheHitRate() float64 {
	if s.TotalQueries == 0 {
		return 0
	}
	return float64(s.CacheHits) / float64(s.TotalQueries)
}

// =============================================================================
// Query Log
// =============================================================================

// QueryLogConfig sizes the in-memory query log.
type QueryLogConfig struct {
	TopTermsCapacity    int
	ZeroResultsCapacity int
}

// DefaultQueryLogConfig returns the default sizes.
func DefaultQueryLogConfig() QueryLogConfig {
	return QueryLogConfig{
		TopTermsCapacity:    100,
		ZeroResultsCapacity: 100,
	}
}

// QueryLog aggregates QueryEvents in memory. Safe for concurrent use.
type QueryLog struct {
	mu sync.Mutex

	kinds           map[QueryKind]int64
	topTerms        *lru.Cache[string, int64]
	zeroResults     *CircularBuffer[string]
	latencies       map[LatencyBucket]int64
	total           int64
	cacheHits       int64
	failures        int64
	zeroResultCount int64
	start           time.Time
}

// NewQueryLog creates a query log.
func NewQueryLog(cfg QueryLogConfig) *QueryLog {
	if cfg.TopTermsCapacity <= 0 {
		cfg.TopTermsCapacity = 100
	}
	if cfg.ZeroResultsCapacity <= 0 {
		cfg.ZeroResultsCapacity = 100
	}
	topTerms, _ := lru.New[string, int64](cfg.TopTermsCapacity)
	return &QueryLog{
		kinds:       make(map[QueryKind]int64),
		topTerms:    topTerms,
		zeroResults: NewCircularBuffer[string](cfg.ZeroResultsCapacity),
		latencies:   make(map[LatencyBucket]int64),
		start:       time.Now(),
	}
}

// Record adds one event.
func (l *QueryLog) Record(e QueryEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.total++
	l.kinds[e.Kind]++
	l.latencies[LatencyToBucket(e.Latency)]++
	if e.CacheHit {
		l.cacheHits++
	}
	if e.Failed {
		l.failures++
	}

	if e.Kind != KindSearch {
		return
	}
	for _, term := range ExtractTerms(e.Query) {
		count, _ := l.topTerms.Get(term)
		l.topTerms.Add(term, count+1)
	}
	if e.IsZeroResult() {
		l.zeroResultCount++
		l.zeroResults.Add(e.Query)
	}
}

// Snapshot returns the current aggregates with top terms sorted by count.
func (l *QueryLog) Snapshot() *QuerySnapshot {
	l.mu.Lock()
	defer l.mu.Unlock()

	kinds := make(map[QueryKind]int64, len(l.kinds))
	for k, v := range l.kinds {
		kinds[k] = v
	}
	latencies := make(map[LatencyBucket]int64, len(l.latencies))
	for k, v := range l.latencies {
		latencies[k] = v
	}

	terms := make([]TermCount, 0, l.topTerms.Len())
	for _, key := range l.topTerms.Keys() {
		if count, ok := l.topTerms.Peek(key); ok {
			terms = append(terms, TermCount{Term: key, Count: count})
		}
	}
	sort.SliceStable(terms, func(i, j int) bool {
		return terms[i].Count > terms[j].Count
	})

	return &QuerySnapshot{
		TotalQueries:        l.total,
		KindCounts:          kinds,
		CacheHits:           l.cacheHits,
		Failures:            l.failures,
		ZeroResultCount:     l.zeroResultCount,
		TopTerms:            terms,
		ZeroResultQueries:   l.zeroResults.Items(),
		LatencyDistribution: latencies,
		Since:               l.start,
	}
}
