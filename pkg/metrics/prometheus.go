// Package metrics provides Prometheus metrics for the IDP scout service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector of the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Search
	searches        *prometheus.CounterVec
	searchFailures  *prometheus.CounterVec
	searchLatency   prometheus.Histogram
	resolvedPlayers prometheus.Gauge

	// Fetch pipeline
	leaderFailures  *prometheus.CounterVec
	athleteSkips    prometheus.Counter
	droppedRecords  *prometheus.CounterVec
	matchOutcomes   *prometheus.CounterVec
	cacheLookups    *prometheus.CounterVec
	upstreamLatency *prometheus.HistogramVec
	upstreamErrors  *prometheus.CounterVec
	workersInFlight prometheus.Gauge

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpErrors          *prometheus.CounterVec

	// Process
	memoryUsage    prometheus.Gauge
	goroutineCount prometheus.Gauge
	gcPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "idpscout",
		subsystem:        "",
		histogramBuckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      name,
		Help:      help,
	}, labels)
}

func (m *Manager) histogramVec(name, help string, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      name,
		Help:      help,
		Buckets:   m.histogramBuckets,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      name,
		Help:      help,
	})
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.searches = m.counterVec("searches_total", "Searches served, by scoring source", "scoring")
	m.searchFailures = m.counterVec("search_failures_total", "Searches that failed, by reason", "reason")
	m.searchLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "search_duration_milliseconds",
		Help:      "End-to-end search latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})
	m.resolvedPlayers = m.gauge("resolved_players", "Players in the most recent resolved set")

	m.leaderFailures = m.counterVec("leader_category_failures_total", "Leader categories that failed to load", "category")
	m.athleteSkips = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "athlete_skips_total",
		Help:      "Athletes skipped because their stats could not be loaded",
	})
	m.droppedRecords = m.counterVec("dropped_records_total", "Provider records dropped during resolution", "reason")
	m.matchOutcomes = m.counterVec("match_outcomes_total", "Platform match outcomes", "kind")
	m.cacheLookups = m.counterVec("cache_lookups_total", "Fetch cache lookups", "backend", "result")
	m.upstreamLatency = m.histogramVec("upstream_request_duration_milliseconds", "Upstream request latency in milliseconds", "provider")
	m.upstreamErrors = m.counterVec("upstream_errors_total", "Upstream request failures", "provider", "kind")
	m.workersInFlight = m.gauge("workers_in_flight", "Fetch workers currently running")

	m.httpRequests = m.counterVec("http_requests_total", "Total number of HTTP requests by endpoint and method", "endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds", "HTTP request duration in milliseconds", "endpoint", "method", "status_code")
	m.httpErrors = m.counterVec("http_errors_total", "HTTP error responses by endpoint and code", "endpoint", "code")

	m.memoryUsage = m.gauge("system_memory_usage_bytes", "Heap bytes allocated")
	m.goroutineCount = m.gauge("system_goroutines", "Number of goroutines")
	m.gcPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_gc_pause_milliseconds",
		Help:      "Average GC pause time in milliseconds",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 50},
	})
}

// RecordSearch counts a served search and its latency.
func RecordSearch(scoring string, latencyMs float64) {
	globalManager.searches.WithLabelValues(scoring).Inc()
	globalManager.searchLatency.Observe(latencyMs)
}

// RecordSearchFailure counts a failed search.
func RecordSearchFailure(reason string) {
	globalManager.searchFailures.WithLabelValues(reason).Inc()
}

// UpdateResolvedPlayers sets the size of the last resolved set.
func UpdateResolvedPlayers(count int) {
	globalManager.resolvedPlayers.Set(float64(count))
}

// RecordLeaderFailure counts a leader category that could not be loaded.
func RecordLeaderFailure(category string) {
	globalManager.leaderFailures.WithLabelValues(category).Inc()
}

// RecordAthleteSkip counts an athlete dropped from the candidate set.
func RecordAthleteSkip() {
	globalManager.athleteSkips.Inc()
}

// RecordDroppedRecords adds n records dropped for reason.
func RecordDroppedRecords(reason string, n int) {
	if n <= 0 {
		return
	}
	globalManager.droppedRecords.WithLabelValues(reason).Add(float64(n))
}

// RecordMatchOutcomes adds n match outcomes of the given kind.
func RecordMatchOutcomes(kind string, n int) {
	if n <= 0 {
		return
	}
	globalManager.matchOutcomes.WithLabelValues(kind).Add(float64(n))
}

// RecordCacheHit counts a cache hit on backend.
func RecordCacheHit(backend string) {
	globalManager.cacheLookups.WithLabelValues(backend, "hit").Inc()
}

// RecordCacheMiss counts a cache miss on backend.
func RecordCacheMiss(backend string) {
	globalManager.cacheLookups.WithLabelValues(backend, "miss").Inc()
}

// RecordUpstreamLatency records one upstream request.
func RecordUpstreamLatency(provider string, latencyMs float64) {
	globalManager.upstreamLatency.WithLabelValues(provider).Observe(latencyMs)
}

// RecordUpstreamError counts a failed upstream request.
func RecordUpstreamError(provider, kind string) {
	globalManager.upstreamErrors.WithLabelValues(provider, kind).Inc()
}

// AddWorkersInFlight moves the in-flight worker gauge by delta.
func AddWorkersInFlight(delta int) {
	globalManager.workersInFlight.Add(float64(delta))
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordHTTPError counts an error response.
func RecordHTTPError(endpoint, code string) {
	globalManager.httpErrors.WithLabelValues(endpoint, code).Inc()
}

// UpdateSystemMemoryUsage sets the heap allocation gauge.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.memoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine gauge.
func UpdateSystemGoroutineCount(n int) {
	globalManager.goroutineCount.Set(float64(n))
}

// RecordSystemGCPauseTime observes an average GC pause.
func RecordSystemGCPauseTime(ms float64) {
	globalManager.gcPauseTime.Observe(ms)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
