// Package metrics provides Prometheus metrics for the robonalysis service.
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
	enabled          bool
	customLabels     map[string]string
	registry         prometheus.Registerer

	// Upstream API
	upstreamRequests    *prometheus.CounterVec
	upstreamLatency     *prometheus.HistogramVec
	upstreamPages       *prometheus.CounterVec
	paginationTruncated *prometheus.CounterVec

	// Response cache
	cacheHits   *prometheus.CounterVec
	cacheMisses *prometheus.CounterVec
	cacheErrors *prometheus.CounterVec
	cachePurged prometheus.Counter

	// Rating engine
	ledgerSteps        prometheus.Counter
	ledgerSkipped      prometheus.Counter
	replayLatency      prometheus.Histogram
	computations       prometheus.Counter
	computationErrors  prometheus.Counter
	degradedEvents     prometheus.Counter
	computationLatency prometheus.Histogram

	// Replay queue and workers
	queueSize               prometheus.Gauge
	queueCapacity           prometheus.Gauge
	queueEnqueueErrors      prometheus.Counter
	workerCount             prometheus.Gauge
	workerProcessingLatency prometheus.Histogram

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorRateByComponent *prometheus.CounterVec
	errorRateByType      *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // registry without default Go collectors

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// Configure rebuilds the global collectors with opts on a fresh registry and
// returns that registry. Call it once at startup, before any metric is
// recorded or the registry is served; collectors recorded earlier are dropped.
func Configure(opts ...Option) *prometheus.Registry {
	registry := prometheus.NewRegistry()
	globalManager = NewManager(append(opts, WithPrometheusRegistry(registry))...)
	customRegistry = registry
	return registry
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "robonalysis",
		subsystem:        "",
		histogramBuckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		enabled:          true,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     buckets,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for all collectors
	auto := promauto.With(m.registry)

	m.upstreamRequests = auto.NewCounterVec(
		m.counterOpts("upstream_requests_total", "Upstream page requests by resource and status code"),
		[]string{"resource", "status_code"},
	)
	m.upstreamLatency = auto.NewHistogramVec(
		m.histogramOpts("upstream_request_duration_milliseconds", "Upstream page request latency in milliseconds", m.histogramBuckets),
		[]string{"resource"},
	)
	m.upstreamPages = auto.NewCounterVec(
		m.counterOpts("upstream_pages_total", "Upstream pages successfully decoded"),
		[]string{"resource"},
	)
	m.paginationTruncated = auto.NewCounterVec(
		m.counterOpts("upstream_pagination_truncated_total", "Paginated fetches stopped by the safety cap"),
		[]string{"resource"},
	)

	m.cacheHits = auto.NewCounterVec(m.counterOpts("cache_hits_total", "Response cache hits"), []string{"backend"})
	m.cacheMisses = auto.NewCounterVec(m.counterOpts("cache_misses_total", "Response cache misses"), []string{"backend"})
	m.cacheErrors = auto.NewCounterVec(m.counterOpts("cache_errors_total", "Response cache backend errors"), []string{"backend", "op"})
	m.cachePurged = auto.NewCounter(m.counterOpts("cache_purged_entries_total", "Expired cache entries removed by the janitor"))

	m.ledgerSteps = auto.NewCounter(m.counterOpts("ledger_steps_total", "Matches applied to a rating ledger"))
	m.ledgerSkipped = auto.NewCounter(m.counterOpts("ledger_skipped_matches_total", "Matches skipped by the rating ledger (no red/blue pair)"))
	m.replayLatency = auto.NewHistogram(
		m.histogramOpts("ledger_replay_duration_milliseconds", "Per-event ledger replay latency", []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100}),
	)
	m.computations = auto.NewCounter(m.counterOpts("context_computations_total", "Match context computations completed"))
	m.computationErrors = auto.NewCounter(m.counterOpts("context_computation_errors_total", "Match context computations that failed outright"))
	m.degradedEvents = auto.NewCounter(m.counterOpts("context_degraded_events_total", "Events replayed from the primary team's matches only"))
	m.computationLatency = auto.NewHistogram(
		m.histogramOpts("context_computation_duration_milliseconds", "End-to-end match context computation latency", m.histogramBuckets),
	)

	m.queueSize = auto.NewGauge(m.gaugeOpts("replay_queue_size", "Replay jobs waiting in the queue"))
	m.queueCapacity = auto.NewGauge(m.gaugeOpts("replay_queue_capacity", "Replay queue capacity"))
	m.queueEnqueueErrors = auto.NewCounter(m.counterOpts("replay_queue_enqueue_errors_total", "Replay jobs rejected by the queue"))
	m.workerCount = auto.NewGauge(m.gaugeOpts("replay_worker_count", "Replay workers running"))
	m.workerProcessingLatency = auto.NewHistogram(
		m.histogramOpts("replay_worker_processing_duration_milliseconds", "Time a worker spends on one replay job", []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100}),
	)

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "HTTP requests by endpoint, method and status code"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds", m.histogramBuckets),
		[]string{"endpoint", "method", "status_code"},
	)

	m.errorRateByComponent = auto.NewCounterVec(m.counterOpts("errors_by_component_total", "Errors by component and type"), []string{"component", "error_type"})
	m.errorRateByType = auto.NewCounterVec(m.counterOpts("errors_by_type_total", "Errors by type and severity"), []string{"error_type", "severity"})
	m.errorRateByEndpoint = auto.NewCounterVec(m.counterOpts("errors_by_endpoint_total", "Errors by endpoint, method and type"), []string{"endpoint", "method", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_usage_bytes", "Heap bytes allocated"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutine_count", "Number of goroutines"))
	m.systemGCPauseTime = auto.NewHistogram(
		m.histogramOpts("system_gc_pause_time_milliseconds", "Average GC pause in milliseconds", []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250}),
	)
}

// Upstream

// RecordUpstreamRequest counts one upstream page request and its latency.
func RecordUpstreamRequest(resource, statusCode string, latencyMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.upstreamRequests.WithLabelValues(resource, statusCode).Inc()
	globalManager.upstreamLatency.WithLabelValues(resource).Observe(latencyMs)
}

// RecordUpstreamPage counts a decoded upstream page.
func RecordUpstreamPage(resource string) {
	globalManager.upstreamPages.WithLabelValues(resource).Inc()
}

// RecordPaginationTruncated counts a fetch cut short by the page cap.
func RecordPaginationTruncated(resource string) {
	globalManager.paginationTruncated.WithLabelValues(resource).Inc()
}

// Cache

// RecordCacheHit increments cache hits for backend.
func RecordCacheHit(backend string) {
	globalManager.cacheHits.WithLabelValues(backend).Inc()
}

// RecordCacheMiss increments cache misses for backend.
func RecordCacheMiss(backend string) {
	globalManager.cacheMisses.WithLabelValues(backend).Inc()
}

// RecordCacheError increments backend errors for op ("get", "set", "purge").
func RecordCacheError(backend, op string) {
	globalManager.cacheErrors.WithLabelValues(backend, op).Inc()
}

// RecordCachePurged adds n purged entries.
func RecordCachePurged(n int) {
	if n > 0 {
		globalManager.cachePurged.Add(float64(n))
	}
}

// Rating engine

// RecordLedgerSteps adds applied and skipped match counts of one replay.
func RecordLedgerSteps(applied, skipped int) {
	globalManager.ledgerSteps.Add(float64(applied))
	globalManager.ledgerSkipped.Add(float64(skipped))
}

// RecordReplayLatency records one per-event replay duration.
func RecordReplayLatency(latencyMs float64) {
	globalManager.replayLatency.Observe(latencyMs)
}

// RecordComputation records a finished context computation.
func RecordComputation(latencyMs float64) {
	globalManager.computations.Inc()
	globalManager.computationLatency.Observe(latencyMs)
}

// RecordComputationError increments failed computations.
func RecordComputationError() {
	globalManager.computationErrors.Inc()
}

// RecordDegradedEvent increments events replayed in degraded mode.
func RecordDegradedEvent() {
	globalManager.degradedEvents.Inc()
}

// Queue and workers

// UpdateQueueSize sets the current replay queue length.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the replay queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// RecordQueueEnqueueError increments rejected replay jobs.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// UpdateWorkerCount sets the number of replay workers.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// RecordWorkerProcessingLatency records one replay job duration.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// HTTP

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// Errors

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// System

// UpdateSystemMemoryUsage sets the heap usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
