// Package metrics provides Prometheus metrics for the cragcast service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Engine
	evaluations       *prometheus.CounterVec
	evaluationLatency prometheus.Histogram
	currentRatings    *prometheus.CounterVec
	windowsFound      prometheus.Histogram

	// Cache
	cacheLookups   *prometheus.CounterVec
	cacheEntries   prometheus.Gauge
	cacheEvictions prometheus.Counter

	// Weather provider
	upstreamRequests *prometheus.CounterVec
	upstreamLatency  prometheus.Histogram

	// Refresh pipeline
	refreshJobs   *prometheus.CounterVec
	queueSize     prometheus.Gauge
	queueCapacity prometheus.Gauge
	workerCount   prometheus.Gauge
	rankedCrags   prometheus.Gauge

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorsByComponent *prometheus.CounterVec
	errorsByEndpoint  *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "cragcast",
		subsystem:        "conditions",
		histogramBuckets: prometheus.DefBuckets,
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
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, Buckets: buckets, ConstLabels: m.constLabels,
	})
}

func (m *Manager) initializeMetrics() {
	m.evaluations = m.counterVec("evaluations_total", "Total number of conditions evaluations by rock type", "rock_type")
	m.evaluationLatency = m.histogram("evaluation_latency_milliseconds", "Engine evaluation latency in milliseconds", m.histogramBuckets)
	m.currentRatings = m.counterVec("current_ratings_total", "Current-hour ratings produced, by rating", "rating")
	m.windowsFound = m.histogram("windows_found", "Number of optimal windows found per request", []float64{0, 1, 2, 3, 4, 5})

	m.cacheLookups = m.counterVec("cache_lookups_total", "Conditions cache lookups by result", "result")
	m.cacheEntries = m.gauge("cache_entries", "Current number of cached conditions results")
	m.cacheEvictions = m.counter("cache_evictions_total", "Total number of cache evictions")

	m.upstreamRequests = m.counterVec("upstream_requests_total", "Weather provider requests by outcome", "outcome")
	m.upstreamLatency = m.histogram("upstream_latency_milliseconds", "Weather provider latency in milliseconds", prometheus.ExponentialBuckets(25, 2, 10))

	m.refreshJobs = m.counterVec("refresh_jobs_total", "Crag refresh jobs by outcome", "outcome")
	m.queueSize = m.gauge("queue_size", "Current size of the refresh queue")
	m.queueCapacity = m.gauge("queue_capacity", "Maximum refresh queue capacity")
	m.workerCount = m.gauge("worker_count", "Current number of refresh workers")
	m.rankedCrags = m.gauge("ranked_crags", "Number of crags in the live ranking")

	m.httpRequests = m.counterVec("http_requests_total", "Total number of HTTP requests by endpoint and method", "endpoint", "method", "status_code")
	m.httpRequestDuration = promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_request_duration_milliseconds",
		Help:        "HTTP request duration in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}, []string{"endpoint", "method", "status_code"})

	m.errorsByComponent = m.counterVec("errors_by_component_total", "Total number of errors by component", "component", "error_type")
	m.errorsByEndpoint = m.counterVec("errors_by_endpoint_total", "Total number of errors by endpoint", "endpoint", "method", "error_type")

	m.systemMemoryUsage = m.gauge("system_memory_bytes", "Heap memory in use in bytes")
	m.systemGoroutineCount = m.gauge("system_goroutines", "Number of goroutines")
	m.systemGCPauseTime = m.histogram("system_gc_pause_milliseconds", "GC pause time in milliseconds", m.histogramBuckets)
}

// RecordEvaluation counts an engine evaluation and its latency.
func RecordEvaluation(rockType string, latencyMs float64) {
	globalManager.evaluations.WithLabelValues(rockType).Inc()
	globalManager.evaluationLatency.Observe(latencyMs)
}

// RecordCurrentRating counts the rating of a current reading.
func RecordCurrentRating(rating string) {
	globalManager.currentRatings.WithLabelValues(rating).Inc()
}

// RecordWindowsFound observes how many windows a request produced.
func RecordWindowsFound(n int) {
	globalManager.windowsFound.Observe(float64(n))
}

// RecordCacheHit counts a cache hit.
func RecordCacheHit() { globalManager.cacheLookups.WithLabelValues("hit").Inc() }

// RecordCacheMiss counts a cache miss.
func RecordCacheMiss() { globalManager.cacheLookups.WithLabelValues("miss").Inc() }

// RecordCacheEviction counts a cache eviction.
func RecordCacheEviction() { globalManager.cacheEvictions.Inc() }

// UpdateCacheEntries sets the number of cached results.
func UpdateCacheEntries(n int) { globalManager.cacheEntries.Set(float64(n)) }

// RecordUpstreamRequest records a weather provider call.
func RecordUpstreamRequest(outcome string, latencyMs float64) {
	globalManager.upstreamRequests.WithLabelValues(outcome).Inc()
	globalManager.upstreamLatency.Observe(latencyMs)
}

// RecordRefreshJob counts a refresh job by outcome.
func RecordRefreshJob(outcome string) {
	globalManager.refreshJobs.WithLabelValues(outcome).Inc()
}

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) { globalManager.queueSize.Set(float64(size)) }

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) { globalManager.queueCapacity.Set(float64(capacity)) }

// UpdateWorkerCount sets the current worker count.
func UpdateWorkerCount(count int) { globalManager.workerCount.Set(float64(count)) }

// UpdateRankedCrags sets the number of ranked crags.
func UpdateRankedCrags(count int) { globalManager.rankedCrags.Set(float64(count)) }

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) { globalManager.systemMemoryUsage.Set(float64(bytes)) }

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) { globalManager.systemGoroutineCount.Set(float64(count)) }

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) { globalManager.systemGCPauseTime.Observe(pauseMs) }

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
