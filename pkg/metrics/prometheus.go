// Package metrics provides Prometheus metrics for the ritmo race-results service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector exported by the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Normalization and analysis
	rowsProcessed    *prometheus.CounterVec
	normalizeLatency prometheus.Histogram
	analyzeLatency   prometheus.Histogram
	reportsGenerated prometheus.Counter
	reportsSaved     prometheus.Counter

	// Ingestion
	ingestions       prometheus.Counter
	ingestDuplicates prometheus.Counter
	ingestLatency    prometheus.Histogram
	storedResults    prometheus.Gauge

	// Pipeline
	queueSize       prometheus.Gauge
	queueCapacity   prometheus.Gauge
	queueEnqueued   prometheus.Counter
	queueRejected   prometheus.Counter
	workerCount     prometheus.Gauge
	workerLatency   prometheus.Histogram
	eventsPublished *prometheus.CounterVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorsByComponent *prometheus.CounterVec

	// Store
	storeQueryLatency *prometheus.HistogramVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Gauge
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // avoids default Go metrics

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "ritmo",
		subsystem:        "results",
		histogramBuckets: []float64{0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
	})
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
	})
}

func (m *Manager) histogram(name, help string) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, Buckets: m.histogramBuckets,
	})
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.rowsProcessed = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "rows_processed_total",
		Help:      "Rows seen by the normalizer, by profile and outcome",
	}, []string{"profile", "outcome"})
	m.normalizeLatency = m.histogram("normalize_latency_milliseconds", "Time to normalize one uploaded file")
	m.analyzeLatency = m.histogram("analyze_latency_milliseconds", "Time to aggregate one analysis report")
	m.reportsGenerated = m.counter("reports_generated_total", "Analysis reports computed")
	m.reportsSaved = m.counter("reports_saved_total", "Analysis reports persisted")

	m.ingestions = m.counter("ingestions_total", "Result files ingested into a race")
	m.ingestDuplicates = m.counter("ingest_duplicates_total", "Result files rejected as already ingested")
	m.ingestLatency = m.histogram("ingest_latency_milliseconds", "Time to ingest one result file")
	m.storedResults = m.gauge("stored_results", "Result rows held by the store")

	m.queueSize = m.gauge("queue_size", "Jobs waiting in the normalization queue")
	m.queueCapacity = m.gauge("queue_capacity", "Capacity of the normalization queue")
	m.queueEnqueued = m.counter("queue_enqueued_total", "Jobs accepted by the normalization queue")
	m.queueRejected = m.counter("queue_rejected_total", "Jobs refused by a full or closed queue")
	m.workerCount = m.gauge("worker_count", "Running normalization workers")
	m.workerLatency = m.histogram("worker_job_latency_milliseconds", "Time a worker spends on one job")
	m.eventsPublished = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "events_published_total",
		Help:      "Race events handed to the publisher, by type and result",
	}, []string{"type", "result"})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests by endpoint and method",
	}, []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_milliseconds",
		Help:      "HTTP request duration in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.errorsByComponent = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "errors_by_component_total",
		Help:      "Total number of errors by component",
	}, []string{"component", "error_type"})

	m.storeQueryLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_query_latency_milliseconds",
		Help:      "Store operation latency by driver and operation",
		Buckets:   m.histogramBuckets,
	}, []string{"driver", "op"})

	m.systemMemoryUsage = m.gauge("system_memory_bytes", "Heap bytes allocated by the process")
	m.systemGoroutineCount = m.gauge("system_goroutines", "Number of running goroutines")
	m.systemGCPauseTime = m.gauge("system_gc_pause_milliseconds", "Average GC pause time")
}

// RecordRows adds n rows with the given outcome for a normalization profile.
func RecordRows(profile, outcome string, n int) {
	if n <= 0 {
		return
	}
	globalManager.rowsProcessed.WithLabelValues(profile, outcome).Add(float64(n))
}

// RecordNormalizeLatency records the time spent normalizing one file.
func RecordNormalizeLatency(latencyMs float64) {
	globalManager.normalizeLatency.Observe(latencyMs)
}

// RecordAnalyzeLatency records the time spent building one report.
func RecordAnalyzeLatency(latencyMs float64) {
	globalManager.analyzeLatency.Observe(latencyMs)
}

// RecordReportGenerated increments the generated reports counter.
func RecordReportGenerated() {
	globalManager.reportsGenerated.Inc()
}

// RecordReportSaved increments the saved reports counter.
func RecordReportSaved() {
	globalManager.reportsSaved.Inc()
}

// RecordIngestion records one successful ingestion and its latency.
func RecordIngestion(latencyMs float64) {
	globalManager.ingestions.Inc()
	globalManager.ingestLatency.Observe(latencyMs)
}

// RecordIngestDuplicate increments the duplicate upload counter.
func RecordIngestDuplicate() {
	globalManager.ingestDuplicates.Inc()
}

// UpdateStoredResults sets the number of stored result rows.
func UpdateStoredResults(count int) {
	globalManager.storedResults.Set(float64(count))
}

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueued.Inc()
}

// RecordQueueRejected increments the rejected enqueue counter.
func RecordQueueRejected() {
	globalManager.queueRejected.Inc()
}

// UpdateWorkerCount sets the current worker count.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// RecordWorkerLatency records how long a worker spent on one job.
func RecordWorkerLatency(latencyMs float64) {
	globalManager.workerLatency.Observe(latencyMs)
}

// RecordEventPublished counts a publish attempt for an event type.
func RecordEventPublished(eventType string, ok bool) {
	result := "ok"
	if !ok {
		result = "error"
	}
	globalManager.eventsPublished.WithLabelValues(eventType, result).Inc()
}

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

// RecordStoreLatency records the latency of a store operation.
func RecordStoreLatency(driver, op string, latencyMs float64) {
	globalManager.storeQueryLatency.WithLabelValues(driver, op).Observe(latencyMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// UpdateSystemMemoryUsage sets the allocated heap size.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine count.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime sets the average GC pause.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Set(pauseMs)
}
