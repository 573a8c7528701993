// Package metrics provides Prometheus metrics for the lead scoring service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Histogram bucket sets tuned for the scoring hot path.
var (
	latencyBucketsMs = []float64{1, 2.5, 5, 10, 25, 50, 75, 100, 250, 500, 1000}
	scoreBuckets     = []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0}
	batchSizeBuckets = []float64{1, 5, 10, 25, 50, 75, 100}
)

// Manager owns all Prometheus metrics for the scoring service.
type Manager struct {
	namespace string
	subsystem string
	registry  prometheus.Registerer

	// Prediction metrics
	predictions       *prometheus.CounterVec
	predictionLatency *prometheus.HistogramVec
	predictionScores  *prometheus.HistogramVec
	predictionErrors  *prometheus.CounterVec
	clampedScores     *prometheus.CounterVec
	batchSize         prometheus.Histogram
	batchRejected     prometheus.Counter

	// Validation metrics
	validationFailures *prometheus.CounterVec

	// Persistence sink metrics
	sinkQueueSize        prometheus.Gauge
	sinkQueueCapacity    prometheus.Gauge
	sinkQueueUtilization prometheus.Gauge
	sinkDropped          prometheus.Counter
	sinkWritten          prometheus.Counter
	sinkWriteErrors      prometheus.Counter
	sinkWriteLatency     prometheus.Histogram

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	authRejections      prometheus.Counter

	// Result repository metrics
	repositoryLeads prometheus.Gauge

	// System metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge

	// Faults inside the recorder itself; never surfaced to callers.
	recorderFaults prometheus.Counter
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go collectors.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // singleton registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace: "leadscore",
		subsystem: "scoring",
		registry:  prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.predictions = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "predictions_total",
			Help:      "Total predictions made, by provider and resulting tier",
		},
		[]string{"provider", "tier"},
	)

	m.predictionLatency = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "prediction_latency_milliseconds",
			Help:      "Prediction latency in milliseconds, by provider",
			Buckets:   latencyBucketsMs,
		},
		[]string{"provider"},
	)

	m.predictionScores = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "prediction_scores",
			Help:      "Distribution of raw prediction scores, by provider",
			Buckets:   scoreBuckets,
		},
		[]string{"provider"},
	)

	m.predictionErrors = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "prediction_errors_total",
			Help:      "Total prediction errors, by provider and error kind",
		},
		[]string{"provider", "error_kind"},
	)

	m.clampedScores = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "clamped_scores_total",
			Help:      "Provider scores outside [0,1] that were clamped",
		},
		[]string{"provider"},
	)

	m.batchSize = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "batch_size",
		Help:      "Batch scoring request sizes",
		Buckets:   batchSizeBuckets,
	})

	m.batchRejected = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "batch_rejected_total",
		Help:      "Whole-batch rejections for exceeding the size cap",
	})

	m.validationFailures = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "validation_failures_total",
			Help:      "Feature validation failures, by failure kind",
		},
		[]string{"kind"},
	)

	m.sinkQueueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sink_queue_size",
		Help:      "Current size of the persistence sink queue",
	})

	m.sinkQueueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sink_queue_capacity",
		Help:      "Maximum persistence sink queue capacity",
	})

	m.sinkQueueUtilization = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sink_queue_utilization_ratio",
		Help:      "Sink queue utilization ratio (size / capacity)",
	})

	m.sinkDropped = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sink_dropped_total",
		Help:      "Scoring results dropped because the sink queue was full",
	})

	m.sinkWritten = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sink_written_total",
		Help:      "Scoring results durably written by sink workers",
	})

	m.sinkWriteErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sink_write_errors_total",
		Help:      "Sink writer failures (absorbed, never surfaced)",
	})

	m.sinkWriteLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sink_write_latency_milliseconds",
		Help:      "Sink write latency in milliseconds",
		Buckets:   latencyBucketsMs,
	})

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests by endpoint, method and status code",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds",
			Buckets:   latencyBucketsMs,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.authRejections = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "auth_rejections_total",
		Help:      "Requests rejected by the API key gate",
	})

	m.repositoryLeads = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "repository_leads",
		Help:      "Number of leads held in the result repository",
	})

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_memory_usage_bytes",
		Help:      "System memory usage in bytes",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_goroutine_count",
		Help:      "Number of goroutines",
	})

	m.recorderFaults = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "recorder_faults_total",
		Help:      "Internal metric recording faults swallowed by the recorder",
	})
}

// guard absorbs any panic raised while recording so that metric faults can
// never propagate into the request path. Faults are counted against the
// recorder itself.
func guard() {
	if r := recover(); r != nil {
		if globalManager != nil && globalManager.recorderFaults != nil {
			globalManager.recorderFaults.Inc()
		}
	}
}

// RecordPrediction records one completed prediction.
func RecordPrediction(provider, tier string, rawScore, latencyMs float64) {
	defer guard()
	globalManager.predictions.WithLabelValues(provider, tier).Inc()
	globalManager.predictionScores.WithLabelValues(provider).Observe(rawScore)
	globalManager.predictionLatency.WithLabelValues(provider).Observe(latencyMs)
}

// RecordPredictionError records a failed prediction by error kind.
func RecordPredictionError(provider, errorKind string) {
	defer guard()
	globalManager.predictionErrors.WithLabelValues(provider, errorKind).Inc()
}

// RecordClampedScore counts a provider score outside [0,1].
func RecordClampedScore(provider string) {
	defer guard()
	globalManager.clampedScores.WithLabelValues(provider).Inc()
}

// RecordBatchSize observes the size of an accepted batch.
func RecordBatchSize(n int) {
	defer guard()
	globalManager.batchSize.Observe(float64(n))
}

// RecordBatchRejected counts a whole-batch size rejection.
func RecordBatchRejected() {
	defer guard()
	globalManager.batchRejected.Inc()
}

// RecordValidationFailure counts one field-level validation failure.
func RecordValidationFailure(kind string) {
	defer guard()
	globalManager.validationFailures.WithLabelValues(kind).Inc()
}

// Sink metrics.

// UpdateSinkQueueSize sets the current sink queue size and utilization.
func UpdateSinkQueueSize(size, capacity int) {
	defer guard()
	globalManager.sinkQueueSize.Set(float64(size))
	if capacity > 0 {
		globalManager.sinkQueueUtilization.Set(float64(size) / float64(capacity))
	}
}

// UpdateSinkQueueCapacity sets the sink queue capacity gauge.
func UpdateSinkQueueCapacity(capacity int) {
	defer guard()
	globalManager.sinkQueueCapacity.Set(float64(capacity))
}

// RecordSinkDropped counts a result dropped on sink saturation.
func RecordSinkDropped() {
	defer guard()
	globalManager.sinkDropped.Inc()
}

// RecordSinkWritten counts a result durably written.
func RecordSinkWritten() {
	defer guard()
	globalManager.sinkWritten.Inc()
}

// RecordSinkWriteError counts an absorbed writer failure.
func RecordSinkWriteError() {
	defer guard()
	globalManager.sinkWriteErrors.Inc()
}

// RecordSinkWriteLatency observes one sink write duration.
func RecordSinkWriteLatency(latencyMs float64) {
	defer guard()
	globalManager.sinkWriteLatency.Observe(latencyMs)
}

// HTTP metrics.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	defer guard()
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	defer guard()
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordAuthRejection counts a request rejected by the API key gate.
func RecordAuthRejection() {
	defer guard()
	globalManager.authRejections.Inc()
}

// UpdateRepositoryLeads sets the number of leads in the result repository.
func UpdateRepositoryLeads(count int) {
	defer guard()
	globalManager.repositoryLeads.Set(float64(count))
}

// System metrics.

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	defer guard()
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	defer guard()
	globalManager.systemGoroutineCount.Set(float64(count))
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
