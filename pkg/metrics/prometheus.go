// Package metrics provides Prometheus metrics for the mapty workout service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the mapty service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	registry         prometheus.Registerer

	// Domain metrics
	workoutsCreated    *prometheus.CounterVec
	validationFailures *prometheus.CounterVec
	workoutsSelected   *prometheus.CounterVec
	sessionResets      prometheus.Counter
	geolocation        *prometheus.CounterVec
	storedWorkouts     prometheus.Gauge

	// Persistence metrics
	persistenceWrites   prometheus.Counter
	persistenceErrors   *prometheus.CounterVec
	restoreFallbacks    *prometheus.CounterVec
	persistenceBytes    prometheus.Gauge
	persistenceLatency  prometheus.Histogram
	restoredWorkouts    prometheus.Gauge
	restoreDurationLast prometheus.Gauge

	// Command loop metrics
	queueCapacity   prometheus.Gauge
	queueSize       prometheus.Gauge
	queueEnqueued   prometheus.Counter
	queueDequeued   prometheus.Counter
	queueRejected   *prometheus.CounterVec
	taskLatency     *prometheus.HistogramVec
	taskErrors      *prometheus.CounterVec
	taskPanics      prometheus.Counter
	workerBusyGauge prometheus.Gauge

	// Render stream metrics
	streamClients  prometheus.Gauge
	streamMessages *prometheus.CounterVec
	streamDropped  prometheus.Counter

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorsByEndpoint    *prometheus.CounterVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "mapty",
		subsystem:        "workouts",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)

	m.workoutsCreated = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "created_total",
		Help:      "Total number of workouts created, by type",
	}, []string{"type"})

	m.validationFailures = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "validation_failures_total",
		Help:      "Total number of rejected workout submissions, by type and field",
	}, []string{"type", "field"})

	m.workoutsSelected = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "selected_total",
		Help:      "Total number of select-to-focus requests, by outcome",
	}, []string{"outcome"})

	m.sessionResets = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "session_resets_total",
		Help:      "Total number of full resets",
	})

	m.geolocation = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "geolocation_total",
		Help:      "Geolocation outcomes (resolved or failed)",
	}, []string{"outcome"})

	m.storedWorkouts = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "stored",
		Help:      "Current number of workouts held by the store",
	})

	m.persistenceWrites = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "persistence_writes_total",
		Help:      "Total number of write-through snapshots of the workout list",
	})

	m.persistenceErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "persistence_errors_total",
		Help:      "Total number of persistence failures, by operation",
	}, []string{"op"})

	m.restoreFallbacks = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "restore_fallbacks_total",
		Help:      "Restores that silently fell back to an empty store, by reason",
	}, []string{"reason"})

	m.persistenceBytes = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "persistence_blob_bytes",
		Help:      "Size of the last persisted workout blob in bytes",
	})

	m.persistenceLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "persistence_latency_milliseconds",
		Help:      "Latency of persistence writes in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.restoredWorkouts = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "restored",
		Help:      "Number of workouts restored at the last startup",
	})

	m.restoreDurationLast = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "restore_last_duration_milliseconds",
		Help:      "Duration of the last restore in milliseconds",
	})

	m.queueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_capacity",
		Help:      "Capacity of the controller command queue",
	})

	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_size",
		Help:      "Current number of pending controller commands",
	})

	m.queueEnqueued = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_enqueue_total",
		Help:      "Total number of commands enqueued",
	})

	m.queueDequeued = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_dequeue_total",
		Help:      "Total number of commands dequeued",
	})

	m.queueRejected = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_rejected_total",
		Help:      "Total number of commands rejected by the queue, by reason",
	}, []string{"reason"})

	m.taskLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "command_latency_milliseconds",
		Help:      "Controller command execution latency in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"command"})

	m.taskErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "command_errors_total",
		Help:      "Total number of controller commands that returned an error",
	}, []string{"command"})

	m.taskPanics = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "command_panics_total",
		Help:      "Total number of recovered command panics",
	})

	m.workerBusyGauge = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_busy",
		Help:      "1 while the command worker is executing a command",
	})

	m.streamClients = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "stream_clients",
		Help:      "Connected render stream clients",
	})

	m.streamMessages = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "stream_messages_total",
		Help:      "Render messages published, by type",
	}, []string{"type"})

	m.streamDropped = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "stream_dropped_total",
		Help:      "Render messages dropped because a client buffer was full",
	})

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by endpoint and method",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.errorsByEndpoint = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "errors_by_endpoint_total",
			Help:      "HTTP errors by endpoint, method and error type",
		},
		[]string{"endpoint", "method", "error_type"},
	)
}

// Domain recorders.

func RecordWorkoutCreated(kind string) {
	if globalManager.enabled {
		globalManager.workoutsCreated.WithLabelValues(kind).Inc()
	}
}

func RecordValidationFailure(kind, field string) {
	if globalManager.enabled {
		globalManager.validationFailures.WithLabelValues(kind, field).Inc()
	}
}

func RecordWorkoutSelected(found bool) {
	if !globalManager.enabled {
		return
	}
	outcome := "found"
	if !found {
		outcome = "not_found"
	}
	globalManager.workoutsSelected.WithLabelValues(outcome).Inc()
}

func RecordSessionReset() {
	if globalManager.enabled {
		globalManager.sessionResets.Inc()
	}
}

func RecordGeolocation(outcome string) {
	if globalManager.enabled {
		globalManager.geolocation.WithLabelValues(outcome).Inc()
	}
}

func UpdateStoredWorkouts(count int) {
	if globalManager.enabled {
		globalManager.storedWorkouts.Set(float64(count))
	}
}

// Persistence recorders.

func RecordPersistenceWrite(bytes int, latencyMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.persistenceWrites.Inc()
	globalManager.persistenceBytes.Set(float64(bytes))
	globalManager.persistenceLatency.Observe(latencyMs)
}

func RecordPersistenceError(op string) {
	if globalManager.enabled {
		globalManager.persistenceErrors.WithLabelValues(op).Inc()
	}
}

func RecordRestoreFallback(reason string) {
	if globalManager.enabled {
		globalManager.restoreFallbacks.WithLabelValues(reason).Inc()
	}
}

func RecordRestore(count int, durationMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.restoredWorkouts.Set(float64(count))
	globalManager.restoreDurationLast.Set(durationMs)
}

// Command loop recorders.

func UpdateQueueCapacity(capacity int) {
	if globalManager.enabled {
		globalManager.queueCapacity.Set(float64(capacity))
	}
}

func UpdateQueueSize(size int) {
	if globalManager.enabled {
		globalManager.queueSize.Set(float64(size))
	}
}

func RecordQueueEnqueue() {
	if globalManager.enabled {
		globalManager.queueEnqueued.Inc()
	}
}

func RecordQueueDequeue() {
	if globalManager.enabled {
		globalManager.queueDequeued.Inc()
	}
}

func RecordQueueRejected(reason string) {
	if globalManager.enabled {
		globalManager.queueRejected.WithLabelValues(reason).Inc()
	}
}

func RecordCommandLatency(command string, latencyMs float64) {
	if globalManager.enabled {
		globalManager.taskLatency.WithLabelValues(command).Observe(latencyMs)
	}
}

func RecordCommandError(command string) {
	if globalManager.enabled {
		globalManager.taskErrors.WithLabelValues(command).Inc()
	}
}

func RecordCommandPanic() {
	if globalManager.enabled {
		globalManager.taskPanics.Inc()
	}
}

func SetWorkerBusy(busy bool) {
	if !globalManager.enabled {
		return
	}
	if busy {
		globalManager.workerBusyGauge.Set(1)
		return
	}
	globalManager.workerBusyGauge.Set(0)
}

// Render stream recorders.

func UpdateStreamClients(count int) {
	if globalManager.enabled {
		globalManager.streamClients.Set(float64(count))
	}
}

func RecordStreamMessage(msgType string) {
	if globalManager.enabled {
		globalManager.streamMessages.WithLabelValues(msgType).Inc()
	}
}

func RecordStreamDropped() {
	if globalManager.enabled {
		globalManager.streamDropped.Inc()
	}
}

// HTTP recorders.

func RecordHTTPRequest(endpoint, method, statusCode string) {
	if globalManager.enabled {
		globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	}
}

func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	if globalManager.enabled {
		globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
	}
}

func RecordErrorByEndpoint(endpoint, method, errorType string) {
	if globalManager.enabled {
		globalManager.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
	}
}

// GetRegistry returns the custom registry used for exposition.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
