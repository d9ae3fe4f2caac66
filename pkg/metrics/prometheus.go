// Package metrics provides Prometheus metrics for the plantcard service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// evaluationBuckets covers sub-millisecond card evaluations.
var evaluationBuckets = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10} //nolint:gochecknoglobals // fixed bucket layout

// Manager manages all Prometheus metrics for the plantcard service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      map[string]string
	registry         prometheus.Registerer

	// Card evaluation
	itemsEvaluated     *prometheus.CounterVec
	cardsEvaluated     *prometheus.CounterVec
	evaluationLatency  prometheus.Histogram
	iconFallbacks      *prometheus.CounterVec
	dryCards           prometheus.Gauge
	configuredCards    prometheus.Gauge
	unparsableTimes    prometheus.Counter
	unavailableReading *prometheus.CounterVec

	// State store and update pipeline
	stateUpdatesApplied prometheus.Counter
	stateUpdatesFailed  prometheus.Counter
	storeEntities       prometheus.Gauge
	queueSize           prometheus.Gauge
	queueCapacity       prometheus.Gauge
	queueEnqueued       prometheus.Counter
	queueRejected       *prometheus.CounterVec
	workerCount         prometheus.Gauge
	workerLatency       prometheus.Histogram

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "plantcard",
		subsystem:        "card",
		histogramBuckets: prometheus.DefBuckets,
		constLabels:      map[string]string{},
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
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels, Buckets: buckets,
	})
}

func (m *Manager) initializeMetrics() {
	m.itemsEvaluated = m.counterVec("items_evaluated_total",
		"Items evaluated, by sensor type and classification", "type", "classification")
	m.cardsEvaluated = m.counterVec("cards_evaluated_total", "Cards evaluated, by card id", "card")
	m.evaluationLatency = m.histogram("evaluation_latency_milliseconds",
		"Time to evaluate a whole card in milliseconds", evaluationBuckets)
	m.iconFallbacks = m.counterVec("icon_fallbacks_total",
		"Items rendered with the fallback icon because their type has none", "type")
	m.dryCards = m.gauge("dry_cards", "Cards whose last evaluation raised the dry badge")
	m.configuredCards = m.gauge("configured_cards", "Number of configured cards")
	m.unparsableTimes = m.counter("unparsable_timestamps_total",
		"Last-changed timestamps passed through because they could not be parsed")
	m.unavailableReading = m.counterVec("unavailable_readings_total",
		"Items evaluated without a usable reading, by sensor type", "type")

	m.stateUpdatesApplied = m.counter("state_updates_applied_total", "State updates written to the store")
	m.stateUpdatesFailed = m.counter("state_updates_failed_total", "State updates that failed to apply")
	m.storeEntities = m.gauge("store_entities", "Entities with a known state")
	m.queueSize = m.gauge("queue_size", "Pending state updates")
	m.queueCapacity = m.gauge("queue_capacity", "Maximum pending state updates")
	m.queueEnqueued = m.counter("queue_enqueued_total", "State updates accepted by the queue")
	m.queueRejected = m.counterVec("queue_rejected_total", "State updates rejected by the queue, by reason", "reason")
	m.workerCount = m.gauge("worker_count", "State update workers")
	m.workerLatency = m.histogram("worker_processing_latency_milliseconds",
		"Time to apply one state update in milliseconds", m.histogramBuckets)

	m.httpRequests = promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: "http", Name: "requests_total", Help: "Total HTTP requests", ConstLabels: m.constLabels,
	}, []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: "http", Name: "request_duration_milliseconds",
		Help: "HTTP request duration in milliseconds", ConstLabels: m.constLabels, Buckets: m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})
}

// RecordItemEvaluated counts one evaluated item.
func (m *Manager) RecordItemEvaluated(sensorType, classification string) {
	m.itemsEvaluated.WithLabelValues(sensorType, classification).Inc()
}

// RecordCardEvaluated counts one card evaluation and its latency.
func (m *Manager) RecordCardEvaluated(card string, latencyMs float64) {
	m.cardsEvaluated.WithLabelValues(card).Inc()
	m.evaluationLatency.Observe(latencyMs)
}

// RecordIconFallback counts one item drawn with the fallback icon.
func (m *Manager) RecordIconFallback(sensorType string) {
	m.iconFallbacks.WithLabelValues(sensorType).Inc()
}

// Global helpers delegate to the singleton manager.

// RecordItemEvaluated counts one evaluated item.
func RecordItemEvaluated(sensorType, classification string) {
	globalManager.RecordItemEvaluated(sensorType, classification)
}

// RecordCardEvaluated counts one card evaluation and its latency.
func RecordCardEvaluated(card string, latencyMs float64) {
	globalManager.RecordCardEvaluated(card, latencyMs)
}

// RecordIconFallback counts one item drawn with the fallback icon.
func RecordIconFallback(sensorType string) {
	globalManager.RecordIconFallback(sensorType)
}

// RecordUnavailableReading counts one item without a usable reading.
func RecordUnavailableReading(sensorType string) {
	globalManager.unavailableReading.WithLabelValues(sensorType).Inc()
}

// RecordUnparsableTimestamp counts one timestamp passed through unformatted.
func RecordUnparsableTimestamp() {
	globalManager.unparsableTimes.Inc()
}

// UpdateDryCards sets the number of dry cards.
func UpdateDryCards(count int) {
	globalManager.dryCards.Set(float64(count))
}

// UpdateConfiguredCards sets the number of configured cards.
func UpdateConfiguredCards(count int) {
	globalManager.configuredCards.Set(float64(count))
}

// RecordStateUpdateApplied counts one state update written to the store.
func RecordStateUpdateApplied() {
	globalManager.stateUpdatesApplied.Inc()
}

// RecordStateUpdateFailed counts one state update that failed to apply.
func RecordStateUpdateFailed() {
	globalManager.stateUpdatesFailed.Inc()
}

// UpdateStoreEntities sets the number of entities in the store.
func UpdateStoreEntities(count int) {
	globalManager.storeEntities.Set(float64(count))
}

// UpdateQueueSize sets the number of pending updates.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// RecordQueueEnqueue counts one accepted update.
func RecordQueueEnqueue() {
	globalManager.queueEnqueued.Inc()
}

// RecordQueueRejected counts one rejected update.
func RecordQueueRejected(reason string) {
	globalManager.queueRejected.WithLabelValues(reason).Inc()
}

// UpdateWorkerCount sets the number of workers.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// RecordWorkerProcessingLatency records the time to apply one update.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerLatency.Observe(latencyMs)
}

// RecordHTTPRequest counts one HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records one HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// GetRegistry returns the registry backing the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
