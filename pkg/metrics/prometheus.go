// Package metrics provides Prometheus metrics for the wikidle game service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Guess outcomes.
const (
	GuessHit   = "hit"
	GuessMiss  = "miss"
	GuessEmpty = "empty"
)

// Result recording outcomes.
const (
	ResultCreated   = "created"
	ResultDuplicate = "duplicate"
)

// Manager manages all Prometheus metrics for the game service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets  []float64
	occurrenceBuckets []float64
	constLabels       prometheus.Labels
	registry          prometheus.Registerer

	// Game Metrics
	guesses          *prometheus.CounterVec
	guessOccurrences prometheus.Histogram
	articlesServed   prometheus.Counter
	documentWords    prometheus.Gauge
	documentErrors   prometheus.Counter

	// Result Metrics
	resultsRecorded *prometheus.CounterVec
	resultsWon      *prometheus.CounterVec
	resultsTotal    prometheus.Gauge

	// Leaderboard Metrics
	leaderboardComputations prometheus.Counter
	leaderboardLatency      prometheus.Histogram
	leaderboardEntries      *prometheus.GaugeVec
	leaderboardErrors       prometheus.Counter

	// Store Metrics
	storeWriteLatency prometheus.Histogram
	storeQueryLatency prometheus.Histogram

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorRateByEndpoint *prometheus.CounterVec

	// Refresh Queue Metrics
	queueCapacity      prometheus.Gauge
	queueSize          prometheus.Gauge
	queueEnqueueRate   prometheus.Counter
	queueDequeueRate   prometheus.Counter
	queueEnqueueErrors prometheus.Counter

	// Refresh Worker Metrics
	workerCount             prometheus.Gauge
	workerActiveCount       prometheus.Gauge
	workerProcessed         prometheus.Counter
	workerProcessingLatency prometheus.Histogram
	workerErrorRate         prometheus.Counter

	// Live Push Metrics
	liveClients         prometheus.Gauge
	liveBroadcasts      prometheus.Counter
	liveBroadcastErrors prometheus.Counter

	errorRateByComponent *prometheus.CounterVec

	// System Performance Metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
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
		namespace:        "wikidle",
		subsystem:        "game",
		histogramBuckets:  prometheus.DefBuckets,
		occurrenceBuckets: []float64{1, 2, 3, 5, 8, 13, 21, 34, 55},
		registry:          prometheus.DefaultRegisterer,
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
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     buckets,
		ConstLabels: m.constLabels,
	}
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)

	m.guesses = auto.NewCounterVec(
		m.counterOpts("guesses_total", "Total number of guesses checked by outcome"),
		[]string{"outcome"},
	)
	m.guessOccurrences = auto.NewHistogram(
		m.histogramOpts("guess_occurrences", "Occurrences revealed per successful guess", m.occurrenceBuckets),
	)
	m.articlesServed = auto.NewCounter(
		m.counterOpts("articles_served_total", "Total number of masked articles served"),
	)
	m.documentWords = auto.NewGauge(
		m.gaugeOpts("document_words", "Word count of the current daily document"),
	)
	m.documentErrors = auto.NewCounter(
		m.counterOpts("document_errors_total", "Total number of failed daily document lookups"),
	)

	m.resultsRecorded = auto.NewCounterVec(
		m.counterOpts("results_recorded_total", "Completion submissions by outcome (created or duplicate)"),
		[]string{"outcome"},
	)
	m.resultsWon = auto.NewCounterVec(
		m.counterOpts("results_won_total", "Newly recorded results by win flag"),
		[]string{"won"},
	)
	m.resultsTotal = auto.NewGauge(
		m.gaugeOpts("results_total", "Number of result rows held by the store"),
	)

	m.leaderboardComputations = auto.NewCounter(
		m.counterOpts("leaderboard_computations_total", "Total number of leaderboard computations"),
	)
	m.leaderboardLatency = auto.NewHistogram(
		m.histogramOpts("leaderboard_latency_milliseconds", "Leaderboard computation latency in milliseconds", m.histogramBuckets),
	)
	m.leaderboardEntries = auto.NewGaugeVec(
		m.gaugeOpts("leaderboard_entries", "Entries in the last computed leaderboard by category"),
		[]string{"category"},
	)
	m.leaderboardErrors = auto.NewCounter(
		m.counterOpts("leaderboard_errors_total", "Total number of failed leaderboard computations"),
	)

	m.storeWriteLatency = auto.NewHistogram(
		m.histogramOpts("store_write_latency_milliseconds", "Result store write latency in milliseconds", m.histogramBuckets),
	)
	m.storeQueryLatency = auto.NewHistogram(
		m.histogramOpts("store_query_latency_milliseconds", "Result store query latency in milliseconds", m.histogramBuckets),
	)

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "Total number of HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds", m.histogramBuckets),
		[]string{"endpoint", "method", "status_code"},
	)
	m.errorRateByEndpoint = auto.NewCounterVec(
		m.counterOpts("errors_by_endpoint_total", "Total number of errors by endpoint"),
		[]string{"endpoint", "method", "error_type"},
	)

	m.queueCapacity = auto.NewGauge(
		m.gaugeOpts("refresh_queue_capacity", "Maximum refresh queue capacity"),
	)
	m.queueSize = auto.NewGauge(
		m.gaugeOpts("refresh_queue_size", "Current number of pending refresh events"),
	)
	m.queueEnqueueRate = auto.NewCounter(
		m.counterOpts("refresh_queue_enqueue_total", "Total number of refresh events enqueued"),
	)
	m.queueDequeueRate = auto.NewCounter(
		m.counterOpts("refresh_queue_dequeue_total", "Total number of refresh events dequeued"),
	)
	m.queueEnqueueErrors = auto.NewCounter(
		m.counterOpts("refresh_queue_dropped_total", "Total number of refresh events dropped on backpressure"),
	)

	m.workerCount = auto.NewGauge(
		m.gaugeOpts("refresh_worker_count", "Number of refresh workers started"),
	)
	m.workerActiveCount = auto.NewGauge(
		m.gaugeOpts("refresh_worker_active_count", "Number of refresh workers currently processing"),
	)
	m.workerProcessed = auto.NewCounter(
		m.counterOpts("refresh_worker_processed_total", "Total number of refresh events processed"),
	)
	m.workerProcessingLatency = auto.NewHistogram(
		m.histogramOpts("refresh_worker_latency_milliseconds", "Refresh processing latency in milliseconds", m.histogramBuckets),
	)
	m.workerErrorRate = auto.NewCounter(
		m.counterOpts("refresh_worker_errors_total", "Total number of failed refreshes"),
	)

	m.liveClients = auto.NewGauge(
		m.gaugeOpts("live_clients", "Connected live leaderboard clients"),
	)
	m.liveBroadcasts = auto.NewCounter(
		m.counterOpts("live_broadcasts_total", "Total number of leaderboard snapshots pushed"),
	)
	m.liveBroadcastErrors = auto.NewCounter(
		m.counterOpts("live_broadcast_errors_total", "Total number of failed snapshot writes to clients"),
	)

	m.errorRateByComponent = auto.NewCounterVec(
		m.counterOpts("errors_by_component_total", "Total number of errors by component"),
		[]string{"component", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(
		m.gaugeOpts("system_memory_usage_bytes", "System memory usage in bytes"),
	)
	m.systemGoroutineCount = auto.NewGauge(
		m.gaugeOpts("system_goroutine_count", "Number of goroutines"),
	)
	m.systemGCPauseTime = auto.NewHistogram(
		m.histogramOpts("system_gc_pause_time_milliseconds", "GC pause time in milliseconds",
			[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000}),
	)
}

// Game Metrics Functions.

// RecordGuess counts a checked guess under outcome (GuessHit, GuessMiss or
// GuessEmpty) and, for hits, the number of revealed occurrences.
func RecordGuess(outcome string, occurrences int) {
	globalManager.guesses.WithLabelValues(outcome).Inc()
	if occurrences > 0 {
		globalManager.guessOccurrences.Observe(float64(occurrences))
	}
}

// RecordArticleServed increments the masked articles counter.
func RecordArticleServed() {
	globalManager.articlesServed.Inc()
}

// UpdateDocumentWords sets the word count of the current document.
func UpdateDocumentWords(words int) {
	globalManager.documentWords.Set(float64(words))
}

// RecordDocumentError increments the failed document lookups counter.
func RecordDocumentError() {
	globalManager.documentErrors.Inc()
}

// Result Metrics Functions.

// RecordResult counts a completion submission. won is only counted for
// newly created rows.
func RecordResult(created, won bool) {
	if !created {
		globalManager.resultsRecorded.WithLabelValues(ResultDuplicate).Inc()
		return
	}
	globalManager.resultsRecorded.WithLabelValues(ResultCreated).Inc()
	if won {
		globalManager.resultsWon.WithLabelValues("true").Inc()
	} else {
		globalManager.resultsWon.WithLabelValues("false").Inc()
	}
}

// UpdateResultsTotal sets the number of stored result rows.
func UpdateResultsTotal(count int) {
	globalManager.resultsTotal.Set(float64(count))
}

// Leaderboard Metrics Functions.

// RecordLeaderboardComputation records one computation and its latency.
func RecordLeaderboardComputation(latencyMs float64) {
	globalManager.leaderboardComputations.Inc()
	globalManager.leaderboardLatency.Observe(latencyMs)
}

// UpdateLeaderboardEntries sets the entry count of a category.
func UpdateLeaderboardEntries(category string, count int) {
	globalManager.leaderboardEntries.WithLabelValues(category).Set(float64(count))
}

// RecordLeaderboardError increments the leaderboard errors counter.
func RecordLeaderboardError() {
	globalManager.leaderboardErrors.Inc()
}

// Store Metrics Functions.

// RecordStoreWriteLatency records result store write latency.
func RecordStoreWriteLatency(latencyMs float64) {
	globalManager.storeWriteLatency.Observe(latencyMs)
}

// RecordStoreQueryLatency records result store query latency.
func RecordStoreQueryLatency(latencyMs float64) {
	globalManager.storeQueryLatency.Observe(latencyMs)
}

// HTTP Metrics Functions.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// Queue Metrics Functions.

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueueRate.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeueRate.Inc()
}

// RecordQueueEnqueueError increments the dropped events counter.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// Worker Metrics Functions.

// UpdateWorkerCount sets the number of started workers.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// UpdateWorkerActiveCount sets the number of busy workers.
func UpdateWorkerActiveCount(count int) {
	globalManager.workerActiveCount.Set(float64(count))
}

// RecordWorkerProcessed records a processed refresh and its latency.
func RecordWorkerProcessed(latencyMs float64) {
	globalManager.workerProcessed.Inc()
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	globalManager.workerErrorRate.Inc()
}

// Live Metrics Functions.

// UpdateLiveClients sets the number of connected live clients.
func UpdateLiveClients(count int) {
	globalManager.liveClients.Set(float64(count))
}

// RecordLiveBroadcast increments the pushed snapshots counter.
func RecordLiveBroadcast() {
	globalManager.liveBroadcasts.Inc()
}

// RecordLiveBroadcastError increments the failed client writes counter.
func RecordLiveBroadcastError() {
	globalManager.liveBroadcastErrors.Inc()
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// System Performance Metrics Functions.

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
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

// Handler serves the custom registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(customRegistry, promhttp.HandlerOpts{})
}
