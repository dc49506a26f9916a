// Package metrics provides Prometheus metrics for the HCGateway dashboard.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager holds the Prometheus metrics for the dashboard process.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Gateway metrics: token lifecycle and upstream fetches.
	loginTotal    *prometheus.CounterVec
	refreshTotal  *prometheus.CounterVec
	fetchTotal    *prometheus.CounterVec
	fetchRetries  prometheus.Counter
	fetchLatency  prometheus.Histogram
	recordsTotal  prometheus.Counter
	recordsDrops  prometheus.Counter

	// HTTP serving metrics.
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid the default Go collectors.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers all metrics.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "hcgateway",
		subsystem:        "dashboard",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.loginTotal = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "logins_total",
		Help:      "Total number of login attempts against the gateway, by outcome",
	}, []string{"outcome"})

	m.refreshTotal = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "token_refreshes_total",
		Help:      "Total number of token refresh attempts, by outcome",
	}, []string{"outcome"})

	m.fetchTotal = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "fetches_total",
		Help:      "Total number of step fetches issued upstream, by outcome",
	}, []string{"outcome"})

	m.fetchRetries = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "fetch_retries_total",
		Help:      "Total number of fetch retries after an unauthorized response",
	})

	m.fetchLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "fetch_latency_milliseconds",
		Help:      "Histogram of upstream fetch latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.recordsTotal = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "records_fetched_total",
		Help:      "Total number of step records returned by the gateway",
	})

	m.recordsDrops = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "records_dropped_total",
		Help:      "Total number of step records dropped by validation",
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "Total HTTP requests served, by endpoint, method and status",
	}, []string{"endpoint", "method", "status"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_milliseconds",
		Help:      "Histogram of HTTP request duration in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status"})
}

// RecordLogin counts a login attempt. Outcome is "success" or "failure".
func RecordLogin(outcome string) {
	globalManager.loginTotal.WithLabelValues(outcome).Inc()
}

// RecordRefresh counts a token refresh attempt. Outcome is "success" or "failure".
func RecordRefresh(outcome string) {
	globalManager.refreshTotal.WithLabelValues(outcome).Inc()
}

// RecordFetch counts an upstream fetch. Outcome is "success" or "failure".
func RecordFetch(outcome string) {
	globalManager.fetchTotal.WithLabelValues(outcome).Inc()
}

// RecordFetchRetry counts a forced-refresh retry after a 401.
func RecordFetchRetry() {
	globalManager.fetchRetries.Inc()
}

// RecordFetchLatency observes the latency of an upstream fetch.
func RecordFetchLatency(latencyMs float64) {
	globalManager.fetchLatency.Observe(latencyMs)
}

// AddRecordsFetched counts records returned upstream.
func AddRecordsFetched(n int) {
	globalManager.recordsTotal.Add(float64(n))
}

// AddRecordsDropped counts records dropped by validation.
func AddRecordsDropped(n int) {
	globalManager.recordsDrops.Add(float64(n))
}

// RecordHTTPRequest counts a served HTTP request.
func RecordHTTPRequest(endpoint, method, status string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, status).Inc()
}

// RecordHTTPRequestDuration observes a served HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, status string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, status).Observe(durationMs)
}

// GetRegistry returns the custom Prometheus registry used by the dashboard.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
