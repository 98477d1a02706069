package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics of the plugin runtime
type Metrics struct {
	registry *prometheus.Registry

	// Execution metrics
	ExecutionsTotal   *prometheus.CounterVec
	ExecutionDuration *prometheus.HistogramVec
	GateDenialsTotal  *prometheus.CounterVec

	// Plugin lifecycle metrics
	PluginsLoaded     prometheus.Gauge
	DiscoveredPlugins prometheus.Gauge
	DiscoveryDuration prometheus.Histogram

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// NewMetrics creates and registers all metrics on a private registry
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	m := &Metrics{
		registry: registry,

		ExecutionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hearth_executions_total",
				Help: "Total number of capability executions",
			},
			[]string{"plugin", "capability", "status"},
		),
		ExecutionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "hearth_execution_duration_seconds",
				Help:    "Capability execution duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"plugin", "capability"},
		),
		GateDenialsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hearth_gate_denials_total",
				Help: "Total number of executions stopped before the backend",
			},
			[]string{"gate"},
		),

		PluginsLoaded: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "hearth_plugins_loaded",
				Help: "Number of currently loaded plugins",
			},
		),
		DiscoveredPlugins: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "hearth_discovered_plugins",
				Help: "Number of plugins found by the last discovery scan",
			},
		),
		DiscoveryDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "hearth_discovery_duration_seconds",
				Help:    "Plugin discovery scan duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),

		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hearth_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "hearth_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
	}

	registry.MustRegister(
		m.ExecutionsTotal,
		m.ExecutionDuration,
		m.GateDenialsTotal,
		m.PluginsLoaded,
		m.DiscoveredPlugins,
		m.DiscoveryDuration,
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
	)
	return m
}

// Handler serves the metrics endpoint for this registry
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// HTTPMiddleware instruments HTTP requests
func (m *Metrics) HTTPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(rw.statusCode)
		m.HTTPRequestsTotal.WithLabelValues(r.Method, r.URL.Path, status).Inc()
		m.HTTPRequestDuration.WithLabelValues(r.Method, r.URL.Path).Observe(duration)
	})
}
