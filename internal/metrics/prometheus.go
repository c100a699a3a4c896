// Package metrics provides Prometheus-based metrics collection for gvmclient.
// It covers management protocol exchanges, transport traffic and the scanner
// daemon HTTP API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	// Namespace for all gvmclient metrics
	namespace = "gvmclient"

	// Subsystems
	subsystemGMP       = "gmp"
	subsystemTransport = "transport"
	subsystemOpenvasd  = "openvasd"
)

// PrometheusMetrics holds all Prometheus metric collectors
type PrometheusMetrics struct {
	// Protocol metrics
	commandsTotal   *prometheus.CounterVec
	commandDuration *prometheus.HistogramVec
	parseErrors     prometheus.Counter
	activeExchanges prometheus.Gauge

	// Transport metrics
	bytesReceived prometheus.Counter
	bytesSent     prometheus.Counter

	// Scanner daemon metrics
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	registry *prometheus.Registry
}

// NewPrometheusMetrics creates a new Prometheus metrics instance with all collectors
func NewPrometheusMetrics() *PrometheusMetrics {
	registry := prometheus.NewRegistry()

	pm := &PrometheusMetrics{
		registry: registry,
	}

	pm.initGMPMetrics()
	pm.initTransportMetrics()
	pm.initOpenvasdMetrics()

	pm.registerMetrics()

	// Standard Go and process collectors for runtime visibility
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	return pm
}

// initGMPMetrics initializes protocol exchange metrics
func (pm *PrometheusMetrics) initGMPMetrics() {
	pm.commandsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystemGMP,
			Name:      "commands_total",
			Help:      "Total number of commands sent by command name and response status",
		},
		[]string{"command", "status"},
	)

	pm.commandDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystemGMP,
			Name:      "command_duration_seconds",
			Help:      "Duration of request/response exchanges in seconds",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0, 10.0, 30.0, 120.0},
		},
		[]string{"command"},
	)

	pm.parseErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystemGMP,
			Name:      "parse_errors_total",
			Help:      "Total number of malformed responses",
		},
	)

	pm.activeExchanges = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystemGMP,
			Name:      "active_exchanges",
			Help:      "Number of request/response exchanges in flight",
		},
	)
}

// initTransportMetrics initializes transport traffic metrics
func (pm *PrometheusMetrics) initTransportMetrics() {
	pm.bytesReceived = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystemTransport,
			Name:      "bytes_received_total",
			Help:      "Total number of bytes read from the manager",
		},
	)

	pm.bytesSent = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystemTransport,
			Name:      "bytes_sent_total",
			Help:      "Total number of bytes written to the manager",
		},
	)
}

// initOpenvasdMetrics initializes scanner daemon HTTP metrics
func (pm *PrometheusMetrics) initOpenvasdMetrics() {
	pm.httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystemOpenvasd,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by method and status",
		},
		[]string{"method", "status"},
	)

	pm.httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystemOpenvasd,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 2.0, 5.0},
		},
		[]string{"method"},
	)
}

// registerMetrics registers all metrics with the Prometheus registry
func (pm *PrometheusMetrics) registerMetrics() {
	pm.registry.MustRegister(pm.commandsTotal)
	pm.registry.MustRegister(pm.commandDuration)
	pm.registry.MustRegister(pm.parseErrors)
	pm.registry.MustRegister(pm.activeExchanges)

	pm.registry.MustRegister(pm.bytesReceived)
	pm.registry.MustRegister(pm.bytesSent)

	pm.registry.MustRegister(pm.httpRequests)
	pm.registry.MustRegister(pm.httpDuration)
}

// GetRegistry returns the Prometheus registry for HTTP handler
func (pm *PrometheusMetrics) GetRegistry() *prometheus.Registry {
	return pm.registry
}

// Handler returns an HTTP handler exposing the registry.
func (pm *PrometheusMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(pm.registry, promhttp.HandlerOpts{})
}

// ObserveCommand records one finished exchange. A status of zero means the
// exchange produced no status attribute, or failed before a response.
func (pm *PrometheusMetrics) ObserveCommand(command string, status int, duration time.Duration) {
	pm.commandsTotal.WithLabelValues(command, statusLabel(status)).Inc()
	pm.commandDuration.WithLabelValues(command).Observe(duration.Seconds())
}

// IncrementParseErrors increments the malformed response counter
func (pm *PrometheusMetrics) IncrementParseErrors() {
	pm.parseErrors.Inc()
}

// ExchangeStarted marks an exchange in flight
func (pm *PrometheusMetrics) ExchangeStarted() {
	pm.activeExchanges.Inc()
}

// ExchangeFinished marks an exchange as done
func (pm *PrometheusMetrics) ExchangeFinished() {
	pm.activeExchanges.Dec()
}

// AddBytesSent adds to the sent bytes counter
func (pm *PrometheusMetrics) AddBytesSent(n int) {
	pm.bytesSent.Add(float64(n))
}

// AddBytesReceived adds to the received bytes counter
func (pm *PrometheusMetrics) AddBytesReceived(n int) {
	pm.bytesReceived.Add(float64(n))
}

// ObserveHTTPRequest records one scanner daemon request
func (pm *PrometheusMetrics) ObserveHTTPRequest(method string, status int, duration time.Duration) {
	pm.httpRequests.WithLabelValues(method, statusLabel(status)).Inc()
	pm.httpDuration.WithLabelValues(method).Observe(duration.Seconds())
}

func statusLabel(status int) string {
	if status == 0 {
		return "none"
	}
	return strconv.Itoa(status)
}
