// Package telemetry exposes Prometheus metrics for the prediction service.
package telemetry

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors for the service.
type Metrics struct {
	registry *prometheus.Registry

	// Prediction pipeline
	predictionsTotal  *prometheus.CounterVec
	scoringLatency    prometheus.Histogram
	scoringFailures   *prometheus.CounterVec
	persistenceErrors prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// New creates a Metrics instance with its own registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		predictionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "heartguard",
			Name:      "predictions_total",
			Help:      "Completed predictions by score source.",
		}, []string{"source"}),
		scoringLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "heartguard",
			Name:      "scoring_latency_seconds",
			Help:      "Latency of the external scoring process.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 4, 8, 16},
		}),
		scoringFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "heartguard",
			Name:      "scoring_failures_total",
			Help:      "External scoring failures by reason.",
		}, []string{"reason"}),
		persistenceErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "heartguard",
			Name:      "persistence_errors_total",
			Help:      "Prediction records that failed to persist.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "heartguard",
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, path and status.",
		}, []string{"method", "path", "status"}),
		httpRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "heartguard",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and path.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
	}

	reg.MustRegister(
		m.predictionsTotal,
		m.scoringLatency,
		m.scoringFailures,
		m.persistenceErrors,
		m.httpRequests,
		m.httpRequestDuration,
	)

	return m
}

// ObservePrediction records a completed prediction and its scoring latency.
func (m *Metrics) ObservePrediction(source string, latency time.Duration) {
	m.predictionsTotal.WithLabelValues(source).Inc()
	m.scoringLatency.Observe(latency.Seconds())
}

// ObserveScoringFailure records an external scoring failure.
// Reason is one of "unavailable", "timeout".
func (m *Metrics) ObserveScoringFailure(reason string) {
	m.scoringFailures.WithLabelValues(reason).Inc()
}

// ObservePersistenceError records a failed record insert.
func (m *Metrics) ObservePersistenceError() {
	m.persistenceErrors.Inc()
}

// Middleware returns echo middleware that records HTTP request metrics.
// The route path (not the raw URL) is used to keep label cardinality bounded.
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			path := c.Path()
			if path == "" {
				path = "unmatched"
			}
			status := c.Response().Status
			if err != nil {
				if httpErr, ok := err.(*echo.HTTPError); ok {
					status = httpErr.Code
				}
			}

			m.httpRequests.WithLabelValues(c.Request().Method, path, strconv.Itoa(status)).Inc()
			m.httpRequestDuration.WithLabelValues(c.Request().Method, path).Observe(time.Since(start).Seconds())

			return err
		}
	}
}

// Handler returns the /metrics endpoint handler.
func (m *Metrics) Handler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
