package middleware

import (
	"strconv"
	"time"

	"github.com/contractui/api/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "contractui"

// Metrics groups the Prometheus collectors of the service
type Metrics struct {
	requests           *prometheus.CounterVec
	requestDuration    *prometheus.HistogramVec
	generations        *prometheus.CounterVec
	generationDuration *prometheus.HistogramVec
	exports            *prometheus.CounterVec
}

// NewMetrics registers the collectors on reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		generations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "generation_requests_total",
			Help:      "Contract generations by model and outcome.",
		}, []string{"model", "outcome"}),
		generationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "generation_duration_seconds",
			Help:      "Latency of the completion call by outcome.",
			Buckets:   []float64{1, 2.5, 5, 10, 20, 40, 60, 90, 120, 180},
		}, []string{"outcome"}),
		exports: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "documents_exported_total",
			Help:      "Exported documents by format.",
		}, []string{"format"}),
	}
}

// Middleware records request counts and latencies by matched route
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.requestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// ObserveGeneration records one generation attempt
func (m *Metrics) ObserveGeneration(model string, outcome models.GenerationOutcome, latency time.Duration) {
	m.generations.WithLabelValues(model, string(outcome)).Inc()
	if outcome == models.OutcomeSuccess || outcome == models.OutcomeUpstreamError {
		m.generationDuration.WithLabelValues(string(outcome)).Observe(latency.Seconds())
	}
}

// ObserveExport records one exported document
func (m *Metrics) ObserveExport(format string) {
	m.exports.WithLabelValues(format).Inc()
}
