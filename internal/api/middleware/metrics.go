package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the HTTP collectors of one router. Each router gets its own
// registry so several emulators can run in one process.
type Metrics struct {
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	uploaded prometheus.Counter
}

// NewMetrics creates and registers the emulator collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "uthos_devserver_requests_total",
				Help: "Requests served, by route and status",
			},
			[]string{"method", "route", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "uthos_devserver_request_duration_seconds",
				Help:    "Request latency by route",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		uploaded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "uthos_devserver_uploaded_bytes_total",
			Help: "Bytes received by successful uploads",
		}),
	}
	m.registry.MustRegister(
		m.requests,
		m.duration,
		m.uploaded,
		collectors.NewGoCollector(),
	)
	return m
}

// Handler records every request. Unmatched routes are reported as
// "unmatched" to keep label cardinality bounded.
func (m *Metrics) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.duration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// AddUploaded counts the content of a stored upload.
func (m *Metrics) AddUploaded(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.uploaded.Add(float64(n))
}

// HTTPHandler exposes the registry in the Prometheus text format.
func (m *Metrics) HTTPHandler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
