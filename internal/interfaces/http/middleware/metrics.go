package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// httpMetrics holds the HTTP-facing prometheus instruments
type httpMetrics struct {
	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	liveSessions    prometheus.GaugeFunc
}

func newHTTPMetrics(reg prometheus.Registerer, sessionCount func() int) *httpMetrics {
	factory := promauto.With(reg)
	return &httpMetrics{
		requestTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "http_server_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_server_request_duration_seconds",
			Help:    "HTTP request latency distribution in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
		liveSessions: factory.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "authoring_live_sessions",
			Help: "Number of live authoring sessions",
		}, func() float64 { return float64(sessionCount()) }),
	}
}

// Metrics returns a middleware recording request counts and latency, plus a
// gauge tracking live authoring sessions. Paths are recorded by route
// template so path cardinality stays bounded.
func Metrics(reg prometheus.Registerer, sessionCount func() int) gin.HandlerFunc {
	m := newHTTPMetrics(reg, sessionCount)
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		method := c.Request.Method
		m.requestTotal.WithLabelValues(method, path, strconv.Itoa(c.Writer.Status())).Inc()
		m.requestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	}
}
