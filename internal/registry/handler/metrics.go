package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	starchainRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "starchain_requests_total",
		Help: "Total HTTP requests by method, path, and response status.",
	}, []string{"method", "path", "status"})

	starchainRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "starchain_request_duration_seconds",
		Help:    "Request duration in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	starchainSubmissionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "starchain_star_submissions_total",
		Help: "Total star submissions by result (accepted, expired, rejected, invalid, error).",
	}, []string{"result"})

	starchainHeight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "starchain_chain_height",
		Help: "Current number of blocks in the chain, genesis included.",
	})
)

// PrometheusMiddleware returns a Gin middleware that records per-request metrics.
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())
		method := c.Request.Method
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		starchainRequestsTotal.WithLabelValues(method, path, status).Inc()
		starchainRequestDuration.WithLabelValues(method, path).Observe(duration)
	}
}

// MetricsRoute mounts the Prometheus scrape endpoint on the engine root.
func MetricsRoute(r *gin.Engine) {
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// RecordChainHeight updates the chain height gauge.
func RecordChainHeight(height int) {
	starchainHeight.Set(float64(height))
}
