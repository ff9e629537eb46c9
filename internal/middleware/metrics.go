package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_http_requests_total",
			Help: "Total HTTP requests by method, route, and status range",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "catalog_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	importRowsValidated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_import_rows_validated_total",
			Help: "Import rows validated by verdict status",
		},
		[]string{"status"},
	)

	syncActionsApplied = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_sync_actions_total",
			Help: "Sync actions applied to the catalog by type and outcome",
		},
		[]string{"action", "outcome"},
	)
)

// MetricsMiddleware tracks request counts and latency per route. Routes are
// labeled by the gin template path, not the raw URL, to keep cardinality
// bounded.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		httpRequestsTotal.WithLabelValues(
			c.Request.Method, route, statusCodeToRange(c.Writer.Status()),
		).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, route).
			Observe(time.Since(start).Seconds())
	}
}

// MetricsHandler exposes the Prometheus scrape endpoint
func MetricsHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

// RecordRowValidated counts one validated import row by verdict status
func RecordRowValidated(status string, n int) {
	importRowsValidated.WithLabelValues(status).Add(float64(n))
}

// RecordSyncAction counts one applied or failed sync action
func RecordSyncAction(action string, ok bool) {
	outcome := "applied"
	if !ok {
		outcome = "failed"
	}
	syncActionsApplied.WithLabelValues(action, outcome).Inc()
}

// statusCodeToRange converts status code to a range string (2xx, 3xx, 4xx, 5xx)
func statusCodeToRange(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return "2xx"
	case statusCode >= 300 && statusCode < 400:
		return "3xx"
	case statusCode >= 400 && statusCode < 500:
		return "4xx"
	case statusCode >= 500:
		return "5xx"
	default:
		return strconv.Itoa(statusCode)
	}
}
