package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Metrics middleware records HTTP metrics.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		httpRequestsInFlight.Inc()
		defer httpRequestsInFlight.Dec()

		wrapped := &metricsRecorder{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		duration := time.Since(start).Seconds()
		path := normalizePath(r.URL.Path)

		httpRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.statusCode)).Inc()
		httpRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}

type metricsRecorder struct {
	http.ResponseWriter

	statusCode int
}

func (r *metricsRecorder) WriteHeader(code int) {
	r.statusCode = code
	r.ResponseWriter.WriteHeader(code)
}

// normalizePath collapses path IDs to keep label cardinality bounded.
// /api/v1/deliveries/quotes/quote-01ABC/confirm -> /api/v1/deliveries/quotes/:id/confirm
// /api/v1/deliveries/DEL-123 -> /api/v1/deliveries/:id
func normalizePath(path string) string {
	const quotesPrefix = "/api/v1/deliveries/quotes/"
	const deliveriesPrefix = "/api/v1/deliveries/"

	switch {
	case strings.HasPrefix(path, quotesPrefix) && len(path) > len(quotesPrefix):
		rest := path[len(quotesPrefix):]
		if i := strings.IndexByte(rest, '/'); i >= 0 {
			return quotesPrefix + ":id" + rest[i:]
		}
		return quotesPrefix + ":id"

	case strings.HasPrefix(path, deliveriesPrefix) && len(path) > len(deliveriesPrefix) &&
		!strings.HasPrefix(path[len(deliveriesPrefix):], "quotes"):
		rest := path[len(deliveriesPrefix):]
		if i := strings.IndexByte(rest, '/'); i >= 0 {
			return deliveriesPrefix + ":id" + rest[i:]
		}
		return deliveriesPrefix + ":id"
	}

	return path
}
