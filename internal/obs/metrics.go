package obs

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Shared HTTP metrics.
var (
	httpInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "http_in_flight_requests",
		Help: "In-flight HTTP requests.",
	})

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	outboundRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "outbound_requests_total",
			Help: "Proxied outbound HTTP calls by method and outcome.",
		},
		[]string{"method", "outcome"},
	)

	outboundRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "outbound_request_duration_seconds",
			Help:    "Proxied outbound call latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)
)

// Init registers all metrics in the default registry.
func Init() {
	prometheus.MustRegister(
		httpInFlight,
		httpRequestsTotal,
		httpRequestDuration,
		outboundRequestsTotal,
		outboundRequestDuration,
	)
}

// Handler exposes the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveOutbound records one proxied call. Outcome is "response" when any
// HTTP status was received and "transport_error" otherwise.
func ObserveOutbound(method, outcome string, elapsed time.Duration) {
	outboundRequestsTotal.WithLabelValues(method, outcome).Inc()
	outboundRequestDuration.WithLabelValues(method).Observe(elapsed.Seconds())
}

// Instrument wraps a handler measuring RPS, latency and in-flight requests.
func Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := CanonicalPath(r.URL.Path)
		method := r.Method

		httpInFlight.Inc()
		start := time.Now()

		sw := &statusWriter{ResponseWriter: w, code: 200}
		next.ServeHTTP(sw, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(sw.code)

		httpRequestDuration.WithLabelValues(method, path, status).Observe(duration)
		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpInFlight.Dec()
	})
}

// CanonicalPath keeps metric label cardinality bounded: the route table is
// fixed, so anything outside it collapses to "other".
func CanonicalPath(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	switch path {
	case "", "/":
		return "/"
	case "/healthz", "/readyz", "/metrics",
		"/auth/register", "/auth/login", "/auth/me",
		"/request/send", "/request/history",
		"/request/history/update", "/request/history/delete":
		return path
	}
	return "other"
}

// statusWriter captures the response code for metrics.
type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}
