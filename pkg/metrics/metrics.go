// Package metrics holds the HTTP RED collectors of the character browser and
// documents the full metric catalogue. Component metrics are defined in their
// own packages (client, cache) to keep them next to the code that records
// them and to avoid import cycles.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the Prometheus registerer all collectors are registered with.
var Registry = prometheus.DefaultRegisterer

var (
	// HTTPRequests counts served requests by route pattern, method and status.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "character_browser_http_requests_total",
		Help: "Total number of HTTP requests served",
	}, []string{"route", "method", "status"})

	// HTTPDuration tracks request latency by route pattern, method and status.
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "character_browser_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method", "status"})
)

// Handler serves the default gatherer in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware records RED metrics for every request. Routes are labelled with
// their chi pattern (/page/{page}) rather than the raw path to bound label
// cardinality; unmatched requests are labelled "unmatched".
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		code := strconv.Itoa(status)

		HTTPDuration.WithLabelValues(route, r.Method, code).Observe(time.Since(start).Seconds())
		HTTPRequests.WithLabelValues(route, r.Method, code).Inc()
	})
}

// Metrics Documentation
//
// HTTP Metrics (pkg/metrics):
//   - character_browser_http_requests_total{route, method, status} (Counter)
//   - character_browser_http_request_duration_seconds{route, method, status} (Histogram)
//
// Query Cache Metrics (pkg/cache):
//   - character_cache_hits_total{layer} (Counter): hits by layer (memory, redis)
//   - character_cache_misses_total{layer} (Counter): misses by layer
//   - character_cache_inflight_joins_total (Counter): callers that joined an in-flight load
//   - character_cache_prefetches_total{outcome} (Counter): ok, error, skipped
//   - character_cache_entries{status} (Gauge): entries by status (loading, error, ready)
//   - character_cache_errors_total{operation} (Counter): Redis store errors (get, set, delete)
//
// Upstream Metrics (pkg/client):
//   - graphql_requests_total{operation, status} (Counter)
//   - graphql_request_duration_seconds{operation} (Histogram)
//   - graphql_errors_total{class} (Counter): network, client, server, graphql, decode
//
// Example Prometheus Queries:
//
//   # Memory cache hit rate
//   sum(rate(character_cache_hits_total{layer="memory"}[5m])) /
//   (sum(rate(character_cache_hits_total{layer="memory"}[5m])) + sum(rate(character_cache_misses_total{layer="memory"}[5m])))
//
//   # Prefetch failure rate
//   rate(character_cache_prefetches_total{outcome="error"}[5m])
//
//   # P95 upstream latency
//   histogram_quantile(0.95, rate(graphql_request_duration_seconds_bucket[5m]))
//
//   # Pages served per route
//   sum by (route) (rate(character_browser_http_requests_total[5m]))
