// Package metrics exposes Prometheus collectors for the client's request
// and cache activity.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds the client-specific collectors. Embedding applications can
// merge it into their own registry.
var Registry = prometheus.NewRegistry()

var (
	apiRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "conecta",
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Total number of API requests issued.",
		},
		[]string{"method", "path", "status"},
	)

	apiDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "conecta",
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "Duration of API requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)

	cacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "conecta",
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Query cache lookups by outcome (hit, stale, miss).",
		},
		[]string{"resource", "outcome"},
	)

	cacheInvalidations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "conecta",
			Subsystem: "cache",
			Name:      "invalidations_total",
			Help:      "Cache invalidations by resource.",
		},
		[]string{"resource"},
	)

	droppedResponses = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "conecta",
			Subsystem: "cache",
			Name:      "dropped_responses_total",
			Help:      "Out-of-order or post-cancellation responses discarded.",
		},
	)
)

func init() {
	Registry.MustRegister(apiRequests, apiDuration, cacheLookups, cacheInvalidations, droppedResponses)
}

// ObserveRequest records one API request. A status of 0 means the request
// never produced a response.
func ObserveRequest(method, path string, status int, d time.Duration) {
	apiRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	apiDuration.WithLabelValues(method, path).Observe(d.Seconds())
}

// ObserveLookup records a cache lookup outcome: "hit", "stale" or "miss".
func ObserveLookup(resource, outcome string) {
	cacheLookups.WithLabelValues(resource, outcome).Inc()
}

// ObserveInvalidation records an invalidation pass over a resource.
func ObserveInvalidation(resource string) {
	cacheInvalidations.WithLabelValues(resource).Inc()
}

// ObserveDroppedResponse records a discarded late response.
func ObserveDroppedResponse() {
	droppedResponses.Inc()
}
