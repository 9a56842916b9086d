// Package metrics registers the service's prometheus collectors. They are
// served by a dedicated listener, separate from the API port.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scanrole_http_requests_total",
		Help: "HTTP requests served, by path and status.",
	}, []string{"path", "status"})

	RateLimitedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scanrole_rate_limited_total",
		Help: "Requests rejected by the rate limiter.",
	})

	IntrospectionCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scanrole_introspection_cache_hits_total",
		Help: "Token introspections answered from the TTL cache.",
	})

	IntrospectionCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scanrole_introspection_cache_misses_total",
		Help: "Token introspections that called the identity service.",
	})
)

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
