package nm

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// metrics are the naming server's Prometheus instruments, registered once at
// package init against the default registry so the admin API's /metrics
// handler (promhttp.Handler) picks them up with no further wiring.
var metrics = struct {
	requestsTotal *prometheus.CounterVec
	cacheHits     prometheus.Counter
	cacheMisses   prometheus.Counter
	activeSS      prometheus.Gauge
}{
	requestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "distfs_nm_requests_total",
		Help: "Total client requests handled by the naming server, by type and outcome.",
	}, []string{"type", "outcome"}),
	cacheHits: promauto.NewCounter(prometheus.CounterOpts{
		Name: "distfs_nm_index_cache_hits_total",
		Help: "File index LRU cache hits.",
	}),
	cacheMisses: promauto.NewCounter(prometheus.CounterOpts{
		Name: "distfs_nm_index_cache_misses_total",
		Help: "File index LRU cache misses (trie or linear-scan fallback used).",
	}),
	activeSS: promauto.NewGauge(prometheus.GaugeOpts{
		Name: "distfs_nm_active_storage_servers",
		Help: "Number of registered, active storage servers.",
	}),
}
