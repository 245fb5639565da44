package ss

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var metrics = struct {
	requestsTotal  *prometheus.CounterVec
	activeLocks    prometheus.Gauge
	checkpointsMax prometheus.Counter
}{
	requestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "distfs_ss_requests_total",
		Help: "Total client-facing and NM-facing requests handled by this storage server, by type and outcome.",
	}, []string{"type", "outcome"}),
	activeLocks: promauto.NewGauge(prometheus.GaugeOpts{
		Name: "distfs_ss_active_write_locks",
		Help: "Number of files currently holding an exclusive write lock.",
	}),
	checkpointsMax: promauto.NewCounter(prometheus.CounterOpts{
		Name: "distfs_ss_checkpoint_capacity_rejections_total",
		Help: "CHECKPOINT requests rejected because a file already holds the maximum number of checkpoints.",
	}),
}
