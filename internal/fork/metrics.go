package fork

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	forksResolved = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "thorindexor_forks_resolved_total",
			Help: "Total number of forks resolved to a common ancestor",
		},
	)

	forkDepth = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "thorindexor_fork_depth_blocks",
			Help:    "Length of the abandoned branch of resolved forks",
			Buckets: []float64{0, 1, 2, 3, 5, 8, 12, 20, 50, 100},
		},
	)

	forkLastResolved = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "thorindexor_fork_last_resolved_timestamp",
			Help: "Unix timestamp of the last resolved fork",
		},
	)

	forkDepthExceeded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "thorindexor_fork_depth_exceeded_total",
			Help: "Total number of forks deeper than the reversible window",
		},
	)
)

func ForkResolvedLog(branchLen int) {
	forksResolved.Inc()
	forkDepth.Observe(float64(branchLen))
	forkLastResolved.Set(float64(time.Now().UTC().Unix()))
}

func DepthExceededInc() {
	forkDepthExceeded.Inc()
}
