package watcher

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	bestBlock = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "thorindexor_watcher_best_block",
			Help: "Number of the best block seen by the chain watcher",
		},
	)

	headsNotified = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "thorindexor_watcher_heads_total",
			Help: "Total number of new trunk heads notified",
		},
	)

	forksNotified = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "thorindexor_watcher_forks_total",
			Help: "Total number of forks notified",
		},
	)

	forkBranchLength = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "thorindexor_watcher_fork_branch_blocks",
			Help:    "Number of abandoned blocks per fork",
			Buckets: []float64{1, 2, 3, 5, 8, 12, 20, 50},
		},
	)

	notifyErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "thorindexor_watcher_notify_errors_total",
			Help: "Total number of failed notifier deliveries",
		},
		[]string{"event"},
	)
)

func NewHeadsLog(best uint32, count int) {
	bestBlock.Set(float64(best))
	headsNotified.Add(float64(count))
}

func ForkLog(best uint32, branchLen int) {
	bestBlock.Set(float64(best))
	forksNotified.Inc()
	forkBranchLength.Observe(float64(branchLen))
}

func NotifyErrorInc(event string) {
	notifyErrors.WithLabelValues(event).Inc()
}
