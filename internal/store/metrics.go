package store

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	snapshotsSaved = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "thorindexor_snapshots_saved_total",
			Help: "Total number of block snapshots saved by indexer",
		},
		[]string{"indexer"},
	)

	snapshotsPruned = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "thorindexor_snapshots_pruned_total",
			Help: "Total number of block snapshots pruned outside the reversible window by indexer",
		},
		[]string{"indexer"},
	)
)

func SnapshotsSavedInc(indexer string) {
	snapshotsSaved.WithLabelValues(indexer).Inc()
}

func SnapshotsPrunedAdd(indexer string, n int64) {
	snapshotsPruned.WithLabelValues(indexer).Add(float64(n))
}
