package ledger

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	accountsImported = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "thorindexor_ledger_accounts_imported_total",
			Help: "Total number of accounts initialized from the node state",
		},
		[]string{"indexer"},
	)

	accountsTouched = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "thorindexor_ledger_accounts_per_block",
			Help:    "Number of accounts changed by a block",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		},
		[]string{"indexer"},
	)
)

func AccountsImportedInc(indexer string) {
	accountsImported.WithLabelValues(indexer).Inc()
}

func AccountsTouchedObserve(indexer string, n int) {
	accountsTouched.WithLabelValues(indexer).Observe(float64(n))
}
