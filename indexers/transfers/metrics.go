package transfers

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	tracesFetched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "thorindexor_transfers_traces_total",
			Help: "Total number of clause traces fetched to order outputs",
		},
		[]string{"indexer"},
	)

	orderFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "thorindexor_transfers_order_fallbacks_total",
			Help: "Total number of clauses recorded in array order after a failed reconciliation",
		},
		[]string{"indexer"},
	)
)

func TracesInc(indexer string) {
	tracesFetched.WithLabelValues(indexer).Inc()
}

func OrderFallbackInc(indexer string) {
	orderFallbacks.WithLabelValues(indexer).Inc()
}
