package headercache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "thorindexor_header_cache_hits_total",
			Help: "Total number of block headers served from the header cache",
		},
	)

	cacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "thorindexor_header_cache_misses_total",
			Help: "Total number of block headers fetched from the node",
		},
	)
)
