// Package metrics holds the process-wide Prometheus collectors of the indexing engine
// and the HTTP server exposing them.
package metrics

import (
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "thorindexor"

var (
	HeadBlock = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace, Name: "head_block",
		Help: "Number of the last block committed by the indexer.",
	}, []string{"indexer"})

	BlocksProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Name: "blocks_processed_total",
		Help: "Blocks applied, by processing mode.",
	}, []string{"indexer", "mode"})

	RowsIndexed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Name: "rows_indexed_total",
		Help: "Rows inserted by the indexer.",
	}, []string{"indexer"})

	BatchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace, Name: "batch_duration_seconds",
		Help:    "Time to apply and commit one batch of blocks.",
		Buckets: prometheus.ExponentialBuckets(0.005, 2, 14),
	}, []string{"indexer", "mode"})

	BlocksPerSecond = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace, Name: "blocks_per_second",
		Help: "Throughput of the last committed batch.",
	}, []string{"indexer"})

	Rollbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "fork", Name: "rollbacks_total",
		Help: "Rollbacks to a fork ancestor.",
	}, []string{"indexer"})

	BlocksReverted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "fork", Name: "blocks_reverted_total",
		Help: "Block snapshots reverted during rollbacks.",
	}, []string{"indexer"})

	Errors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Name: "errors_total",
		Help: "Processing errors, by severity (transient or fatal).",
	}, []string{"component", "severity"})

	ComponentHealth = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace, Name: "component_healthy",
		Help: "1 while the component makes progress, 0 after its last attempt failed.",
	}, []string{"component"})

	Uptime = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace, Subsystem: "process", Name: "uptime_seconds",
		Help: "Seconds since the process started.",
	})

	Goroutines = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace, Subsystem: "process", Name: "goroutines",
		Help: "Live goroutines.",
	})

	MemoryUsage = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace, Subsystem: "process", Name: "memory_bytes",
		Help: "Go runtime memory, by kind (alloc, sys, heap_inuse).",
	}, []string{"kind"})

	started = time.Now()
)

func HeadBlockSet(indexer string, number uint32) {
	HeadBlock.WithLabelValues(indexer).Set(float64(number))
}

// BatchLog records a committed batch of blocks blocks long that inserted rows rows.
func BatchLog(indexer, mode string, blocks uint32, rows int, took time.Duration) {
	BlocksProcessed.WithLabelValues(indexer, mode).Add(float64(blocks))
	RowsIndexed.WithLabelValues(indexer).Add(float64(rows))
	BatchDuration.WithLabelValues(indexer, mode).Observe(took.Seconds())

	if secs := took.Seconds(); secs > 0 {
		BlocksPerSecond.WithLabelValues(indexer).Set(float64(blocks) / secs)
	}
}

func RollbackLog(indexer string, reverted int) {
	Rollbacks.WithLabelValues(indexer).Inc()
	BlocksReverted.WithLabelValues(indexer).Add(float64(reverted))
}

func ErrorInc(component, severity string) { Errors.WithLabelValues(component, severity).Inc() }

func ComponentHealthSet(component string, healthy bool) {
	var v float64
	if healthy {
		v = 1
	}
	ComponentHealth.WithLabelValues(component).Set(v)
}

// UpdateSystemMetrics samples the Go runtime.
func UpdateSystemMetrics() {
	Uptime.Set(time.Since(started).Seconds())
	Goroutines.Set(float64(runtime.NumGoroutine()))

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	for kind, v := range map[string]uint64{"alloc": ms.Alloc, "sys": ms.Sys, "heap_inuse": ms.HeapInuse} {
		MemoryUsage.WithLabelValues(kind).Set(float64(v))
	}
}
