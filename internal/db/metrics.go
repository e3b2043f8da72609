package db

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	maintenancePasses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "thorindexor_maintenance_passes_total",
		Help: "Database maintenance passes by outcome",
	}, []string{"status"})

	maintenanceDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "thorindexor_maintenance_duration_seconds",
		Help:    "Duration of a database maintenance pass",
		Buckets: prometheus.DefBuckets,
	})

	maintenanceLastRun = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "thorindexor_maintenance_last_run_timestamp",
		Help: "Unix timestamp of the last maintenance pass",
	})

	maintenanceReclaimed = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "thorindexor_maintenance_reclaimed_bytes",
		Help: "Bytes reclaimed by the last maintenance pass",
	})

	walCheckpoints = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "thorindexor_wal_checkpoint_total",
		Help: "WAL checkpoints by mode",
	}, []string{"mode"})

	dbSize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "thorindexor_db_size_bytes",
		Help: "Size of the database including its WAL and shared memory files",
	})

	txDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "thorindexor_db_tx_duration_seconds",
		Help:    "Duration of engine transactions from begin to commit or rollback",
		Buckets: prometheus.DefBuckets,
	}, []string{"owner", "status"})
)

func observeMaintenance(r MaintenanceReport, took time.Duration) {
	status := "success"
	if r.LastErr != nil {
		status = "error"
	}

	maintenancePasses.WithLabelValues(status).Inc()
	maintenanceDuration.Observe(took.Seconds())
	maintenanceLastRun.Set(float64(r.LastRun.Unix()))
	maintenanceReclaimed.Set(float64(r.Reclaimed()))
	if r.SizeAfter > 0 {
		dbSize.Set(float64(r.SizeAfter))
	}
}

// TxDurationLog records how long an engine transaction held the database.
func TxDurationLog(owner, status string, duration time.Duration) {
	txDuration.WithLabelValues(owner, status).Observe(duration.Seconds())
}
