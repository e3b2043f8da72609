package thor

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "thorindexor_thor_requests_total",
			Help: "Total number of Thor REST requests by operation",
		},
		[]string{"operation"},
	)

	requestErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "thorindexor_thor_errors_total",
			Help: "Total number of Thor REST errors by operation and type",
		},
		[]string{"operation", "error_type"},
	)

	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "thorindexor_thor_request_duration_seconds",
			Help:    "Duration of Thor REST requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	retries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "thorindexor_thor_retries_total",
			Help: "Total number of retried Thor REST requests by operation",
		},
		[]string{"operation"},
	)
)

func RequestInc(operation string) {
	requests.WithLabelValues(operation).Inc()
}

func RequestDuration(operation string, duration time.Duration) {
	requestDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

func RequestError(operation, errorType string) {
	requestErrors.WithLabelValues(operation, errorType).Inc()
}

func RetryInc(operation string) {
	retries.WithLabelValues(operation).Inc()
}
