package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Operation names used as label values.
const (
	OperationList     = "list"
	OperationMarkRead = "mark_read"
)

var (
	Requests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "merchant_notification_requests_total",
			Help: "Total number of notification operations by result",
		},
		[]string{"operation", "result"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "merchant_notification_request_duration_seconds",
			Help:    "Duration of notification operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	ReadConflicts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "merchant_notification_read_conflicts_total",
			Help: "Number of mark-read writes rejected by the revision guard",
		},
	)

	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "merchant_notification_cache_total",
			Help: "Candidate cache lookups by result",
		},
		[]string{"result"},
	)
)

// Observe records the outcome and latency of one operation.
func Observe(operation string, start time.Time, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	Requests.WithLabelValues(operation, result).Inc()
	RequestDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
