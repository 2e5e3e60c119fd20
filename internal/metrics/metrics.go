// Package metrics registers the ledger's Prometheus collectors.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Operation outcomes used as the status label.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

var (
	OperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hostledger_operations_total",
			Help: "Total number of ledger operations by outcome",
		},
		[]string{"operation", "status"},
	)

	OperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hostledger_operation_duration_seconds",
			Help:    "Duration of ledger operations",
			Buckets: []float64{.001, .005, .01, .05, .1, .25, .5, 1, 2},
		},
		[]string{"operation"},
	)

	EntriesWritten = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hostledger_entries_written_total",
			Help: "Total number of ledger entries appended, by kind",
		},
		[]string{"kind"},
	)

	SettlementRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hostledger_settlement_requests_total",
			Help: "Settlement request transitions, by resulting status",
		},
		[]string{"status"},
	)

	EventPublishErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hostledger_event_publish_errors_total",
			Help: "Total number of domain events that failed to publish",
		},
	)
)

// Observe records the outcome and duration of one operation started at start.
func Observe(operation string, start time.Time, err error) {
	status := StatusSuccess
	if err != nil {
		status = StatusError
	}
	OperationsTotal.WithLabelValues(operation, status).Inc()
	OperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
