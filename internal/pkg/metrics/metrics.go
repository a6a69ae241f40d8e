// internal/pkg/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ReservationsTotal tracks reservation results by status (ACCEPTED, REJECTED, INVALID).
	ReservationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "purchase_reservations_total",
			Help: "Total number of purchase reservation attempts",
		},
		[]string{"status"},
	)

	// SettlementsTotal tracks settlement outcomes (SUCCESS, FAILURE).
	SettlementsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "purchase_settlements_total",
			Help: "Total number of settled purchases",
		},
		[]string{"outcome"},
	)

	// DuplicateSettlements counts redelivered settlement updates that were
	// skipped by the idempotency marker.
	DuplicateSettlements = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "purchase_duplicate_settlements_total",
			Help: "Total number of settlement updates skipped as already applied",
		},
	)

	// SettlementDuration tracks end-to-end settlement processing time.
	SettlementDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "purchase_settlement_duration_seconds",
			Help:    "Settlement processing duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)
)
