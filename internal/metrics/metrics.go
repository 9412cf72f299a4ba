package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	InventoryConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "inventory_cas_conflicts_total",
		Help: "Optimistic-lock version conflicts observed on inventory writes.",
	})

	ReleaseFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "inventory_release_failures_total",
		Help: "Seat releases abandoned after exhausting the retry budget.",
	})

	// StuckSettlements counts bookings that will stay PROCESSING forever:
	// scheduling the settlement failed, the booking could not be read back,
	// or the terminal status write failed. Operators alert on this instead
	// of the saga retrying.
	StuckSettlements = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "booking_settlement_stuck_total",
		Help: "Bookings left PROCESSING because scheduling, the settlement lookup or the terminal status write failed.",
	}, []string{"reason"})

	Settlements = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "booking_settlements_total",
		Help: "Settlements resolved, by terminal status.",
	}, []string{"status"})
)
