package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AvailabilityRequests counts availability queries by variant (slot, live)
	AvailabilityRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "booking_availability_requests_total",
		Help: "Number of staff availability queries served.",
	}, []string{"variant"})

	// BookingsCreated counts successfully committed bookings
	BookingsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "booking_created_total",
		Help: "Number of bookings committed to the store.",
	})

	// BookingConflicts counts bookings rejected with a scheduling conflict
	BookingConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "booking_conflicts_total",
		Help: "Number of bookings rejected because the slot was taken.",
	})

	// LegacyForwardFailures counts failed fire-and-forget forwards to the legacy CRM
	LegacyForwardFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "booking_legacy_forward_failures_total",
		Help: "Number of booking forwards to the legacy CRM that failed.",
	})
)
