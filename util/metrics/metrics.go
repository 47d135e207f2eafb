package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ReservationOps counts reservation-engine outcomes, labeled by operation
// (reserve, unreserve, give, take) and result (ok, conflict, forbidden,
// not_found, error).
var ReservationOps = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "library_reservation_ops_total",
	Help: "Reservation engine outcomes by operation and result.",
}, []string{"op", "result"})
