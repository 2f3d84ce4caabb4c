package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Reservation attempt outcomes.
const (
	OutcomeConfirmed   = "confirmed"
	OutcomeSoldOut     = "sold_out"
	OutcomeRateLimited = "rate_limited"
	OutcomeDailyCap    = "daily_cap"
	OutcomeRejected    = "rejected"
	OutcomeError       = "error"
)

// ReservationMetrics tracks the outcomes of reservation submissions and
// cancellations.
type ReservationMetrics struct {
	attempts      *prometheus.CounterVec
	cancellations prometheus.Counter
	lockWaits     prometheus.Histogram
}

// NewReservationMetrics registers the reservation metrics on the provided
// registerer.
func NewReservationMetrics(reg prometheus.Registerer) *ReservationMetrics {
	if reg == nil {
		return &ReservationMetrics{}
	}
	attempts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "reservation_attempts_total",
		Help: "Reservation submissions by outcome.",
	}, []string{"outcome"})
	cancellations := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "reservation_cancellations_total",
		Help: "Successful reservation cancellations.",
	})
	lockWaits := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "reservation_lock_wait_seconds",
		Help:    "Time spent waiting on the item row lock during submission.",
		Buckets: prometheus.DefBuckets,
	})
	reg.MustRegister(attempts, cancellations, lockWaits)
	return &ReservationMetrics{
		attempts:      attempts,
		cancellations: cancellations,
		lockWaits:     lockWaits,
	}
}

// IncAttempt records a reservation submission with the given outcome.
func (r *ReservationMetrics) IncAttempt(outcome string) {
	if r == nil || r.attempts == nil {
		return
	}
	if outcome == "" {
		outcome = OutcomeError
	}
	r.attempts.WithLabelValues(outcome).Inc()
}

// IncCancellation records a successful cancellation.
func (r *ReservationMetrics) IncCancellation() {
	if r == nil || r.cancellations == nil {
		return
	}
	r.cancellations.Inc()
}

// ObserveLockWait records how long a submission waited for the item lock.
func (r *ReservationMetrics) ObserveLockWait(seconds float64) {
	if r == nil || r.lockWaits == nil {
		return
	}
	r.lockWaits.Observe(seconds)
}
