package availability

import (
	"time"

	"github.com/kigurumiya/reserve-backend/pkg/config"
	"github.com/kigurumiya/reserve-backend/pkg/enums"
	"github.com/kigurumiya/reserve-backend/pkg/types"
)

// Rules are the business-calendar inputs of the evaluator. They arrive as
// an explicit value, never read from ambient state, so the same evaluator
// run can be replayed inside a transaction.
type Rules struct {
	MinAdvanceDays int
	MaxAdvanceDays int
	ClosedWeekdays []time.Weekday
}

// RulesFromConfig builds evaluator rules from the reservation config.
func RulesFromConfig(cfg config.ReservationConfig) Rules {
	return Rules{
		MinAdvanceDays: cfg.MinAdvanceDays,
		MaxAdvanceDays: cfg.MaxAdvanceDays,
		ClosedWeekdays: cfg.ClosedWeekdaySet(),
	}
}

// TooSoon reports whether date violates the minimum advance notice as of asOf.
func (r Rules) TooSoon(asOf, date time.Time) bool {
	today := types.NormalizeDate(asOf)
	return types.NormalizeDate(date).Before(today.AddDate(0, 0, r.MinAdvanceDays))
}

// TooFar reports whether date lies beyond the maximum booking horizon as of asOf.
func (r Rules) TooFar(asOf, date time.Time) bool {
	today := types.NormalizeDate(asOf)
	return types.NormalizeDate(date).After(today.AddDate(0, 0, r.MaxAdvanceDays))
}

// IsBlackout reports whether bookings are closed on date's weekday.
func (r Rules) IsBlackout(date time.Time) bool {
	for _, closed := range r.ClosedWeekdays {
		if closed == date.Weekday() {
			return true
		}
	}
	return false
}

// ItemSnapshot is the point-in-time state of one rental item for one date.
type ItemSnapshot struct {
	Active           bool
	TotalStock       int
	WarningThreshold int
	ActiveCount      int64
}

// Remaining is the stock still bookable for the snapshot.
func (s ItemSnapshot) Remaining() int {
	remaining := s.TotalStock - int(s.ActiveCount)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Verdict is the evaluator output for one (item, date) pair.
type Verdict struct {
	Reservable bool
	Status     enums.AvailabilityStatus
	Remaining  int
}

// Evaluate decides whether a date is reservable for an item. Callers pass
// the same inputs for UI display and for the in-transaction re-check; the
// function itself has no side effects and reads no globals.
//
// An override of false forces closed regardless of stock. An override of
// true cannot resurrect exhausted stock.
func Evaluate(asOf, date time.Time, item ItemSnapshot, override *bool, rules Rules) Verdict {
	today := types.NormalizeDate(asOf)
	target := types.NormalizeDate(date)
	remaining := item.Remaining()

	if rules.TooSoon(today, target) {
		return Verdict{Status: enums.AvailabilityStatusPast, Remaining: remaining}
	}
	if rules.TooFar(today, target) {
		return Verdict{Status: enums.AvailabilityStatusClosed, Remaining: remaining}
	}
	if rules.IsBlackout(target) {
		return Verdict{Status: enums.AvailabilityStatusBlackout, Remaining: remaining}
	}

	// An override only ever restricts: false forces closed, true changes
	// nothing the stock maths did not already allow.
	status := stockStatus(item, remaining)
	if override != nil && !*override {
		return Verdict{Status: enums.AvailabilityStatusClosed, Remaining: remaining}
	}

	reservable := status == enums.AvailabilityStatusOpen || status == enums.AvailabilityStatusLow
	return Verdict{Reservable: reservable, Status: status, Remaining: remaining}
}

func stockStatus(item ItemSnapshot, remaining int) enums.AvailabilityStatus {
	if !item.Active || remaining == 0 {
		return enums.AvailabilityStatusClosed
	}
	if remaining <= item.WarningThreshold {
		return enums.AvailabilityStatusLow
	}
	return enums.AvailabilityStatusOpen
}
