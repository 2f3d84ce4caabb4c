package availability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/kigurumiya/reserve-backend/pkg/enums"
)

func boolPtr(v bool) *bool { return &v }

func TestEvaluate(t *testing.T) {
	// Tuesday.
	asOf := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	rules := Rules{
		MinAdvanceDays: 1,
		MaxAdvanceDays: 90,
		ClosedWeekdays: []time.Weekday{time.Wednesday},
	}
	inStock := ItemSnapshot{Active: true, TotalStock: 3, WarningThreshold: 1}

	tests := []struct {
		name           string
		date           time.Time
		item           ItemSnapshot
		override       *bool
		wantStatus     enums.AvailabilityStatus
		wantReservable bool
	}{
		{
			name:           "open date with stock",
			date:           time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC),
			item:           inStock,
			wantStatus:     enums.AvailabilityStatusOpen,
			wantReservable: true,
		},
		{
			name:       "same day violates minimum advance",
			date:       asOf,
			item:       inStock,
			wantStatus: enums.AvailabilityStatusPast,
		},
		{
			name:       "past date",
			date:       time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC),
			item:       inStock,
			wantStatus: enums.AvailabilityStatusPast,
		},
		{
			name:       "beyond booking horizon",
			date:       time.Date(2026, 12, 15, 0, 0, 0, 0, time.UTC),
			item:       inStock,
			wantStatus: enums.AvailabilityStatusClosed,
		},
		{
			name:       "blackout weekday",
			date:       time.Date(2026, 9, 9, 0, 0, 0, 0, time.UTC),
			item:       inStock,
			wantStatus: enums.AvailabilityStatusBlackout,
		},
		{
			name:           "remaining at threshold reports low",
			date:           time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC),
			item:           ItemSnapshot{Active: true, TotalStock: 3, WarningThreshold: 1, ActiveCount: 2},
			wantStatus:     enums.AvailabilityStatusLow,
			wantReservable: true,
		},
		{
			name:       "fully booked",
			date:       time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC),
			item:       ItemSnapshot{Active: true, TotalStock: 3, WarningThreshold: 1, ActiveCount: 3},
			wantStatus: enums.AvailabilityStatusClosed,
		},
		{
			name:       "inactive item",
			date:       time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC),
			item:       ItemSnapshot{Active: false, TotalStock: 3, WarningThreshold: 1},
			wantStatus: enums.AvailabilityStatusClosed,
		},
		{
			name:       "closed override beats stock",
			date:       time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC),
			item:       inStock,
			override:   boolPtr(false),
			wantStatus: enums.AvailabilityStatusClosed,
		},
		{
			name:       "open override cannot resurrect exhausted stock",
			date:       time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC),
			item:       ItemSnapshot{Active: true, TotalStock: 2, WarningThreshold: 0, ActiveCount: 2},
			override:   boolPtr(true),
			wantStatus: enums.AvailabilityStatusClosed,
		},
		{
			name:           "open override on open date changes nothing",
			date:           time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC),
			item:           inStock,
			override:       boolPtr(true),
			wantStatus:     enums.AvailabilityStatusOpen,
			wantReservable: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			verdict := Evaluate(asOf, tc.date, tc.item, tc.override, rules)
			assert.Equal(t, tc.wantStatus, verdict.Status)
			assert.Equal(t, tc.wantReservable, verdict.Reservable)
		})
	}
}

func TestRemainingNeverNegative(t *testing.T) {
	snapshot := ItemSnapshot{Active: true, TotalStock: 2, ActiveCount: 5}
	assert.Equal(t, 0, snapshot.Remaining())
}

func TestRulesAdvanceWindowBounds(t *testing.T) {
	asOf := time.Date(2026, 9, 1, 23, 50, 0, 0, time.UTC)
	rules := Rules{MinAdvanceDays: 1, MaxAdvanceDays: 90}

	assert.True(t, rules.TooSoon(asOf, time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)))
	assert.False(t, rules.TooSoon(asOf, time.Date(2026, 9, 2, 0, 0, 0, 0, time.UTC)))

	assert.False(t, rules.TooFar(asOf, time.Date(2026, 11, 30, 0, 0, 0, 0, time.UTC)))
	assert.True(t, rules.TooFar(asOf, time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC)))
}
