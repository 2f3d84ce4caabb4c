package enums

import "fmt"

// AvailabilityStatus is the per-day availability verdict shown on calendars.
type AvailabilityStatus string

const (
	AvailabilityStatusOpen     AvailabilityStatus = "open"
	AvailabilityStatusLow      AvailabilityStatus = "low"
	AvailabilityStatusClosed   AvailabilityStatus = "closed"
	AvailabilityStatusBlackout AvailabilityStatus = "blackout"
	AvailabilityStatusPast     AvailabilityStatus = "past"
)

var validAvailabilityStatuses = []AvailabilityStatus{
	AvailabilityStatusOpen,
	AvailabilityStatusLow,
	AvailabilityStatusClosed,
	AvailabilityStatusBlackout,
	AvailabilityStatusPast,
}

// availabilityPrecedence orders statuses for merged multi-item views.
// Lower rank wins when surfacing the best status across items.
var availabilityPrecedence = map[AvailabilityStatus]int{
	AvailabilityStatusOpen:     0,
	AvailabilityStatusLow:      1,
	AvailabilityStatusClosed:   2,
	AvailabilityStatusBlackout: 3,
	AvailabilityStatusPast:     4,
}

// String implements fmt.Stringer.
func (a AvailabilityStatus) String() string {
	return string(a)
}

// IsValid reports whether the value is a known AvailabilityStatus.
func (a AvailabilityStatus) IsValid() bool {
	for _, candidate := range validAvailabilityStatuses {
		if candidate == a {
			return true
		}
	}
	return false
}

// BetterAvailability returns the more available of the two statuses.
func BetterAvailability(a, b AvailabilityStatus) AvailabilityStatus {
	ra, ok := availabilityPrecedence[a]
	if !ok {
		return b
	}
	rb, ok := availabilityPrecedence[b]
	if !ok {
		return a
	}
	if rb < ra {
		return b
	}
	return a
}

// ParseAvailabilityStatus converts raw input into an AvailabilityStatus.
func ParseAvailabilityStatus(value string) (AvailabilityStatus, error) {
	for _, candidate := range validAvailabilityStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid availability status %q", value)
}
