package reservations

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/kigurumiya/reserve-backend/internal/availability"
)

// AvailabilityCounter adapts the repository to the counter shape the
// availability service consumes.
type AvailabilityCounter struct {
	repo Repository
}

// NewAvailabilityCounter wraps a repository for the availability service.
func NewAvailabilityCounter(repo Repository) AvailabilityCounter {
	return AvailabilityCounter{repo: repo}
}

func (c AvailabilityCounter) CountActiveByItemAndDate(ctx context.Context, itemID uuid.UUID, date time.Time) (int64, error) {
	return c.repo.CountActiveByItemAndDate(ctx, itemID, date)
}

func (c AvailabilityCounter) ActiveSlotCounts(ctx context.Context, from, to time.Time) ([]availability.SlotCount, error) {
	counts, err := c.repo.ActiveSlotCounts(ctx, from, to)
	if err != nil {
		return nil, err
	}
	out := make([]availability.SlotCount, 0, len(counts))
	for _, c := range counts {
		out = append(out, availability.SlotCount{ItemID: c.ItemID, Date: c.Date, Count: c.Count})
	}
	return out, nil
}
