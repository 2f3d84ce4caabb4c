package cron

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kigurumiya/reserve-backend/internal/reservations"
	"github.com/kigurumiya/reserve-backend/pkg/db/models"
	"github.com/kigurumiya/reserve-backend/pkg/logger"
	"github.com/kigurumiya/reserve-backend/pkg/types"
)

type slotCounter interface {
	ActiveSlotCounts(ctx context.Context, from, to time.Time) ([]reservations.SlotCount, error)
}

type itemLister interface {
	List(ctx context.Context, includeInactive bool) ([]models.RentalItem, error)
}

type overrideStore interface {
	FindByItemAndDate(ctx context.Context, itemID uuid.UUID, date time.Time) (*models.CalendarOverride, error)
	Upsert(ctx context.Context, override *models.CalendarOverride) (*models.CalendarOverride, error)
}

// CalendarSyncJobParams configure the legacy calendar reconciliation job.
type CalendarSyncJobParams struct {
	Logger       *logger.Logger
	Reservations slotCounter
	Items        itemLister
	Overrides    overrideStore
	WindowDays   int
}

// NewCalendarSyncJob builds the job that backfills closed-date overrides for
// fully booked slots inside the booking window. The booking and cancellation
// paths keep the overrides current on their own; this job repairs drift after
// manual data fixes. It only closes dates, an override it did not write may be
// a manual closure and is never reopened here.
func NewCalendarSyncJob(params CalendarSyncJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Reservations == nil {
		return nil, fmt.Errorf("reservations repository required")
	}
	if params.Items == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	if params.Overrides == nil {
		return nil, fmt.Errorf("calendar repository required")
	}
	windowDays := params.WindowDays
	if windowDays <= 0 {
		windowDays = 90
	}
	return &calendarSyncJob{
		logg:         params.Logger,
		reservations: params.Reservations,
		items:        params.Items,
		overrides:    params.Overrides,
		windowDays:   windowDays,
		now:          time.Now,
	}, nil
}

type calendarSyncJob struct {
	logg         *logger.Logger
	reservations slotCounter
	items        itemLister
	overrides    overrideStore
	windowDays   int
	now          func() time.Time
}

func (j *calendarSyncJob) Name() string { return "calendar-sync" }

func (j *calendarSyncJob) Run(ctx context.Context) error {
	from := types.NormalizeDate(j.now().UTC())
	to := from.AddDate(0, 0, j.windowDays)

	items, err := j.items.List(ctx, true)
	if err != nil {
		return fmt.Errorf("list rental items: %w", err)
	}
	stockByItem := make(map[uuid.UUID]int, len(items))
	for _, item := range items {
		stockByItem[item.ID] = item.TotalStock
	}

	counts, err := j.reservations.ActiveSlotCounts(ctx, from, to)
	if err != nil {
		return fmt.Errorf("count active reservations: %w", err)
	}

	closed := 0
	for _, slot := range counts {
		stock, ok := stockByItem[slot.ItemID]
		if !ok || stock <= 0 || slot.Count < int64(stock) {
			continue
		}
		wrote, err := j.ensureClosed(ctx, slot.ItemID, slot.Date)
		if err != nil {
			return err
		}
		if wrote {
			closed++
		}
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"slots_checked": len(counts),
		"slots_closed":  closed,
	})
	j.logg.Info(logCtx, "calendar sync loop complete")
	return nil
}

func (j *calendarSyncJob) ensureClosed(ctx context.Context, itemID uuid.UUID, date time.Time) (bool, error) {
	existing, err := j.overrides.FindByItemAndDate(ctx, itemID, date)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, fmt.Errorf("read calendar override: %w", err)
	}
	if existing != nil && !existing.IsAvailable {
		return false, nil
	}
	_, err = j.overrides.Upsert(ctx, &models.CalendarOverride{
		ItemID:      itemID,
		Date:        date,
		IsAvailable: false,
	})
	if err != nil {
		return false, fmt.Errorf("close calendar override: %w", err)
	}
	return true, nil
}
