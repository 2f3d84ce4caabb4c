package availability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kigurumiya/reserve-backend/pkg/db/models"
	"github.com/kigurumiya/reserve-backend/pkg/enums"
	pkgerrors "github.com/kigurumiya/reserve-backend/pkg/errors"
	"github.com/kigurumiya/reserve-backend/pkg/types"
)

// SlotCount is the number of active reservations for one (item, date) pair.
type SlotCount struct {
	ItemID uuid.UUID
	Date   time.Time
	Count  int64
}

type itemSource interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.RentalItem, error)
	List(ctx context.Context, includeInactive bool) ([]models.RentalItem, error)
}

type overrideSource interface {
	FindByItemAndDate(ctx context.Context, itemID uuid.UUID, date time.Time) (*models.CalendarOverride, error)
	ListByItemBetween(ctx context.Context, itemID uuid.UUID, from, to time.Time) ([]models.CalendarOverride, error)
	ListBetween(ctx context.Context, from, to time.Time) ([]models.CalendarOverride, error)
}

type activeCounter interface {
	CountActiveByItemAndDate(ctx context.Context, itemID uuid.UUID, date time.Time) (int64, error)
	ActiveSlotCounts(ctx context.Context, from, to time.Time) ([]SlotCount, error)
}

// DayView is one calendar cell.
type DayView struct {
	Date       string                   `json:"date"`
	Status     enums.AvailabilityStatus `json:"status"`
	Reservable bool                     `json:"reservable"`
}

// MonthView is a full calendar month for one item or the merged view.
type MonthView struct {
	Month string    `json:"month"`
	Days  []DayView `json:"days"`
}

// Service answers availability questions for the public endpoints. All
// answers are advisory; the booking transaction re-checks under lock.
type Service interface {
	Check(ctx context.Context, itemID uuid.UUID, date time.Time) (*Verdict, error)
	MonthGrid(ctx context.Context, itemID uuid.UUID, month time.Time) (*MonthView, error)
	DisabledDates(ctx context.Context, itemID uuid.UUID, month time.Time) ([]string, error)
	MergedMonthGrid(ctx context.Context, month time.Time) (*MonthView, error)
}

type service struct {
	items     itemSource
	overrides overrideSource
	counts    activeCounter
	rules     Rules
	now       func() time.Time
}

// NewService builds the availability service.
func NewService(items itemSource, overrides overrideSource, counts activeCounter, rules Rules) (Service, error) {
	if items == nil {
		return nil, fmt.Errorf("item source required")
	}
	if overrides == nil {
		return nil, fmt.Errorf("override source required")
	}
	if counts == nil {
		return nil, fmt.Errorf("active counter required")
	}
	return &service{
		items:     items,
		overrides: overrides,
		counts:    counts,
		rules:     rules,
		now:       time.Now,
	}, nil
}

func (s *service) Check(ctx context.Context, itemID uuid.UUID, date time.Time) (*Verdict, error) {
	if itemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id required")
	}
	item, err := s.items.FindByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load rental item")
	}

	date = types.NormalizeDate(date)
	count, err := s.counts.CountActiveByItemAndDate(ctx, itemID, date)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count active reservations")
	}

	var override *bool
	if row, err := s.overrides.FindByItemAndDate(ctx, itemID, date); err == nil {
		override = &row.IsAvailable
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load calendar override")
	}

	verdict := Evaluate(s.now(), date, ItemSnapshot{
		Active:           item.IsActive,
		TotalStock:       item.TotalStock,
		WarningThreshold: item.WarningThreshold,
		ActiveCount:      count,
	}, override, s.rules)
	return &verdict, nil
}

func (s *service) MonthGrid(ctx context.Context, itemID uuid.UUID, month time.Time) (*MonthView, error) {
	if itemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id required")
	}
	item, err := s.items.FindByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load rental item")
	}

	first, last := monthBounds(month)
	overrides, err := s.overrides.ListByItemBetween(ctx, itemID, first, last)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list calendar overrides")
	}
	overrideByDate := map[string]bool{}
	for _, o := range overrides {
		overrideByDate[types.FormatDate(o.Date)] = o.IsAvailable
	}

	counts, err := s.counts.ActiveSlotCounts(ctx, first, last)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load active counts")
	}
	countByDate := map[string]int64{}
	for _, c := range counts {
		if c.ItemID == itemID {
			countByDate[types.FormatDate(c.Date)] = c.Count
		}
	}

	asOf := s.now()
	view := &MonthView{Month: first.Format("2006-01")}
	for day := first; !day.After(last); day = day.AddDate(0, 0, 1) {
		key := types.FormatDate(day)
		var override *bool
		if v, ok := overrideByDate[key]; ok {
			override = &v
		}
		verdict := Evaluate(asOf, day, ItemSnapshot{
			Active:           item.IsActive,
			TotalStock:       item.TotalStock,
			WarningThreshold: item.WarningThreshold,
			ActiveCount:      countByDate[key],
		}, override, s.rules)
		view.Days = append(view.Days, DayView{
			Date:       key,
			Status:     verdict.Status,
			Reservable: verdict.Reservable,
		})
	}
	return view, nil
}

func (s *service) DisabledDates(ctx context.Context, itemID uuid.UUID, month time.Time) ([]string, error) {
	grid, err := s.MonthGrid(ctx, itemID, month)
	if err != nil {
		return nil, err
	}
	disabled := []string{}
	for _, day := range grid.Days {
		if !day.Reservable {
			disabled = append(disabled, day.Date)
		}
	}
	return disabled, nil
}

func (s *service) MergedMonthGrid(ctx context.Context, month time.Time) (*MonthView, error) {
	items, err := s.items.List(ctx, false)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list rental items")
	}

	first, last := monthBounds(month)
	overrides, err := s.overrides.ListBetween(ctx, first, last)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list calendar overrides")
	}
	overrideByKey := map[string]bool{}
	for _, o := range overrides {
		overrideByKey[o.ItemID.String()+"|"+types.FormatDate(o.Date)] = o.IsAvailable
	}

	counts, err := s.counts.ActiveSlotCounts(ctx, first, last)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load active counts")
	}
	countByKey := map[string]int64{}
	for _, c := range counts {
		countByKey[c.ItemID.String()+"|"+types.FormatDate(c.Date)] = c.Count
	}

	asOf := s.now()
	view := &MonthView{Month: first.Format("2006-01")}
	for day := first; !day.After(last); day = day.AddDate(0, 0, 1) {
		dateKey := types.FormatDate(day)
		best := DayView{Date: dateKey, Status: enums.AvailabilityStatusPast}
		if len(items) == 0 {
			best.Status = enums.AvailabilityStatusClosed
		}
		for i := range items {
			item := items[i]
			key := item.ID.String() + "|" + dateKey
			var override *bool
			if v, ok := overrideByKey[key]; ok {
				override = &v
			}
			verdict := Evaluate(asOf, day, ItemSnapshot{
				Active:           item.IsActive,
				TotalStock:       item.TotalStock,
				WarningThreshold: item.WarningThreshold,
				ActiveCount:      countByKey[key],
			}, override, s.rules)
			best.Status = enums.BetterAvailability(best.Status, verdict.Status)
			if verdict.Reservable {
				best.Reservable = true
			}
		}
		view.Days = append(view.Days, best)
	}
	return view, nil
}

func monthBounds(month time.Time) (time.Time, time.Time) {
	first := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	return first, last
}
