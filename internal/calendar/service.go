package calendar

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kigurumiya/reserve-backend/internal/inventory"
	"github.com/kigurumiya/reserve-backend/pkg/db/models"
	pkgerrors "github.com/kigurumiya/reserve-backend/pkg/errors"
	"github.com/kigurumiya/reserve-backend/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type reservationCounter interface {
	CountActiveByItemAndDate(ctx context.Context, tx *gorm.DB, itemID uuid.UUID, date time.Time) (int64, error)
}

// OverrideInput carries a staff calendar decision for one (item, date) pair.
type OverrideInput struct {
	ItemID      uuid.UUID
	Date        time.Time
	IsAvailable bool
	// Force reopens a date even when active reservations already cover the
	// item's full stock.
	Force bool
}

// OverrideView is the API shape of a calendar override.
type OverrideView struct {
	ItemID      uuid.UUID `json:"item_id"`
	Date        string    `json:"date"`
	IsAvailable bool      `json:"is_available"`
}

// Service defines staff operations on the availability calendar.
type Service interface {
	SetOverride(ctx context.Context, input OverrideInput) (*OverrideView, error)
	RemoveOverride(ctx context.Context, itemID uuid.UUID, date time.Time) error
	ListOverrides(ctx context.Context, itemID uuid.UUID, from, to time.Time) ([]OverrideView, error)
}

type service struct {
	repo   Repository
	items  inventory.Repository
	counts reservationCounter
	tx     txRunner
}

// NewService builds the calendar service.
func NewService(repo Repository, items inventory.Repository, counts reservationCounter, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("calendar repository required")
	}
	if items == nil {
		return nil, fmt.Errorf("item locker required")
	}
	if counts == nil {
		return nil, fmt.Errorf("reservation counter required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, items: items, counts: counts, tx: tx}, nil
}

func (s *service) SetOverride(ctx context.Context, input OverrideInput) (*OverrideView, error) {
	if input.ItemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id required")
	}
	if input.Date.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "date required")
	}

	date := types.NormalizeDate(input.Date)
	var view *OverrideView

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		// The item row lock serializes this write against in-flight
		// reservation submissions for the same item.
		item, err := s.items.WithTx(tx).FindByIDForUpdate(ctx, input.ItemID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock rental item")
		}

		// An "available" override cannot resurrect exhausted stock. Refuse
		// unless staff explicitly force it.
		if input.IsAvailable && !input.Force {
			active, err := s.counts.CountActiveByItemAndDate(ctx, tx, input.ItemID, date)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count active reservations")
			}
			if active >= int64(item.TotalStock) {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "stock is already fully booked for that date").
					WithDetails(map[string]any{
						"active_reservations": active,
						"total_stock":         item.TotalStock,
					})
			}
		}

		override := &models.CalendarOverride{
			ItemID:      input.ItemID,
			Date:        date,
			IsAvailable: input.IsAvailable,
		}
		saved, err := s.repo.WithTx(tx).Upsert(ctx, override)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save calendar override")
		}

		view = &OverrideView{
			ItemID:      saved.ItemID,
			Date:        types.FormatDate(saved.Date),
			IsAvailable: saved.IsAvailable,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

func (s *service) RemoveOverride(ctx context.Context, itemID uuid.UUID, date time.Time) error {
	if itemID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "item id required")
	}
	if date.IsZero() {
		return pkgerrors.New(pkgerrors.CodeValidation, "date required")
	}
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		// Same lock discipline as SetOverride: removal changes what
		// concurrent submissions may see for this item.
		if _, err := s.items.WithTx(tx).FindByIDForUpdate(ctx, itemID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock rental item")
		}
		if err := s.repo.WithTx(tx).Delete(ctx, itemID, types.NormalizeDate(date)); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete calendar override")
		}
		return nil
	})
}

func (s *service) ListOverrides(ctx context.Context, itemID uuid.UUID, from, to time.Time) ([]OverrideView, error) {
	if itemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id required")
	}
	overrides, err := s.repo.ListByItemBetween(ctx, itemID, from, to)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list calendar overrides")
	}
	views := make([]OverrideView, 0, len(overrides))
	for _, o := range overrides {
		views = append(views, OverrideView{
			ItemID:      o.ItemID,
			Date:        types.FormatDate(o.Date),
			IsAvailable: o.IsAvailable,
		})
	}
	return views, nil
}
