package reservations

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kigurumiya/reserve-backend/pkg/db/models"
	"github.com/kigurumiya/reserve-backend/pkg/enums"
	"github.com/kigurumiya/reserve-backend/pkg/pagination"
)

// Repository defines persistence operations for the reservation ledger.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, reservation *models.Reservation) (*models.Reservation, error)
	FindByCode(ctx context.Context, code string) (*models.Reservation, error)
	CodeExists(ctx context.Context, code string) (bool, error)
	CountActiveByItemAndDate(ctx context.Context, itemID uuid.UUID, date time.Time) (int64, error)
	CountActiveByPhoneAndDate(ctx context.Context, phone string, date time.Time) (int64, error)
	List(ctx context.Context, params pagination.Params, filters ListFilters) (*ReservationList, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.ReservationStatus, cancelledAt *time.Time) error
	MarkCompletedBefore(ctx context.Context, cutoff time.Time) (int64, error)
	ActiveSlotCounts(ctx context.Context, from, to time.Time) ([]SlotCount, error)
}

// SlotCount is the number of active reservations for one (item, date) pair.
type SlotCount struct {
	ItemID uuid.UUID `gorm:"column:item_id"`
	Date   time.Time `gorm:"column:date"`
	Count  int64     `gorm:"column:count"`
}
