package calendar

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kigurumiya/reserve-backend/pkg/db/models"
)

// Repository defines persistence operations for calendar overrides.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Upsert(ctx context.Context, override *models.CalendarOverride) (*models.CalendarOverride, error)
	FindByItemAndDate(ctx context.Context, itemID uuid.UUID, date time.Time) (*models.CalendarOverride, error)
	ListByItemBetween(ctx context.Context, itemID uuid.UUID, from, to time.Time) ([]models.CalendarOverride, error)
	ListBetween(ctx context.Context, from, to time.Time) ([]models.CalendarOverride, error)
	Delete(ctx context.Context, itemID uuid.UUID, date time.Time) error
}
