package inventory

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kigurumiya/reserve-backend/pkg/db/models"
)

// Repository defines persistence operations for rental items.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, item *models.RentalItem) (*models.RentalItem, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.RentalItem, error)
	// FindByIDForUpdate loads the item under a row lock. Callers must be
	// inside a transaction; the lock serializes every stock decision for
	// the item until commit.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.RentalItem, error)
	FindByName(ctx context.Context, name string) (*models.RentalItem, error)
	List(ctx context.Context, includeInactive bool) ([]models.RentalItem, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
}
