package inventory

import (
	"time"

	"github.com/google/uuid"

	"github.com/kigurumiya/reserve-backend/pkg/db/models"
)

// ItemInput carries the staff-editable fields of a rental item.
type ItemInput struct {
	Name             string `json:"name" validate:"required,max=120"`
	TotalStock       int    `json:"total_stock" validate:"gte=0"`
	WarningThreshold int    `json:"warning_threshold" validate:"gte=0"`
	IsActive         *bool  `json:"is_active"`
}

// ItemView is the API shape of a rental item.
type ItemView struct {
	ID               uuid.UUID `json:"id"`
	Name             string    `json:"name"`
	IsActive         bool      `json:"is_active"`
	TotalStock       int       `json:"total_stock"`
	WarningThreshold int       `json:"warning_threshold"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// PublicItemView hides stock numbers from unauthenticated callers.
type PublicItemView struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

func toItemView(item *models.RentalItem) *ItemView {
	return &ItemView{
		ID:               item.ID,
		Name:             item.Name,
		IsActive:         item.IsActive,
		TotalStock:       item.TotalStock,
		WarningThreshold: item.WarningThreshold,
		CreatedAt:        item.CreatedAt,
		UpdatedAt:        item.UpdatedAt,
	}
}

func toPublicItemView(item models.RentalItem) PublicItemView {
	return PublicItemView{
		ID:   item.ID,
		Name: item.Name,
	}
}
