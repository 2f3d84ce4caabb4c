package models

import (
	"time"

	"github.com/google/uuid"
)

// RentalItem is a rentable costume with a finite per-day stock.
type RentalItem struct {
	ID               uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name             string    `gorm:"column:name;not null;uniqueIndex:idx_rental_items_name"`
	IsActive         bool      `gorm:"column:is_active;not null;default:true"`
	TotalStock       int       `gorm:"column:total_stock;not null;default:0"`
	WarningThreshold int       `gorm:"column:warning_threshold;not null;default:0"`
	CreatedAt        time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
