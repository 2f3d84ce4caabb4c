package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/kigurumiya/reserve-backend/pkg/enums"
)

// Reservation is one customer booking of an item for a single day. The
// confirmation code is generated once and never changes.
type Reservation struct {
	ID               uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ConfirmationCode string                  `gorm:"column:confirmation_code;not null;uniqueIndex:idx_reservations_confirmation_code"`
	CustomerName     string                  `gorm:"column:customer_name;not null"`
	Phone            string                  `gorm:"column:phone;not null;index:idx_reservations_phone"`
	Email            string                  `gorm:"column:email;not null"`
	Date             time.Time               `gorm:"column:date;type:date;not null;index:idx_reservations_date_item_status,priority:1"`
	ItemID           uuid.UUID               `gorm:"column:item_id;type:uuid;not null;index:idx_reservations_date_item_status,priority:2"`
	Item             *RentalItem             `gorm:"foreignKey:ItemID"`
	Status           enums.ReservationStatus `gorm:"column:status;not null;default:pending;index:idx_reservations_date_item_status,priority:3;index:idx_reservations_status"`
	Notes            string                  `gorm:"column:notes"`
	CreatedAt        time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time               `gorm:"column:updated_at;autoUpdateTime"`
	CancelledAt      *time.Time              `gorm:"column:cancelled_at"`
}
