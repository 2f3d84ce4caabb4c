package models

import (
	"time"

	"github.com/google/uuid"
)

// CalendarOverride is a staff-set availability flag for one (date, item)
// pair. Absence of a row means "defer to the stock-based default".
type CalendarOverride struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ItemID      uuid.UUID `gorm:"column:item_id;type:uuid;not null;uniqueIndex:idx_calendar_overrides_item_date"`
	Date        time.Time `gorm:"column:date;type:date;not null;uniqueIndex:idx_calendar_overrides_item_date"`
	IsAvailable bool      `gorm:"column:is_available;not null;default:true"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
