package calendar

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kigurumiya/reserve-backend/pkg/db/models"
	"github.com/kigurumiya/reserve-backend/pkg/types"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a calendar override repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Upsert(ctx context.Context, override *models.CalendarOverride) (*models.CalendarOverride, error) {
	override.Date = types.NormalizeDate(override.Date)
	if override.ID == uuid.Nil {
		override.ID = uuid.New()
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "item_id"}, {Name: "date"}},
			DoUpdates: clause.AssignmentColumns([]string{"is_available", "updated_at"}),
		}).
		Create(override).Error
	if err != nil {
		return nil, err
	}
	return override, nil
}

func (r *repository) FindByItemAndDate(ctx context.Context, itemID uuid.UUID, date time.Time) (*models.CalendarOverride, error) {
	var override models.CalendarOverride
	err := r.db.WithContext(ctx).
		Where("item_id = ? AND date = ?", itemID, types.NormalizeDate(date)).
		First(&override).Error
	if err != nil {
		return nil, err
	}
	return &override, nil
}

func (r *repository) ListByItemBetween(ctx context.Context, itemID uuid.UUID, from, to time.Time) ([]models.CalendarOverride, error) {
	var overrides []models.CalendarOverride
	err := r.db.WithContext(ctx).
		Where("item_id = ? AND date >= ? AND date <= ?", itemID, types.NormalizeDate(from), types.NormalizeDate(to)).
		Order("date ASC").
		Find(&overrides).Error
	if err != nil {
		return nil, err
	}
	return overrides, nil
}

func (r *repository) ListBetween(ctx context.Context, from, to time.Time) ([]models.CalendarOverride, error) {
	var overrides []models.CalendarOverride
	err := r.db.WithContext(ctx).
		Where("date >= ? AND date <= ?", types.NormalizeDate(from), types.NormalizeDate(to)).
		Order("date ASC").
		Find(&overrides).Error
	if err != nil {
		return nil, err
	}
	return overrides, nil
}

func (r *repository) Delete(ctx context.Context, itemID uuid.UUID, date time.Time) error {
	return r.db.WithContext(ctx).
		Where("item_id = ? AND date = ?", itemID, types.NormalizeDate(date)).
		Delete(&models.CalendarOverride{}).Error
}
