package reservations

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kigurumiya/reserve-backend/pkg/db/models"
	"github.com/kigurumiya/reserve-backend/pkg/enums"
	"github.com/kigurumiya/reserve-backend/pkg/pagination"
	"github.com/kigurumiya/reserve-backend/pkg/types"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a reservation repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, reservation *models.Reservation) (*models.Reservation, error) {
	reservation.Date = types.NormalizeDate(reservation.Date)
	if err := r.db.WithContext(ctx).Create(reservation).Error; err != nil {
		return nil, err
	}
	return reservation, nil
}

func (r *repository) FindByCode(ctx context.Context, code string) (*models.Reservation, error) {
	var reservation models.Reservation
	err := r.db.WithContext(ctx).
		Preload("Item").
		Where("confirmation_code = ?", code).
		First(&reservation).Error
	if err != nil {
		return nil, err
	}
	return &reservation, nil
}

func (r *repository) CodeExists(ctx context.Context, code string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Reservation{}).
		Where("confirmation_code = ?", code).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) CountActiveByItemAndDate(ctx context.Context, itemID uuid.UUID, date time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Reservation{}).
		Where("item_id = ? AND date = ? AND status IN ?", itemID, types.NormalizeDate(date), enums.ActiveReservationStatuses).
		Count(&count).Error
	return count, err
}

func (r *repository) CountActiveByPhoneAndDate(ctx context.Context, phone string, date time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Reservation{}).
		Where("phone = ? AND date = ? AND status IN ?", phone, types.NormalizeDate(date), enums.ActiveReservationStatuses).
		Count(&count).Error
	return count, err
}

func (r *repository) List(ctx context.Context, params pagination.Params, filters ListFilters) (*ReservationList, error) {
	limit := pagination.ClampLimit(params.Limit)
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}

	query := r.db.WithContext(ctx).
		Model(&models.Reservation{}).
		Preload("Item").
		Order("created_at DESC, id DESC").
		Limit(pagination.PeekLimit(params.Limit))

	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.ItemID != nil {
		query = query.Where("item_id = ?", *filters.ItemID)
	}
	if filters.DateFrom != nil {
		query = query.Where("date >= ?", types.NormalizeDate(*filters.DateFrom))
	}
	if filters.DateTo != nil {
		query = query.Where("date <= ?", types.NormalizeDate(*filters.DateTo))
	}
	if cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var rows []models.Reservation
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	list := &ReservationList{Reservations: make([]ReservationView, 0, len(rows))}
	hasMore := len(rows) > limit
	if hasMore {
		rows = rows[:limit]
	}
	for i := range rows {
		list.Reservations = append(list.Reservations, toView(&rows[i]))
	}
	if hasMore {
		last := rows[len(rows)-1]
		next := pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
		list.NextCursor = &next
	}
	return list, nil
}

func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.ReservationStatus, cancelledAt *time.Time) error {
	updates := map[string]any{"status": status}
	if cancelledAt != nil {
		updates["cancelled_at"] = *cancelledAt
	}
	return r.db.WithContext(ctx).
		Model(&models.Reservation{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) MarkCompletedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Reservation{}).
		Where("date < ? AND status IN ?", types.NormalizeDate(cutoff), enums.ActiveReservationStatuses).
		Update("status", enums.ReservationStatusCompleted)
	return res.RowsAffected, res.Error
}

func (r *repository) ActiveSlotCounts(ctx context.Context, from, to time.Time) ([]SlotCount, error) {
	var counts []SlotCount
	err := r.db.WithContext(ctx).
		Model(&models.Reservation{}).
		Select("item_id, date, COUNT(*) AS count").
		Where("date >= ? AND date <= ? AND status IN ?", types.NormalizeDate(from), types.NormalizeDate(to), enums.ActiveReservationStatuses).
		Group("item_id, date").
		Find(&counts).Error
	return counts, err
}

// Counter adapts the repository to the tx-scoped counter shape the
// calendar service consumes.
type Counter struct {
	repo Repository
}

// NewCounter wraps a repository as a Counter.
func NewCounter(repo Repository) Counter {
	return Counter{repo: repo}
}

// CountActiveByItemAndDate counts active reservations inside the supplied
// transaction.
func (c Counter) CountActiveByItemAndDate(ctx context.Context, tx *gorm.DB, itemID uuid.UUID, date time.Time) (int64, error) {
	return c.repo.WithTx(tx).CountActiveByItemAndDate(ctx, itemID, date)
}
