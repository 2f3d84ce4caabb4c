package calendar

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/kigurumiya/reserve-backend/pkg/db/models"
	"github.com/kigurumiya/reserve-backend/pkg/types"
)

func setupCalendarTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS calendar_overrides (
  id TEXT PRIMARY KEY,
  item_id TEXT NOT NULL,
  date DATETIME NOT NULL,
  is_available INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_calendar_overrides_item_date ON calendar_overrides (item_id, date);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func mustDate(t *testing.T, value string) time.Time {
	t.Helper()
	d, err := types.ParseDate(value)
	require.NoError(t, err)
	return d
}

func TestUpsertInsertsThenUpdates(t *testing.T) {
	db := setupCalendarTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	itemID := uuid.New()
	date := mustDate(t, "2026-10-31")

	first := &models.CalendarOverride{ID: uuid.New(), ItemID: itemID, Date: date, IsAvailable: false}
	_, err := repo.Upsert(ctx, first)
	require.NoError(t, err)

	second := &models.CalendarOverride{ID: uuid.New(), ItemID: itemID, Date: date, IsAvailable: true}
	_, err = repo.Upsert(ctx, second)
	require.NoError(t, err)

	found, err := repo.FindByItemAndDate(ctx, itemID, date)
	require.NoError(t, err)
	assert.True(t, found.IsAvailable)

	var count int64
	require.NoError(t, db.Model(&models.CalendarOverride{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestListByItemBetween(t *testing.T) {
	db := setupCalendarTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	itemID := uuid.New()
	other := uuid.New()

	for _, day := range []string{"2026-10-01", "2026-10-15", "2026-11-01"} {
		_, err := repo.Upsert(ctx, &models.CalendarOverride{
			ID: uuid.New(), ItemID: itemID, Date: mustDate(t, day), IsAvailable: false,
		})
		require.NoError(t, err)
	}
	_, err := repo.Upsert(ctx, &models.CalendarOverride{
		ID: uuid.New(), ItemID: other, Date: mustDate(t, "2026-10-15"), IsAvailable: false,
	})
	require.NoError(t, err)

	overrides, err := repo.ListByItemBetween(ctx, itemID, mustDate(t, "2026-10-01"), mustDate(t, "2026-10-31"))
	require.NoError(t, err)
	require.Len(t, overrides, 2)
	assert.Equal(t, mustDate(t, "2026-10-01"), types.NormalizeDate(overrides[0].Date))
	assert.Equal(t, mustDate(t, "2026-10-15"), types.NormalizeDate(overrides[1].Date))

	all, err := repo.ListBetween(ctx, mustDate(t, "2026-10-01"), mustDate(t, "2026-10-31"))
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestDeleteOverride(t *testing.T) {
	db := setupCalendarTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	itemID := uuid.New()
	date := mustDate(t, "2026-10-31")

	_, err := repo.Upsert(ctx, &models.CalendarOverride{ID: uuid.New(), ItemID: itemID, Date: date, IsAvailable: false})
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, itemID, date))

	_, err = repo.FindByItemAndDate(ctx, itemID, date)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
