package inventory

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/kigurumiya/reserve-backend/pkg/db/models"
	pkgerrors "github.com/kigurumiya/reserve-backend/pkg/errors"
)

type stubItemRepo struct {
	items     map[uuid.UUID]*models.RentalItem
	createErr error
	updateErr error
}

func newStubItemRepo() *stubItemRepo {
	return &stubItemRepo{items: map[uuid.UUID]*models.RentalItem{}}
}

func (s *stubItemRepo) WithTx(tx *gorm.DB) Repository {
	return s
}

func (s *stubItemRepo) Create(ctx context.Context, item *models.RentalItem) (*models.RentalItem, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	s.items[item.ID] = item
	return item, nil
}

func (s *stubItemRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.RentalItem, error) {
	item, ok := s.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return item, nil
}

func (s *stubItemRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.RentalItem, error) {
	return s.FindByID(ctx, id)
}

func (s *stubItemRepo) FindByName(ctx context.Context, name string) (*models.RentalItem, error) {
	for _, item := range s.items {
		if item.Name == name {
			return item, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubItemRepo) List(ctx context.Context, includeInactive bool) ([]models.RentalItem, error) {
	out := []models.RentalItem{}
	for _, item := range s.items {
		if !includeInactive && !item.IsActive {
			continue
		}
		out = append(out, *item)
	}
	return out, nil
}

func (s *stubItemRepo) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	item, ok := s.items[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if v, ok := updates["name"]; ok {
		item.Name = v.(string)
	}
	if v, ok := updates["total_stock"]; ok {
		item.TotalStock = v.(int)
	}
	if v, ok := updates["warning_threshold"]; ok {
		item.WarningThreshold = v.(int)
	}
	if v, ok := updates["is_active"]; ok {
		item.IsActive = v.(bool)
	}
	return nil
}

func TestCreateItemValidation(t *testing.T) {
	svc, err := NewService(newStubItemRepo())
	require.NoError(t, err)

	_, err = svc.CreateItem(context.Background(), ItemInput{Name: "   "})
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeValidation, appErr.Code())

	_, err = svc.CreateItem(context.Background(), ItemInput{Name: "Fox", TotalStock: -1})
	appErr = pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeValidation, appErr.Code())
}

func TestItemThresholdCannotExceedStock(t *testing.T) {
	repo := newStubItemRepo()
	svc, err := NewService(repo)
	require.NoError(t, err)

	_, err = svc.CreateItem(context.Background(), ItemInput{Name: "Fox", TotalStock: 2, WarningThreshold: 5})
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeValidation, appErr.Code())

	id := uuid.New()
	repo.items[id] = &models.RentalItem{ID: id, Name: "Tanuki", IsActive: true, TotalStock: 4, WarningThreshold: 1}
	_, err = svc.UpdateItem(context.Background(), id, ItemInput{Name: "Tanuki", TotalStock: 2, WarningThreshold: 5})
	appErr = pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeValidation, appErr.Code())
	assert.Equal(t, 4, repo.items[id].TotalStock)
}

func TestCreateItemDefaultsActive(t *testing.T) {
	repo := newStubItemRepo()
	svc, err := NewService(repo)
	require.NoError(t, err)

	view, err := svc.CreateItem(context.Background(), ItemInput{Name: "Fox", TotalStock: 3, WarningThreshold: 1})
	require.NoError(t, err)
	assert.True(t, view.IsActive)
	assert.Equal(t, 3, view.TotalStock)
}

func TestCreateItemDuplicateName(t *testing.T) {
	repo := newStubItemRepo()
	repo.createErr = errors.New(`duplicate key value violates unique constraint "idx_rental_items_name"`)
	svc, err := NewService(repo)
	require.NoError(t, err)

	_, err = svc.CreateItem(context.Background(), ItemInput{Name: "Fox"})
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeConflict, appErr.Code())
}

func TestUpdateItemNotFound(t *testing.T) {
	svc, err := NewService(newStubItemRepo())
	require.NoError(t, err)

	_, err = svc.UpdateItem(context.Background(), uuid.New(), ItemInput{Name: "Fox"})
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeNotFound, appErr.Code())
}

func TestUpdateItemAppliesChanges(t *testing.T) {
	repo := newStubItemRepo()
	id := uuid.New()
	repo.items[id] = &models.RentalItem{ID: id, Name: "Fox", IsActive: true, TotalStock: 3}
	svc, err := NewService(repo)
	require.NoError(t, err)

	inactive := false
	view, err := svc.UpdateItem(context.Background(), id, ItemInput{
		Name:             "Arctic Fox",
		TotalStock:       5,
		WarningThreshold: 2,
		IsActive:         &inactive,
	})
	require.NoError(t, err)
	assert.Equal(t, "Arctic Fox", view.Name)
	assert.Equal(t, 5, view.TotalStock)
	assert.False(t, view.IsActive)
}

func TestListPublicItemsHidesStock(t *testing.T) {
	repo := newStubItemRepo()
	id := uuid.New()
	repo.items[id] = &models.RentalItem{ID: id, Name: "Fox", IsActive: true, TotalStock: 3}
	svc, err := NewService(repo)
	require.NoError(t, err)

	views, err := svc.ListPublicItems(context.Background())
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "Fox", views[0].Name)
}
