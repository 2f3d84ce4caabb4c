package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dberrors "github.com/kigurumiya/reserve-backend/pkg/db"
	"github.com/kigurumiya/reserve-backend/pkg/db/models"
	pkgerrors "github.com/kigurumiya/reserve-backend/pkg/errors"
)

// Service defines rental item operations for staff and public listings.
type Service interface {
	CreateItem(ctx context.Context, input ItemInput) (*ItemView, error)
	UpdateItem(ctx context.Context, id uuid.UUID, input ItemInput) (*ItemView, error)
	GetItem(ctx context.Context, id uuid.UUID) (*ItemView, error)
	ListItems(ctx context.Context, includeInactive bool) ([]ItemView, error)
	ListPublicItems(ctx context.Context) ([]PublicItemView, error)
}

type service struct {
	repo Repository
}

// NewService builds the rental item service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) CreateItem(ctx context.Context, input ItemInput) (*ItemView, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item name required")
	}
	if input.TotalStock < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "total stock cannot be negative")
	}
	if input.WarningThreshold < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "warning threshold cannot be negative")
	}
	if input.WarningThreshold > input.TotalStock {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "warning threshold cannot exceed total stock")
	}

	active := true
	if input.IsActive != nil {
		active = *input.IsActive
	}

	item := &models.RentalItem{
		Name:             name,
		IsActive:         active,
		TotalStock:       input.TotalStock,
		WarningThreshold: input.WarningThreshold,
	}
	created, err := s.repo.Create(ctx, item)
	if err != nil {
		if dberrors.IsUniqueViolation(err, "idx_rental_items_name") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "an item with that name already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create rental item")
	}
	return toItemView(created), nil
}

func (s *service) UpdateItem(ctx context.Context, id uuid.UUID, input ItemInput) (*ItemView, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id required")
	}
	if input.TotalStock < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "total stock cannot be negative")
	}
	if input.WarningThreshold < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "warning threshold cannot be negative")
	}
	if input.WarningThreshold > input.TotalStock {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "warning threshold cannot exceed total stock")
	}

	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load rental item")
	}

	updates := map[string]any{
		"total_stock":       input.TotalStock,
		"warning_threshold": input.WarningThreshold,
	}
	if name := strings.TrimSpace(input.Name); name != "" {
		updates["name"] = name
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}

	if err := s.repo.Update(ctx, id, updates); err != nil {
		if dberrors.IsUniqueViolation(err, "idx_rental_items_name") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "an item with that name already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update rental item")
	}

	updated, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload rental item")
	}
	return toItemView(updated), nil
}

func (s *service) GetItem(ctx context.Context, id uuid.UUID) (*ItemView, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id required")
	}
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load rental item")
	}
	return toItemView(item), nil
}

func (s *service) ListItems(ctx context.Context, includeInactive bool) ([]ItemView, error) {
	items, err := s.repo.List(ctx, includeInactive)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list rental items")
	}
	views := make([]ItemView, 0, len(items))
	for i := range items {
		views = append(views, *toItemView(&items[i]))
	}
	return views, nil
}

func (s *service) ListPublicItems(ctx context.Context) ([]PublicItemView, error) {
	items, err := s.repo.List(ctx, false)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list rental items")
	}
	views := make([]PublicItemView, 0, len(items))
	for _, item := range items {
		views = append(views, toPublicItemView(item))
	}
	return views, nil
}
