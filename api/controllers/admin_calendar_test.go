package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	calendarsvc "github.com/kigurumiya/reserve-backend/internal/calendar"
	pkgerrors "github.com/kigurumiya/reserve-backend/pkg/errors"
)

type testCalendarService struct {
	setFn    func(ctx context.Context, input calendarsvc.OverrideInput) (*calendarsvc.OverrideView, error)
	removeFn func(ctx context.Context, itemID uuid.UUID, date time.Time) error
	listFn   func(ctx context.Context, itemID uuid.UUID, from, to time.Time) ([]calendarsvc.OverrideView, error)
}

func (s *testCalendarService) SetOverride(ctx context.Context, input calendarsvc.OverrideInput) (*calendarsvc.OverrideView, error) {
	if s.setFn != nil {
		return s.setFn(ctx, input)
	}
	return &calendarsvc.OverrideView{}, nil
}

func (s *testCalendarService) RemoveOverride(ctx context.Context, itemID uuid.UUID, date time.Time) error {
	if s.removeFn != nil {
		return s.removeFn(ctx, itemID, date)
	}
	return nil
}

func (s *testCalendarService) ListOverrides(ctx context.Context, itemID uuid.UUID, from, to time.Time) ([]calendarsvc.OverrideView, error) {
	if s.listFn != nil {
		return s.listFn(ctx, itemID, from, to)
	}
	return nil, nil
}

func TestAdminSetOverrideSuccess(t *testing.T) {
	itemID := uuid.New()
	var captured calendarsvc.OverrideInput
	svc := &testCalendarService{
		setFn: func(ctx context.Context, input calendarsvc.OverrideInput) (*calendarsvc.OverrideView, error) {
			captured = input
			return &calendarsvc.OverrideView{ItemID: input.ItemID, Date: "2026-09-15", IsAvailable: false}, nil
		},
	}
	body := `{"date":"2026-09-15","is_available":false}`
	req := httptest.NewRequest(http.MethodPut, "/api/admin/v1/items/"+itemID.String()+"/calendar", strings.NewReader(body))
	req = withURLParam(req, "itemId", itemID.String())
	rec := httptest.NewRecorder()

	AdminSetOverride(svc, nil)(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if captured.ItemID != itemID || captured.IsAvailable || captured.Force {
		t.Fatalf("unexpected input %+v", captured)
	}
	if captured.Date.Format("2006-01-02") != "2026-09-15" {
		t.Fatalf("unexpected date %s", captured.Date)
	}
}

func TestAdminSetOverrideRejectsBadDate(t *testing.T) {
	itemID := uuid.New()
	svc := &testCalendarService{}
	req := httptest.NewRequest(http.MethodPut, "/api/admin/v1/items/"+itemID.String()+"/calendar", strings.NewReader(`{"date":"15/09/2026","is_available":true}`))
	req = withURLParam(req, "itemId", itemID.String())
	rec := httptest.NewRecorder()

	AdminSetOverride(svc, nil)(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAdminSetOverrideSurfacesReopenRefusal(t *testing.T) {
	itemID := uuid.New()
	svc := &testCalendarService{
		setFn: func(ctx context.Context, input calendarsvc.OverrideInput) (*calendarsvc.OverrideView, error) {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "date is fully booked; pass force to reopen")
		},
	}
	req := httptest.NewRequest(http.MethodPut, "/api/admin/v1/items/"+itemID.String()+"/calendar", strings.NewReader(`{"date":"2026-09-15","is_available":true}`))
	req = withURLParam(req, "itemId", itemID.String())
	rec := httptest.NewRecorder()

	AdminSetOverride(svc, nil)(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestAdminRemoveOverrideRequiresDate(t *testing.T) {
	itemID := uuid.New()
	svc := &testCalendarService{}
	req := httptest.NewRequest(http.MethodDelete, "/api/admin/v1/items/"+itemID.String()+"/calendar", nil)
	req = withURLParam(req, "itemId", itemID.String())
	rec := httptest.NewRecorder()

	AdminRemoveOverride(svc, nil)(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAdminListOverridesRequiresRange(t *testing.T) {
	itemID := uuid.New()
	svc := &testCalendarService{}
	req := httptest.NewRequest(http.MethodGet, "/api/admin/v1/items/"+itemID.String()+"/calendar?from=2026-09-01", nil)
	req = withURLParam(req, "itemId", itemID.String())
	rec := httptest.NewRecorder()

	AdminListOverrides(svc, nil)(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
