package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	availabilitysvc "github.com/kigurumiya/reserve-backend/internal/availability"
	"github.com/kigurumiya/reserve-backend/pkg/enums"
)

type testAvailabilityService struct {
	checkFn         func(ctx context.Context, itemID uuid.UUID, date time.Time) (*availabilitysvc.Verdict, error)
	monthGridFn     func(ctx context.Context, itemID uuid.UUID, month time.Time) (*availabilitysvc.MonthView, error)
	disabledDatesFn func(ctx context.Context, itemID uuid.UUID, month time.Time) ([]string, error)
	mergedGridFn    func(ctx context.Context, month time.Time) (*availabilitysvc.MonthView, error)
}

func (s *testAvailabilityService) Check(ctx context.Context, itemID uuid.UUID, date time.Time) (*availabilitysvc.Verdict, error) {
	if s.checkFn != nil {
		return s.checkFn(ctx, itemID, date)
	}
	return &availabilitysvc.Verdict{}, nil
}

func (s *testAvailabilityService) MonthGrid(ctx context.Context, itemID uuid.UUID, month time.Time) (*availabilitysvc.MonthView, error) {
	if s.monthGridFn != nil {
		return s.monthGridFn(ctx, itemID, month)
	}
	return &availabilitysvc.MonthView{}, nil
}

func (s *testAvailabilityService) DisabledDates(ctx context.Context, itemID uuid.UUID, month time.Time) ([]string, error) {
	if s.disabledDatesFn != nil {
		return s.disabledDatesFn(ctx, itemID, month)
	}
	return nil, nil
}

func (s *testAvailabilityService) MergedMonthGrid(ctx context.Context, month time.Time) (*availabilitysvc.MonthView, error) {
	if s.mergedGridFn != nil {
		return s.mergedGridFn(ctx, month)
	}
	return &availabilitysvc.MonthView{}, nil
}

func TestAvailabilityCheckRequiresItemAndDate(t *testing.T) {
	svc := &testAvailabilityService{}

	for _, target := range []string{
		"/api/v1/availability?date=2026-09-10",
		"/api/v1/availability?item_id=6f1e9a34-8a6c-4e1e-b7a2-0f6f6a2d9c11",
	} {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		rec := httptest.NewRecorder()

		AvailabilityCheck(svc, nil)(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", target, rec.Code)
		}
	}
}

func TestAvailabilityCheckSuccess(t *testing.T) {
	itemID := uuid.New()
	svc := &testAvailabilityService{
		checkFn: func(ctx context.Context, gotItem uuid.UUID, date time.Time) (*availabilitysvc.Verdict, error) {
			if gotItem != itemID {
				t.Fatalf("unexpected item %s", gotItem)
			}
			return &availabilitysvc.Verdict{
				Reservable: true,
				Status:     enums.AvailabilityStatusOpen,
				Remaining:  2,
			}, nil
		},
	}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/availability?item_id="+itemID.String()+"&date=2026-09-10", nil)
	rec := httptest.NewRecorder()

	AvailabilityCheck(svc, nil)(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var payload struct {
		Data availabilityCheckResponse `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !payload.Data.Reservable || payload.Data.Remaining != 2 {
		t.Fatalf("unexpected verdict %+v", payload.Data)
	}
	if payload.Data.Date != "2026-09-10" {
		t.Fatalf("unexpected date %q", payload.Data.Date)
	}
}

func TestAvailabilityMonthPicksMergedWithoutItem(t *testing.T) {
	var mergedCalled, perItemCalled bool
	svc := &testAvailabilityService{
		mergedGridFn: func(ctx context.Context, month time.Time) (*availabilitysvc.MonthView, error) {
			mergedCalled = true
			if month.Format("2006-01") != "2026-09" {
				t.Fatalf("unexpected month %s", month)
			}
			return &availabilitysvc.MonthView{Month: "2026-09"}, nil
		},
		monthGridFn: func(ctx context.Context, itemID uuid.UUID, month time.Time) (*availabilitysvc.MonthView, error) {
			perItemCalled = true
			return &availabilitysvc.MonthView{Month: "2026-09"}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/availability/month?month=2026-09", nil)
	rec := httptest.NewRecorder()
	AvailabilityMonth(svc, nil)(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !mergedCalled || perItemCalled {
		t.Fatalf("expected merged grid only, merged=%v perItem=%v", mergedCalled, perItemCalled)
	}

	mergedCalled, perItemCalled = false, false
	req = httptest.NewRequest(http.MethodGet, "/api/v1/availability/month?month=2026-09&item_id="+uuid.NewString(), nil)
	rec = httptest.NewRecorder()
	AvailabilityMonth(svc, nil)(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if mergedCalled || !perItemCalled {
		t.Fatalf("expected per-item grid only, merged=%v perItem=%v", mergedCalled, perItemCalled)
	}
}

func TestAvailabilityMonthRequiresMonth(t *testing.T) {
	svc := &testAvailabilityService{}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/availability/month", nil)
	rec := httptest.NewRecorder()

	AvailabilityMonth(svc, nil)(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAvailabilityDisabledDates(t *testing.T) {
	itemID := uuid.New()
	svc := &testAvailabilityService{
		disabledDatesFn: func(ctx context.Context, gotItem uuid.UUID, month time.Time) ([]string, error) {
			return []string{"2026-09-02", "2026-09-09"}, nil
		},
	}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/availability/disabled-dates?item_id="+itemID.String()+"&month=2026-09", nil)
	rec := httptest.NewRecorder()

	AvailabilityDisabledDates(svc, nil)(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var payload struct {
		Data struct {
			DisabledDates []string `json:"disabled_dates"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(payload.Data.DisabledDates) != 2 {
		t.Fatalf("expected 2 dates, got %v", payload.Data.DisabledDates)
	}
}
