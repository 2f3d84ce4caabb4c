package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/kigurumiya/reserve-backend/api/responses"
	"github.com/kigurumiya/reserve-backend/api/validators"
	availabilitysvc "github.com/kigurumiya/reserve-backend/internal/availability"
	"github.com/kigurumiya/reserve-backend/pkg/enums"
	pkgerrors "github.com/kigurumiya/reserve-backend/pkg/errors"
	"github.com/kigurumiya/reserve-backend/pkg/logger"
	"github.com/kigurumiya/reserve-backend/pkg/types"
)

type availabilityCheckResponse struct {
	ItemID     uuid.UUID                `json:"item_id"`
	Date       string                   `json:"date"`
	Status     enums.AvailabilityStatus `json:"status"`
	Reservable bool                     `json:"reservable"`
	Remaining  int                      `json:"remaining"`
}

// AvailabilityCheck answers whether one (item, date) slot is reservable. The
// answer is advisory; the booking transaction re-checks under lock.
func AvailabilityCheck(svc availabilitysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "availability service unavailable"))
			return
		}

		itemID, err := validators.ParseQueryUUID(r, "item_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if itemID == uuid.Nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "item_id is required"))
			return
		}
		date, err := validators.ParseQueryDate(r, "date")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if date.IsZero() {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "date is required"))
			return
		}

		verdict, err := svc.Check(r.Context(), itemID, date)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, availabilityCheckResponse{
			ItemID:     itemID,
			Date:       types.FormatDate(date),
			Status:     verdict.Status,
			Reservable: verdict.Reservable,
			Remaining:  verdict.Remaining,
		})
	}
}

// AvailabilityMonth returns a month grid. With an item_id it reports that
// item's calendar; without one it reports the merged view across all items.
func AvailabilityMonth(svc availabilitysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "availability service unavailable"))
			return
		}

		year, month, err := validators.ParseQueryMonth(r, "month")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		monthStart := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)

		itemID, err := validators.ParseQueryUUID(r, "item_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var grid *availabilitysvc.MonthView
		if itemID == uuid.Nil {
			grid, err = svc.MergedMonthGrid(r.Context(), monthStart)
		} else {
			grid, err = svc.MonthGrid(r.Context(), itemID, monthStart)
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, grid)
	}
}

// AvailabilityDisabledDates lists the non-reservable dates of a month in the
// shape date pickers consume.
func AvailabilityDisabledDates(svc availabilitysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "availability service unavailable"))
			return
		}

		itemID, err := validators.ParseQueryUUID(r, "item_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if itemID == uuid.Nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "item_id is required"))
			return
		}
		year, month, err := validators.ParseQueryMonth(r, "month")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		monthStart := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)

		dates, err := svc.DisabledDates(r.Context(), itemID, monthStart)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"disabled_dates": dates})
	}
}
