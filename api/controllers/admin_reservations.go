package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/kigurumiya/reserve-backend/api/responses"
	"github.com/kigurumiya/reserve-backend/api/validators"
	reservationsvc "github.com/kigurumiya/reserve-backend/internal/reservations"
	"github.com/kigurumiya/reserve-backend/pkg/enums"
	pkgerrors "github.com/kigurumiya/reserve-backend/pkg/errors"
	"github.com/kigurumiya/reserve-backend/pkg/logger"
	"github.com/kigurumiya/reserve-backend/pkg/pagination"
)

// AdminListReservations pages through reservations with optional filters.
func AdminListReservations(svc reservationsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reservation service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 50, 1, 200)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params := pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		}

		var filters reservationsvc.ListFilters
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status, err := enums.ParseReservationStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, err.Error()))
				return
			}
			filters.Status = &status
		}
		itemID, err := validators.ParseQueryUUID(r, "item_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if itemID != uuid.Nil {
			filters.ItemID = &itemID
		}
		if from, err := validators.ParseQueryDate(r, "date_from"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		} else if !from.IsZero() {
			filters.DateFrom = &from
		}
		if to, err := validators.ParseQueryDate(r, "date_to"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		} else if !to.IsZero() {
			filters.DateTo = &to
		}

		list, err := svc.List(r.Context(), params, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

type staffBookingRequest struct {
	submitReservationRequest
	Force bool `json:"force"`
}

// AdminCreateReservation books on a customer's behalf. Staff bookings skip
// the rate limit and daily cap, and may force through closed overrides. Stock
// limits still hold.
func AdminCreateReservation(svc reservationsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reservation service unavailable"))
			return
		}

		var payload staffBookingRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := payload.toInput()
		input.StaffBooking = true
		input.Force = payload.Force

		view, err := svc.Submit(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, view)
	}
}
