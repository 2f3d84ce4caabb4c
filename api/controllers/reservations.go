package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/kigurumiya/reserve-backend/api/responses"
	"github.com/kigurumiya/reserve-backend/api/validators"
	reservationsvc "github.com/kigurumiya/reserve-backend/internal/reservations"
	pkgerrors "github.com/kigurumiya/reserve-backend/pkg/errors"
	"github.com/kigurumiya/reserve-backend/pkg/logger"
)

type submitReservationRequest struct {
	CustomerName string `json:"customer_name" validate:"required,max=120"`
	Phone        string `json:"phone" validate:"required,phone,max=32"`
	Email        string `json:"email" validate:"required,email,max=254"`
	Date         string `json:"date" validate:"required"`
	ItemID       string `json:"item_id" validate:"required,uuid"`
	Notes        string `json:"notes" validate:"max=1000"`
}

func (req submitReservationRequest) toInput() reservationsvc.SubmitInput {
	return reservationsvc.SubmitInput{
		CustomerName: validators.SanitizeString(req.CustomerName, 120),
		Phone:        validators.SanitizeString(req.Phone, 32),
		Email:        validators.SanitizeString(req.Email, 254),
		Date:         strings.TrimSpace(req.Date),
		ItemID:       strings.TrimSpace(req.ItemID),
		Notes:        validators.SanitizeString(req.Notes, 1000),
	}
}

// SubmitReservation books a slot for an anonymous customer.
func SubmitReservation(svc reservationsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reservation service unavailable"))
			return
		}

		var payload submitReservationRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.Submit(r.Context(), payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, view)
	}
}

// LookupReservation fetches a reservation by confirmation code. The phone
// number doubles as the shared secret for anonymous access.
func LookupReservation(svc reservationsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reservation service unavailable"))
			return
		}

		code := strings.TrimSpace(chi.URLParam(r, "code"))
		phone := strings.TrimSpace(r.URL.Query().Get("phone"))
		if code == "" || phone == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "confirmation code and phone are required"))
			return
		}

		view, err := svc.Lookup(r.Context(), reservationsvc.LookupInput{Code: code, Phone: phone})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

type cancelReservationRequest struct {
	Phone string `json:"phone" validate:"required,phone,max=32"`
}

// CancelReservation cancels a future reservation identified by code + phone.
func CancelReservation(svc reservationsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reservation service unavailable"))
			return
		}

		code := strings.TrimSpace(chi.URLParam(r, "code"))
		if code == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "confirmation code is required"))
			return
		}

		var payload cancelReservationRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.Cancel(r.Context(), reservationsvc.CancelInput{
			Code:  code,
			Phone: validators.SanitizeString(payload.Phone, 32),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}
