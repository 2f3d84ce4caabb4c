package reservations

import (
	"time"

	"github.com/google/uuid"

	"github.com/kigurumiya/reserve-backend/pkg/db/models"
	"github.com/kigurumiya/reserve-backend/pkg/enums"
	"github.com/kigurumiya/reserve-backend/pkg/types"
)

// SubmitInput carries a reservation request.
type SubmitInput struct {
	CustomerName string `json:"customer_name" validate:"required,max=120"`
	Phone        string `json:"phone" validate:"required,max=32"`
	Email        string `json:"email" validate:"required,email"`
	Date         string `json:"date" validate:"required"`
	ItemID       string `json:"item_id" validate:"required,uuid"`
	Notes        string `json:"notes" validate:"max=1000"`

	// Force books through an unavailable override. Staff only.
	Force bool `json:"-"`
	// StaffBooking skips the rate limit and per-phone daily cap. Staff only.
	StaffBooking bool `json:"-"`
}

// CancelInput identifies the reservation a customer wants to cancel.
type CancelInput struct {
	Code  string `json:"-"`
	Phone string `json:"phone" validate:"required"`
}

// LookupInput identifies a reservation by its code plus the booking phone.
type LookupInput struct {
	Code  string `json:"confirmation_code" validate:"required"`
	Phone string `json:"phone" validate:"required"`
}

// ListFilters narrows the admin reservation listing.
type ListFilters struct {
	Status   *enums.ReservationStatus
	ItemID   *uuid.UUID
	DateFrom *time.Time
	DateTo   *time.Time
}

// ReservationView is the API shape of a reservation.
type ReservationView struct {
	ID               uuid.UUID               `json:"id"`
	ConfirmationCode string                  `json:"confirmation_code"`
	CustomerName     string                  `json:"customer_name"`
	Phone            string                  `json:"phone"`
	Email            string                  `json:"email"`
	Date             string                  `json:"date"`
	ItemID           uuid.UUID               `json:"item_id"`
	ItemName         string                  `json:"item_name,omitempty"`
	Status           enums.ReservationStatus `json:"status"`
	Notes            string                  `json:"notes,omitempty"`
	CreatedAt        time.Time               `json:"created_at"`
	CancelledAt      *time.Time              `json:"cancelled_at,omitempty"`
}

// ReservationList is one page of reservations plus the next cursor.
type ReservationList struct {
	Reservations []ReservationView `json:"reservations"`
	NextCursor   *string           `json:"next_cursor,omitempty"`
}

func toView(r *models.Reservation) ReservationView {
	view := ReservationView{
		ID:               r.ID,
		ConfirmationCode: r.ConfirmationCode,
		CustomerName:     r.CustomerName,
		Phone:            r.Phone,
		Email:            r.Email,
		Date:             types.FormatDate(r.Date),
		ItemID:           r.ItemID,
		Status:           r.Status,
		Notes:            r.Notes,
		CreatedAt:        r.CreatedAt,
		CancelledAt:      r.CancelledAt,
	}
	if r.Item != nil {
		view.ItemName = r.Item.Name
	}
	return view
}
