package bookings

import (
	"time"

	"turfbook/internal/apperr"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

func (p PaymentStatus) Valid() bool {
	switch p {
	case PaymentPending, PaymentPaid, PaymentFailed, PaymentRefunded:
		return true
	}
	return false
}

var (
	ErrBookingNotFound   = apperr.NotFound("booking_not_found", "booking not found")
	ErrSlotUnavailable   = apperr.Conflict("slot_unavailable", "the requested time slot is already booked")
	ErrInvalidSlot       = apperr.Validation("invalid_slot", "booking_date must be YYYY-MM-DD and end_time must be after start_time (HH:MM)")
	ErrSlotOutsideHours  = apperr.Validation("slot_outside_hours", "the requested time slot is outside the venue opening hours")
	ErrSlotInPast        = apperr.Validation("slot_in_past", "the requested time slot has already started")
	ErrTurfNotBookable   = apperr.Validation("turf_not_bookable", "this turf is not accepting bookings")
	ErrStaleBooking      = apperr.Conflict("stale_booking", "the booking was changed by another request, reload and retry")
	ErrInvalidTransition = apperr.Conflict("invalid_booking_transition", "booking status change is not allowed")
	ErrInvalidReference  = apperr.NotFound("unknown_reference", "no booking matches this reference")
)

// Booking is a reservation of one turf for one [start, end) window on a date.
type Booking struct {
	ID                 int64         `json:"id"`
	Reference          string        `json:"reference"`
	UserID             int64         `json:"user_id"`
	TurfID             int64         `json:"turf_id"`
	VenueID            int64         `json:"venue_id"`
	BookingDate        string        `json:"booking_date"`
	StartTime          string        `json:"start_time"`
	EndTime            string        `json:"end_time"`
	Status             Status        `json:"status"`
	PaymentStatus      PaymentStatus `json:"payment_status"`
	TotalAmount        int64         `json:"total_amount"`
	Note               *string       `json:"note,omitempty" swaggertype:"string"`
	CancelledAt        *time.Time    `json:"cancelled_at,omitempty"`
	CancellationReason *string       `json:"cancellation_reason,omitempty" swaggertype:"string"`
	CreatedAt          time.Time     `json:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at"`

	// Filled by list queries.
	TurfName  string `json:"turf_name,omitempty"`
	VenueName string `json:"venue_name,omitempty"`
	Sport     string `json:"sport,omitempty"`
	UserName  string `json:"user_name,omitempty"`

	// VenueOwnerID is loaded by GetByID for permission checks.
	VenueOwnerID int64 `json:"-"`
}

func (b *Booking) Slot() (Slot, error) {
	return ParseSlot(b.BookingDate, b.StartTime, b.EndTime)
}

// Filter narrows List. Nil fields are ignored.
type Filter struct {
	UserID  *int64
	OwnerID *int64
	VenueID *int64
	TurfID  *int64
	Status  *Status
	Sport   *string
	Date    *string
	Search  string
	Limit   int
	Offset  int
}
