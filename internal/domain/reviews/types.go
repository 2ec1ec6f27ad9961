package reviews

import (
	"time"

	"turfbook/internal/apperr"
)

var (
	ErrReviewNotAllowed = apperr.Validation("review_not_allowed", "only the guest of a completed booking can review it")
	ErrAlreadyReviewed  = apperr.Conflict("already_reviewed", "this booking has already been reviewed")
)

type Review struct {
	ID        int64     `json:"id"`
	BookingID int64     `json:"booking_id"`
	UserID    int64     `json:"user_id"`
	TurfID    int64     `json:"turf_id"`
	VenueID   int64     `json:"venue_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Joined fields
	UserName string `json:"user_name,omitempty"`
}

type Filter struct {
	TurfID  *int64
	VenueID *int64
	UserID  *int64
	Limit   int
	Offset  int
}
