package turfs

import (
	"time"

	"turfbook/internal/apperr"
	"turfbook/internal/domain/approval"
)

var ErrTurfNotFound = apperr.NotFound("turf_not_found", "turf not found")

type Turf struct {
	ID             int64           `json:"id"`
	VenueID        int64           `json:"venue_id"`
	Name           string          `json:"name"`
	Sport          string          `json:"sport"`
	PricePerHour   int64           `json:"price_per_hour"`
	Surface        *string         `json:"surface,omitempty" swaggertype:"string"`
	ImageURLs      []string        `json:"image_urls"`
	IsActive       bool            `json:"is_active"`
	ApprovalStatus approval.Status `json:"approval_status"`
	State          approval.State  `json:"state"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`

	Venue VenueRef `json:"venue"`
}

// VenueRef is the slice of the parent venue a turf read carries along.
type VenueRef struct {
	Name           string          `json:"name"`
	City           string          `json:"city"`
	OwnerID        int64           `json:"-"`
	ApprovalStatus approval.Status `json:"-"`
	IsActive       bool            `json:"-"`
	OpeningTime    string          `json:"opening_time"`
	ClosingTime    string          `json:"closing_time"`
}

func (t *Turf) Listable() bool {
	return approval.Listable(t.ApprovalStatus, t.IsActive)
}

// Bookable requires both the turf and its venue to be live.
func (t *Turf) Bookable() bool {
	return t.Listable() && approval.Listable(t.Venue.ApprovalStatus, t.Venue.IsActive)
}

func (t *Turf) label() {
	t.State = approval.Label(t.ApprovalStatus, t.IsActive)
}

type Filter struct {
	VenueID    *int64
	Sport      *string
	Status     *approval.Status
	Search     string
	PublicOnly bool
	Limit      int
	Offset     int
}
