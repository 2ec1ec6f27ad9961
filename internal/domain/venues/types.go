package venues

import (
	"time"

	"turfbook/internal/apperr"
	"turfbook/internal/domain/approval"
)

var (
	ErrVenueNotFound = apperr.NotFound("venue_not_found", "venue not found")
	ErrVenueExists   = apperr.Conflict("venue_exists", "you already own a venue with this name")
)

const (
	DefaultOpeningTime = "06:00"
	DefaultClosingTime = "22:00"
)

// Venue represents a venue in the database
type Venue struct {
	ID             int64           `json:"id"`
	OwnerID        int64           `json:"owner_id"`
	Name           string          `json:"name"`
	Address        string          `json:"address"`
	City           string          `json:"city"`
	Description    *string         `json:"description,omitempty" swaggertype:"string"`
	Phone          string          `json:"phone"`
	Amenities      []string        `json:"amenities"`
	OpeningTime    string          `json:"opening_time"`
	ClosingTime    string          `json:"closing_time"`
	ImageURLs      []string        `json:"image_urls"`
	IsActive       bool            `json:"is_active"`
	ApprovalStatus approval.Status `json:"approval_status"`
	State          approval.State  `json:"state"`
	ReviewedBy     *int64          `json:"reviewed_by,omitempty" swaggertype:"integer"`
	ReviewedAt     *time.Time      `json:"reviewed_at,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`

	TotalReviews  int     `json:"total_reviews"`
	AverageRating float64 `json:"average_rating"`
}

func (v *Venue) Listable() bool {
	return approval.Listable(v.ApprovalStatus, v.IsActive)
}

func (v *Venue) label() {
	v.State = approval.Label(v.ApprovalStatus, v.IsActive)
}

// Filter narrows List. PublicOnly restricts to live venues.
type Filter struct {
	Search     string
	City       *string
	Sport      *string
	OwnerID    *int64
	Status     *approval.Status
	PublicOnly bool
	Limit      int
	Offset     int
}

// CascadeResult counts the rows removed with a venue.
type CascadeResult struct {
	Reviews  int64 `json:"reviews"`
	Bookings int64 `json:"bookings"`
	Turfs    int64 `json:"turfs"`

	// ImageURLs of the venue and its turfs, for media cleanup after commit.
	ImageURLs []string `json:"-"`
}
