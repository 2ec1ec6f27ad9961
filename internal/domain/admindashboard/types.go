package admindashboard

import (
	"context"
	"time"
)

type Overview struct {
	// Users
	TotalUsers       int64 `json:"total_users"`
	TotalGuests      int64 `json:"total_guests"`
	TotalVenueOwners int64 `json:"total_venue_owners"`
	TotalAdmins      int64 `json:"total_admins"`

	// Venues
	TotalVenues       int64 `json:"total_venues"`
	LiveVenues        int64 `json:"live_venues"`
	MaintenanceVenues int64 `json:"maintenance_venues"`
	PendingVenues     int64 `json:"pending_venues"`
	RejectedVenues    int64 `json:"rejected_venues"`
	TotalTurfs        int64 `json:"total_turfs"`
	PendingTurfs      int64 `json:"pending_turfs"`

	// Bookings
	TotalBookings     int64 `json:"total_bookings"`
	PendingBookings   int64 `json:"pending_bookings"`
	ConfirmedBookings int64 `json:"confirmed_bookings"`
	CompletedBookings int64 `json:"completed_bookings"`
	CancelledBookings int64 `json:"cancelled_bookings"`

	// Revenue counts paid bookings only, in minor units.
	TotalRevenue int64 `json:"total_revenue"`
}

// RevenuePoint is the paid amount collected on one booking date.
type RevenuePoint struct {
	Date     string `json:"date"`
	Bookings int64  `json:"bookings"`
	Revenue  int64  `json:"revenue"`
}

type VenueRevenue struct {
	VenueID   int64  `json:"venue_id"`
	VenueName string `json:"venue_name"`
	Bookings  int64  `json:"bookings"`
	Revenue   int64  `json:"revenue"`
}

type Revenue struct {
	From     string         `json:"from"`
	To       string         `json:"to"`
	Total    int64          `json:"total"`
	Daily    []RevenuePoint `json:"daily"`
	TopVenue []VenueRevenue `json:"top_venues"`
}

type Store interface {
	GetOverview(ctx context.Context) (*Overview, error)
	GetRevenue(ctx context.Context, from, to time.Time) (*Revenue, error)
}
