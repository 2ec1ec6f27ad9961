package admindashboard

import (
	"context"
	"fmt"
	"time"

	"turfbook/internal/infra/dbx"
)

const dateLayout = "2006-01-02"

type Repository struct {
	db dbx.Querier
}

func NewRepository(db dbx.Querier) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetOverview(ctx context.Context) (*Overview, error) {
	ctx, cancel := context.WithTimeout(ctx, dbx.QueryTimeoutDuration)
	defer cancel()

	const q = `
		WITH u AS (
			SELECT
				COUNT(*) AS total,
				COUNT(*) FILTER (WHERE role = 'guest') AS guests,
				COUNT(*) FILTER (WHERE role = 'venue_owner') AS owners,
				COUNT(*) FILTER (WHERE role = 'admin') AS admins
			FROM users
		), v AS (
			SELECT
				COUNT(*) AS total,
				COUNT(*) FILTER (WHERE approval_status = 'approved' AND is_active) AS live,
				COUNT(*) FILTER (WHERE approval_status = 'approved' AND NOT is_active) AS maintenance,
				COUNT(*) FILTER (WHERE approval_status = 'pending') AS pending,
				COUNT(*) FILTER (WHERE approval_status = 'rejected') AS rejected
			FROM venues
		), t AS (
			SELECT
				COUNT(*) AS total,
				COUNT(*) FILTER (WHERE approval_status = 'pending') AS pending
			FROM turfs
		), b AS (
			SELECT
				COUNT(*) AS total,
				COUNT(*) FILTER (WHERE status = 'pending') AS pending,
				COUNT(*) FILTER (WHERE status = 'confirmed') AS confirmed,
				COUNT(*) FILTER (WHERE status = 'completed') AS completed,
				COUNT(*) FILTER (WHERE status = 'cancelled') AS cancelled,
				COALESCE(SUM(total_amount) FILTER (WHERE payment_status = 'paid'), 0)::bigint AS revenue
			FROM bookings
		)
		SELECT u.total, u.guests, u.owners, u.admins,
		       v.total, v.live, v.maintenance, v.pending, v.rejected,
		       t.total, t.pending,
		       b.total, b.pending, b.confirmed, b.completed, b.cancelled, b.revenue
		FROM u, v, t, b`

	var o Overview
	err := r.db.QueryRow(ctx, q).Scan(
		&o.TotalUsers, &o.TotalGuests, &o.TotalVenueOwners, &o.TotalAdmins,
		&o.TotalVenues, &o.LiveVenues, &o.MaintenanceVenues, &o.PendingVenues, &o.RejectedVenues,
		&o.TotalTurfs, &o.PendingTurfs,
		&o.TotalBookings, &o.PendingBookings, &o.ConfirmedBookings, &o.CompletedBookings, &o.CancelledBookings,
		&o.TotalRevenue,
	)
	if err != nil {
		return nil, fmt.Errorf("get admin overview: %w", err)
	}

	return &o, nil
}

// GetRevenue sums paid bookings with booking_date in [from, to].
func (r *Repository) GetRevenue(ctx context.Context, from, to time.Time) (*Revenue, error) {
	ctx, cancel := context.WithTimeout(ctx, dbx.QueryTimeoutDuration)
	defer cancel()

	out := &Revenue{
		From:     from.Format(dateLayout),
		To:       to.Format(dateLayout),
		Daily:    []RevenuePoint{},
		TopVenue: []VenueRevenue{},
	}

	const daily = `
		SELECT booking_date::text, COUNT(*), COALESCE(SUM(total_amount), 0)::bigint
		FROM bookings
		WHERE payment_status = 'paid' AND booking_date BETWEEN $1::date AND $2::date
		GROUP BY booking_date
		ORDER BY booking_date`

	rows, err := r.db.Query(ctx, daily, out.From, out.To)
	if err != nil {
		return nil, fmt.Errorf("daily revenue: %w", err)
	}
	for rows.Next() {
		var p RevenuePoint
		if err := rows.Scan(&p.Date, &p.Bookings, &p.Revenue); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan daily revenue: %w", err)
		}
		out.Total += p.Revenue
		out.Daily = append(out.Daily, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("daily revenue: %w", err)
	}

	const byVenue = `
		SELECT v.id, v.name, COUNT(*), COALESCE(SUM(b.total_amount), 0)::bigint AS revenue
		FROM bookings b
		JOIN venues v ON v.id = b.venue_id
		WHERE b.payment_status = 'paid' AND b.booking_date BETWEEN $1::date AND $2::date
		GROUP BY v.id, v.name
		ORDER BY revenue DESC
		LIMIT 10`

	rows, err = r.db.Query(ctx, byVenue, out.From, out.To)
	if err != nil {
		return nil, fmt.Errorf("venue revenue: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var v VenueRevenue
		if err := rows.Scan(&v.VenueID, &v.VenueName, &v.Bookings, &v.Revenue); err != nil {
			return nil, fmt.Errorf("scan venue revenue: %w", err)
		}
		out.TopVenue = append(out.TopVenue, v)
	}
	return out, rows.Err()
}
