package bookings

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"turfbook/internal/infra/dbx"

	"github.com/jackc/pgx/v5"
)

type Store interface {
	Create(ctx context.Context, b *Booking) error
	GetByID(ctx context.Context, id int64) (*Booking, error)
	HasOverlap(ctx context.Context, turfID int64, slot Slot, excludeID int64) (bool, error)
	ListTaken(ctx context.Context, turfID int64, date string) ([]Slot, error)
	List(ctx context.Context, f Filter) ([]Booking, int, error)
	Apply(ctx context.Context, id int64, c Change) (*Booking, error)
	CompleteElapsed(ctx context.Context, now time.Time) (int64, error)
}

type Repository struct {
	db dbx.Querier
}

func NewRepository(db dbx.Querier) *Repository {
	return &Repository{db: db}
}

const bookingColumns = `
	b.id, b.user_id, b.turf_id, b.venue_id, b.booking_date::text,
	to_char(b.start_time, 'HH24:MI'), to_char(b.end_time, 'HH24:MI'),
	b.status, b.payment_status, b.total_amount, b.note,
	b.cancelled_at, b.cancellation_reason, b.created_at, b.updated_at`

func scanBooking(row pgx.Row, b *Booking, extra ...any) error {
	dest := []any{
		&b.ID, &b.UserID, &b.TurfID, &b.VenueID, &b.BookingDate,
		&b.StartTime, &b.EndTime,
		&b.Status, &b.PaymentStatus, &b.TotalAmount, &b.Note,
		&b.CancelledAt, &b.CancellationReason, &b.CreatedAt, &b.UpdatedAt,
	}
	return row.Scan(append(dest, extra...)...)
}

// Create inserts b. The bookings_no_overlap exclusion constraint is what
// actually guarantees two live bookings never share a turf minute.
func (r *Repository) Create(ctx context.Context, b *Booking) error {
	ctx, cancel := context.WithTimeout(ctx, dbx.QueryTimeoutDuration)
	defer cancel()

	const q = `
		INSERT INTO bookings (
			user_id, turf_id, venue_id, booking_date, start_time, end_time,
			status, payment_status, total_amount, note
		) VALUES ($1, $2, $3, $4::date, $5::time, $6::time, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at`

	if b.Status == "" {
		b.Status = StatusPending
	}
	if b.PaymentStatus == "" {
		b.PaymentStatus = PaymentPending
	}

	err := r.db.QueryRow(ctx, q,
		b.UserID, b.TurfID, b.VenueID, b.BookingDate, b.StartTime, b.EndTime,
		b.Status, b.PaymentStatus, b.TotalAmount, b.Note,
	).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if code, _, ok := dbx.PgCode(err); ok && code == dbx.ExclusionViolation {
			return ErrSlotUnavailable.With(err)
		}
		return fmt.Errorf("insert booking: %w", err)
	}
	return nil
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, dbx.QueryTimeoutDuration)
	defer cancel()

	q := `SELECT ` + bookingColumns + `, t.name, v.name, t.sport, v.owner_id
		FROM bookings b
		JOIN turfs t ON t.id = b.turf_id
		JOIN venues v ON v.id = b.venue_id
		WHERE b.id = $1`

	var b Booking
	if err := scanBooking(r.db.QueryRow(ctx, q, id), &b, &b.TurfName, &b.VenueName, &b.Sport, &b.VenueOwnerID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("get booking %d: %w", id, err)
	}
	return &b, nil
}

// HasOverlap is the fast path before insert. Touching slots are not overlaps.
func (r *Repository) HasOverlap(ctx context.Context, turfID int64, slot Slot, excludeID int64) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, dbx.QueryTimeoutDuration)
	defer cancel()

	const q = `
		SELECT EXISTS (
			SELECT 1 FROM bookings
			WHERE turf_id = $1
			  AND booking_date = $2::date
			  AND status <> 'cancelled'
			  AND id <> $5
			  AND start_time < $4::time
			  AND $3::time < end_time
		)`

	var exists bool
	err := r.db.QueryRow(ctx, q, turfID, slot.DateString(), slot.StartClock(), slot.EndClock(), excludeID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check overlap: %w", err)
	}
	return exists, nil
}

// ListTaken returns the live slots of a turf on date, ordered by start.
func (r *Repository) ListTaken(ctx context.Context, turfID int64, date string) ([]Slot, error) {
	ctx, cancel := context.WithTimeout(ctx, dbx.QueryTimeoutDuration)
	defer cancel()

	const q = `
		SELECT to_char(start_time, 'HH24:MI'), to_char(end_time, 'HH24:MI')
		FROM bookings
		WHERE turf_id = $1 AND booking_date = $2::date AND status <> 'cancelled'
		ORDER BY start_time`

	rows, err := r.db.Query(ctx, q, turfID, date)
	if err != nil {
		return nil, fmt.Errorf("list taken slots: %w", err)
	}
	defer rows.Close()

	var out []Slot
	for rows.Next() {
		var start, end string
		if err := rows.Scan(&start, &end); err != nil {
			return nil, err
		}
		s, err := ParseSlot(date, start, end)
		if err != nil {
			return nil, fmt.Errorf("stored booking slot %s %s-%s: %w", date, start, end, err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *Repository) List(ctx context.Context, f Filter) ([]Booking, int, error) {
	ctx, cancel := context.WithTimeout(ctx, dbx.QueryTimeoutDuration)
	defer cancel()

	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.UserID != nil {
		where = append(where, "b.user_id = "+arg(*f.UserID))
	}
	if f.OwnerID != nil {
		where = append(where, "v.owner_id = "+arg(*f.OwnerID))
	}
	if f.VenueID != nil {
		where = append(where, "b.venue_id = "+arg(*f.VenueID))
	}
	if f.TurfID != nil {
		where = append(where, "b.turf_id = "+arg(*f.TurfID))
	}
	if f.Status != nil {
		where = append(where, "b.status = "+arg(*f.Status))
	}
	if f.Sport != nil {
		where = append(where, "t.sport = "+arg(*f.Sport))
	}
	if f.Date != nil {
		where = append(where, "b.booking_date = "+arg(*f.Date)+"::date")
	}
	if f.Search != "" {
		p := arg(dbx.Contains(f.Search))
		where = append(where, fmt.Sprintf(
			"(t.name ILIKE %[1]s OR v.name ILIKE %[1]s OR u.first_name || ' ' || u.last_name ILIKE %[1]s OR u.email ILIKE %[1]s)", p))
	}

	q := `SELECT ` + bookingColumns + `, t.name, v.name, t.sport,
			u.first_name || ' ' || u.last_name, COUNT(*) OVER ()
		FROM bookings b
		JOIN turfs t ON t.id = b.turf_id
		JOIN venues v ON v.id = b.venue_id
		JOIN users u ON u.id = b.user_id`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY b.booking_date DESC, b.start_time DESC LIMIT " + arg(f.Limit) + " OFFSET " + arg(f.Offset)

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list bookings: %w", err)
	}
	defer rows.Close()

	var (
		out   []Booking
		total int
	)
	for rows.Next() {
		var b Booking
		if err := scanBooking(rows, &b, &b.TurfName, &b.VenueName, &b.Sport, &b.UserName, &total); err != nil {
			return nil, 0, err
		}
		out = append(out, b)
	}
	return out, total, rows.Err()
}

// Apply writes c only if the booking still holds c.FromStatus and
// c.FromPayment. A lost race returns ErrStaleBooking.
func (r *Repository) Apply(ctx context.Context, id int64, c Change) (*Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, dbx.QueryTimeoutDuration)
	defer cancel()

	q := `
		UPDATE bookings b SET
			status = $4,
			payment_status = $5,
			cancelled_at = CASE WHEN $4 = 'cancelled' AND b.cancelled_at IS NULL THEN now() ELSE b.cancelled_at END,
			cancellation_reason = CASE WHEN $4 = 'cancelled' THEN COALESCE($6, b.cancellation_reason) ELSE b.cancellation_reason END,
			updated_at = now()
		WHERE b.id = $1 AND b.status = $2 AND b.payment_status = $3
		RETURNING ` + bookingColumns

	var b Booking
	err := scanBooking(r.db.QueryRow(ctx, q, id, c.FromStatus, c.FromPayment, c.Status, c.PaymentStatus, c.Reason), &b)
	if err == nil {
		return &b, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("update booking %d: %w", id, err)
	}

	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM bookings WHERE id = $1)`, id).Scan(&exists); err != nil {
		return nil, fmt.Errorf("update booking %d: %w", id, err)
	}
	if !exists {
		return nil, ErrBookingNotFound
	}
	return nil, ErrStaleBooking
}

// CompleteElapsed marks confirmed bookings whose end is not after now as
// completed. now is compared as a wall-clock time at the venues.
func (r *Repository) CompleteElapsed(ctx context.Context, now time.Time) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, dbx.QueryTimeoutDuration)
	defer cancel()

	const q = `
		UPDATE bookings
		SET status = 'completed', updated_at = now()
		WHERE status = 'confirmed'
		  AND booking_date + end_time <= $1::timestamp`

	tag, err := r.db.Exec(ctx, q, now.Format("2006-01-02 15:04:05"))
	if err != nil {
		return 0, fmt.Errorf("complete elapsed bookings: %w", err)
	}
	return tag.RowsAffected(), nil
}
