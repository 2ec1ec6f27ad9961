package reviews

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"turfbook/internal/infra/dbx"

	"github.com/jackc/pgx/v5"
)

type Store interface {
	Create(ctx context.Context, review *Review) error
	List(ctx context.Context, f Filter) ([]Review, int, error)
}

type Repository struct {
	db dbx.Querier
}

func NewRepository(db dbx.Querier) *Repository {
	return &Repository{db: db}
}

// Create inserts a review for review.BookingID. The insert reads the booking
// in the same statement and only succeeds when it is completed and belongs
// to review.UserID; turf and venue are copied from it.
func (r *Repository) Create(ctx context.Context, review *Review) error {
	ctx, cancel := context.WithTimeout(ctx, dbx.QueryTimeoutDuration)
	defer cancel()

	const q = `
		INSERT INTO reviews (booking_id, user_id, turf_id, venue_id, rating, comment)
		SELECT b.id, b.user_id, b.turf_id, b.venue_id, $3, $4
		FROM bookings b
		WHERE b.id = $1 AND b.user_id = $2 AND b.status = 'completed'
		RETURNING id, turf_id, venue_id, created_at, updated_at`

	err := r.db.QueryRow(ctx, q, review.BookingID, review.UserID, review.Rating, review.Comment).
		Scan(&review.ID, &review.TurfID, &review.VenueID, &review.CreatedAt, &review.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrReviewNotAllowed
		}
		if code, _, ok := dbx.PgCode(err); ok && code == dbx.UniqueViolation {
			return ErrAlreadyReviewed.With(err)
		}
		return fmt.Errorf("insert review: %w", err)
	}
	return nil
}

func (r *Repository) List(ctx context.Context, f Filter) ([]Review, int, error) {
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

	if f.TurfID != nil {
		where = append(where, "rv.turf_id = "+arg(*f.TurfID))
	}
	if f.VenueID != nil {
		where = append(where, "rv.venue_id = "+arg(*f.VenueID))
	}
	if f.UserID != nil {
		where = append(where, "rv.user_id = "+arg(*f.UserID))
	}

	q := `
		SELECT rv.id, rv.booking_id, rv.user_id, rv.turf_id, rv.venue_id, rv.rating, rv.comment,
		       rv.created_at, rv.updated_at, u.first_name, COUNT(*) OVER ()
		FROM reviews rv
		JOIN users u ON u.id = rv.user_id`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY rv.created_at DESC LIMIT " + arg(f.Limit) + " OFFSET " + arg(f.Offset)

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	var (
		out   []Review
		total int
	)
	for rows.Next() {
		var rv Review
		if err := rows.Scan(
			&rv.ID, &rv.BookingID, &rv.UserID, &rv.TurfID, &rv.VenueID, &rv.Rating, &rv.Comment,
			&rv.CreatedAt, &rv.UpdatedAt, &rv.UserName, &total,
		); err != nil {
			return nil, 0, err
		}
		out = append(out, rv)
	}
	return out, total, rows.Err()
}
