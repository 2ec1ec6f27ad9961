package venues

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"turfbook/internal/db"
	"turfbook/internal/domain/approval"
	"turfbook/internal/infra/dbx"

	"github.com/jackc/pgx/v5"
)

type Store interface {
	Create(ctx context.Context, v *Venue) error
	GetByID(ctx context.Context, id int64) (*Venue, error)
	GetForUpdate(ctx context.Context, id int64) (*Venue, error)
	List(ctx context.Context, f Filter) ([]Venue, int, error)
	UpdateLifecycle(ctx context.Context, id int64, res approval.Result, reviewerID int64) (*Venue, error)
	AddPhotoURL(ctx context.Context, id int64, url string) error
	RemovePhotoURL(ctx context.Context, id int64, url string) error
	DeleteCascade(ctx context.Context, id int64) (CascadeResult, error)
}

type Repository struct {
	db dbx.Querier
}

func NewRepository(db dbx.Querier) *Repository {
	return &Repository{db: db}
}

const venueColumns = `
	v.id, v.owner_id, v.name, v.address, v.city, v.description, v.phone,
	v.amenities, to_char(v.opening_time, 'HH24:MI'), to_char(v.closing_time, 'HH24:MI'),
	v.image_urls, v.is_active, v.approval_status, v.reviewed_by, v.reviewed_at,
	v.created_at, v.updated_at`

const reviewStatsJoin = `
	LEFT JOIN (
		SELECT venue_id, COUNT(*) AS total_reviews, AVG(rating)::float8 AS average_rating
		FROM reviews
		GROUP BY venue_id
	) rs ON rs.venue_id = v.id`

func scanVenue(row pgx.Row, v *Venue, extra ...any) error {
	dest := []any{
		&v.ID, &v.OwnerID, &v.Name, &v.Address, &v.City, &v.Description, &v.Phone,
		&v.Amenities, &v.OpeningTime, &v.ClosingTime,
		&v.ImageURLs, &v.IsActive, &v.ApprovalStatus, &v.ReviewedBy, &v.ReviewedAt,
		&v.CreatedAt, &v.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return err
	}
	v.label()
	return nil
}

// Create inserts a venue. New venues always start pending and inactive.
func (r *Repository) Create(ctx context.Context, v *Venue) error {
	ctx, cancel := context.WithTimeout(ctx, dbx.QueryTimeoutDuration)
	defer cancel()

	if v.OpeningTime == "" {
		v.OpeningTime = DefaultOpeningTime
	}
	if v.ClosingTime == "" {
		v.ClosingTime = DefaultClosingTime
	}
	if v.Amenities == nil {
		v.Amenities = []string{}
	}
	v.ImageURLs = []string{}
	v.ApprovalStatus = approval.Pending
	v.IsActive = false

	const q = `
		INSERT INTO venues (
			owner_id, name, address, city, description, phone, amenities,
			opening_time, closing_time, image_urls, is_active, approval_status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8::time, $9::time, $10, $11, $12)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(ctx, q,
		v.OwnerID, v.Name, v.Address, v.City, v.Description, v.Phone, v.Amenities,
		v.OpeningTime, v.ClosingTime, v.ImageURLs, v.IsActive, v.ApprovalStatus,
	).Scan(&v.ID, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		if code, _, ok := dbx.PgCode(err); ok && code == dbx.UniqueViolation {
			return ErrVenueExists.With(err)
		}
		return fmt.Errorf("insert venue: %w", err)
	}
	v.label()
	return nil
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*Venue, error) {
	ctx, cancel := context.WithTimeout(ctx, dbx.QueryTimeoutDuration)
	defer cancel()

	q := `SELECT ` + venueColumns + `,
			COALESCE(rs.total_reviews, 0), COALESCE(rs.average_rating, 0)
		FROM venues v` + reviewStatsJoin + `
		WHERE v.id = $1`

	var v Venue
	if err := scanVenue(r.db.QueryRow(ctx, q, id), &v, &v.TotalReviews, &v.AverageRating); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrVenueNotFound
		}
		return nil, fmt.Errorf("get venue %d: %w", id, err)
	}
	return &v, nil
}

// GetForUpdate locks the venue row until the surrounding transaction ends.
func (r *Repository) GetForUpdate(ctx context.Context, id int64) (*Venue, error) {
	ctx, cancel := context.WithTimeout(ctx, dbx.QueryTimeoutDuration)
	defer cancel()

	q := `SELECT ` + venueColumns + ` FROM venues v WHERE v.id = $1 FOR UPDATE`

	var v Venue
	if err := scanVenue(r.db.QueryRow(ctx, q, id), &v); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrVenueNotFound
		}
		return nil, fmt.Errorf("lock venue %d: %w", id, err)
	}
	return &v, nil
}

func (r *Repository) List(ctx context.Context, f Filter) ([]Venue, int, error) {
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

	if f.PublicOnly {
		where = append(where, "v.approval_status = 'approved' AND v.is_active")
	}
	if f.Status != nil {
		where = append(where, "v.approval_status = "+arg(*f.Status))
	}
	if f.OwnerID != nil {
		where = append(where, "v.owner_id = "+arg(*f.OwnerID))
	}
	if f.City != nil {
		where = append(where, "v.city ILIKE "+arg(dbx.EscapeLike(*f.City)))
	}
	if f.Sport != nil {
		cond := "t.venue_id = v.id AND t.sport = " + arg(*f.Sport)
		if f.PublicOnly {
			cond += " AND t.approval_status = 'approved' AND t.is_active"
		}
		where = append(where, "EXISTS (SELECT 1 FROM turfs t WHERE "+cond+")")
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		p := arg(dbx.Contains(s))
		where = append(where, fmt.Sprintf("(v.name ILIKE %[1]s OR v.address ILIKE %[1]s OR v.city ILIKE %[1]s)", p))
	}

	q := `SELECT ` + venueColumns + `,
			COALESCE(rs.total_reviews, 0), COALESCE(rs.average_rating, 0), COUNT(*) OVER ()
		FROM venues v` + reviewStatsJoin
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY v.created_at DESC, v.id DESC LIMIT " + arg(f.Limit) + " OFFSET " + arg(f.Offset)

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list venues: %w", err)
	}
	defer rows.Close()

	var (
		out   []Venue
		total int
	)
	for rows.Next() {
		var v Venue
		if err := scanVenue(rows, &v, &v.TotalReviews, &v.AverageRating, &total); err != nil {
			return nil, 0, fmt.Errorf("scan venue row: %w", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows venues: %w", err)
	}
	return out, total, nil
}

// UpdateLifecycle writes the approval status and is_active flag. reviewed_by
// and reviewed_at move only when the approval status itself changed.
func (r *Repository) UpdateLifecycle(ctx context.Context, id int64, res approval.Result, reviewerID int64) (*Venue, error) {
	ctx, cancel := context.WithTimeout(ctx, dbx.QueryTimeoutDuration)
	defer cancel()

	q := `
		UPDATE venues v SET
			approval_status = $2,
			is_active = $3,
			reviewed_by = CASE WHEN $4 THEN $5 ELSE v.reviewed_by END,
			reviewed_at = CASE WHEN $4 THEN now() ELSE v.reviewed_at END,
			updated_at = now()
		WHERE v.id = $1
		RETURNING ` + venueColumns

	var v Venue
	err := scanVenue(r.db.QueryRow(ctx, q, id, res.Status, res.IsActive, res.Transitioned, reviewerID), &v)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrVenueNotFound
		}
		return nil, fmt.Errorf("update venue %d lifecycle: %w", id, err)
	}
	return &v, nil
}

func (r *Repository) AddPhotoURL(ctx context.Context, id int64, url string) error {
	return r.execOne(ctx, `UPDATE venues SET image_urls = array_append(image_urls, $1), updated_at = now() WHERE id = $2`, url, id)
}

func (r *Repository) RemovePhotoURL(ctx context.Context, id int64, url string) error {
	return r.execOne(ctx, `UPDATE venues SET image_urls = array_remove(image_urls, $1), updated_at = now() WHERE id = $2`, url, id)
}

func (r *Repository) execOne(ctx context.Context, q string, args ...any) error {
	ctx, cancel := context.WithTimeout(ctx, dbx.QueryTimeoutDuration)
	defer cancel()

	tag, err := r.db.Exec(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("update venue photos: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrVenueNotFound
	}
	return nil
}

// DeleteCascade removes the venue with its reviews, bookings and turfs in a
// single transaction.
func (r *Repository) DeleteCascade(ctx context.Context, id int64) (CascadeResult, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*dbx.QueryTimeoutDuration)
	defer cancel()

	var res CascadeResult
	err := db.WithTx(r.db, ctx, func(tx pgx.Tx) error {
		var err error
		res, err = RunCascade(ctx, txCascade{tx: tx}, id)
		return err
	})
	if err != nil {
		return CascadeResult{}, err
	}
	return res, nil
}

type txCascade struct {
	tx pgx.Tx
}

func (c txCascade) VenueImages(ctx context.Context, venueID int64) ([]string, error) {
	const q = `
		SELECT v.image_urls || COALESCE((SELECT array_agg(u) FROM turfs t, unnest(t.image_urls) u WHERE t.venue_id = v.id), '{}')
		FROM venues v
		WHERE v.id = $1
		FOR UPDATE`

	var urls []string
	if err := c.tx.QueryRow(ctx, q, venueID).Scan(&urls); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrVenueNotFound
		}
		return nil, fmt.Errorf("collect venue images: %w", err)
	}
	return urls, nil
}

func (c txCascade) DeleteReviews(ctx context.Context, venueID int64) (int64, error) {
	return c.exec(ctx, "delete reviews", `DELETE FROM reviews WHERE venue_id = $1`, venueID)
}

func (c txCascade) DeleteBookings(ctx context.Context, venueID int64) (int64, error) {
	return c.exec(ctx, "delete bookings", `DELETE FROM bookings WHERE turf_id IN (SELECT id FROM turfs WHERE venue_id = $1)`, venueID)
}

func (c txCascade) DeleteTurfs(ctx context.Context, venueID int64) (int64, error) {
	return c.exec(ctx, "delete turfs", `DELETE FROM turfs WHERE venue_id = $1`, venueID)
}

func (c txCascade) DeleteVenue(ctx context.Context, venueID int64) (int64, error) {
	return c.exec(ctx, "delete venue", `DELETE FROM venues WHERE id = $1`, venueID)
}

func (c txCascade) exec(ctx context.Context, what, q string, venueID int64) (int64, error) {
	tag, err := c.tx.Exec(ctx, q, venueID)
	if err != nil {
		return 0, fmt.Errorf("%s of venue %d: %w", what, venueID, err)
	}
	return tag.RowsAffected(), nil
}
