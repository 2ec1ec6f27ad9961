package turfs

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"turfbook/internal/domain/approval"
	"turfbook/internal/infra/dbx"

	"github.com/jackc/pgx/v5"
)

type Store interface {
	Create(ctx context.Context, t *Turf) error
	GetByID(ctx context.Context, id int64) (*Turf, error)
	GetForUpdate(ctx context.Context, id int64) (*Turf, error)
	List(ctx context.Context, f Filter) ([]Turf, int, error)
	ListByVenue(ctx context.Context, venueID int64, publicOnly bool) ([]Turf, error)
	UpdateLifecycle(ctx context.Context, id int64, res approval.Result) (*Turf, error)
	ApprovePending(ctx context.Context, venueID int64) (int64, error)
	AddPhotoURL(ctx context.Context, id int64, url string) error
}

type Repository struct {
	db dbx.Querier
}

func NewRepository(db dbx.Querier) *Repository {
	return &Repository{db: db}
}

const turfColumns = `
	t.id, t.venue_id, t.name, t.sport, t.price_per_hour, t.surface, t.image_urls,
	t.is_active, t.approval_status, t.created_at, t.updated_at,
	v.name, v.city, v.owner_id, v.approval_status, v.is_active,
	to_char(v.opening_time, 'HH24:MI'), to_char(v.closing_time, 'HH24:MI')`

func scanTurf(row pgx.Row, t *Turf, extra ...any) error {
	dest := []any{
		&t.ID, &t.VenueID, &t.Name, &t.Sport, &t.PricePerHour, &t.Surface, &t.ImageURLs,
		&t.IsActive, &t.ApprovalStatus, &t.CreatedAt, &t.UpdatedAt,
		&t.Venue.Name, &t.Venue.City, &t.Venue.OwnerID, &t.Venue.ApprovalStatus, &t.Venue.IsActive,
		&t.Venue.OpeningTime, &t.Venue.ClosingTime,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return err
	}
	t.label()
	return nil
}

// Create inserts t. The caller sets the initial lifecycle from the parent
// venue: approved venues get live turfs, others get pending ones.
func (r *Repository) Create(ctx context.Context, t *Turf) error {
	ctx, cancel := context.WithTimeout(ctx, dbx.QueryTimeoutDuration)
	defer cancel()

	if t.ImageURLs == nil {
		t.ImageURLs = []string{}
	}
	if t.ApprovalStatus == "" {
		t.ApprovalStatus = approval.Pending
	}

	const q = `
		INSERT INTO turfs (venue_id, name, sport, price_per_hour, surface, image_urls, is_active, approval_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(ctx, q,
		t.VenueID, t.Name, t.Sport, t.PricePerHour, t.Surface, t.ImageURLs, t.IsActive, t.ApprovalStatus,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert turf: %w", err)
	}
	t.label()
	return nil
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*Turf, error) {
	return r.get(ctx, `SELECT `+turfColumns+` FROM turfs t JOIN venues v ON v.id = t.venue_id WHERE t.id = $1`, id)
}

// GetForUpdate locks the turf row until the surrounding transaction ends.
func (r *Repository) GetForUpdate(ctx context.Context, id int64) (*Turf, error) {
	return r.get(ctx, `SELECT `+turfColumns+` FROM turfs t JOIN venues v ON v.id = t.venue_id WHERE t.id = $1 FOR UPDATE OF t`, id)
}

func (r *Repository) get(ctx context.Context, q string, id int64) (*Turf, error) {
	ctx, cancel := context.WithTimeout(ctx, dbx.QueryTimeoutDuration)
	defer cancel()

	var t Turf
	if err := scanTurf(r.db.QueryRow(ctx, q, id), &t); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTurfNotFound
		}
		return nil, fmt.Errorf("get turf %d: %w", id, err)
	}
	return &t, nil
}

func (r *Repository) List(ctx context.Context, f Filter) ([]Turf, int, error) {
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
		where = append(where,
			"t.approval_status = 'approved' AND t.is_active",
			"v.approval_status = 'approved' AND v.is_active")
	}
	if f.VenueID != nil {
		where = append(where, "t.venue_id = "+arg(*f.VenueID))
	}
	if f.Sport != nil {
		where = append(where, "t.sport = "+arg(*f.Sport))
	}
	if f.Status != nil {
		where = append(where, "t.approval_status = "+arg(*f.Status))
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		p := arg(dbx.Contains(s))
		where = append(where, fmt.Sprintf("(t.name ILIKE %[1]s OR v.name ILIKE %[1]s OR v.city ILIKE %[1]s)", p))
	}

	q := `SELECT ` + turfColumns + `, COUNT(*) OVER () FROM turfs t JOIN venues v ON v.id = t.venue_id`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY t.created_at DESC, t.id DESC LIMIT " + arg(f.Limit) + " OFFSET " + arg(f.Offset)

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list turfs: %w", err)
	}
	defer rows.Close()

	var (
		out   []Turf
		total int
	)
	for rows.Next() {
		var t Turf
		if err := scanTurf(rows, &t, &total); err != nil {
			return nil, 0, fmt.Errorf("scan turf row: %w", err)
		}
		out = append(out, t)
	}
	return out, total, rows.Err()
}

func (r *Repository) ListByVenue(ctx context.Context, venueID int64, publicOnly bool) ([]Turf, error) {
	ctx, cancel := context.WithTimeout(ctx, dbx.QueryTimeoutDuration)
	defer cancel()

	q := `SELECT ` + turfColumns + ` FROM turfs t JOIN venues v ON v.id = t.venue_id WHERE t.venue_id = $1`
	if publicOnly {
		q += ` AND t.approval_status = 'approved' AND t.is_active`
	}
	q += ` ORDER BY t.name`

	rows, err := r.db.Query(ctx, q, venueID)
	if err != nil {
		return nil, fmt.Errorf("list turfs of venue %d: %w", venueID, err)
	}
	defer rows.Close()

	out := []Turf{}
	for rows.Next() {
		var t Turf
		if err := scanTurf(rows, &t); err != nil {
			return nil, fmt.Errorf("scan turf row: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *Repository) UpdateLifecycle(ctx context.Context, id int64, res approval.Result) (*Turf, error) {
	ctx, cancel := context.WithTimeout(ctx, dbx.QueryTimeoutDuration)
	defer cancel()

	const q = `UPDATE turfs SET approval_status = $2, is_active = $3, updated_at = now() WHERE id = $1`

	tag, err := r.db.Exec(ctx, q, id, res.Status, res.IsActive)
	if err != nil {
		return nil, fmt.Errorf("update turf %d lifecycle: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrTurfNotFound
	}
	return r.GetByID(ctx, id)
}

// ApprovePending approves and activates every still-pending turf of a venue.
func (r *Repository) ApprovePending(ctx context.Context, venueID int64) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, dbx.QueryTimeoutDuration)
	defer cancel()

	const q = `
		UPDATE turfs
		SET approval_status = 'approved', is_active = true, updated_at = now()
		WHERE venue_id = $1 AND approval_status = 'pending'`

	tag, err := r.db.Exec(ctx, q, venueID)
	if err != nil {
		return 0, fmt.Errorf("approve pending turfs of venue %d: %w", venueID, err)
	}
	return tag.RowsAffected(), nil
}

func (r *Repository) AddPhotoURL(ctx context.Context, id int64, url string) error {
	ctx, cancel := context.WithTimeout(ctx, dbx.QueryTimeoutDuration)
	defer cancel()

	tag, err := r.db.Exec(ctx, `UPDATE turfs SET image_urls = array_append(image_urls, $1), updated_at = now() WHERE id = $2`, url, id)
	if err != nil {
		return fmt.Errorf("add turf photo: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrTurfNotFound
	}
	return nil
}
