// Package audit records admin decisions on venue and turf listings.
package audit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"turfbook/internal/domain/approval"
	"turfbook/internal/infra/dbx"
)

type Entity string

const (
	EntityVenue Entity = "venue"
	EntityTurf  Entity = "turf"
)

type Entry struct {
	ID         int64           `json:"id"`
	Entity     Entity          `json:"entity"`
	EntityID   int64           `json:"entity_id"`
	FromStatus approval.Status `json:"from_status"`
	ToStatus   approval.Status `json:"to_status"`
	IsActive   bool            `json:"is_active"`
	Override   bool            `json:"override"`
	ActorID    int64           `json:"actor_id"`
	Note       string          `json:"note,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

type Filter struct {
	Entity *Entity
	Limit  int
	Offset int
}

type Store interface {
	Record(ctx context.Context, e *Entry) error
	List(ctx context.Context, f Filter) ([]Entry, int, error)
}

type Repository struct {
	db dbx.Querier
}

func NewRepository(db dbx.Querier) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Record(ctx context.Context, e *Entry) error {
	ctx, cancel := context.WithTimeout(ctx, dbx.QueryTimeoutDuration)
	defer cancel()

	const q = `
		INSERT INTO approval_audit (entity, entity_id, from_status, to_status, is_active, override, actor_id, note)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at`

	err := r.db.QueryRow(ctx, q,
		e.Entity, e.EntityID, e.FromStatus, e.ToStatus, e.IsActive, e.Override, e.ActorID, e.Note,
	).Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		return fmt.Errorf("record approval audit: %w", err)
	}
	return nil
}

func (r *Repository) List(ctx context.Context, f Filter) ([]Entry, int, error) {
	ctx, cancel := context.WithTimeout(ctx, dbx.QueryTimeoutDuration)
	defer cancel()

	var (
		where []string
		args  []any
	)
	if f.Entity != nil {
		args = append(args, *f.Entity)
		where = append(where, "entity = $1")
	}

	q := `SELECT id, entity, entity_id, from_status, to_status, is_active, override, actor_id, note, created_at, COUNT(*) OVER ()
		FROM approval_audit`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	args = append(args, f.Limit, f.Offset)
	q += fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list approval audit: %w", err)
	}
	defer rows.Close()

	var (
		out   []Entry
		total int
	)
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Entity, &e.EntityID, &e.FromStatus, &e.ToStatus,
			&e.IsActive, &e.Override, &e.ActorID, &e.Note, &e.CreatedAt, &total); err != nil {
			return nil, 0, err
		}
		out = append(out, e)
	}
	return out, total, rows.Err()
}
