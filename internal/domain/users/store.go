package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"turfbook/internal/infra/dbx"

	"github.com/jackc/pgx/v5"
)

type Store interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context, f Filter) ([]User, int, error)
	Patch(ctx context.Context, id int64, p Patch) (*User, error)
	SaveRefreshTokenID(ctx context.Context, userID int64, tokenID string) error
	GetRefreshTokenID(ctx context.Context, userID int64) (string, error)
}

type Repository struct {
	db dbx.Querier
}

func NewRepository(db dbx.Querier) *Repository {
	return &Repository{db: db}
}

const userColumns = `id, first_name, last_name, email, phone, password, role, is_active, created_at, updated_at`

func scanUser(row pgx.Row, u *User, extra ...any) error {
	dest := []any{
		&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.Phone,
		&u.Password.hash, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt,
	}
	return row.Scan(append(dest, extra...)...)
}

// Create inserts the user and its role in one statement, so sign-up never
// leaves a half-created account behind.
func (r *Repository) Create(ctx context.Context, user *User) error {
	ctx, cancel := context.WithTimeout(ctx, dbx.QueryTimeoutDuration)
	defer cancel()

	if user.Role == "" {
		user.Role = RoleGuest
	}
	user.IsActive = true

	const q = `
		INSERT INTO users (first_name, last_name, email, phone, password, role, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`

	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	err := r.db.QueryRow(ctx, q,
		user.FirstName, user.LastName, user.Email, user.Phone,
		user.Password.hash, user.Role, user.IsActive,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if code, _, ok := dbx.PgCode(err); ok && code == dbx.UniqueViolation {
			return ErrDuplicateEmail.With(err)
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// GetByEmail only returns active users.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1 AND is_active`, strings.ToLower(email))
}

func (r *Repository) getOne(ctx context.Context, q string, arg any) (*User, error) {
	ctx, cancel := context.WithTimeout(ctx, dbx.QueryTimeoutDuration)
	defer cancel()

	var u User
	if err := scanUser(r.db.QueryRow(ctx, q, arg), &u); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

func (r *Repository) List(ctx context.Context, f Filter) ([]User, int, error) {
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

	if f.Role != nil {
		where = append(where, "role = "+arg(*f.Role))
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		p := arg(dbx.Contains(s))
		where = append(where, fmt.Sprintf("(first_name || ' ' || last_name ILIKE %[1]s OR email ILIKE %[1]s OR phone ILIKE %[1]s)", p))
	}

	q := `SELECT ` + userColumns + `, COUNT(*) OVER () FROM users`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY created_at DESC, id DESC LIMIT " + arg(f.Limit) + " OFFSET " + arg(f.Offset)

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var (
		out   []User
		total int
	)
	for rows.Next() {
		var u User
		if err := scanUser(rows, &u, &total); err != nil {
			return nil, 0, fmt.Errorf("scan user: %w", err)
		}
		out = append(out, u)
	}
	return out, total, rows.Err()
}

func (r *Repository) Patch(ctx context.Context, id int64, p Patch) (*User, error) {
	if p.Role != nil && !p.Role.Valid() {
		return nil, ErrInvalidRole
	}

	ctx, cancel := context.WithTimeout(ctx, dbx.QueryTimeoutDuration)
	defer cancel()

	q := `
		UPDATE users SET
			role = COALESCE($2, role),
			is_active = COALESCE($3, is_active),
			updated_at = now()
		WHERE id = $1
		RETURNING ` + userColumns

	var u User
	if err := scanUser(r.db.QueryRow(ctx, q, id, p.Role, p.IsActive), &u); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("patch user %d: %w", id, err)
	}
	return &u, nil
}

// SaveRefreshTokenID records the jti of the only refresh token still valid
// for the user.
func (r *Repository) SaveRefreshTokenID(ctx context.Context, userID int64, tokenID string) error {
	ctx, cancel := context.WithTimeout(ctx, dbx.QueryTimeoutDuration)
	defer cancel()

	_, err := r.db.Exec(ctx, `UPDATE users SET refresh_token_id = $1, updated_at = now() WHERE id = $2`, tokenID, userID)
	if err != nil {
		return fmt.Errorf("save refresh token: %w", err)
	}
	return nil
}

func (r *Repository) GetRefreshTokenID(ctx context.Context, userID int64) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, dbx.QueryTimeoutDuration)
	defer cancel()

	var id *string
	err := r.db.QueryRow(ctx, `SELECT refresh_token_id FROM users WHERE id = $1 AND is_active`, userID).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("get refresh token: %w", err)
	}
	if id == nil {
		return "", nil
	}
	return *id, nil
}
