package dbx

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is satisfied by *pgxpool.Pool and pgx.Tx, so repositories can run
// either on the pool or inside a caller's transaction.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

const (
	UniqueViolation     = "23505"
	ForeignKeyViolation = "23503"
	ExclusionViolation  = "23P01"
	CheckViolation      = "23514"
)

// PgCode returns the SQLSTATE of err when it is a Postgres error.
func PgCode(err error) (code, constraint string, ok bool) {
	pgErr, ok := asPgError(err)
	if !ok {
		return "", "", false
	}
	return pgErr.Code, pgErr.ConstraintName, true
}

// QueryTimeoutDuration bounds every single statement a repository issues.
const QueryTimeoutDuration = 5 * time.Second
