package db

import (
	"context"
	"fmt"

	"turfbook/internal/infra/dbx"

	"github.com/jackc/pgx/v5"
)

// WithTx runs fn inside a transaction opened on q. When q is already a pgx.Tx
// the work runs in a savepoint, so helpers compose.
func WithTx(q dbx.Querier, ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := q.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		_ = tx.Rollback(ctx) // no-op after commit
	}()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
