package storage

import (
	"context"
	"errors"

	"turfbook/internal/db"
	"turfbook/internal/domain/admindashboard"
	"turfbook/internal/domain/audit"
	"turfbook/internal/domain/bookings"
	"turfbook/internal/domain/pushtokens"
	"turfbook/internal/domain/reviews"
	"turfbook/internal/domain/turfs"
	"turfbook/internal/domain/users"
	"turfbook/internal/domain/venues"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Container struct {
	Users      users.Store
	Venues     venues.Store
	Turfs      turfs.Store
	Bookings   bookings.Store
	Reviews    reviews.Store
	Audit      audit.Store
	PushTokens pushtokens.Store
	Dashboard  admindashboard.Store

	// TxRunner executes a unit of work atomically. NewContainer wires it to
	// the pool; tests plug in their own.
	TxRunner TxRunner
}

// Tx is a tx-scoped set of repos for multi-step writes.
type Tx struct {
	Venues   venues.Store
	Turfs    turfs.Store
	Bookings bookings.Store
	Audit    audit.Store
}

type TxRunner func(ctx context.Context, fn func(tx *Tx) error) error

func NewContainer(pool *pgxpool.Pool) *Container {
	return &Container{
		Users:      users.NewRepository(pool),
		Venues:     venues.NewRepository(pool),
		Turfs:      turfs.NewRepository(pool),
		Bookings:   bookings.NewRepository(pool),
		Reviews:    reviews.NewRepository(pool),
		Audit:      audit.NewRepository(pool),
		PushTokens: pushtokens.NewRepository(pool),
		Dashboard:  admindashboard.NewRepository(pool),
		TxRunner:   poolRunner(pool),
	}
}

func poolRunner(pool *pgxpool.Pool) TxRunner {
	return func(ctx context.Context, fn func(tx *Tx) error) error {
		return db.WithTx(pool, ctx, func(tx pgx.Tx) error {
			return fn(&Tx{
				Venues:   venues.NewRepository(tx),
				Turfs:    turfs.NewRepository(tx),
				Bookings: bookings.NewRepository(tx),
				Audit:    audit.NewRepository(tx),
			})
		})
	}
}

// WithTx runs fn atomically: everything fn writes through tx commits or
// nothing does.
func (c *Container) WithTx(ctx context.Context, fn func(tx *Tx) error) error {
	if c.TxRunner == nil {
		return errors.New("storage: no transaction runner configured")
	}
	return c.TxRunner(ctx, fn)
}
