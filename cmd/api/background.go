package main

import (
	"context"
	"fmt"
	"time"
)

const (
	completionInterval = 30 * time.Minute
	pruneInterval      = 24 * time.Hour
	pushTokenMaxAge    = 90 * 24 * time.Hour
	backgroundTimeout  = 30 * time.Second
)

// background runs fn in a goroutine tracked by app.wg. A panic is logged
// instead of taking the process down.
func (app *application) background(fn func()) {
	app.wg.Add(1)

	go func() {
		defer app.wg.Done()
		defer func() {
			if err := recover(); err != nil {
				app.logger.Errorw("background task panicked", "error", fmt.Sprint(err))
			}
		}()

		fn()
	}()
}

// startJobs launches the periodic jobs. They stop when ctx is cancelled.
func (app *application) startJobs(ctx context.Context) {
	app.every(ctx, completionInterval, "complete elapsed bookings", app.completeElapsedBookings)
	app.every(ctx, pruneInterval, "prune stale push tokens", app.pruneStalePushTokens)
}

// every runs job once immediately and then on each tick.
func (app *application) every(ctx context.Context, interval time.Duration, name string, job func(context.Context) error) {
	app.background(func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			jobCtx, cancel := context.WithTimeout(ctx, backgroundTimeout)
			if err := job(jobCtx); err != nil {
				app.logger.Errorw("background job failed", "job", name, "error", err)
			}
			cancel()

			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	})
}

// completeElapsedBookings marks confirmed bookings whose slot has ended as completed.
func (app *application) completeElapsedBookings(ctx context.Context) error {
	n, err := app.store.Bookings.CompleteElapsed(ctx, app.now().In(app.location))
	if err != nil {
		return err
	}
	if n > 0 {
		app.logger.Infow("bookings marked completed", "count", n)
	}
	return nil
}

func (app *application) pruneStalePushTokens(ctx context.Context) error {
	n, err := app.store.PushTokens.PruneStale(ctx, pushTokenMaxAge)
	if err != nil {
		return err
	}
	if n > 0 {
		app.logger.Infow("stale push tokens removed", "count", n)
	}
	return nil
}
