package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"turfbook/internal/domain/bookings"
	"turfbook/internal/idempotency"
)

// racingBookings loses the race between the overlap check and the insert:
// the check sees a free slot and the exclusion constraint rejects the row.
type racingBookings struct {
	bookings.Store
}

func (racingBookings) HasOverlap(context.Context, int64, bookings.Slot, int64) (bool, error) {
	return false, nil
}

func (racingBookings) Create(context.Context, *bookings.Booking) error {
	return fmt.Errorf("insert booking: %w", bookings.ErrSlotUnavailable)
}

func TestBookingInsertConflict(t *testing.T) {
	e := newTestEnv(t)
	f := e.liveTurf()

	store := e.app.store.Bookings
	e.app.store.Bookings = racingBookings{Store: store}

	expectError(t, e.book(f.guestToken, f.turf.ID, "10:00", "11:00", idempotencyHeader, "race-1"), http.StatusConflict, "slot_unavailable")
	if n := len(e.db.bookings); n != 0 {
		t.Fatalf("%d bookings stored after a rejected insert", n)
	}

	// the key was released, so the same key books once the slot is free
	e.app.store.Bookings = store
	expectStatus(t, e.book(f.guestToken, f.turf.ID, "10:00", "11:00", idempotencyHeader, "race-1"), http.StatusCreated)
}

// hangupBookings cancels the request while the insert runs, like a client
// that disconnects after the row is written.
type hangupBookings struct {
	bookings.Store
	hangup context.CancelFunc
	err    error
}

func (s hangupBookings) Create(ctx context.Context, b *bookings.Booking) error {
	defer s.hangup()
	if s.err != nil {
		return s.err
	}
	return s.Store.Create(ctx, b)
}

// ctxIdempotency fails on a finished context the way a networked store does.
type ctxIdempotency struct {
	idempotency.Store
}

func (s ctxIdempotency) Complete(ctx context.Context, key string, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.Store.Complete(ctx, key, id)
}

func (s ctxIdempotency) Release(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.Store.Release(ctx, key)
}

func (e *testEnv) bookWithContext(ctx context.Context, token string, turfID int64, start, end, key string) *httptest.ResponseRecorder {
	e.t.Helper()

	body, err := json.Marshal(CreateBookingPayload{TurfID: turfID, BookingDate: testDate, StartTime: start, EndTime: end})
	if err != nil {
		e.t.Fatal(err)
	}
	req := httptest.NewRequestWithContext(ctx, http.MethodPost, "/v1/bookings", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set(idempotencyHeader, key)

	rr := httptest.NewRecorder()
	e.mux.ServeHTTP(rr, req)
	return rr
}

func TestIdempotencyKeySettledAfterHangup(t *testing.T) {
	t.Run("completed", func(t *testing.T) {
		e := newTestEnv(t)
		f := e.liveTurf()
		e.app.idempotency = ctxIdempotency{e.app.idempotency}

		store := e.app.store.Bookings
		ctx, cancel := context.WithCancel(t.Context())
		e.app.store.Bookings = hangupBookings{Store: store, hangup: cancel}

		rr := e.bookWithContext(ctx, f.guestToken, f.turf.ID, "10:00", "11:00", "hangup-1")
		expectStatus(t, rr, http.StatusCreated)
		first := decodeData[bookings.Booking](t, rr)

		e.app.store.Bookings = store
		rr = e.book(f.guestToken, f.turf.ID, "10:00", "11:00", idempotencyHeader, "hangup-1")
		expectStatus(t, rr, http.StatusOK)
		if replay := decodeData[bookings.Booking](t, rr); replay.ID != first.ID {
			t.Fatalf("replay returned booking %d, want %d", replay.ID, first.ID)
		}
	})

	t.Run("released", func(t *testing.T) {
		e := newTestEnv(t)
		f := e.liveTurf()
		e.app.idempotency = ctxIdempotency{e.app.idempotency}

		store := e.app.store.Bookings
		ctx, cancel := context.WithCancel(t.Context())
		e.app.store.Bookings = hangupBookings{Store: store, hangup: cancel, err: context.Canceled}

		rr := e.bookWithContext(ctx, f.guestToken, f.turf.ID, "10:00", "11:00", "hangup-2")
		if rr.Code == http.StatusCreated {
			t.Fatalf("failed insert answered %d", rr.Code)
		}

		e.app.store.Bookings = store
		expectStatus(t, e.book(f.guestToken, f.turf.ID, "10:00", "11:00", idempotencyHeader, "hangup-2"), http.StatusCreated)
	})
}
