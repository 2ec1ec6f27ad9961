package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"turfbook/internal/apperr"
	"turfbook/internal/domain/bookings"
	"turfbook/internal/domain/users"
	"turfbook/internal/events"
	"turfbook/internal/notifications"

	"github.com/go-chi/chi/v5"
	qrcode "github.com/skip2/go-qrcode"
)

const (
	idempotencyHeader    = "Idempotency-Key"
	maxIdempotencyKeyLen = 128
	passSize             = 320
)

var errPassUnavailable = apperr.Conflict("pass_unavailable", "cancelled bookings have no pass")

type CreateBookingPayload struct {
	TurfID      int64   `json:"turf_id" validate:"required,gt=0"`
	BookingDate string  `json:"booking_date" validate:"required,isodate" example:"2026-05-01"`
	StartTime   string  `json:"start_time" validate:"required,hhmm" example:"10:00"`
	EndTime     string  `json:"end_time" validate:"required,hhmm" example:"11:00"`
	Note        *string `json:"note,omitempty" validate:"omitempty,max=500"`
}

func bookingStatusParam(s string) (*bookings.Status, error) {
	if s == "" {
		return nil, nil
	}
	st := bookings.Status(s)
	if !st.Valid() {
		return nil, fmt.Errorf("invalid status %q", s)
	}
	return &st, nil
}

// stampAll fills in the public reference of every booking.
func (app *application) stampAll(list []bookings.Booking) {
	for i := range list {
		if err := app.refs.Stamp(&list[i]); err != nil {
			app.logger.Warnw("booking reference", "booking_id", list[i].ID, "error", err)
		}
	}
}

// loadBooking loads a booking the caller is a party to: its guest, the
// owner of its venue or an admin. manager reports the latter two.
func (app *application) loadBooking(r *http.Request, id int64) (b *bookings.Booking, manager bool, err error) {
	b, err = app.store.Bookings.GetByID(r.Context(), id)
	if err != nil {
		return nil, false, err
	}
	user := getUserFromContext(r)
	manager = canManage(user, b.VenueOwnerID)
	if !manager && b.UserID != user.ID {
		// don't reveal that the booking exists
		return nil, false, bookings.ErrBookingNotFound
	}
	if err := app.refs.Stamp(b); err != nil {
		return nil, false, err
	}
	return b, manager, nil
}

// createBookingHandler godoc
//
//	@Summary		Book a turf
//	@Description	Books [start_time, end_time) on booking_date. Touching slots are allowed; overlapping ones are rejected with 409. Send an Idempotency-Key header to make retries safe.
//	@Tags			bookings
//	@Accept			json
//	@Produce		json
//	@Param			Idempotency-Key	header		string					false	"Client generated key for safe retries"
//	@Param			payload			body		CreateBookingPayload	true	"Slot to book"
//	@Success		201				{object}	bookings.Booking		"Booking created"
//	@Success		200				{object}	bookings.Booking		"Replay of an earlier request with the same Idempotency-Key"
//	@Failure		400				{object}	ErrorResponse
//	@Failure		404				{object}	ErrorResponse
//	@Failure		409				{object}	ErrorResponse	"Slot unavailable"
//	@Security		ApiKeyAuth
//	@Router			/bookings [post]
func (app *application) createBookingHandler(w http.ResponseWriter, r *http.Request) {
	var payload CreateBookingPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	ctx := r.Context()
	user := getUserFromContext(r)

	key := r.Header.Get(idempotencyHeader)
	if len(key) > maxIdempotencyKeyLen {
		app.badRequestResponse(w, r, fmt.Errorf("%s must be at most %d characters", idempotencyHeader, maxIdempotencyKeyLen))
		return
	}
	if key != "" {
		key = fmt.Sprintf("%d:%s", user.ID, key)
		id, reserved, err := app.idempotency.Reserve(ctx, key)
		if err != nil {
			app.errorResponse(w, r, err)
			return
		}
		if !reserved {
			b, _, err := app.loadBooking(r, id)
			if err != nil {
				app.errorResponse(w, r, err)
				return
			}
			if err := app.jsonResponse(w, http.StatusOK, b); err != nil {
				app.errorResponse(w, r, err)
			}
			return
		}
	}

	// the key must be settled even when the client hangs up or the request
	// deadline passes, otherwise it stays pending for the whole TTL
	settle := context.WithoutCancel(ctx)

	b, err := app.createBooking(r, user, payload)
	if err != nil {
		if key != "" {
			if rerr := app.idempotency.Release(settle, key); rerr != nil {
				app.logger.Warnw("release idempotency key", "error", rerr)
			}
		}
		app.errorResponse(w, r, err)
		return
	}

	if key != "" {
		if err := app.idempotency.Complete(settle, key, b.ID); err != nil {
			app.logger.Warnw("complete idempotency key", "booking_id", b.ID, "error", err)
		}
	}

	app.logger.Infow("booking created",
		"booking_id", b.ID,
		"turf_id", b.TurfID,
		"user_id", b.UserID,
		"date", b.BookingDate,
		"start", b.StartTime,
		"end", b.EndTime,
	)

	app.pushBooking(b.VenueOwnerID, notifications.BookingCreated, b.Reference)
	app.publish(events.BookingCreated, b)

	if err := app.jsonResponse(w, http.StatusCreated, b); err != nil {
		app.errorResponse(w, r, err)
	}
}

// createBooking runs the checks in order: turf bookable, slot well formed,
// within opening hours, not in the past, free. The exclusion constraint
// settles races between the overlap check and the insert.
func (app *application) createBooking(r *http.Request, user *users.User, payload CreateBookingPayload) (*bookings.Booking, error) {
	ctx := r.Context()

	slot, err := bookings.ParseSlot(payload.BookingDate, payload.StartTime, payload.EndTime)
	if err != nil {
		return nil, err
	}

	turf, err := app.store.Turfs.GetByID(ctx, payload.TurfID)
	if err != nil {
		return nil, err
	}
	if !turf.Bookable() {
		return nil, bookings.ErrTurfNotBookable
	}

	open, err := bookings.ParseClock(turf.Venue.OpeningTime)
	if err != nil {
		return nil, fmt.Errorf("venue opening time: %w", err)
	}
	close, err := bookings.ParseClock(turf.Venue.ClosingTime)
	if err != nil {
		return nil, fmt.Errorf("venue closing time: %w", err)
	}
	if !slot.Within(open, close) {
		return nil, bookings.ErrSlotOutsideHours.Withf("open %s-%s", turf.Venue.OpeningTime, turf.Venue.ClosingTime)
	}

	if slot.StartsAt(app.location).Before(app.now()) {
		return nil, bookings.ErrSlotInPast
	}

	taken, err := app.store.Bookings.HasOverlap(ctx, turf.ID, slot, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, bookings.ErrSlotUnavailable
	}

	b := &bookings.Booking{
		UserID:        user.ID,
		TurfID:        turf.ID,
		VenueID:       turf.VenueID,
		BookingDate:   slot.DateString(),
		StartTime:     slot.StartClock(),
		EndTime:       slot.EndClock(),
		Status:        bookings.StatusPending,
		PaymentStatus: bookings.PaymentPending,
		TotalAmount:   bookings.Price(turf.PricePerHour, slot.Minutes()),
		Note:          payload.Note,
	}
	if err := app.store.Bookings.Create(ctx, b); err != nil {
		return nil, err
	}

	b.TurfName = turf.Name
	b.VenueName = turf.Venue.Name
	b.Sport = turf.Sport
	b.UserName = user.FullName()
	b.VenueOwnerID = turf.Venue.OwnerID
	if err := app.refs.Stamp(b); err != nil {
		return nil, err
	}
	return b, nil
}

// getBookingHandler godoc
//
//	@Summary		Get a booking
//	@Tags			bookings
//	@Produce		json
//	@Param			bookingID	path		int	true	"Booking ID"
//	@Success		200			{object}	bookings.Booking
//	@Failure		404			{object}	ErrorResponse
//	@Security		ApiKeyAuth
//	@Router			/bookings/{bookingID} [get]
func (app *application) getBookingHandler(w http.ResponseWriter, r *http.Request) {
	id, err := readIDParam(r, "bookingID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	b, _, err := app.loadBooking(r, id)
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, b); err != nil {
		app.errorResponse(w, r, err)
	}
}

// getBookingByReferenceHandler godoc
//
//	@Summary		Look up a booking by reference
//	@Description	Used at check-in by the venue owner or an admin.
//	@Tags			bookings
//	@Produce		json
//	@Param			reference	path		string	true	"Booking reference, e.g. TB-x7Kq2m"
//	@Success		200			{object}	bookings.Booking
//	@Failure		404			{object}	ErrorResponse
//	@Security		ApiKeyAuth
//	@Router			/bookings/reference/{reference} [get]
func (app *application) getBookingByReferenceHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.refs.Decode(chi.URLParam(r, "reference"))
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}

	b, manager, err := app.loadBooking(r, id)
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}
	if !manager {
		app.errorResponse(w, r, bookings.ErrInvalidReference)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, b); err != nil {
		app.errorResponse(w, r, err)
	}
}

// bookingPassHandler godoc
//
//	@Summary		Booking pass
//	@Description	PNG QR code carrying the booking reference, scanned at check-in.
//	@Tags			bookings
//	@Produce		png
//	@Param			bookingID	path	int	true	"Booking ID"
//	@Success		200
//	@Failure		404	{object}	ErrorResponse
//	@Failure		409	{object}	ErrorResponse
//	@Security		ApiKeyAuth
//	@Router			/bookings/{bookingID}/pass.png [get]
func (app *application) bookingPassHandler(w http.ResponseWriter, r *http.Request) {
	id, err := readIDParam(r, "bookingID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	b, _, err := app.loadBooking(r, id)
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}
	if b.Status == bookings.StatusCancelled {
		app.errorResponse(w, r, errPassUnavailable)
		return
	}

	png, err := qrcode.Encode(b.Reference, qrcode.Medium, passSize)
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "private, max-age=300")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

type CancelBookingPayload struct {
	Reason *string `json:"reason,omitempty" validate:"omitempty,max=500"`
}

// cancelBookingHandler godoc
//
//	@Summary		Cancel a booking
//	@Description	Cancels a pending or confirmed booking. A paid booking is moved to refunded. Cancelling twice is a no-op.
//	@Tags			bookings
//	@Accept			json
//	@Produce		json
//	@Param			bookingID	path		int						true	"Booking ID"
//	@Param			payload		body		CancelBookingPayload	false	"Reason"
//	@Success		200			{object}	bookings.Booking
//	@Failure		404			{object}	ErrorResponse
//	@Failure		409			{object}	ErrorResponse
//	@Security		ApiKeyAuth
//	@Router			/bookings/{bookingID}/cancel [post]
func (app *application) cancelBookingHandler(w http.ResponseWriter, r *http.Request) {
	id, err := readIDParam(r, "bookingID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	// the body is optional
	var payload CancelBookingPayload
	if err := readJSON(w, r, &payload); err != nil && !errors.Is(err, io.EOF) {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	b, _, err := app.loadBooking(r, id)
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}

	change, err := bookings.Cancel(b, payload.Reason)
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}

	app.applyBookingChange(w, r, b, change)
}

type UpdateBookingPayload struct {
	Status        *string `json:"status,omitempty" validate:"omitempty,oneof=pending confirmed cancelled completed"`
	PaymentStatus *string `json:"payment_status,omitempty" validate:"omitempty,oneof=pending paid failed refunded"`
	Reason        *string `json:"reason,omitempty" validate:"omitempty,max=500"`
}

// updateBookingHandler godoc
//
//	@Summary		Update booking status
//	@Description	Venue owners and admins move status and payment_status along the allowed transitions. Guests may only cancel.
//	@Tags			bookings
//	@Accept			json
//	@Produce		json
//	@Param			bookingID	path		int						true	"Booking ID"
//	@Param			payload		body		UpdateBookingPayload	true	"Requested change"
//	@Success		200			{object}	bookings.Booking
//	@Failure		400			{object}	ErrorResponse
//	@Failure		403			{object}	ErrorResponse
//	@Failure		409			{object}	ErrorResponse	"Transition not allowed or booking changed concurrently"
//	@Security		ApiKeyAuth
//	@Router			/bookings/{bookingID} [patch]
func (app *application) updateBookingHandler(w http.ResponseWriter, r *http.Request) {
	id, err := readIDParam(r, "bookingID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var payload UpdateBookingPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if payload.Status == nil && payload.PaymentStatus == nil {
		app.badRequestResponse(w, r, fmt.Errorf("status or payment_status is required"))
		return
	}

	b, manager, err := app.loadBooking(r, id)
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}

	u := bookings.Update{Reason: payload.Reason}
	if payload.Status != nil {
		s := bookings.Status(*payload.Status)
		u.Status = &s
	}
	if payload.PaymentStatus != nil {
		p := bookings.PaymentStatus(*payload.PaymentStatus)
		u.PaymentStatus = &p
	}

	// the guest of a booking may only cancel it
	if !manager && (u.PaymentStatus != nil || u.Status == nil || *u.Status != bookings.StatusCancelled) {
		app.forbiddenResponse(w, r)
		return
	}

	change, err := bookings.Plan(b, u)
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}

	app.applyBookingChange(w, r, b, change)
}

// applyBookingChange writes change with compare-and-set and answers with
// the resulting booking.
func (app *application) applyBookingChange(w http.ResponseWriter, r *http.Request, b *bookings.Booking, change bookings.Change) {
	if change.Noop() {
		if err := app.jsonResponse(w, http.StatusOK, b); err != nil {
			app.errorResponse(w, r, err)
		}
		return
	}

	updated, err := app.store.Bookings.Apply(r.Context(), b.ID, change)
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}
	updated.TurfName = b.TurfName
	updated.VenueName = b.VenueName
	updated.Sport = b.Sport
	updated.VenueOwnerID = b.VenueOwnerID
	updated.Reference = b.Reference

	user := getUserFromContext(r)
	app.logger.Infow("booking updated",
		"booking_id", b.ID,
		"actor_id", user.ID,
		"from_status", change.FromStatus,
		"status", change.Status,
		"from_payment_status", change.FromPayment,
		"payment_status", change.PaymentStatus,
	)
	app.announceBookingChange(updated, change)

	if err := app.jsonResponse(w, http.StatusOK, updated); err != nil {
		app.errorResponse(w, r, err)
	}
}
