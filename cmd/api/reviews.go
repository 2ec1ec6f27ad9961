package main

import (
	"net/http"

	"turfbook/internal/domain/bookings"
	"turfbook/internal/domain/reviews"
	"turfbook/internal/params"
)

type CreateReviewPayload struct {
	BookingID int64  `json:"booking_id" validate:"required,gt=0"`
	Rating    int    `json:"rating" validate:"required,min=1,max=5"`
	Comment   string `json:"comment" validate:"max=1000"`
}

// createReviewHandler godoc
//
//	@Summary		Review a booking
//	@Description	The guest of a completed booking may review it once.
//	@Tags			reviews
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		CreateReviewPayload	true	"Review"
//	@Success		201		{object}	reviews.Review
//	@Failure		400		{object}	ErrorResponse	"Booking not completed"
//	@Failure		404		{object}	ErrorResponse
//	@Failure		409		{object}	ErrorResponse	"Already reviewed"
//	@Security		ApiKeyAuth
//	@Router			/reviews [post]
func (app *application) createReviewHandler(w http.ResponseWriter, r *http.Request) {
	var payload CreateReviewPayload
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

	b, err := app.store.Bookings.GetByID(ctx, payload.BookingID)
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}
	if b.UserID != user.ID {
		app.errorResponse(w, r, bookings.ErrBookingNotFound)
		return
	}
	if b.Status != bookings.StatusCompleted {
		app.errorResponse(w, r, reviews.ErrReviewNotAllowed.Withf("booking is %s", b.Status))
		return
	}

	review := &reviews.Review{
		BookingID: b.ID,
		UserID:    user.ID,
		Rating:    payload.Rating,
		Comment:   payload.Comment,
	}
	// the insert re-checks the booking, so a concurrent change still fails cleanly
	if err := app.store.Reviews.Create(ctx, review); err != nil {
		app.errorResponse(w, r, err)
		return
	}
	review.UserName = user.FullName()

	if err := app.jsonResponse(w, http.StatusCreated, review); err != nil {
		app.errorResponse(w, r, err)
	}
}

// listReviewsHandler godoc
//
//	@Summary		List reviews
//	@Tags			reviews
//	@Produce		json
//	@Param			turf_id		query		int	false	"Turf ID"
//	@Param			venue_id	query		int	false	"Venue ID"
//	@Param			user_id		query		int	false	"User ID"
//	@Param			page		query		int	false	"Page number"
//	@Param			limit		query		int	false	"Items per page"
//	@Success		200			{object}	Page[reviews.Review]
//	@Failure		400			{object}	ErrorResponse
//	@Router			/reviews [get]
func (app *application) listReviewsHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	p := params.ParsePagination(q)

	f := reviews.Filter{Limit: p.Limit, Offset: p.Offset}
	var err error
	if f.TurfID, err = params.Int64(q, "turf_id"); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if f.VenueID, err = params.Int64(q, "venue_id"); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if f.UserID, err = params.Int64(q, "user_id"); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	list, total, err := app.store.Reviews.List(r.Context(), f)
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, newPage(list, p, total)); err != nil {
		app.errorResponse(w, r, err)
	}
}
