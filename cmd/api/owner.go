package main

import (
	"net/http"

	"turfbook/internal/domain/bookings"
	"turfbook/internal/domain/venues"
	"turfbook/internal/params"
)

// listOwnerVenuesHandler godoc
//
//	@Summary		My venues
//	@Description	All venues of the authenticated owner, in every approval state.
//	@Tags			owner
//	@Produce		json
//	@Param			page	query		int	false	"Page number"
//	@Param			limit	query		int	false	"Items per page"
//	@Success		200		{object}	Page[venues.Venue]
//	@Security		ApiKeyAuth
//	@Router			/owner/venues [get]
func (app *application) listOwnerVenuesHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	p := params.ParsePagination(q)
	user := getUserFromContext(r)

	list, total, err := app.store.Venues.List(r.Context(), venues.Filter{
		OwnerID: &user.ID,
		Search:  params.Search(q),
		Limit:   p.Limit,
		Offset:  p.Offset,
	})
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, newPage(list, p, total)); err != nil {
		app.errorResponse(w, r, err)
	}
}

// listOwnerBookingsHandler godoc
//
//	@Summary		Bookings at my venues
//	@Tags			owner
//	@Produce		json
//	@Param			venue_id	query		int		false	"Venue ID"
//	@Param			turf_id		query		int		false	"Turf ID"
//	@Param			status		query		string	false	"pending|confirmed|cancelled|completed"
//	@Param			date		query		string	false	"YYYY-MM-DD"
//	@Param			page		query		int		false	"Page number"
//	@Param			limit		query		int		false	"Items per page"
//	@Success		200			{object}	Page[bookings.Booking]
//	@Failure		400			{object}	ErrorResponse
//	@Security		ApiKeyAuth
//	@Router			/owner/bookings [get]
func (app *application) listOwnerBookingsHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)
	f, p, err := bookingFilter(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	f.OwnerID = &user.ID

	list, total, err := app.store.Bookings.List(r.Context(), f)
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}
	app.stampAll(list)

	if err := app.jsonResponse(w, http.StatusOK, newPage(list, p, total)); err != nil {
		app.errorResponse(w, r, err)
	}
}

// bookingFilter reads the booking list query shared by owners and admins.
func bookingFilter(r *http.Request) (bookings.Filter, params.Pagination, error) {
	q := r.URL.Query()
	p := params.ParsePagination(q)
	f := bookings.Filter{
		Search: params.Search(q),
		Sport:  params.String(q, "sport"),
		Limit:  p.Limit,
		Offset: p.Offset,
	}

	var err error
	if f.VenueID, err = params.Int64(q, "venue_id"); err != nil {
		return f, p, err
	}
	if f.TurfID, err = params.Int64(q, "turf_id"); err != nil {
		return f, p, err
	}
	if f.Status, err = bookingStatusParam(q.Get("status")); err != nil {
		return f, p, err
	}
	if date := params.String(q, "date"); date != nil {
		if _, err := bookings.ParseDate(*date); err != nil {
			return f, p, err
		}
		f.Date = date
	}
	return f, p, nil
}
