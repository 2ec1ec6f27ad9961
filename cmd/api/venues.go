package main

import (
	"fmt"
	"net/http"
	"slices"

	"turfbook/internal/apperr"
	"turfbook/internal/domain/bookings"
	"turfbook/internal/domain/turfs"
	"turfbook/internal/domain/venues"
	"turfbook/internal/events"
	"turfbook/internal/params"

	"golang.org/x/sync/errgroup"
)

// turfFanOut bounds concurrent turf queries when venues are listed with
// include=turfs.
const turfFanOut = 4

var (
	errInvalidHours  = apperr.Validation("invalid_opening_hours", "opening_time must be before closing_time")
	errPhotoNotFound = apperr.NotFound("photo_not_found", "photo not found on this listing")
)

type CreateVenuePayload struct {
	Name        string   `json:"name" validate:"required,min=3,max=100"`
	Address     string   `json:"address" validate:"required,max=255"`
	City        string   `json:"city" validate:"required,max=100"`
	Description *string  `json:"description,omitempty" validate:"omitempty,max=2000"`
	Phone       string   `json:"phone" validate:"required,min=7,max=20,numeric"`
	Amenities   []string `json:"amenities,omitempty" validate:"omitempty,max=30,dive,max=50"`
	OpeningTime string   `json:"opening_time,omitempty" validate:"omitempty,hhmm"`
	ClosingTime string   `json:"closing_time,omitempty" validate:"omitempty,hhmm"`
}

// openingHours applies the defaults and checks open < close.
func openingHours(open, close string) (string, string, error) {
	if open == "" {
		open = venues.DefaultOpeningTime
	}
	if close == "" {
		close = venues.DefaultClosingTime
	}
	o, err := bookings.ParseClock(open)
	if err != nil {
		return "", "", errInvalidHours.With(err)
	}
	c, err := bookings.ParseClock(close)
	if err != nil {
		return "", "", errInvalidHours.With(err)
	}
	if o >= c {
		return "", "", errInvalidHours
	}
	return open, close, nil
}

// createVenueHandler godoc
//
//	@Summary		Create a venue
//	@Description	Creates a venue owned by the caller. New venues are pending and inactive until an admin approves them.
//	@Tags			venues
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		CreateVenuePayload	true	"Venue details"
//	@Success		201		{object}	venues.Venue
//	@Failure		400		{object}	ErrorResponse
//	@Failure		409		{object}	ErrorResponse	"Venue with this name exists"
//	@Security		ApiKeyAuth
//	@Router			/venues [post]
func (app *application) createVenueHandler(w http.ResponseWriter, r *http.Request) {
	var payload CreateVenuePayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	open, close, err := openingHours(payload.OpeningTime, payload.ClosingTime)
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}

	user := getUserFromContext(r)
	v := &venues.Venue{
		OwnerID:     user.ID,
		Name:        payload.Name,
		Address:     payload.Address,
		City:        payload.City,
		Description: payload.Description,
		Phone:       payload.Phone,
		Amenities:   payload.Amenities,
		OpeningTime: open,
		ClosingTime: close,
	}
	if v.Amenities == nil {
		v.Amenities = []string{}
	}

	if err := app.store.Venues.Create(r.Context(), v); err != nil {
		app.errorResponse(w, r, err)
		return
	}

	app.logger.Infow("venue created", "venue_id", v.ID, "owner_id", v.OwnerID)

	if err := app.jsonResponse(w, http.StatusCreated, v); err != nil {
		app.errorResponse(w, r, err)
	}
}

// VenueWithTurfs is a venue list item when include=turfs is requested.
type VenueWithTurfs struct {
	venues.Venue
	Turfs []turfs.Turf `json:"turfs"`
}

// listVenuesHandler godoc
//
//	@Summary		List venues
//	@Description	Lists live venues with pagination. include=turfs embeds each venue's live turfs.
//	@Tags			venues
//	@Produce		json
//	@Param			search	query		string	false	"Search by name or address"
//	@Param			city	query		string	false	"City"
//	@Param			sport	query		string	false	"Only venues with a turf for this sport"
//	@Param			include	query		string	false	"turfs"
//	@Param			page	query		int		false	"Page number"
//	@Param			limit	query		int		false	"Items per page"
//	@Success		200		{object}	Page[VenueWithTurfs]
//	@Failure		500		{object}	ErrorResponse
//	@Router			/venues [get]
func (app *application) listVenuesHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	p := params.ParsePagination(q)

	ctx := r.Context()
	list, total, err := app.store.Venues.List(ctx, venues.Filter{
		Search:     params.Search(q),
		City:       params.String(q, "city"),
		Sport:      params.String(q, "sport"),
		PublicOnly: true,
		Limit:      p.Limit,
		Offset:     p.Offset,
	})
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}

	if q.Get("include") != "turfs" {
		if err := app.jsonResponse(w, http.StatusOK, newPage(list, p, total)); err != nil {
			app.errorResponse(w, r, err)
		}
		return
	}

	out := make([]VenueWithTurfs, len(list))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(turfFanOut)
	for i := range list {
		out[i].Venue = list[i]
		g.Go(func() error {
			ts, err := app.store.Turfs.ListByVenue(gctx, list[i].ID, true)
			if err != nil {
				return fmt.Errorf("turfs of venue %d: %w", list[i].ID, err)
			}
			if ts == nil {
				ts = []turfs.Turf{}
			}
			out[i].Turfs = ts
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		app.errorResponse(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, newPage(out, p, total)); err != nil {
		app.errorResponse(w, r, err)
	}
}

// visibleVenue loads a venue the caller may see: live venues for everyone,
// any venue for its owner and admins.
func (app *application) visibleVenue(r *http.Request, id int64) (*venues.Venue, bool, error) {
	v, err := app.store.Venues.GetByID(r.Context(), id)
	if err != nil {
		return nil, false, err
	}
	manager := canManage(getUserFromContext(r), v.OwnerID)
	if !v.Listable() && !manager {
		return nil, false, venues.ErrVenueNotFound
	}
	return v, manager, nil
}

// getVenueHandler godoc
//
//	@Summary		Get a venue
//	@Tags			venues
//	@Produce		json
//	@Param			venueID	path		int	true	"Venue ID"
//	@Success		200		{object}	venues.Venue
//	@Failure		404		{object}	ErrorResponse
//	@Router			/venues/{venueID} [get]
func (app *application) getVenueHandler(w http.ResponseWriter, r *http.Request) {
	id, err := readIDParam(r, "venueID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	v, _, err := app.visibleVenue(r, id)
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, v); err != nil {
		app.errorResponse(w, r, err)
	}
}

// listVenueTurfsHandler godoc
//
//	@Summary		List turfs of a venue
//	@Description	Live turfs for the public; all turfs for the venue owner and admins.
//	@Tags			venues
//	@Produce		json
//	@Param			venueID	path		int	true	"Venue ID"
//	@Success		200		{array}		turfs.Turf
//	@Failure		404		{object}	ErrorResponse
//	@Router			/venues/{venueID}/turfs [get]
func (app *application) listVenueTurfsHandler(w http.ResponseWriter, r *http.Request) {
	id, err := readIDParam(r, "venueID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	_, manager, err := app.visibleVenue(r, id)
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}

	list, err := app.store.Turfs.ListByVenue(r.Context(), id, !manager)
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}
	if list == nil {
		list = []turfs.Turf{}
	}

	if err := app.jsonResponse(w, http.StatusOK, list); err != nil {
		app.errorResponse(w, r, err)
	}
}

// managedVenue loads a venue and checks the caller owns it or is an admin.
func (app *application) managedVenue(r *http.Request) (*venues.Venue, error) {
	id, err := readIDParam(r, "venueID")
	if err != nil {
		return nil, errBadRequest.With(err)
	}
	v, err := app.store.Venues.GetByID(r.Context(), id)
	if err != nil {
		return nil, err
	}
	if !canManage(getUserFromContext(r), v.OwnerID) {
		return nil, errForbidden
	}
	return v, nil
}

// deleteVenueHandler godoc
//
//	@Summary		Delete a venue
//	@Description	Deletes the venue with its turfs, their bookings and its reviews in one transaction. Photos are removed from the media host afterwards.
//	@Tags			venues
//	@Produce		json
//	@Param			venueID	path		int	true	"Venue ID"
//	@Success		200		{object}	venues.CascadeResult
//	@Failure		403		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Security		ApiKeyAuth
//	@Router			/venues/{venueID} [delete]
func (app *application) deleteVenueHandler(w http.ResponseWriter, r *http.Request) {
	v, err := app.managedVenue(r)
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}

	res, err := app.store.Venues.DeleteCascade(r.Context(), v.ID)
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}

	user := getUserFromContext(r)
	app.logger.Infow("venue deleted",
		"venue_id", v.ID,
		"actor_id", user.ID,
		"reviews", res.Reviews,
		"bookings", res.Bookings,
		"turfs", res.Turfs,
	)

	app.deleteImages(res.ImageURLs)
	app.publish(events.VenueDeleted, map[string]any{
		"venue_id": v.ID,
		"actor_id": user.ID,
		"result":   res,
	})

	if err := app.jsonResponse(w, http.StatusOK, res); err != nil {
		app.errorResponse(w, r, err)
	}
}

// uploadVenuePhotoHandler godoc
//
//	@Summary		Upload venue photos
//	@Description	Uploads up to 7 photos (form field "photo") and appends their URLs to the venue.
//	@Tags			venues
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			venueID	path		int		true	"Venue ID"
//	@Param			photo	formData	file	true	"Photo file"
//	@Success		201		{object}	map[string][]string
//	@Failure		400		{object}	ErrorResponse
//	@Failure		403		{object}	ErrorResponse
//	@Security		ApiKeyAuth
//	@Router			/venues/{venueID}/photos [post]
func (app *application) uploadVenuePhotoHandler(w http.ResponseWriter, r *http.Request) {
	v, err := app.managedVenue(r)
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}

	files, err := readImages(w, r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	ctx := r.Context()
	urls, err := app.uploadImages(ctx, files, venueImagesFolder)
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}

	for i, u := range urls {
		if err := app.store.Venues.AddPhotoURL(ctx, v.ID, u); err != nil {
			app.deleteImages(urls[i:])
			app.errorResponse(w, r, err)
			return
		}
	}

	if err := app.jsonResponse(w, http.StatusCreated, map[string][]string{"image_urls": urls}); err != nil {
		app.errorResponse(w, r, err)
	}
}

// deleteVenuePhotoHandler godoc
//
//	@Summary		Delete a venue photo
//	@Tags			venues
//	@Param			venueID		path	int		true	"Venue ID"
//	@Param			photo_url	query	string	true	"URL of the photo to remove"
//	@Success		204
//	@Failure		404	{object}	ErrorResponse
//	@Security		ApiKeyAuth
//	@Router			/venues/{venueID}/photos [delete]
func (app *application) deleteVenuePhotoHandler(w http.ResponseWriter, r *http.Request) {
	v, err := app.managedVenue(r)
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}

	photoURL := r.URL.Query().Get("photo_url")
	if photoURL == "" {
		app.badRequestResponse(w, r, fmt.Errorf("photo_url is required"))
		return
	}
	if !slices.Contains(v.ImageURLs, photoURL) {
		app.errorResponse(w, r, errPhotoNotFound)
		return
	}

	if err := app.store.Venues.RemovePhotoURL(r.Context(), v.ID, photoURL); err != nil {
		app.errorResponse(w, r, err)
		return
	}
	app.deleteImages([]string{photoURL})

	w.WriteHeader(http.StatusNoContent)
}
