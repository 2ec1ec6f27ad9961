package main

import (
	"fmt"
	"net/http"

	"turfbook/internal/domain/approval"
	"turfbook/internal/domain/bookings"
	"turfbook/internal/domain/turfs"
	"turfbook/internal/params"
)

type CreateTurfPayload struct {
	Name         string  `json:"name" validate:"required,min=2,max=100"`
	Sport        string  `json:"sport" validate:"required,max=50"`
	PricePerHour int64   `json:"price_per_hour" validate:"required,gt=0"`
	Surface      *string `json:"surface,omitempty" validate:"omitempty,max=50"`
}

// createTurfHandler godoc
//
//	@Summary		Add a turf to a venue
//	@Description	Turfs under an approved venue start approved and active; otherwise they wait for the venue's approval.
//	@Tags			turfs
//	@Accept			json
//	@Produce		json
//	@Param			venueID	path		int					true	"Venue ID"
//	@Param			payload	body		CreateTurfPayload	true	"Turf details"
//	@Success		201		{object}	turfs.Turf
//	@Failure		400		{object}	ErrorResponse
//	@Failure		403		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Security		ApiKeyAuth
//	@Router			/venues/{venueID}/turfs [post]
func (app *application) createTurfHandler(w http.ResponseWriter, r *http.Request) {
	v, err := app.managedVenue(r)
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}

	var payload CreateTurfPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	t := &turfs.Turf{
		VenueID:        v.ID,
		Name:           payload.Name,
		Sport:          payload.Sport,
		PricePerHour:   payload.PricePerHour,
		Surface:        payload.Surface,
		ApprovalStatus: approval.Pending,
		Venue: turfs.VenueRef{
			Name:           v.Name,
			City:           v.City,
			OwnerID:        v.OwnerID,
			ApprovalStatus: v.ApprovalStatus,
			IsActive:       v.IsActive,
			OpeningTime:    v.OpeningTime,
			ClosingTime:    v.ClosingTime,
		},
	}
	if v.ApprovalStatus == approval.Approved {
		t.ApprovalStatus = approval.Approved
		t.IsActive = true
	}

	if err := app.store.Turfs.Create(r.Context(), t); err != nil {
		app.errorResponse(w, r, err)
		return
	}

	app.logger.Infow("turf created", "turf_id", t.ID, "venue_id", v.ID, "approval_status", t.ApprovalStatus)

	if err := app.jsonResponse(w, http.StatusCreated, t); err != nil {
		app.errorResponse(w, r, err)
	}
}

// listTurfsHandler godoc
//
//	@Summary		List turfs
//	@Description	Live turfs of live venues.
//	@Tags			turfs
//	@Produce		json
//	@Param			search		query		string	false	"Search by turf or venue name"
//	@Param			sport		query		string	false	"Sport"
//	@Param			venue_id	query		int		false	"Venue ID"
//	@Param			page		query		int		false	"Page number"
//	@Param			limit		query		int		false	"Items per page"
//	@Success		200			{object}	Page[turfs.Turf]
//	@Failure		400			{object}	ErrorResponse
//	@Router			/turfs [get]
func (app *application) listTurfsHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	p := params.ParsePagination(q)

	venueID, err := params.Int64(q, "venue_id")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	list, total, err := app.store.Turfs.List(r.Context(), turfs.Filter{
		VenueID:    venueID,
		Sport:      params.String(q, "sport"),
		Search:     params.Search(q),
		PublicOnly: true,
		Limit:      p.Limit,
		Offset:     p.Offset,
	})
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, newPage(list, p, total)); err != nil {
		app.errorResponse(w, r, err)
	}
}

// getTurfHandler godoc
//
//	@Summary		Get a turf
//	@Tags			turfs
//	@Produce		json
//	@Param			turfID	path		int	true	"Turf ID"
//	@Success		200		{object}	turfs.Turf
//	@Failure		404		{object}	ErrorResponse
//	@Router			/turfs/{turfID} [get]
func (app *application) getTurfHandler(w http.ResponseWriter, r *http.Request) {
	id, err := readIDParam(r, "turfID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	t, err := app.store.Turfs.GetByID(r.Context(), id)
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}
	if !t.Bookable() && !canManage(getUserFromContext(r), t.Venue.OwnerID) {
		app.errorResponse(w, r, turfs.ErrTurfNotFound)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, t); err != nil {
		app.errorResponse(w, r, err)
	}
}

// Availability is a turf's day split into hourly buckets.
type Availability struct {
	TurfID       int64             `json:"turf_id"`
	Date         string            `json:"date"`
	PricePerHour int64             `json:"price_per_hour"`
	Slots        []bookings.Bucket `json:"slots"`
}

// turfAvailabilityHandler godoc
//
//	@Summary		Turf availability
//	@Description	Hourly buckets between opening and closing time. A bucket is unavailable when any live booking overlaps it or it has already started.
//	@Tags			turfs
//	@Produce		json
//	@Param			turfID	path		int		true	"Turf ID"
//	@Param			date	query		string	true	"Date, YYYY-MM-DD"
//	@Success		200		{object}	Availability
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Router			/turfs/{turfID}/availability [get]
func (app *application) turfAvailabilityHandler(w http.ResponseWriter, r *http.Request) {
	id, err := readIDParam(r, "turfID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	date, err := bookings.ParseDate(r.URL.Query().Get("date"))
	if err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("date must be YYYY-MM-DD"))
		return
	}

	ctx := r.Context()
	t, err := app.store.Turfs.GetByID(ctx, id)
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}
	if !t.Bookable() {
		app.errorResponse(w, r, turfs.ErrTurfNotFound)
		return
	}

	open, err := bookings.ParseClock(t.Venue.OpeningTime)
	if err != nil {
		app.errorResponse(w, r, fmt.Errorf("venue opening time: %w", err))
		return
	}
	close, err := bookings.ParseClock(t.Venue.ClosingTime)
	if err != nil {
		app.errorResponse(w, r, fmt.Errorf("venue closing time: %w", err))
		return
	}

	dateStr := date.Format(bookings.DateLayout)
	taken, err := app.store.Bookings.ListTaken(ctx, t.ID, dateStr)
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}

	buckets := bookings.Buckets(date, open, close, taken)
	now := app.now()
	for i := range buckets {
		start, _ := bookings.ParseClock(buckets[i].StartTime)
		s := bookings.Slot{Date: date, Start: start}
		if s.StartsAt(app.location).Before(now) {
			buckets[i].Available = false
		}
	}
	if buckets == nil {
		buckets = []bookings.Bucket{}
	}

	if err := app.jsonResponse(w, http.StatusOK, Availability{
		TurfID:       t.ID,
		Date:         dateStr,
		PricePerHour: t.PricePerHour,
		Slots:        buckets,
	}); err != nil {
		app.errorResponse(w, r, err)
	}
}

// uploadTurfPhotoHandler godoc
//
//	@Summary		Upload turf photos
//	@Description	Uploads up to 7 photos (form field "photo") and appends their URLs to the turf.
//	@Tags			turfs
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			turfID	path		int		true	"Turf ID"
//	@Param			photo	formData	file	true	"Photo file"
//	@Success		201		{object}	map[string][]string
//	@Failure		400		{object}	ErrorResponse
//	@Failure		403		{object}	ErrorResponse
//	@Security		ApiKeyAuth
//	@Router			/turfs/{turfID}/photos [post]
func (app *application) uploadTurfPhotoHandler(w http.ResponseWriter, r *http.Request) {
	id, err := readIDParam(r, "turfID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	ctx := r.Context()
	t, err := app.store.Turfs.GetByID(ctx, id)
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}
	if !canManage(getUserFromContext(r), t.Venue.OwnerID) {
		app.forbiddenResponse(w, r)
		return
	}

	files, err := readImages(w, r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	urls, err := app.uploadImages(ctx, files, turfImagesFolder)
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}

	for i, u := range urls {
		if err := app.store.Turfs.AddPhotoURL(ctx, t.ID, u); err != nil {
			app.deleteImages(urls[i:])
			app.errorResponse(w, r, err)
			return
		}
	}

	if err := app.jsonResponse(w, http.StatusCreated, map[string][]string{"image_urls": urls}); err != nil {
		app.errorResponse(w, r, err)
	}
}
