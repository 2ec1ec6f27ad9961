package main

import (
	"fmt"
	"net/http"
	"time"

	"turfbook/internal/apperr"
	"turfbook/internal/domain/approval"
	"turfbook/internal/domain/audit"
	"turfbook/internal/domain/bookings"
	"turfbook/internal/domain/storage"
	"turfbook/internal/domain/turfs"
	"turfbook/internal/domain/users"
	"turfbook/internal/domain/venues"
	"turfbook/internal/events"
	"turfbook/internal/params"
)

const (
	defaultRevenueDays = 30
	maxRevenueDays     = 366
)

var (
	errInvalidRange = apperr.Validation("invalid_range", "from must not be after to, and the range is limited to one year")
	errSelfModify   = apperr.Validation("self_modification", "admins cannot change their own role or deactivate themselves")
)

// adminOverviewHandler godoc
//
//	@Summary		Admin overview
//	@Description	Platform totals: users by role, venues by state, bookings by status and paid revenue.
//	@Tags			admin
//	@Produce		json
//	@Success		200	{object}	admindashboard.Overview
//	@Failure		403	{object}	ErrorResponse
//	@Security		ApiKeyAuth
//	@Router			/admin/overview [get]
func (app *application) adminOverviewHandler(w http.ResponseWriter, r *http.Request) {
	overview, err := app.store.Dashboard.GetOverview(r.Context())
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, overview); err != nil {
		app.errorResponse(w, r, err)
	}
}

// adminRevenueHandler godoc
//
//	@Summary		Revenue report
//	@Description	Paid revenue per booking date and the top venues in [from, to]. Defaults to the last 30 days.
//	@Tags			admin
//	@Produce		json
//	@Param			from	query		string	false	"YYYY-MM-DD"
//	@Param			to		query		string	false	"YYYY-MM-DD"
//	@Success		200		{object}	admindashboard.Revenue
//	@Failure		400		{object}	ErrorResponse
//	@Security		ApiKeyAuth
//	@Router			/admin/revenue [get]
func (app *application) adminRevenueHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	now := app.now().In(app.location)
	to := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	from := to.AddDate(0, 0, -(defaultRevenueDays - 1))

	var err error
	if s := params.String(q, "to"); s != nil {
		if to, err = bookings.ParseDate(*s); err != nil {
			app.badRequestResponse(w, r, fmt.Errorf("to must be YYYY-MM-DD"))
			return
		}
		if params.String(q, "from") == nil {
			from = to.AddDate(0, 0, -(defaultRevenueDays - 1))
		}
	}
	if s := params.String(q, "from"); s != nil {
		if from, err = bookings.ParseDate(*s); err != nil {
			app.badRequestResponse(w, r, fmt.Errorf("from must be YYYY-MM-DD"))
			return
		}
	}
	if from.After(to) || to.Sub(from) > maxRevenueDays*24*time.Hour {
		app.errorResponse(w, r, errInvalidRange)
		return
	}

	revenue, err := app.store.Dashboard.GetRevenue(r.Context(), from, to)
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, revenue); err != nil {
		app.errorResponse(w, r, err)
	}
}

func approvalStatusParam(s string) (*approval.Status, error) {
	if s == "" {
		return nil, nil
	}
	st := approval.Status(s)
	if !st.Valid() {
		return nil, approval.ErrInvalidStatus
	}
	return &st, nil
}

// adminListVenuesHandler godoc
//
//	@Summary		List venues (admin)
//	@Description	Venues in every approval state.
//	@Tags			admin
//	@Produce		json
//	@Param			search	query		string	false	"Search by name or address"
//	@Param			city	query		string	false	"City"
//	@Param			status	query		string	false	"pending|approved|rejected"
//	@Param			page	query		int		false	"Page number"
//	@Param			limit	query		int		false	"Items per page"
//	@Success		200		{object}	Page[venues.Venue]
//	@Failure		400		{object}	ErrorResponse
//	@Security		ApiKeyAuth
//	@Router			/admin/venues [get]
func (app *application) adminListVenuesHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	p := params.ParsePagination(q)

	status, err := approvalStatusParam(q.Get("status"))
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}

	list, total, err := app.store.Venues.List(r.Context(), venues.Filter{
		Search: params.Search(q),
		City:   params.String(q, "city"),
		Status: status,
		Limit:  p.Limit,
		Offset: p.Offset,
	})
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, newPage(list, p, total)); err != nil {
		app.errorResponse(w, r, err)
	}
}

// LifecyclePayload is an admin decision on a venue or turf. Moving away
// from approved or rejected needs override=true and a note.
type LifecyclePayload struct {
	ApprovalStatus *string `json:"approval_status,omitempty" validate:"omitempty,oneof=pending approved rejected"`
	IsActive       *bool   `json:"is_active,omitempty"`
	Override       bool    `json:"override,omitempty"`
	Note           string  `json:"note,omitempty" validate:"max=500"`
}

func readLifecycleChange(w http.ResponseWriter, r *http.Request) (approval.Change, error) {
	var payload LifecyclePayload
	if err := readJSON(w, r, &payload); err != nil {
		return approval.Change{}, err
	}
	if err := Validate.Struct(payload); err != nil {
		return approval.Change{}, err
	}
	if payload.ApprovalStatus == nil && payload.IsActive == nil {
		return approval.Change{}, fmt.Errorf("approval_status or is_active is required")
	}

	c := approval.Change{
		IsActive: payload.IsActive,
		Override: payload.Override,
		Note:     payload.Note,
	}
	if payload.ApprovalStatus != nil {
		s := approval.Status(*payload.ApprovalStatus)
		c.Status = &s
	}
	return c, nil
}

// VenueDecision is the response to an admin venue update.
type VenueDecision struct {
	Venue *venues.Venue `json:"venue"`
	// TurfsApproved counts pending turfs approved together with the venue.
	TurfsApproved int64 `json:"turfs_approved"`
}

// adminUpdateVenueHandler godoc
//
//	@Summary		Approve, reject or toggle a venue
//	@Description	Approving a venue activates it and approves its pending turfs. Every decision is written to the audit log in the same transaction.
//	@Tags			admin
//	@Accept			json
//	@Produce		json
//	@Param			venueID	path		int					true	"Venue ID"
//	@Param			payload	body		LifecyclePayload	true	"Decision"
//	@Success		200		{object}	VenueDecision
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		409		{object}	ErrorResponse	"Transition needs an override"
//	@Security		ApiKeyAuth
//	@Router			/admin/venues/{venueID} [patch]
func (app *application) adminUpdateVenueHandler(w http.ResponseWriter, r *http.Request) {
	id, err := readIDParam(r, "venueID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	change, err := readLifecycleChange(w, r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	ctx := r.Context()
	admin := getUserFromContext(r)

	var (
		out VenueDecision
		res approval.Result
	)
	err = app.store.WithTx(ctx, func(tx *storage.Tx) error {
		v, err := tx.Venues.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}

		res, err = approval.Apply(v.ApprovalStatus, v.IsActive, change)
		if err != nil {
			return err
		}

		if out.Venue, err = tx.Venues.UpdateLifecycle(ctx, id, res, admin.ID); err != nil {
			return err
		}

		if res.Transitioned && res.Status == approval.Approved {
			if out.TurfsApproved, err = tx.Turfs.ApprovePending(ctx, id); err != nil {
				return err
			}
		}

		if res.Transitioned || change.Override || res.IsActive != v.IsActive {
			return tx.Audit.Record(ctx, &audit.Entry{
				Entity:     audit.EntityVenue,
				EntityID:   id,
				FromStatus: res.From,
				ToStatus:   res.Status,
				IsActive:   res.IsActive,
				Override:   change.Override,
				ActorID:    admin.ID,
				Note:       change.Note,
			})
		}
		return nil
	})
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}

	app.logDecision(audit.EntityVenue, id, admin.ID, res, change)
	app.publish(events.VenueReviewed, map[string]any{
		"venue_id":        id,
		"from_status":     res.From,
		"approval_status": res.Status,
		"is_active":       res.IsActive,
		"override":        change.Override,
		"turfs_approved":  out.TurfsApproved,
	})

	if err := app.jsonResponse(w, http.StatusOK, out); err != nil {
		app.errorResponse(w, r, err)
	}
}

// logDecision logs overrides at WARN so they stand out.
func (app *application) logDecision(entity audit.Entity, id, actorID int64, res approval.Result, c approval.Change) {
	fields := []any{
		"entity", entity,
		"entity_id", id,
		"actor_id", actorID,
		"from_status", res.From,
		"approval_status", res.Status,
		"is_active", res.IsActive,
	}
	if c.Override {
		app.logger.Warnw("approval override", append(fields, "note", c.Note)...)
		return
	}
	app.logger.Infow("approval decision", fields...)
}

// adminListTurfsHandler godoc
//
//	@Summary		List turfs (admin)
//	@Tags			admin
//	@Produce		json
//	@Param			search		query		string	false	"Search by turf or venue name"
//	@Param			sport		query		string	false	"Sport"
//	@Param			status		query		string	false	"pending|approved|rejected"
//	@Param			venue_id	query		int		false	"Venue ID"
//	@Param			page		query		int		false	"Page number"
//	@Param			limit		query		int		false	"Items per page"
//	@Success		200			{object}	Page[turfs.Turf]
//	@Failure		400			{object}	ErrorResponse
//	@Security		ApiKeyAuth
//	@Router			/admin/turfs [get]
func (app *application) adminListTurfsHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	p := params.ParsePagination(q)

	status, err := approvalStatusParam(q.Get("status"))
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}
	venueID, err := params.Int64(q, "venue_id")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	list, total, err := app.store.Turfs.List(r.Context(), turfs.Filter{
		VenueID: venueID,
		Sport:   params.String(q, "sport"),
		Status:  status,
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

// adminUpdateTurfHandler godoc
//
//	@Summary		Approve, reject or toggle a turf
//	@Tags			admin
//	@Accept			json
//	@Produce		json
//	@Param			turfID	path		int					true	"Turf ID"
//	@Param			payload	body		LifecyclePayload	true	"Decision"
//	@Success		200		{object}	turfs.Turf
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		409		{object}	ErrorResponse	"Transition needs an override"
//	@Security		ApiKeyAuth
//	@Router			/admin/turfs/{turfID} [patch]
func (app *application) adminUpdateTurfHandler(w http.ResponseWriter, r *http.Request) {
	id, err := readIDParam(r, "turfID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	change, err := readLifecycleChange(w, r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	ctx := r.Context()
	admin := getUserFromContext(r)

	var (
		updated *turfs.Turf
		res     approval.Result
	)
	err = app.store.WithTx(ctx, func(tx *storage.Tx) error {
		t, err := tx.Turfs.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}

		res, err = approval.Apply(t.ApprovalStatus, t.IsActive, change)
		if err != nil {
			return err
		}

		if updated, err = tx.Turfs.UpdateLifecycle(ctx, id, res); err != nil {
			return err
		}

		if res.Transitioned || change.Override || res.IsActive != t.IsActive {
			return tx.Audit.Record(ctx, &audit.Entry{
				Entity:     audit.EntityTurf,
				EntityID:   id,
				FromStatus: res.From,
				ToStatus:   res.Status,
				IsActive:   res.IsActive,
				Override:   change.Override,
				ActorID:    admin.ID,
				Note:       change.Note,
			})
		}
		return nil
	})
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}

	app.logDecision(audit.EntityTurf, id, admin.ID, res, change)
	app.publish(events.TurfReviewed, map[string]any{
		"turf_id":         id,
		"venue_id":        updated.VenueID,
		"from_status":     res.From,
		"approval_status": res.Status,
		"is_active":       res.IsActive,
		"override":        change.Override,
	})

	if err := app.jsonResponse(w, http.StatusOK, updated); err != nil {
		app.errorResponse(w, r, err)
	}
}

// adminListBookingsHandler godoc
//
//	@Summary		List bookings (admin)
//	@Tags			admin
//	@Produce		json
//	@Param			search		query		string	false	"Search by guest, turf or venue name"
//	@Param			sport		query		string	false	"Sport"
//	@Param			status		query		string	false	"pending|confirmed|cancelled|completed"
//	@Param			venue_id	query		int		false	"Venue ID"
//	@Param			turf_id		query		int		false	"Turf ID"
//	@Param			date		query		string	false	"YYYY-MM-DD"
//	@Param			page		query		int		false	"Page number"
//	@Param			limit		query		int		false	"Items per page"
//	@Success		200			{object}	Page[bookings.Booking]
//	@Failure		400			{object}	ErrorResponse
//	@Security		ApiKeyAuth
//	@Router			/admin/bookings [get]
func (app *application) adminListBookingsHandler(w http.ResponseWriter, r *http.Request) {
	f, p, err := bookingFilter(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

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

// adminListUsersHandler godoc
//
//	@Summary		List users (admin)
//	@Tags			admin
//	@Produce		json
//	@Param			search	query		string	false	"Search by name, email or phone"
//	@Param			role	query		string	false	"guest|venue_owner|admin"
//	@Param			page	query		int		false	"Page number"
//	@Param			limit	query		int		false	"Items per page"
//	@Success		200		{object}	Page[users.User]
//	@Failure		400		{object}	ErrorResponse
//	@Security		ApiKeyAuth
//	@Router			/admin/users [get]
func (app *application) adminListUsersHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	p := params.ParsePagination(q)

	f := users.Filter{Search: params.Search(q), Limit: p.Limit, Offset: p.Offset}
	if s := q.Get("role"); s != "" {
		role := users.Role(s)
		if !role.Valid() {
			app.errorResponse(w, r, users.ErrInvalidRole)
			return
		}
		f.Role = &role
	}

	list, total, err := app.store.Users.List(r.Context(), f)
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, newPage(list, p, total)); err != nil {
		app.errorResponse(w, r, err)
	}
}

type AdminUpdateUserPayload struct {
	Role     *string `json:"role,omitempty" validate:"omitempty,oneof=guest venue_owner admin"`
	IsActive *bool   `json:"is_active,omitempty"`
}

// adminUpdateUserHandler godoc
//
//	@Summary		Change a user's role or status
//	@Tags			admin
//	@Accept			json
//	@Produce		json
//	@Param			userID	path		int						true	"User ID"
//	@Param			payload	body		AdminUpdateUserPayload	true	"Changes"
//	@Success		200		{object}	users.User
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Security		ApiKeyAuth
//	@Router			/admin/users/{userID} [patch]
func (app *application) adminUpdateUserHandler(w http.ResponseWriter, r *http.Request) {
	id, err := readIDParam(r, "userID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var payload AdminUpdateUserPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	patch := users.Patch{IsActive: payload.IsActive}
	if payload.Role != nil {
		role := users.Role(*payload.Role)
		patch.Role = &role
	}

	admin := getUserFromContext(r)
	if id == admin.ID && ((patch.Role != nil && *patch.Role != users.RoleAdmin) || (patch.IsActive != nil && !*patch.IsActive)) {
		app.errorResponse(w, r, errSelfModify)
		return
	}

	updated, err := app.store.Users.Patch(r.Context(), id, patch)
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}

	app.logger.Infow("user updated by admin", "user_id", id, "actor_id", admin.ID, "role", updated.Role, "is_active", updated.IsActive)

	if err := app.jsonResponse(w, http.StatusOK, updated); err != nil {
		app.errorResponse(w, r, err)
	}
}

// adminListAuditHandler godoc
//
//	@Summary		Approval audit log
//	@Tags			admin
//	@Produce		json
//	@Param			entity	query		string	false	"venue|turf"
//	@Param			page	query		int		false	"Page number"
//	@Param			limit	query		int		false	"Items per page"
//	@Success		200		{object}	Page[audit.Entry]
//	@Failure		400		{object}	ErrorResponse
//	@Security		ApiKeyAuth
//	@Router			/admin/audit [get]
func (app *application) adminListAuditHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	p := params.ParsePagination(q)

	f := audit.Filter{Limit: p.Limit, Offset: p.Offset}
	switch e := audit.Entity(q.Get("entity")); e {
	case "":
	case audit.EntityVenue, audit.EntityTurf:
		f.Entity = &e
	default:
		app.badRequestResponse(w, r, fmt.Errorf("entity must be venue or turf"))
		return
	}

	list, total, err := app.store.Audit.List(r.Context(), f)
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, newPage(list, p, total)); err != nil {
		app.errorResponse(w, r, err)
	}
}
