package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"turfbook/internal/domain/bookings"
	"turfbook/internal/domain/users"
	"turfbook/internal/params"

	"github.com/go-chi/chi/v5"
)

type userKey string

const userCtx userKey = "user"

// getUserFromContext returns nil on routes without auth.
func getUserFromContext(r *http.Request) *users.User {
	user, _ := r.Context().Value(userCtx).(*users.User)
	return user
}

// readIDParam parses a positive int64 chi URL param.
func readIDParam(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return id, nil
}

// canManage reports whether user may act as the owner of a listing owned by
// ownerID. Admins manage everything.
func canManage(user *users.User, ownerID int64) bool {
	if user == nil {
		return false
	}
	return user.Role == users.RoleAdmin || (user.Role == users.RoleVenueOwner && user.ID == ownerID)
}

// getCurrentUserHandler godoc
//
//	@Summary		Get current user
//	@Description	Returns the profile of the authenticated user.
//	@Tags			users
//	@Produce		json
//	@Success		200	{object}	users.User
//	@Failure		401	{object}	ErrorResponse
//	@Security		ApiKeyAuth
//	@Router			/users/me [get]
func (app *application) getCurrentUserHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)
	if err := app.jsonResponse(w, http.StatusOK, user); err != nil {
		app.errorResponse(w, r, err)
	}
}

// listMyBookingsHandler godoc
//
//	@Summary		List my bookings
//	@Description	Bookings made by the authenticated user, newest first.
//	@Tags			users
//	@Produce		json
//	@Param			status	query		string	false	"pending|confirmed|cancelled|completed"
//	@Param			page	query		int		false	"Page number"
//	@Param			limit	query		int		false	"Items per page"
//	@Success		200		{object}	Page[bookings.Booking]
//	@Failure		400		{object}	ErrorResponse
//	@Security		ApiKeyAuth
//	@Router			/users/me/bookings [get]
func (app *application) listMyBookingsHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)
	q := r.URL.Query()
	p := params.ParsePagination(q)

	status, err := bookingStatusParam(q.Get("status"))
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	list, total, err := app.store.Bookings.List(r.Context(), bookings.Filter{
		UserID: &user.ID,
		Status: status,
		Limit:  p.Limit,
		Offset: p.Offset,
	})
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}
	app.stampAll(list)

	if err := app.jsonResponse(w, http.StatusOK, newPage(list, p, total)); err != nil {
		app.errorResponse(w, r, err)
	}
}

type pushTokenPayload struct {
	Token      string          `json:"token" validate:"required,max=255"`
	DeviceInfo json.RawMessage `json:"device_info,omitempty" swaggertype:"object"`
}

// savePushTokenHandler godoc
//
//	@Summary		Register a push token
//	@Description	Stores an Expo push token for the authenticated user's device.
//	@Tags			users
//	@Accept			json
//	@Param			payload	body	pushTokenPayload	true	"Expo push token"
//	@Success		204
//	@Failure		400	{object}	ErrorResponse
//	@Security		ApiKeyAuth
//	@Router			/users/me/push-token [put]
func (app *application) savePushTokenHandler(w http.ResponseWriter, r *http.Request) {
	var payload pushTokenPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	user := getUserFromContext(r)
	if err := app.store.PushTokens.Upsert(r.Context(), user.ID, payload.Token, payload.DeviceInfo); err != nil {
		app.errorResponse(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// removePushTokenHandler godoc
//
//	@Summary		Remove a push token
//	@Tags			users
//	@Param			token	query	string	true	"Expo push token"
//	@Success		204
//	@Failure		400	{object}	ErrorResponse
//	@Security		ApiKeyAuth
//	@Router			/users/me/push-token [delete]
func (app *application) removePushTokenHandler(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		app.badRequestResponse(w, r, fmt.Errorf("token is required"))
		return
	}

	user := getUserFromContext(r)
	if err := app.store.PushTokens.Remove(r.Context(), user.ID, token); err != nil {
		app.errorResponse(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
