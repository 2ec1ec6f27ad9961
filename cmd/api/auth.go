package main

import (
	"errors"
	"fmt"
	"net/http"

	"turfbook/internal/apperr"
	"turfbook/internal/auth"
	"turfbook/internal/domain/users"
	"turfbook/internal/mailer"
)

var errInvalidCredentials = apperr.Unauthenticated("invalid email or password")

type RegisterUserPayload struct {
	FirstName string `json:"first_name" validate:"required,max=50"`
	LastName  string `json:"last_name" validate:"required,max=50"`
	Email     string `json:"email" validate:"required,email,max=255"`
	Phone     string `json:"phone" validate:"required,min=7,max=20,numeric"`
	Password  string `json:"password" validate:"required,min=8,max=72"`
	// Role defaults to guest; admins are never self-registered.
	Role string `json:"role,omitempty" validate:"omitempty,oneof=guest venue_owner"`
}

// registerUserHandler godoc
//
//	@Summary		Registers a user
//	@Description	Creates a guest or venue owner account and sends a welcome e-mail.
//	@Tags			authentication
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		RegisterUserPayload	true	"User credentials"
//	@Success		201		{object}	users.User			"User registered"
//	@Failure		400		{object}	ErrorResponse		"Bad request"
//	@Failure		409		{object}	ErrorResponse		"Email already registered"
//	@Failure		500		{object}	ErrorResponse		"Internal Server Error"
//	@Router			/authentication/user [post]
func (app *application) registerUserHandler(w http.ResponseWriter, r *http.Request) {
	var payload RegisterUserPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	user := &users.User{
		FirstName: payload.FirstName,
		LastName:  payload.LastName,
		Email:     payload.Email,
		Phone:     payload.Phone,
		Role:      users.RoleGuest,
		IsActive:  true,
	}
	if payload.Role != "" {
		user.Role = users.Role(payload.Role)
	}
	// hash the user password.
	if err := user.Password.Set(payload.Password); err != nil {
		app.errorResponse(w, r, err)
		return
	}

	if err := app.store.Users.Create(r.Context(), user); err != nil {
		app.errorResponse(w, r, err)
		return
	}

	vars := struct{ Username string }{Username: user.FirstName}
	app.background(func() {
		status, err := app.mailer.Send(mailer.UserWelcomeTemplate, user.FirstName, user.Email, vars)
		if err != nil {
			if !errors.Is(err, mailer.ErrNotConfigured) {
				app.logger.Errorw("error sending welcome email", "user_id", user.ID, "error", err)
			}
			return
		}
		app.logger.Infow("Email sent", "status code", status, "user_id", user.ID)
	})

	if err := app.jsonResponse(w, http.StatusCreated, user); err != nil {
		app.errorResponse(w, r, err)
	}
}

type CreateUserTokenPayload struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=3,max=72"`
}

// createTokenHandler godoc
//
//	@Summary		Creates a token
//	@Description	Exchanges credentials for an access and a refresh token.
//	@Tags			authentication
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		CreateUserTokenPayload	true	"User credentials"
//	@Success		200		{object}	auth.Tokens				"Tokens"
//	@Failure		400		{object}	ErrorResponse
//	@Failure		401		{object}	ErrorResponse
//	@Router			/authentication/token [post]
func (app *application) createTokenHandler(w http.ResponseWriter, r *http.Request) {
	var payload CreateUserTokenPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	user, err := app.store.Users.GetByEmail(r.Context(), payload.Email)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			app.errorResponse(w, r, errInvalidCredentials)
			return
		}
		app.errorResponse(w, r, err)
		return
	}

	if err := user.Password.Compare(payload.Password); err != nil {
		app.errorResponse(w, r, errInvalidCredentials)
		return
	}

	app.issueTokens(w, r, user)
}

type RefreshTokenPayload struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// refreshTokenHandler godoc
//
//	@Summary		Refresh tokens
//	@Description	Rotates the refresh token. Each refresh token works once.
//	@Tags			authentication
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		RefreshTokenPayload	true	"Refresh token"
//	@Success		200		{object}	auth.Tokens
//	@Failure		401		{object}	ErrorResponse
//	@Router			/authentication/refresh [post]
func (app *application) refreshTokenHandler(w http.ResponseWriter, r *http.Request) {
	var payload RefreshTokenPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	claims, err := app.authenticator.ParseRefreshToken(payload.RefreshToken)
	if err != nil {
		app.unauthorizedErrorResponse(w, r, err)
		return
	}

	ctx := r.Context()

	current, err := app.store.Users.GetRefreshTokenID(ctx, claims.UserID)
	if errors.Is(err, users.ErrNotFound) {
		app.unauthorizedErrorResponse(w, r, err)
		return
	}
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}
	if current == "" || current != claims.TokenID {
		app.errorResponse(w, r, auth.ErrInvalidToken)
		return
	}

	user, err := app.store.Users.GetByID(ctx, claims.UserID)
	if errors.Is(err, users.ErrNotFound) {
		app.unauthorizedErrorResponse(w, r, err)
		return
	}
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}
	if !user.IsActive {
		app.unauthorizedErrorResponse(w, r, fmt.Errorf("user %d is deactivated", user.ID))
		return
	}

	app.issueTokens(w, r, user)
}

func (app *application) issueTokens(w http.ResponseWriter, r *http.Request, user *users.User) {
	tokens, err := app.authenticator.GenerateTokens(user.ID, string(user.Role))
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}

	if err := app.store.Users.SaveRefreshTokenID(r.Context(), user.ID, tokens.RefreshID); err != nil {
		app.errorResponse(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, tokens); err != nil {
		app.errorResponse(w, r, err)
	}
}
