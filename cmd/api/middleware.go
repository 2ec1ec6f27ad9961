package main

import (
	"context"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"turfbook/internal/apperr"
	"turfbook/internal/domain/users"

	"github.com/go-chi/chi/v5/middleware"
)

func (app *application) BasicAuthMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// read the auth header
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				app.unauthorizedBasicErrorResponse(w, r, fmt.Errorf("authorization header is missing"))
				return
			}

			// parse it -> get the base64
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Basic" {
				app.unauthorizedBasicErrorResponse(w, r, fmt.Errorf("authorization header is malformed"))
				return
			}

			// decode it
			decoded, err := base64.StdEncoding.DecodeString(parts[1])
			if err != nil {
				app.unauthorizedBasicErrorResponse(w, r, err)
				return
			}

			// check the credentials
			username := app.config.Auth.Basic.User
			pass := app.config.Auth.Basic.Pass

			creds := strings.SplitN(string(decoded), ":", 2)
			if pass == "" || len(creds) != 2 ||
				subtle.ConstantTimeCompare([]byte(creds[0]), []byte(username)) != 1 ||
				subtle.ConstantTimeCompare([]byte(creds[1]), []byte(pass)) != 1 {
				app.unauthorizedBasicErrorResponse(w, r, fmt.Errorf("invalid credentials"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// bearerToken extracts the token from "Authorization: Bearer <token>".
func bearerToken(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", errMissingAuthHeader
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", fmt.Errorf("authorization header is malformed")
	}
	return parts[1], nil
}

var errMissingAuthHeader = errors.New("authorization header is missing")

// authenticate resolves the bearer token to an active user. Credential
// problems come back as errUnauthorized; store failures are returned as is.
func (app *application) authenticate(r *http.Request) (*users.User, error) {
	token, err := bearerToken(r)
	if err != nil {
		return nil, errUnauthorized.With(err)
	}

	claims, err := app.authenticator.ParseAccessToken(token)
	if err != nil {
		return nil, errUnauthorized.With(err)
	}

	user, err := app.store.Users.GetByID(r.Context(), claims.UserID)
	if errors.Is(err, users.ErrNotFound) {
		return nil, errUnauthorized.With(err)
	}
	if err != nil {
		return nil, fmt.Errorf("load user %d: %w", claims.UserID, err)
	}
	if !user.IsActive {
		return nil, errUnauthorized.With(fmt.Errorf("user %d is deactivated", user.ID))
	}
	return user, nil
}

func (app *application) AuthTokenMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := app.authenticate(r)
		if err != nil {
			app.errorResponse(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), userCtx, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// OptionalAuthMiddleware attaches the user when a valid token is sent and
// lets anonymous requests through. A bad token is still rejected.
func (app *application) OptionalAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := app.authenticate(r)
		switch {
		case errors.Is(err, errMissingAuthHeader):
			next.ServeHTTP(w, r)
		case err != nil:
			app.errorResponse(w, r, err)
		default:
			ctx := context.WithValue(r.Context(), userCtx, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		}
	})
}

// RequireRole must run after AuthTokenMiddleware.
func (app *application) RequireRole(roles ...users.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := getUserFromContext(r)
			if user == nil {
				app.unauthorizedErrorResponse(w, r, errMissingAuthHeader)
				return
			}
			if !slices.Contains(roles, user.Role) {
				app.forbiddenResponse(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (app *application) RateLimiterMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// RealIP has already replaced RemoteAddr with the client address
		if allow, retryAfter := app.rateLimiter.Allow(r.RemoteAddr); !allow {
			app.rateLimitExceededResponse(w, r, retryAfter)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// TimeoutMiddleware puts a deadline on the request context. Handlers answer
// deadline errors through errorResponse, so the timeout envelope is only
// written here when the handler gave up without responding.
func (app *application) TimeoutMiddleware(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			if ww.Status() == 0 && errors.Is(ctx.Err(), context.DeadlineExceeded) {
				app.errorResponse(ww, r, apperr.ErrTimeout.With(ctx.Err()))
			}
		})
	}
}
