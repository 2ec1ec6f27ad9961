package main

import (
	"net/http"
	"strconv"
	"time"

	"turfbook/internal/apperr"

	"github.com/go-chi/chi/v5/middleware"
)

const environmentProduction = "production"

// ErrorResponse is the envelope every failed request answers with.
//
//	@name			ErrorResponse
//	@description	Standard error response format returned by all API endpoints
type ErrorResponse struct {
	Success bool   `json:"success" example:"false"`
	Status  int    `json:"status" example:"409"`
	Code    string `json:"code" example:"slot_unavailable"`
	Message string `json:"message" example:"the requested slot overlaps an existing booking"`
}

var (
	errBadRequest   = apperr.Validation("bad_request", "the request could not be understood")
	errRateLimited  = apperr.New(apperr.KindRateLimited, "rate_limited", "rate limit exceeded")
	errForbidden    = apperr.Forbidden("you are not allowed to perform this action")
	errUnauthorized = apperr.Unauthenticated("authentication required")
)

// errorResponse maps err onto the error taxonomy, logs it and writes the
// envelope. 5xx are logged as errors, everything else as warnings.
func (app *application) errorResponse(w http.ResponseWriter, r *http.Request, err error) {
	ae := apperr.From(err)
	status := ae.Kind.Status()

	fields := []any{
		"method", r.Method,
		"path", r.URL.Path,
		"request_id", middleware.GetReqID(r.Context()),
		"status", status,
		"code", ae.Code,
		"error", err.Error(),
	}

	message := ae.Message
	if status >= http.StatusInternalServerError {
		app.logger.Errorw("server error", fields...)
		if ae.Kind == apperr.KindUpstream && app.config.Env != environmentProduction && ae.Err != nil {
			message = ae.Err.Error()
		}
	} else {
		app.logger.Warnw("request rejected", fields...)
	}

	writeJSONError(w, status, ae.Code, message)
}

// badRequestResponse is for malformed input that never reached the domain:
// bad JSON, failed struct validation, unparsable path params.
func (app *application) badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	e := errBadRequest.With(err)
	e.Message = err.Error()
	app.errorResponse(w, r, e)
}

func (app *application) unauthorizedErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.errorResponse(w, r, errUnauthorized.With(err))
}

func (app *application) unauthorizedBasicErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	w.Header().Set("WWW-Authenticate", `Basic realm="restricted", charset="UTF-8"`)
	app.errorResponse(w, r, errUnauthorized.With(err))
}

func (app *application) forbiddenResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, r, errForbidden)
}

func (app *application) rateLimitExceededResponse(w http.ResponseWriter, r *http.Request, retryAfter time.Duration) {
	secs := int(retryAfter.Round(time.Second) / time.Second)
	if secs < 1 {
		secs = 1
	}
	w.Header().Set("Retry-After", strconv.Itoa(secs))
	app.errorResponse(w, r, errRateLimited)
}
