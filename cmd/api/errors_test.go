package main

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"turfbook/internal/apperr"
	"turfbook/internal/domain/bookings"
)

func TestErrorResponse(t *testing.T) {
	dbErr := errors.New("dial tcp 10.0.0.5:5432: connection refused")

	tests := []struct {
		name    string
		env     string
		err     error
		status  int
		code    string
		message string
	}{
		{"domain conflict", "development", bookings.ErrSlotUnavailable, http.StatusConflict, "slot_unavailable", bookings.ErrSlotUnavailable.Message},
		{"wrapped domain error", "development", fmt.Errorf("create: %w", bookings.ErrTurfNotBookable), http.StatusBadRequest, "turf_not_bookable", bookings.ErrTurfNotBookable.Message},
		{"timeout", "development", context.DeadlineExceeded, http.StatusGatewayTimeout, "request_timeout", apperr.ErrTimeout.Message},
		{"upstream detail outside production", "development", dbErr, http.StatusInternalServerError, "upstream_error", dbErr.Error()},
		{"upstream hidden in production", environmentProduction, dbErr, http.StatusInternalServerError, "upstream_error", "the server encountered a problem"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEnv(t)
			e.app.config.Env = tt.env

			rr := httptest.NewRecorder()
			e.app.errorResponse(rr, httptest.NewRequest(http.MethodGet, "/v1/anything", nil), tt.err)

			expectStatus(t, rr, tt.status)
			got := decodeError(t, rr)
			if got.Success || got.Status != tt.status || got.Code != tt.code || got.Message != tt.message {
				t.Errorf("envelope = %+v, want %d %q %q", got, tt.status, tt.code, tt.message)
			}
		})
	}
}

type denyLimiter struct{ retryAfter time.Duration }

func (l denyLimiter) Allow(string) (bool, time.Duration) { return false, l.retryAfter }

func TestRateLimiterMiddleware(t *testing.T) {
	e := newTestEnv(t)
	e.app.config.RateLimiter.Enabled = true
	e.app.rateLimiter = denyLimiter{retryAfter: 3 * time.Second}
	e.mux = e.app.mount()

	rr := e.do(http.MethodGet, "/v1/venues", "", nil)
	expectError(t, rr, http.StatusTooManyRequests, "rate_limited")
	if got := rr.Header().Get("Retry-After"); got != "3" {
		t.Errorf("Retry-After = %q, want 3", got)
	}
}

func TestHealthRequiresBasicAuth(t *testing.T) {
	e := newTestEnv(t)

	basic := func(user, pass string) string {
		return "Basic " + base64.StdEncoding.EncodeToString([]byte(user+":"+pass))
	}

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"wrong password", basic("admin", "nope"), http.StatusUnauthorized},
		{"bearer instead of basic", "Bearer abc", http.StatusUnauthorized},
		{"valid", basic("admin", "secret"), http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/v1/health", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			e.mux.ServeHTTP(rr, req)
			expectStatus(t, rr, tt.status)
			if tt.status == http.StatusUnauthorized && rr.Header().Get("WWW-Authenticate") == "" {
				t.Error("WWW-Authenticate header not set")
			}
		})
	}
}
