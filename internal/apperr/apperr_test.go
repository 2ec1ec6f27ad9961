package apperr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestFromClassifiesChains(t *testing.T) {
	errSlot := Conflict("slot_unavailable", "requested time slot is not available")

	tests := []struct {
		name   string
		err    error
		kind   Kind
		status int
	}{
		{"sentinel", errSlot, KindConflict, http.StatusConflict},
		{"wrapped sentinel", fmt.Errorf("create booking: %w", errSlot), KindConflict, http.StatusConflict},
		{"deadline", fmt.Errorf("query: %w", context.DeadlineExceeded), KindTimeout, http.StatusGatewayTimeout},
		{"unknown", errors.New("connection reset"), KindUpstream, http.StatusInternalServerError},
		{"validation", Validation("bad_date", "bad date"), KindValidation, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := From(tt.err)
			if got.Kind != tt.kind {
				t.Fatalf("kind = %v, want %v", got.Kind, tt.kind)
			}
			if got.Kind.Status() != tt.status {
				t.Fatalf("status = %d, want %d", got.Kind.Status(), tt.status)
			}
		})
	}
}

func TestWithKeepsIdentity(t *testing.T) {
	errMissing := NotFound("booking_not_found", "booking not found")
	wrapped := errMissing.With(errors.New("no rows"))

	if !errors.Is(wrapped, errMissing) {
		t.Fatal("copy made by With should match its sentinel")
	}
	if errors.Is(wrapped, NotFound("venue_not_found", "venue not found")) {
		t.Fatal("different codes must not match")
	}
	if From(nil) != nil {
		t.Fatal("From(nil) should be nil")
	}
}
