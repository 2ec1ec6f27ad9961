package bookings

import (
	"errors"
	"testing"
)

func TestCanTransition(t *testing.T) {
	all := []Status{StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted}
	allowed := map[[2]Status]bool{
		{StatusPending, StatusConfirmed}:   true,
		{StatusPending, StatusCancelled}:   true,
		{StatusConfirmed, StatusCompleted}: true,
		{StatusConfirmed, StatusCancelled}: true,
	}

	for _, from := range all {
		for _, to := range all {
			want := from == to || allowed[[2]Status{from, to}]
			if got := CanTransition(from, to); got != want {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestCanTransitionPayment(t *testing.T) {
	tests := []struct {
		from, to PaymentStatus
		want     bool
	}{
		{PaymentPending, PaymentPaid, true},
		{PaymentPending, PaymentFailed, true},
		{PaymentFailed, PaymentPaid, true},
		{PaymentFailed, PaymentPending, true},
		{PaymentPaid, PaymentRefunded, true},
		{PaymentPaid, PaymentPending, false},
		{PaymentRefunded, PaymentPaid, false},
		{PaymentPending, PaymentRefunded, false},
	}
	for _, tt := range tests {
		if got := CanTransitionPayment(tt.from, tt.to); got != tt.want {
			t.Errorf("CanTransitionPayment(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestCancelPaidRefunds(t *testing.T) {
	b := &Booking{Status: StatusConfirmed, PaymentStatus: PaymentPaid}
	c, err := Cancel(b, nil)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if c.Status != StatusCancelled || c.PaymentStatus != PaymentRefunded {
		t.Fatalf("got %s/%s, want cancelled/refunded", c.Status, c.PaymentStatus)
	}
	if !c.Cancelled() {
		t.Fatal("expected Cancelled() to be true")
	}
}

func TestCancelIsIdempotent(t *testing.T) {
	b := &Booking{Status: StatusCancelled, PaymentStatus: PaymentRefunded}
	c, err := Cancel(b, nil)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if !c.Noop() || c.Cancelled() {
		t.Fatalf("second cancel should be a no-op, got %+v", c)
	}
}

func TestCancelledCannotBePaid(t *testing.T) {
	b := &Booking{Status: StatusCancelled, PaymentStatus: PaymentPending}
	paid := PaymentPaid
	if _, err := Plan(b, Update{PaymentStatus: &paid}); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("got %v, want ErrInvalidTransition", err)
	}
}

func TestCompletedIsTerminal(t *testing.T) {
	b := &Booking{Status: StatusCompleted, PaymentStatus: PaymentPaid}
	if _, err := Cancel(b, nil); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("got %v, want ErrInvalidTransition", err)
	}
	pending := StatusPending
	if _, err := Plan(b, Update{Status: &pending}); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("got %v, want ErrInvalidTransition", err)
	}
}

func TestConfirmAndPay(t *testing.T) {
	b := &Booking{Status: StatusPending, PaymentStatus: PaymentPending}
	confirmed, paid := StatusConfirmed, PaymentPaid
	c, err := Plan(b, Update{Status: &confirmed, PaymentStatus: &paid})
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if c.Status != StatusConfirmed || c.PaymentStatus != PaymentPaid || c.Noop() {
		t.Fatalf("unexpected change %+v", c)
	}
}
