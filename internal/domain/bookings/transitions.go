package bookings

var statusEdges = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled},
}

var paymentEdges = map[PaymentStatus][]PaymentStatus{
	PaymentPending: {PaymentPaid, PaymentFailed},
	PaymentFailed:  {PaymentPaid, PaymentPending},
	PaymentPaid:    {PaymentRefunded},
}

func CanTransition(from, to Status) bool {
	if from == to {
		return true
	}
	for _, s := range statusEdges[from] {
		if s == to {
			return true
		}
	}
	return false
}

func CanTransitionPayment(from, to PaymentStatus) bool {
	if from == to {
		return true
	}
	for _, p := range paymentEdges[from] {
		if p == to {
			return true
		}
	}
	return false
}

// Update is a requested change to a booking. Nil fields keep their value.
type Update struct {
	Status        *Status
	PaymentStatus *PaymentStatus
	Reason        *string
}

// Change is the validated outcome of applying an Update to a booking.
type Change struct {
	FromStatus    Status
	FromPayment   PaymentStatus
	Status        Status
	PaymentStatus PaymentStatus
	Reason        *string
}

// Noop is true when nothing would be written.
func (c Change) Noop() bool {
	return c.Status == c.FromStatus && c.PaymentStatus == c.FromPayment
}

// Cancelled is true when this change moves the booking into cancelled.
func (c Change) Cancelled() bool {
	return c.Status == StatusCancelled && c.FromStatus != StatusCancelled
}

// Plan validates u against b. Cancelling a paid booking also moves the
// payment to refunded unless the caller picked another valid payment state.
func Plan(b *Booking, u Update) (Change, error) {
	c := Change{
		FromStatus:    b.Status,
		FromPayment:   b.PaymentStatus,
		Status:        b.Status,
		PaymentStatus: b.PaymentStatus,
		Reason:        u.Reason,
	}

	if u.Status != nil {
		if !u.Status.Valid() {
			return c, ErrInvalidTransition.Withf("unknown status %q", *u.Status)
		}
		if !CanTransition(b.Status, *u.Status) {
			return c, ErrInvalidTransition.Withf("%s -> %s", b.Status, *u.Status)
		}
		c.Status = *u.Status
	}

	if u.PaymentStatus != nil {
		if !u.PaymentStatus.Valid() {
			return c, ErrInvalidTransition.Withf("unknown payment status %q", *u.PaymentStatus)
		}
		if !CanTransitionPayment(b.PaymentStatus, *u.PaymentStatus) {
			return c, ErrInvalidTransition.Withf("payment %s -> %s", b.PaymentStatus, *u.PaymentStatus)
		}
		c.PaymentStatus = *u.PaymentStatus
	} else if c.Cancelled() && b.PaymentStatus == PaymentPaid {
		c.PaymentStatus = PaymentRefunded
	}

	if c.Status == StatusCancelled && c.PaymentStatus == PaymentPaid {
		return c, ErrInvalidTransition.Withf("a cancelled booking cannot be paid")
	}

	return c, nil
}

// Cancel plans the cancellation of b.
func Cancel(b *Booking, reason *string) (Change, error) {
	s := StatusCancelled
	return Plan(b, Update{Status: &s, Reason: reason})
}
