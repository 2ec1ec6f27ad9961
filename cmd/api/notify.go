package main

import (
	"context"
	"errors"

	"turfbook/internal/domain/bookings"
	"turfbook/internal/events"
	"turfbook/internal/mailer"
	"turfbook/internal/notifications"
)

// publish sends a domain event in the background. Failures are logged only;
// the change it describes is already committed.
func (app *application) publish(routingKey string, data any) {
	app.background(func() {
		ctx, cancel := context.WithTimeout(context.Background(), backgroundTimeout)
		defer cancel()

		if err := app.events.Publish(ctx, routingKey, data); err != nil {
			app.logger.Warnw("event publish failed", "routing_key", routingKey, "error", err)
		}
	})
}

func (app *application) pushBooking(userID int64, event notifications.BookingEvent, reference string) {
	app.background(func() {
		ctx, cancel := context.WithTimeout(context.Background(), backgroundTimeout)
		defer cancel()

		err := notifications.SendBookingNotification(ctx, app.push, app.store.PushTokens, userID, event, reference)
		switch {
		case errors.Is(err, notifications.ErrNoTokens):
			app.logger.Debugw("no push tokens", "user_id", userID, "event", event)
		case err != nil:
			app.logger.Warnw("booking push failed", "user_id", userID, "event", event, "error", err)
		}
	})
}

type bookingMailData struct {
	Username  string
	VenueName string
	TurfName  string
	Date      string
	StartTime string
	EndTime   string
	Reference string
	Refunded  bool
}

// mailBooking e-mails the guest of b using templateFile.
func (app *application) mailBooking(templateFile string, b bookings.Booking) {
	app.background(func() {
		ctx, cancel := context.WithTimeout(context.Background(), backgroundTimeout)
		defer cancel()

		guest, err := app.store.Users.GetByID(ctx, b.UserID)
		if err != nil {
			app.logger.Warnw("booking mail skipped", "booking_id", b.ID, "error", err)
			return
		}

		data := bookingMailData{
			Username:  guest.FirstName,
			VenueName: b.VenueName,
			TurfName:  b.TurfName,
			Date:      b.BookingDate,
			StartTime: b.StartTime,
			EndTime:   b.EndTime,
			Reference: b.Reference,
			Refunded:  b.PaymentStatus == bookings.PaymentRefunded,
		}
		if _, err := app.mailer.Send(templateFile, guest.FirstName, guest.Email, data); err != nil {
			if !errors.Is(err, mailer.ErrNotConfigured) {
				app.logger.Warnw("booking mail failed", "booking_id", b.ID, "template", templateFile, "error", err)
			}
		}
	})
}

// announceBookingChange fans a committed booking change out to the guest
// and to downstream consumers.
func (app *application) announceBookingChange(b *bookings.Booking, c bookings.Change) {
	routingKey := events.BookingUpdated
	if c.Cancelled() {
		routingKey = events.BookingCancelled
	}
	app.publish(routingKey, map[string]any{
		"booking_id":          b.ID,
		"reference":           b.Reference,
		"from_status":         c.FromStatus,
		"status":              c.Status,
		"from_payment_status": c.FromPayment,
		"payment_status":      c.PaymentStatus,
	})

	switch {
	case c.Cancelled():
		event := notifications.BookingCancelled
		if c.PaymentStatus == bookings.PaymentRefunded && c.FromPayment != bookings.PaymentRefunded {
			event = notifications.BookingRefunded
		}
		app.pushBooking(b.UserID, event, b.Reference)
		app.mailBooking(mailer.BookingCancelledTemplate, *b)
	case c.Status == bookings.StatusConfirmed && c.FromStatus != bookings.StatusConfirmed:
		app.pushBooking(b.UserID, notifications.BookingConfirmed, b.Reference)
		app.mailBooking(mailer.BookingConfirmationTemplate, *b)
	case c.Status == bookings.StatusCompleted && c.FromStatus != bookings.StatusCompleted:
		app.pushBooking(b.UserID, notifications.BookingCompleted, b.Reference)
	}
}
