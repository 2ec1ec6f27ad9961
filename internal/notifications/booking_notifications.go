package notifications

import (
	"context"
	"errors"
	"fmt"

	"turfbook/internal/domain/pushtokens"

	"github.com/9ssi7/exponent"
)

var ErrNoTokens = errors.New("no push tokens")

type BookingEvent string

const (
	BookingCreated   BookingEvent = "CREATED"
	BookingConfirmed BookingEvent = "CONFIRMED"
	BookingCompleted BookingEvent = "COMPLETED"
	BookingCancelled BookingEvent = "CANCELLED"
	BookingRefunded  BookingEvent = "REFUNDED"
)

// BookingMessages builds one Expo message per device token.
func BookingMessages(tokens []string, event BookingEvent, reference string) []*exponent.Message {
	var title, body, screen string
	switch event {
	case BookingCreated:
		title = "New Booking Request"
		body = fmt.Sprintf("Booking %s is waiting for your confirmation", reference)
		screen = "owner-bookings-screen"
	case BookingConfirmed:
		title = "Booking Confirmed"
		body = fmt.Sprintf("Your booking %s has been confirmed!", reference)
		screen = "user-bookings-screen"
	case BookingCompleted:
		title = "How was your game?"
		body = fmt.Sprintf("Booking %s is complete. Leave a review for the turf.", reference)
		screen = "user-bookings-screen"
	case BookingCancelled:
		title = "Booking Cancelled"
		body = fmt.Sprintf("Booking %s has been cancelled", reference)
		screen = "user-bookings-screen"
	case BookingRefunded:
		title = "Booking Refunded"
		body = fmt.Sprintf("Booking %s was cancelled and its payment marked for refund", reference)
		screen = "user-bookings-screen"
	default:
		title = "Booking Update"
		body = fmt.Sprintf("Booking %s has an update", reference)
		screen = "user-bookings-screen"
	}

	msgs := make([]*exponent.Message, 0, len(tokens))
	for _, t := range dedupe(tokens) {
		token := exponent.Token(t)
		msgs = append(msgs, &exponent.Message{
			To:    []*exponent.Token{&token},
			Title: title,
			Body:  body,
			// the app deep links on data.screen when the notification is tapped
			Data: map[string]string{
				"type":      "booking",
				"event":     string(event),
				"reference": reference,
				"screen":    screen,
			},
		})
	}
	return msgs
}

// SendBookingNotification pushes event to every device of userID.
func SendBookingNotification(ctx context.Context, push PushSender, tokens pushtokens.Store, userID int64, event BookingEvent, reference string) error {
	tokensMap, err := tokens.TokensFor(ctx, []int64{userID})
	if err != nil {
		return err
	}
	if len(tokensMap[userID]) == 0 {
		return ErrNoTokens
	}

	if _, err := push.Publish(ctx, BookingMessages(tokensMap[userID], event, reference)); err != nil {
		return fmt.Errorf("expo publish: %w", err)
	}
	return nil
}

func dedupe(tokens []string) []string {
	seen := make(map[string]struct{}, len(tokens))
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if _, ok := seen[t]; ok || t == "" {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
