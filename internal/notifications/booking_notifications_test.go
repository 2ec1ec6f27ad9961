package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/9ssi7/exponent"
)

type fakeTokens struct {
	byUser map[int64][]string
}

func (f fakeTokens) Upsert(context.Context, int64, string, json.RawMessage) error { return nil }
func (f fakeTokens) Remove(context.Context, int64, string) error                  { return nil }
func (f fakeTokens) RemoveTokens(context.Context, []string) error                 { return nil }
func (f fakeTokens) PruneStale(context.Context, time.Duration) (int64, error)     { return 0, nil }
func (f fakeTokens) TokensFor(_ context.Context, ids []int64) (map[int64][]string, error) {
	out := map[int64][]string{}
	for _, id := range ids {
		out[id] = f.byUser[id]
	}
	return out, nil
}

type capturePush struct {
	msgs []*exponent.Message
}

func (c *capturePush) Publish(_ context.Context, msgs []*exponent.Message) ([]*exponent.MessageResponse, error) {
	c.msgs = append(c.msgs, msgs...)
	return nil, nil
}

func TestSendBookingNotification(t *testing.T) {
	push := &capturePush{}
	tokens := fakeTokens{byUser: map[int64][]string{
		7: {"ExponentPushToken[a]", "ExponentPushToken[a]", "ExponentPushToken[b]"},
	}}

	if err := SendBookingNotification(context.Background(), push, tokens, 7, BookingConfirmed, "TB-xyz789"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if len(push.msgs) != 2 {
		t.Fatalf("sent %d messages, want 2 (deduplicated)", len(push.msgs))
	}
	if push.msgs[0].Title != "Booking Confirmed" {
		t.Fatalf("title = %q", push.msgs[0].Title)
	}
	if err := SendBookingNotification(context.Background(), push, tokens, 8, BookingConfirmed, "TB-xyz789"); !errors.Is(err, ErrNoTokens) {
		t.Fatalf("got %v, want ErrNoTokens", err)
	}
}
