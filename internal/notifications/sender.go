package notifications

import (
	"context"

	"github.com/9ssi7/exponent"
)

// PushSender is the part of the Expo client the service uses.
type PushSender interface {
	Publish(ctx context.Context, msgs []*exponent.Message) ([]*exponent.MessageResponse, error)
}

// Disabled drops notifications when no Expo access token is configured.
type Disabled struct{}

func (Disabled) Publish(context.Context, []*exponent.Message) ([]*exponent.MessageResponse, error) {
	return nil, nil
}
