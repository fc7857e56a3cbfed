// Package channel contains the delivery transports the notification fan-out
// hands rendered messages to. Every transport sits behind the Sender
// interface; the fan-out owns timeouts, isolation and audit records, a
// sender owns nothing but the handoff to its provider.
package channel

import (
	"context"
	"errors"

	"github.com/noah-isme/gema-notify/internal/message"
	"github.com/noah-isme/gema-notify/internal/models"
)

// ErrNoAddress indicates the recipient has no usable address on a channel.
var ErrNoAddress = errors.New("channel: recipient has no address for this channel")

// Sender delivers one rendered message to one recipient. Implementations may
// retry internally against their provider; the caller treats any returned
// error as a failed attempt and never re-dispatches.
type Sender interface {
	Channel() models.Channel
	Send(ctx context.Context, recipientID string, msg message.Message) error
}

// Directory resolves delivery addresses for recipients. Satisfied by the
// profile repository.
type Directory interface {
	Get(ctx context.Context, recipientID string) (models.RecipientProfile, error)
}
