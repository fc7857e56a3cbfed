package channel

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-notify/internal/message"
	"github.com/noah-isme/gema-notify/internal/models"
)

type consoleSender struct {
	channel models.Channel
	logger  zerolog.Logger
}

// NewConsoleSender logs deliveries instead of performing them. Used in
// development when a channel's provider is not configured.
func NewConsoleSender(channel models.Channel, logger zerolog.Logger) Sender {
	return &consoleSender{
		channel: channel,
		logger:  logger.With().Str("component", "console_sender").Str("channel", string(channel)).Logger(),
	}
}

func (s *consoleSender) Channel() models.Channel {
	return s.channel
}

func (s *consoleSender) Send(ctx context.Context, recipientID string, msg message.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.logger.Info().
		Str("recipient_id", recipientID).
		Str("type", string(msg.Type)).
		Str("priority", string(msg.Priority)).
		Str("title", msg.Title).
		Msg(msg.Body)

	return nil
}
