package channel

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-notify/internal/message"
	"github.com/noah-isme/gema-notify/internal/models"
)

// PushPublisher publishes raw push events. Satisfied by *nats.Conn.
type PushPublisher interface {
	Publish(subject string, data []byte) error
}

type pushSender struct {
	publisher PushPublisher
	subject   string
	logger    zerolog.Logger
}

type pushEvent struct {
	RecipientID string    `json:"recipient_id"`
	Type        string    `json:"type"`
	Priority    string    `json:"priority"`
	Title       string    `json:"title"`
	Body        string    `json:"body"`
	ActionURL   string    `json:"action_url,omitempty"`
	SentAt      time.Time `json:"sent_at"`
}

// NewPushSender builds a sender that hands push notifications to the mobile
// gateway over NATS; the gateway queue-subscribes on the subject and talks
// to the platform push providers.
func NewPushSender(publisher PushPublisher, subject string, logger zerolog.Logger) Sender {
	return &pushSender{
		publisher: publisher,
		subject:   subject,
		logger:    logger.With().Str("component", "push_sender").Logger(),
	}
}

func (s *pushSender) Channel() models.Channel {
	return models.ChannelPush
}

func (s *pushSender) Send(ctx context.Context, recipientID string, msg message.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	payload, err := json.Marshal(pushEvent{
		RecipientID: recipientID,
		Type:        string(msg.Type),
		Priority:    string(msg.Priority),
		Title:       msg.Title,
		Body:        msg.Body,
		ActionURL:   msg.ActionURL,
		SentAt:      time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	if err := s.publisher.Publish(s.subject, payload); err != nil {
		return fmt.Errorf("publishing push event: %w", err)
	}

	s.logger.Debug().Str("recipient_id", recipientID).Str("type", string(msg.Type)).Msg("push event published")
	return nil
}
