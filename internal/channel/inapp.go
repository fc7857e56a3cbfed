package channel

import (
	"context"
	"fmt"

	"github.com/noah-isme/gema-notify/internal/dto"
	"github.com/noah-isme/gema-notify/internal/message"
	"github.com/noah-isme/gema-notify/internal/models"
)

// InboxPublisher persists an in-app notification and broadcasts it to live
// sessions. Satisfied by the inbox service.
type InboxPublisher interface {
	Publish(ctx context.Context, payload dto.InboxPublishRequest) (dto.InboxNotificationResponse, error)
}

type inAppSender struct {
	inbox InboxPublisher
}

// NewInAppSender builds the in-app channel on top of the inbox service.
func NewInAppSender(inbox InboxPublisher) Sender {
	return &inAppSender{inbox: inbox}
}

func (s *inAppSender) Channel() models.Channel {
	return models.ChannelInApp
}

func (s *inAppSender) Send(ctx context.Context, recipientID string, msg message.Message) error {
	_, err := s.inbox.Publish(ctx, dto.InboxPublishRequest{
		RecipientID: recipientID,
		Type:        string(msg.Type),
		Priority:    string(msg.Priority),
		Title:       msg.Title,
		Body:        msg.Body,
		ActionURL:   msg.ActionURL,
	})
	if err != nil {
		return fmt.Errorf("publishing inbox notification: %w", err)
	}

	return nil
}
