package channel

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-notify/internal/models"
)

type fakePublisher struct {
	subject string
	data    []byte
	err     error
}

func (f *fakePublisher) Publish(subject string, data []byte) error {
	f.subject = subject
	f.data = data
	return f.err
}

func TestPushSenderPublishesEvent(t *testing.T) {
	publisher := &fakePublisher{}
	sender := NewPushSender(publisher, "gema.notify.push", zerolog.Nop())
	require.Equal(t, models.ChannelPush, sender.Channel())

	msg := sampleMessage()
	msg.ActionURL = "/assignments/7"
	require.NoError(t, sender.Send(context.Background(), "s-1", msg))

	require.Equal(t, "gema.notify.push", publisher.subject)
	var event pushEvent
	require.NoError(t, json.Unmarshal(publisher.data, &event))
	require.Equal(t, "s-1", event.RecipientID)
	require.Equal(t, "ASSIGNMENT_DUE_REMINDER_24H", event.Type)
	require.Equal(t, "HIGH", event.Priority)
	require.Equal(t, "/assignments/7", event.ActionURL)
	require.False(t, event.SentAt.IsZero())
}

func TestPushSenderWrapsPublishError(t *testing.T) {
	publisher := &fakePublisher{err: errors.New("nats down")}
	sender := NewPushSender(publisher, "gema.notify.push", zerolog.Nop())

	err := sender.Send(context.Background(), "s-1", sampleMessage())
	require.Error(t, err)
	require.Contains(t, err.Error(), "publishing push event")
}

func TestPushSenderHonorsCancelledContext(t *testing.T) {
	publisher := &fakePublisher{}
	sender := NewPushSender(publisher, "gema.notify.push", zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := sender.Send(ctx, "s-1", sampleMessage())
	require.ErrorIs(t, err, context.Canceled)
	require.Nil(t, publisher.data)
}
