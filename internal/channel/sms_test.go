package channel

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-notify/internal/message"
	"github.com/noah-isme/gema-notify/internal/models"
)

type fakeDirectory struct {
	profiles map[string]models.RecipientProfile
}

func (f *fakeDirectory) Get(ctx context.Context, recipientID string) (models.RecipientProfile, error) {
	profile, ok := f.profiles[recipientID]
	if !ok {
		return models.RecipientProfile{}, errors.New("profile not found")
	}
	return profile, nil
}

func sampleMessage() message.Message {
	return message.Message{
		Type:     message.TypeDueReminder24h,
		Priority: message.PriorityHigh,
		Category: message.CategoryDeadlines,
		Title:    "Due in 24 hours: Essay",
		Body:     "Your essay is due tomorrow.",
	}
}

func TestSMSSenderPostsToGateway(t *testing.T) {
	var received smsPayload
	var authorization string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authorization = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	directory := &fakeDirectory{profiles: map[string]models.RecipientProfile{
		"s-1": {RecipientID: "s-1", Phone: "+15550001111"},
	}}
	sender := NewSMSSender(SMSConfig{GatewayURL: server.URL, APIKey: "token", From: "GEMA"}, directory, zerolog.Nop())

	require.NoError(t, sender.Send(context.Background(), "s-1", sampleMessage()))
	require.Equal(t, "Bearer token", authorization)
	require.Equal(t, "+15550001111", received.To)
	require.Equal(t, "GEMA", received.From)
	require.Contains(t, received.Body, "Due in 24 hours")
}

func TestSMSSenderRejectsMissingPhone(t *testing.T) {
	directory := &fakeDirectory{profiles: map[string]models.RecipientProfile{
		"s-1": {RecipientID: "s-1"},
	}}
	sender := NewSMSSender(SMSConfig{GatewayURL: "http://localhost:0"}, directory, zerolog.Nop())

	err := sender.Send(context.Background(), "s-1", sampleMessage())
	require.ErrorIs(t, err, ErrNoAddress)
}

func TestSMSSenderFailsOnGatewayError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	directory := &fakeDirectory{profiles: map[string]models.RecipientProfile{
		"s-1": {RecipientID: "s-1", Phone: "+15550001111"},
	}}
	sender := NewSMSSender(SMSConfig{GatewayURL: server.URL}, directory, zerolog.Nop())

	err := sender.Send(context.Background(), "s-1", sampleMessage())
	require.Error(t, err)
	require.Contains(t, err.Error(), "502")
}
