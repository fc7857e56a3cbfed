package channel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-notify/internal/message"
	"github.com/noah-isme/gema-notify/internal/models"
)

// SMSConfig carries the settings for the SMS gateway sender.
type SMSConfig struct {
	GatewayURL string
	APIKey     string
	From       string
}

type smsSender struct {
	client    *http.Client
	cfg       SMSConfig
	directory Directory
	logger    zerolog.Logger
}

type smsPayload struct {
	From string `json:"from"`
	To   string `json:"to"`
	Body string `json:"body"`
}

// NewSMSSender builds a sender that posts messages to an HTTP SMS gateway.
func NewSMSSender(cfg SMSConfig, directory Directory, logger zerolog.Logger) Sender {
	return &smsSender{
		client:    &http.Client{Timeout: 15 * time.Second},
		cfg:       cfg,
		directory: directory,
		logger:    logger.With().Str("component", "sms_sender").Logger(),
	}
}

func (s *smsSender) Channel() models.Channel {
	return models.ChannelSMS
}

func (s *smsSender) Send(ctx context.Context, recipientID string, msg message.Message) error {
	profile, err := s.directory.Get(ctx, recipientID)
	if err != nil {
		return fmt.Errorf("resolving phone number: %w", err)
	}
	if profile.Phone == "" {
		return ErrNoAddress
	}

	payload, err := json.Marshal(smsPayload{
		From: s.cfg.From,
		To:   profile.Phone,
		Body: msg.Title + ": " + msg.Body,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.GatewayURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("sms gateway: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("sms gateway returned status %d", resp.StatusCode)
	}

	s.logger.Debug().Str("recipient_id", recipientID).Str("type", string(msg.Type)).Msg("sms accepted by gateway")
	return nil
}
