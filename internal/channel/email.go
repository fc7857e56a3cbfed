package channel

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"

	"github.com/noah-isme/gema-notify/internal/message"
	"github.com/noah-isme/gema-notify/internal/models"
)

// EmailConfig carries the SMTP settings for the email sender.
type EmailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type emailSender struct {
	dialer    *gomail.Dialer
	from      string
	directory Directory
	logger    zerolog.Logger
}

// NewEmailSender builds an SMTP-backed email sender.
func NewEmailSender(cfg EmailConfig, directory Directory, logger zerolog.Logger) Sender {
	return &emailSender{
		dialer:    gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:      cfg.From,
		directory: directory,
		logger:    logger.With().Str("component", "email_sender").Logger(),
	}
}

func (s *emailSender) Channel() models.Channel {
	return models.ChannelEmail
}

func (s *emailSender) Send(ctx context.Context, recipientID string, msg message.Message) error {
	profile, err := s.directory.Get(ctx, recipientID)
	if err != nil {
		return fmt.Errorf("resolving email address: %w", err)
	}
	if profile.Email == "" {
		return ErrNoAddress
	}

	mail := gomail.NewMessage()
	mail.SetHeader("From", s.from)
	mail.SetHeader("To", profile.Email)
	mail.SetHeader("Subject", msg.Title)
	mail.SetHeader("X-Priority", emailPriorityHeader(msg.Priority))
	mail.SetBody("text/plain", msg.Body+"\n\n"+msg.ActionURL)

	// gomail has no context support; run the dial in a goroutine so the
	// fan-out's per-send deadline still applies.
	done := make(chan error, 1)
	go func() {
		done <- s.dialer.DialAndSend(mail)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("smtp send: %w", err)
		}
		s.logger.Debug().Str("recipient_id", recipientID).Str("type", string(msg.Type)).Msg("email delivered")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func emailPriorityHeader(priority message.Priority) string {
	switch priority {
	case message.PriorityUrgent:
		return "1 (Highest)"
	case message.PriorityHigh:
		return "2 (High)"
	default:
		return "3 (Normal)"
	}
}
