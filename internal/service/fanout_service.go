package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"

	"github.com/noah-isme/gema-notify/internal/channel"
	"github.com/noah-isme/gema-notify/internal/message"
	"github.com/noah-isme/gema-notify/internal/models"
	"github.com/noah-isme/gema-notify/internal/observability"
	"github.com/noah-isme/gema-notify/internal/repository"
)

const defaultFanoutWorkers = 8

// Delivery is one recipient's slot in a dispatch, carrying the
// recipient-specific template context (effective due dates differ once
// extensions exist).
type Delivery struct {
	RecipientID  string
	AssignmentID uint
	Context      message.Context
}

// DispatchReport counts per-channel delivery outcomes of one dispatch.
type DispatchReport struct {
	Sent   int
	Failed int
}

// NotificationFanout distributes one logical notification to many
// recipients and channels. Each (recipient, channel) pair succeeds or fails
// on its own; the fan-out records outcomes and never retries across sweeps.
type NotificationFanout interface {
	Dispatch(ctx context.Context, typ message.Type, deliveries []Delivery) (DispatchReport, error)
}

type notificationFanout struct {
	preferences repository.PreferenceRepository
	records     repository.RecordRepository
	senders     map[models.Channel]channel.Sender
	sendTimeout time.Duration
	workers     int
	logger      zerolog.Logger
	tracer      trace.Tracer
	now         func() time.Time
}

// NewNotificationFanout builds the fan-out over the given channel senders.
func NewNotificationFanout(
	preferences repository.PreferenceRepository,
	records repository.RecordRepository,
	senders []channel.Sender,
	sendTimeout time.Duration,
	workers int,
	logger zerolog.Logger,
) NotificationFanout {
	if workers <= 0 {
		workers = defaultFanoutWorkers
	}
	if sendTimeout <= 0 {
		sendTimeout = 10 * time.Second
	}

	byChannel := make(map[models.Channel]channel.Sender, len(senders))
	for _, sender := range senders {
		byChannel[sender.Channel()] = sender
	}

	return &notificationFanout{
		preferences: preferences,
		records:     records,
		senders:     byChannel,
		sendTimeout: sendTimeout,
		workers:     workers,
		logger:      logger.With().Str("component", "notification_fanout").Logger(),
		tracer:      otel.Tracer("github.com/noah-isme/gema-notify/internal/service/fanout"),
		now:         time.Now,
	}
}

func (f *notificationFanout) Dispatch(ctx context.Context, typ message.Type, deliveries []Delivery) (DispatchReport, error) {
	spanCtx, span := f.tracer.Start(ctx, "notifications.dispatch", trace.WithAttributes(
		attribute.String("notification.type", string(typ)),
		attribute.Int("notification.recipients", len(deliveries)),
	))
	defer span.End()

	var (
		mu     sync.Mutex
		report DispatchReport
		wg     sync.WaitGroup
	)

	sem := make(chan struct{}, f.workers)
	for _, delivery := range deliveries {
		wg.Add(1)
		sem <- struct{}{}
		go func(d Delivery) {
			defer wg.Done()
			defer func() { <-sem }()

			sent, failed := f.dispatchOne(spanCtx, typ, d)

			mu.Lock()
			report.Sent += sent
			report.Failed += failed
			mu.Unlock()
		}(delivery)
	}
	wg.Wait()

	span.SetAttributes(
		attribute.Int("notification.sent", report.Sent),
		attribute.Int("notification.failed", report.Failed),
	)

	return report, nil
}

// dispatchOne handles every channel for a single recipient. Failures are
// contained here: nothing a recipient or channel does can affect another.
func (f *notificationFanout) dispatchOne(ctx context.Context, typ message.Type, d Delivery) (sent, failed int) {
	recipientLogger := f.logger.With().
		Str("recipient_id", d.RecipientID).
		Str("type", string(typ)).
		Logger()

	preference, err := f.preferences.Get(ctx, d.RecipientID)
	if err != nil {
		recipientLogger.Error().Err(err).Msg("preference lookup failed, skipping recipient")
		return 0, 1
	}

	msg, err := message.Render(typ, d.Context)
	if err != nil {
		recipientLogger.Error().Err(err).Msg("message rendering failed, skipping recipient")
		return 0, 1
	}

	if categoryMuted(preference, msg.Category) {
		recipientLogger.Debug().Str("category", string(msg.Category)).Msg("category muted by recipient")
		return 0, 0
	}

	for _, ch := range models.Channels() {
		if !preference.ChannelEnabled(ch) {
			continue
		}
		sender, ok := f.senders[ch]
		if !ok {
			continue
		}

		if f.sendOne(ctx, sender, d, msg) {
			sent++
		} else {
			failed++
		}
	}

	return sent, failed
}

// sendOne performs a single (recipient, channel) attempt with its audit
// record. The record is created pending and finalized exactly once; a send
// timeout counts as a failure, never as a crash.
func (f *notificationFanout) sendOne(ctx context.Context, sender channel.Sender, d Delivery, msg message.Message) bool {
	ch := sender.Channel()
	record := models.NotificationRecord{
		RecipientID:  d.RecipientID,
		AssignmentID: d.AssignmentID,
		Channel:      ch,
		Category:     string(msg.Category),
		Type:         string(msg.Type),
		Status:       models.RecordPending,
		Context: datatypes.JSONMap{
			"assignment_title": d.Context.AssignmentTitle,
			"course_name":      d.Context.CourseName,
			"due_date":         d.Context.DueDate.Format(time.RFC3339),
			"hours_remaining":  d.Context.HoursRemaining,
		},
		AttemptedAt: f.now().UTC(),
	}

	if err := f.records.Create(ctx, &record); err != nil {
		f.logger.Error().Err(err).
			Str("recipient_id", d.RecipientID).
			Str("channel", string(ch)).
			Msg("failed to write delivery record")
		return false
	}

	sendCtx, cancel := context.WithTimeout(ctx, f.sendTimeout)
	defer cancel()

	sendErr := sender.Send(sendCtx, d.RecipientID, msg)
	completedAt := f.now().UTC()

	if sendErr != nil {
		observability.NotificationsFailed().WithLabelValues(string(ch), string(msg.Type)).Inc()
		f.logger.Warn().Err(sendErr).
			Str("recipient_id", d.RecipientID).
			Str("channel", string(ch)).
			Str("type", string(msg.Type)).
			Msg("delivery failed")
		if err := f.records.Finalize(ctx, record.ID, models.RecordFailed, sendErr.Error(), completedAt); err != nil {
			f.logger.Error().Err(err).Uint("record_id", record.ID).Msg("failed to finalize delivery record")
		}
		return false
	}

	observability.NotificationsSent().WithLabelValues(string(ch), string(msg.Type)).Inc()
	if err := f.records.Finalize(ctx, record.ID, models.RecordSent, "", completedAt); err != nil {
		f.logger.Error().Err(err).Uint("record_id", record.ID).Msg("failed to finalize delivery record")
	}
	return true
}

func categoryMuted(preference models.NotificationPreference, category message.Category) bool {
	switch category {
	case message.CategoryDeadlines:
		return preference.MuteDeadlines
	case message.CategorySubmissions:
		return preference.MuteSubmissions
	case message.CategoryExtensions:
		return preference.MuteExtensions
	case message.CategoryAnnouncements:
		return preference.MuteAnnouncement
	default:
		return false
	}
}
