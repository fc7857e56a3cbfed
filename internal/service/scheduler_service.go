package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/gema-notify/internal/models"
	"github.com/noah-isme/gema-notify/internal/repository"
)

// ErrInvalidDueDate indicates an assignment without a usable deadline.
var ErrInvalidDueDate = errors.New("assignment due date missing or zero")

// ReminderScheduler derives reminder rows from an assignment deadline.
// Schedule is idempotent: the store upserts by (assignment, kind), so calling
// it twice, or after a due-date change, never duplicates rows.
type ReminderScheduler interface {
	Schedule(ctx context.Context, assignment models.Assignment) error
	Cancel(ctx context.Context, assignmentID uint) error
	Reschedule(ctx context.Context, assignment models.Assignment) error
}

type reminderScheduler struct {
	reminders repository.ReminderRepository
	logger    zerolog.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

// NewReminderScheduler builds a scheduler on top of the reminder store.
func NewReminderScheduler(reminders repository.ReminderRepository, logger zerolog.Logger) ReminderScheduler {
	return &reminderScheduler{
		reminders: reminders,
		logger:    logger.With().Str("component", "reminder_scheduler").Logger(),
		tracer:    otel.Tracer("github.com/noah-isme/gema-notify/internal/service/scheduler"),
		now:       time.Now,
	}
}

// Schedule upserts one reminder per kind whose trigger instant is still in
// the future. Kinds already in the past are skipped rather than fired late.
func (s *reminderScheduler) Schedule(ctx context.Context, assignment models.Assignment) error {
	if assignment.DueDate.IsZero() {
		s.logger.Error().Uint("assignment_id", assignment.ID).Msg("refusing to schedule reminders without a due date")
		return ErrInvalidDueDate
	}
	if !assignment.Published {
		s.logger.Debug().Uint("assignment_id", assignment.ID).Msg("assignment not published, skipping reminder scheduling")
		return nil
	}

	spanCtx, span := s.tracer.Start(ctx, "reminders.schedule", trace.WithAttributes(
		attribute.Int64("assignment.id", int64(assignment.ID)),
	))
	defer span.End()

	now := s.now()
	scheduled := 0
	for _, kind := range models.ReminderKinds() {
		triggerAt := kind.TriggerAt(assignment.DueDate)
		if !triggerAt.After(now) {
			continue
		}

		reminder := models.Reminder{
			AssignmentID: assignment.ID,
			Kind:         kind,
			ScheduledFor: triggerAt,
		}
		if err := s.reminders.Upsert(spanCtx, &reminder); err != nil {
			span.RecordError(err)
			s.logger.Error().Err(err).
				Uint("assignment_id", assignment.ID).
				Str("kind", string(kind)).
				Msg("failed to upsert reminder")
			return err
		}
		scheduled++
	}

	s.logger.Info().
		Uint("assignment_id", assignment.ID).
		Int("scheduled", scheduled).
		Time("due_date", assignment.DueDate).
		Msg("reminders scheduled")

	return nil
}

// Cancel removes the assignment's pending reminders. Processed rows stay as
// history.
func (s *reminderScheduler) Cancel(ctx context.Context, assignmentID uint) error {
	if err := s.reminders.DeleteUnprocessed(ctx, assignmentID); err != nil {
		s.logger.Error().Err(err).Uint("assignment_id", assignmentID).Msg("failed to cancel reminders")
		return err
	}

	s.logger.Info().Uint("assignment_id", assignmentID).Msg("pending reminders cancelled")
	return nil
}

// Reschedule recomputes every kind from the assignment's current due date.
func (s *reminderScheduler) Reschedule(ctx context.Context, assignment models.Assignment) error {
	if err := s.Cancel(ctx, assignment.ID); err != nil {
		return err
	}
	return s.Schedule(ctx, assignment)
}
