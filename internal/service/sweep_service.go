package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/gema-notify/internal/message"
	"github.com/noah-isme/gema-notify/internal/models"
	"github.com/noah-isme/gema-notify/internal/observability"
	"github.com/noah-isme/gema-notify/internal/repository"
)

// SweepReport summarises one dispatcher pass.
type SweepReport struct {
	RanAt     time.Time
	Due       int
	Claimed   int
	LostRaces int
	Sent      int
	Failed    int
}

// SweepDispatcher claims due reminders and fans them out. RunSweep takes the
// current time as a parameter instead of reading the clock, so time-boundary
// behavior is deterministic under test. Multiple replicas may run sweeps
// concurrently; the store's atomic claim is the only coordination between
// them.
type SweepDispatcher interface {
	RunSweep(ctx context.Context, now time.Time) (SweepReport, error)
}

type sweepDispatcher struct {
	reminders   repository.ReminderRepository
	assignments repository.AssignmentRepository
	extensions  repository.ExtensionRepository
	enrollments repository.EnrollmentRepository
	submissions repository.SubmissionRepository
	fanout      NotificationFanout
	logger      zerolog.Logger
	tracer      trace.Tracer
}

// NewSweepDispatcher wires the dispatcher over its stores and the fan-out.
func NewSweepDispatcher(
	reminders repository.ReminderRepository,
	assignments repository.AssignmentRepository,
	extensions repository.ExtensionRepository,
	enrollments repository.EnrollmentRepository,
	submissions repository.SubmissionRepository,
	fanout NotificationFanout,
	logger zerolog.Logger,
) SweepDispatcher {
	return &sweepDispatcher{
		reminders:   reminders,
		assignments: assignments,
		extensions:  extensions,
		enrollments: enrollments,
		submissions: submissions,
		fanout:      fanout,
		logger:      logger.With().Str("component", "sweep_dispatcher").Logger(),
		tracer:      otel.Tracer("github.com/noah-isme/gema-notify/internal/service/sweep"),
	}
}

func (s *sweepDispatcher) RunSweep(ctx context.Context, now time.Time) (SweepReport, error) {
	spanCtx, span := s.tracer.Start(ctx, "reminders.sweep", trace.WithAttributes(
		attribute.String("sweep.at", now.UTC().Format(time.RFC3339)),
	))
	defer span.End()

	observability.SweepRuns().Inc()
	timer := time.Now()
	defer func() {
		observability.SweepDuration().Observe(time.Since(timer).Seconds())
	}()

	report := SweepReport{RanAt: now}

	due, err := s.reminders.ListDue(spanCtx, now)
	if err != nil {
		span.RecordError(err)
		s.logger.Error().Err(err).Msg("failed to list due reminders")
		return report, err
	}
	report.Due = len(due)

	for _, reminder := range due {
		s.process(spanCtx, reminder, now, &report)
	}

	if report.Due > 0 {
		s.logger.Info().
			Int("due", report.Due).
			Int("claimed", report.Claimed).
			Int("lost_races", report.LostRaces).
			Int("sent", report.Sent).
			Int("failed", report.Failed).
			Msg("sweep completed")
	}

	span.SetAttributes(
		attribute.Int("sweep.due", report.Due),
		attribute.Int("sweep.claimed", report.Claimed),
	)

	return report, nil
}

// process claims one reminder and, on success, resolves and dispatches its
// recipient batch. Once the claim lands the reminder stays processed no
// matter what happens downstream: a resolution failure costs this batch its
// notifications instead of risking a retry storm.
func (s *sweepDispatcher) process(ctx context.Context, reminder models.Reminder, now time.Time, report *SweepReport) {
	claimed, err := s.reminders.Claim(ctx, reminder.ID)
	if err != nil {
		s.logger.Error().Err(err).Uint("reminder_id", reminder.ID).Msg("claim attempt failed")
		return
	}
	if !claimed {
		// Another replica won the row, or it was cancelled underneath us.
		report.LostRaces++
		observability.ClaimConflicts().Inc()
		return
	}

	report.Claimed++
	observability.RemindersClaimed().WithLabelValues(string(reminder.Kind)).Inc()

	reminderLogger := s.logger.With().
		Uint("reminder_id", reminder.ID).
		Uint("assignment_id", reminder.AssignmentID).
		Str("kind", string(reminder.Kind)).
		Logger()

	typ, ok := message.TypeForReminderKind(reminder.Kind)
	if !ok {
		reminderLogger.Error().Msg("reminder kind has no notification type, dropping batch")
		return
	}

	deliveries, err := s.resolveDeliveries(ctx, reminder, now)
	if err != nil {
		reminderLogger.Error().Err(err).Msg("recipient resolution failed, batch dropped")
		return
	}
	if len(deliveries) == 0 {
		reminderLogger.Debug().Msg("no eligible recipients for reminder")
		return
	}

	dispatchReport, err := s.fanout.Dispatch(ctx, typ, deliveries)
	if err != nil {
		reminderLogger.Error().Err(err).Msg("fan-out failed")
		return
	}

	report.Sent += dispatchReport.Sent
	report.Failed += dispatchReport.Failed
}

// resolveDeliveries builds the recipient batch for a claimed reminder.
// Completion and extensions are evaluated at claim time: a submission that
// arrived after scheduling still excludes its recipient, and an extension
// that moves this kind's trigger into the recipient's future excludes them
// from this firing.
func (s *sweepDispatcher) resolveDeliveries(ctx context.Context, reminder models.Reminder, now time.Time) ([]Delivery, error) {
	assignment, err := s.assignments.GetByID(ctx, reminder.AssignmentID)
	if err != nil {
		return nil, err
	}

	roster, err := s.enrollments.ListRecipients(ctx, assignment.CourseID)
	if err != nil {
		return nil, err
	}

	completed, err := s.submissions.CompletedSet(ctx, assignment.ID)
	if err != nil {
		return nil, err
	}

	extensions, err := s.extensions.MapByRecipient(ctx, assignment.ID)
	if err != nil {
		return nil, err
	}

	deliveries := make([]Delivery, 0, len(roster))
	for _, recipientID := range roster {
		if _, done := completed[recipientID]; done {
			continue
		}

		var extension *models.Extension
		if ext, ok := extensions[recipientID]; ok {
			extension = &ext
		}

		effectiveDue := assignment.EffectiveDueDate(extension)
		if reminder.Kind.TriggerAt(effectiveDue).After(now) {
			// The extension put this recipient's trigger in the future;
			// this firing is not theirs.
			continue
		}

		deliveries = append(deliveries, Delivery{
			RecipientID:  recipientID,
			AssignmentID: assignment.ID,
			Context: message.Context{
				AssignmentID:    assignment.ID,
				AssignmentTitle: assignment.Title,
				CourseName:      assignment.CourseName,
				DueDate:         effectiveDue,
				HoursRemaining:  message.HoursUntil(now, effectiveDue),
			},
		})
	}

	return deliveries, nil
}
