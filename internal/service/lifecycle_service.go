package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-notify/internal/dto"
	"github.com/noah-isme/gema-notify/internal/message"
	"github.com/noah-isme/gema-notify/internal/models"
	"github.com/noah-isme/gema-notify/internal/repository"
)

// ErrAssignmentNotFound indicates the referenced assignment is unknown here.
var ErrAssignmentNotFound = errors.New("assignment not found")

// LifecycleService reacts to course-system events: it mirrors the relevant
// state, keeps the reminder schedule in step with it, and emits the
// event-driven notification types.
type LifecycleService interface {
	AssignmentUpserted(ctx context.Context, payload dto.AssignmentEventRequest) error
	AssignmentRemoved(ctx context.Context, payload dto.AssignmentRemovedRequest) error
	SubmissionReceived(ctx context.Context, payload dto.SubmissionEventRequest) error
	SubmissionGraded(ctx context.Context, payload dto.SubmissionEventRequest) error
	ExtensionGranted(ctx context.Context, payload dto.ExtensionGrantedRequest) error
	ExtensionRequested(ctx context.Context, payload dto.ExtensionRequestedRequest) error
}

type lifecycleService struct {
	assignments repository.AssignmentRepository
	submissions repository.SubmissionRepository
	extensions  repository.ExtensionRepository
	enrollments repository.EnrollmentRepository
	scheduler   ReminderScheduler
	fanout      NotificationFanout
	validator   *validator.Validate
	logger      zerolog.Logger
	now         func() time.Time
}

// NewLifecycleService builds the event-facing service.
func NewLifecycleService(
	assignments repository.AssignmentRepository,
	submissions repository.SubmissionRepository,
	extensions repository.ExtensionRepository,
	enrollments repository.EnrollmentRepository,
	scheduler ReminderScheduler,
	fanout NotificationFanout,
	validate *validator.Validate,
	logger zerolog.Logger,
) LifecycleService {
	return &lifecycleService{
		assignments: assignments,
		submissions: submissions,
		extensions:  extensions,
		enrollments: enrollments,
		scheduler:   scheduler,
		fanout:      fanout,
		validator:   validate,
		logger:      logger.With().Str("component", "lifecycle_service").Logger(),
		now:         time.Now,
	}
}

// AssignmentUpserted mirrors a published or updated assignment and brings
// the reminder schedule in line with its current due date.
func (s *lifecycleService) AssignmentUpserted(ctx context.Context, payload dto.AssignmentEventRequest) error {
	if err := s.validator.Struct(payload); err != nil {
		return err
	}

	dueDate, err := time.Parse(time.RFC3339, payload.DueDate)
	if err != nil {
		return fmt.Errorf("invalid due date: %w", err)
	}

	latePolicy := models.LatePolicy(payload.LatePolicy)
	if latePolicy == "" {
		latePolicy = models.LatePolicyAccept
	}

	assignment := models.Assignment{
		ID:          payload.AssignmentID,
		CourseID:    payload.CourseID,
		CourseName:  payload.CourseName,
		Title:       payload.Title,
		Description: payload.Description,
		DueDate:     dueDate,
		Published:   payload.Published,
		LatePolicy:  latePolicy,
	}

	if err := s.assignments.Upsert(ctx, &assignment); err != nil {
		return err
	}

	if !assignment.Published {
		return s.scheduler.Cancel(ctx, assignment.ID)
	}

	if err := s.scheduler.Reschedule(ctx, assignment); err != nil {
		return err
	}

	if payload.Announce {
		s.announce(ctx, assignment)
	}

	return nil
}

// AssignmentRemoved drops the mirrored row and every pending reminder so an
// unpublished or deleted assignment can never fire.
func (s *lifecycleService) AssignmentRemoved(ctx context.Context, payload dto.AssignmentRemovedRequest) error {
	if err := s.validator.Struct(payload); err != nil {
		return err
	}

	if err := s.scheduler.Cancel(ctx, payload.AssignmentID); err != nil {
		return err
	}

	if err := s.extensions.DeleteByAssignment(ctx, payload.AssignmentID); err != nil {
		return err
	}

	if err := s.assignments.Delete(ctx, payload.AssignmentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAssignmentNotFound
		}
		return err
	}

	s.logger.Info().Uint("assignment_id", payload.AssignmentID).Msg("assignment removed, reminders cancelled")
	return nil
}

func (s *lifecycleService) SubmissionReceived(ctx context.Context, payload dto.SubmissionEventRequest) error {
	if err := s.validator.Struct(payload); err != nil {
		return err
	}

	assignment, err := s.assignment(ctx, payload.AssignmentID)
	if err != nil {
		return err
	}

	submittedAt := s.now()
	if payload.SubmittedAt != "" {
		if parsed, err := time.Parse(time.RFC3339, payload.SubmittedAt); err == nil {
			submittedAt = parsed
		}
	}

	submission := models.Submission{
		AssignmentID: payload.AssignmentID,
		RecipientID:  payload.RecipientID,
		Completed:    payload.Completed,
		SubmittedAt:  submittedAt,
	}
	if err := s.submissions.Record(ctx, &submission); err != nil {
		return err
	}

	s.notifyOne(ctx, message.TypeSubmissionReceived, payload.RecipientID, assignment, message.Context{})
	return nil
}

func (s *lifecycleService) SubmissionGraded(ctx context.Context, payload dto.SubmissionEventRequest) error {
	if err := s.validator.Struct(payload); err != nil {
		return err
	}

	assignment, err := s.assignment(ctx, payload.AssignmentID)
	if err != nil {
		return err
	}

	s.notifyOne(ctx, message.TypeSubmissionGraded, payload.RecipientID, assignment, message.Context{
		Grade:    payload.Grade,
		Feedback: payload.Feedback,
	})
	return nil
}

// ExtensionGranted stores the override consumed by the deadline model. The
// shared reminder rows stay keyed to the original due date; the sweep
// excludes this recipient from firings their extension moved away from.
func (s *lifecycleService) ExtensionGranted(ctx context.Context, payload dto.ExtensionGrantedRequest) error {
	if err := s.validator.Struct(payload); err != nil {
		return err
	}

	newDueDate, err := time.Parse(time.RFC3339, payload.NewDueDate)
	if err != nil {
		return fmt.Errorf("invalid new due date: %w", err)
	}

	assignment, err := s.assignment(ctx, payload.AssignmentID)
	if err != nil {
		return err
	}

	extension := models.Extension{
		AssignmentID: payload.AssignmentID,
		RecipientID:  payload.RecipientID,
		NewDueDate:   newDueDate,
		Reason:       payload.Reason,
		GrantedBy:    payload.GrantedBy,
		GrantedAt:    s.now(),
	}
	if err := s.extensions.Upsert(ctx, &extension); err != nil {
		return err
	}

	s.notifyOne(ctx, message.TypeExtensionGranted, payload.RecipientID, assignment, message.Context{
		DueDate: newDueDate,
	})
	return nil
}

func (s *lifecycleService) ExtensionRequested(ctx context.Context, payload dto.ExtensionRequestedRequest) error {
	if err := s.validator.Struct(payload); err != nil {
		return err
	}

	assignment, err := s.assignment(ctx, payload.AssignmentID)
	if err != nil {
		return err
	}

	deliveries := make([]Delivery, 0, len(payload.NotifyIDs))
	for _, recipientID := range payload.NotifyIDs {
		deliveries = append(deliveries, Delivery{
			RecipientID:  recipientID,
			AssignmentID: assignment.ID,
			Context: message.Context{
				AssignmentID:    assignment.ID,
				AssignmentTitle: assignment.Title,
				CourseName:      assignment.CourseName,
				DueDate:         assignment.DueDate,
				RequesterName:   payload.RequesterName,
				Reason:          payload.Reason,
			},
		})
	}

	if _, err := s.fanout.Dispatch(ctx, message.TypeExtensionRequested, deliveries); err != nil {
		return err
	}
	return nil
}

func (s *lifecycleService) assignment(ctx context.Context, id uint) (models.Assignment, error) {
	assignment, err := s.assignments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Assignment{}, ErrAssignmentNotFound
		}
		return models.Assignment{}, err
	}
	return assignment, nil
}

// announce fans the published-assignment notice out to the whole roster.
func (s *lifecycleService) announce(ctx context.Context, assignment models.Assignment) {
	roster, err := s.enrollments.ListRecipients(ctx, assignment.CourseID)
	if err != nil {
		s.logger.Error().Err(err).Uint("assignment_id", assignment.ID).Msg("roster lookup failed, announcement skipped")
		return
	}

	deliveries := make([]Delivery, 0, len(roster))
	for _, recipientID := range roster {
		deliveries = append(deliveries, Delivery{
			RecipientID:  recipientID,
			AssignmentID: assignment.ID,
			Context: message.Context{
				AssignmentID:    assignment.ID,
				AssignmentTitle: assignment.Title,
				CourseName:      assignment.CourseName,
				DueDate:         assignment.DueDate,
				HoursRemaining:  message.HoursUntil(s.now(), assignment.DueDate),
			},
		})
	}

	if _, err := s.fanout.Dispatch(ctx, message.TypeAssignmentPublished, deliveries); err != nil {
		s.logger.Error().Err(err).Uint("assignment_id", assignment.ID).Msg("announcement fan-out failed")
	}
}

// notifyOne dispatches a single-recipient event notification with the
// assignment context filled in.
func (s *lifecycleService) notifyOne(ctx context.Context, typ message.Type, recipientID string, assignment models.Assignment, extra message.Context) {
	msgCtx := message.Context{
		AssignmentID:    assignment.ID,
		AssignmentTitle: assignment.Title,
		CourseName:      assignment.CourseName,
		DueDate:         assignment.DueDate,
		Grade:           extra.Grade,
		Feedback:        extra.Feedback,
		RequesterName:   extra.RequesterName,
		Reason:          extra.Reason,
	}
	if !extra.DueDate.IsZero() {
		msgCtx.DueDate = extra.DueDate
	}

	if _, err := s.fanout.Dispatch(ctx, typ, []Delivery{{
		RecipientID:  recipientID,
		AssignmentID: assignment.ID,
		Context:      msgCtx,
	}}); err != nil {
		s.logger.Error().Err(err).
			Str("recipient_id", recipientID).
			Str("type", string(typ)).
			Msg("event notification dispatch failed")
	}
}
