package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-notify/internal/dto"
	"github.com/noah-isme/gema-notify/internal/repository"
)

// OpsService backs the operational visibility endpoints: reminder and
// delivery-record state queryable by assignment, recipient and
// due-for-processing predicate.
type OpsService interface {
	RemindersByAssignment(ctx context.Context, assignmentID uint) ([]dto.ReminderResponse, error)
	DueReminders(ctx context.Context, at time.Time) ([]dto.ReminderResponse, error)
	RecordsByRecipient(ctx context.Context, recipientID string, limit, offset int) ([]dto.RecordResponse, error)
	RecordsByAssignment(ctx context.Context, assignmentID uint) ([]dto.RecordResponse, error)
}

type opsService struct {
	reminders repository.ReminderRepository
	records   repository.RecordRepository
	logger    zerolog.Logger
}

// NewOpsService builds the read-only ops facade.
func NewOpsService(reminders repository.ReminderRepository, records repository.RecordRepository, logger zerolog.Logger) OpsService {
	return &opsService{
		reminders: reminders,
		records:   records,
		logger:    logger.With().Str("component", "ops_service").Logger(),
	}
}

func (s *opsService) RemindersByAssignment(ctx context.Context, assignmentID uint) ([]dto.ReminderResponse, error) {
	reminders, err := s.reminders.ListByAssignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}

	return dto.NewReminderResponseSlice(reminders), nil
}

func (s *opsService) DueReminders(ctx context.Context, at time.Time) ([]dto.ReminderResponse, error) {
	reminders, err := s.reminders.ListDue(ctx, at)
	if err != nil {
		return nil, err
	}

	return dto.NewReminderResponseSlice(reminders), nil
}

func (s *opsService) RecordsByRecipient(ctx context.Context, recipientID string, limit, offset int) ([]dto.RecordResponse, error) {
	records, err := s.records.ListByRecipient(ctx, recipientID, limit, offset)
	if err != nil {
		return nil, err
	}

	return dto.NewRecordResponseSlice(records), nil
}

func (s *opsService) RecordsByAssignment(ctx context.Context, assignmentID uint) ([]dto.RecordResponse, error) {
	records, err := s.records.ListByAssignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}

	return dto.NewRecordResponseSlice(records), nil
}
