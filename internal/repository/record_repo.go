package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/gema-notify/internal/models"
)

// RecordRepository is the append-only audit store for delivery attempts.
// Rows are created pending and finalized exactly once; nothing in the
// scheduling path ever reads them back.
type RecordRepository interface {
	Create(ctx context.Context, record *models.NotificationRecord) error
	Finalize(ctx context.Context, id uint, status models.RecordStatus, sendErr string, completedAt time.Time) error
	ListByRecipient(ctx context.Context, recipientID string, limit, offset int) ([]models.NotificationRecord, error)
	ListByAssignment(ctx context.Context, assignmentID uint) ([]models.NotificationRecord, error)
}

type recordRepository struct {
	db *gorm.DB
}

// NewRecordRepository constructs a repository backed by GORM.
func NewRecordRepository(db *gorm.DB) RecordRepository {
	return &recordRepository{db: db}
}

func (r *recordRepository) Create(ctx context.Context, record *models.NotificationRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *recordRepository) Finalize(ctx context.Context, id uint, status models.RecordStatus, sendErr string, completedAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.NotificationRecord{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":       status,
			"error":        sendErr,
			"completed_at": completedAt,
		}).Error
}

func (r *recordRepository) ListByRecipient(ctx context.Context, recipientID string, limit, offset int) ([]models.NotificationRecord, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var records []models.NotificationRecord
	if err := r.db.WithContext(ctx).
		Where("recipient_id = ?", recipientID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&records).Error; err != nil {
		return nil, err
	}

	return records, nil
}

func (r *recordRepository) ListByAssignment(ctx context.Context, assignmentID uint) ([]models.NotificationRecord, error) {
	var records []models.NotificationRecord
	if err := r.db.WithContext(ctx).
		Where("assignment_id = ?", assignmentID).
		Order("created_at DESC").
		Find(&records).Error; err != nil {
		return nil, err
	}

	return records, nil
}
