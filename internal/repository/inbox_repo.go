package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/gema-notify/internal/models"
)

// InboxRepository handles persistence for in-app inbox notifications.
type InboxRepository interface {
	Create(ctx context.Context, notification *models.InboxNotification) error
	ListByRecipient(ctx context.Context, recipientID string, limit, offset int) ([]models.InboxNotification, error)
	MarkRead(ctx context.Context, id uint, recipientID string) (models.InboxNotification, error)
	CountUnread(ctx context.Context, recipientID string) (int64, error)
}

type inboxRepository struct {
	db *gorm.DB
}

// NewInboxRepository constructs a repository backed by GORM.
func NewInboxRepository(db *gorm.DB) InboxRepository {
	return &inboxRepository{db: db}
}

func (r *inboxRepository) Create(ctx context.Context, notification *models.InboxNotification) error {
	return r.db.WithContext(ctx).Create(notification).Error
}

func (r *inboxRepository) ListByRecipient(ctx context.Context, recipientID string, limit, offset int) ([]models.InboxNotification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var notifications []models.InboxNotification
	if err := r.db.WithContext(ctx).
		Where("recipient_id = ?", recipientID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&notifications).Error; err != nil {
		return nil, err
	}

	return notifications, nil
}

func (r *inboxRepository) MarkRead(ctx context.Context, id uint, recipientID string) (models.InboxNotification, error) {
	var notification models.InboxNotification
	if err := r.db.WithContext(ctx).
		Where("id = ? AND recipient_id = ?", id, recipientID).
		First(&notification).Error; err != nil {
		return models.InboxNotification{}, err
	}

	if notification.Read {
		return notification, nil
	}

	notification.Read = true
	if err := r.db.WithContext(ctx).Save(&notification).Error; err != nil {
		return models.InboxNotification{}, err
	}

	return notification, nil
}

func (r *inboxRepository) CountUnread(ctx context.Context, recipientID string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.InboxNotification{}).
		Where("recipient_id = ? AND read = ?", recipientID, false).
		Count(&count).Error; err != nil {
		return 0, err
	}

	return count, nil
}
