package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/gema-notify/internal/models"
)

// ExtensionRepository stores per-recipient deadline extensions.
type ExtensionRepository interface {
	Upsert(ctx context.Context, extension *models.Extension) error
	FindForRecipient(ctx context.Context, assignmentID uint, recipientID string) (*models.Extension, error)
	MapByRecipient(ctx context.Context, assignmentID uint) (map[string]models.Extension, error)
	DeleteByAssignment(ctx context.Context, assignmentID uint) error
}

type extensionRepository struct {
	db *gorm.DB
}

// NewExtensionRepository instantiates a GORM-backed repository.
func NewExtensionRepository(db *gorm.DB) ExtensionRepository {
	return &extensionRepository{db: db}
}

// Upsert keeps at most one extension per (assignment, recipient); granting
// again replaces the previous date and reason.
func (r *extensionRepository) Upsert(ctx context.Context, extension *models.Extension) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "assignment_id"}, {Name: "recipient_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"new_due_date": extension.NewDueDate,
			"reason":       extension.Reason,
			"granted_by":   extension.GrantedBy,
			"granted_at":   extension.GrantedAt,
			"updated_at":   time.Now().UTC(),
		}),
	}).Create(extension).Error
}

// FindForRecipient returns the active extension or nil when none exists.
func (r *extensionRepository) FindForRecipient(ctx context.Context, assignmentID uint, recipientID string) (*models.Extension, error) {
	var extension models.Extension
	err := r.db.WithContext(ctx).
		Where("assignment_id = ? AND recipient_id = ?", assignmentID, recipientID).
		First(&extension).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &extension, nil
}

// MapByRecipient loads every extension for an assignment in one query; the
// sweep uses it to resolve effective due dates for a whole roster.
func (r *extensionRepository) MapByRecipient(ctx context.Context, assignmentID uint) (map[string]models.Extension, error) {
	var extensions []models.Extension
	if err := r.db.WithContext(ctx).
		Where("assignment_id = ?", assignmentID).
		Find(&extensions).Error; err != nil {
		return nil, err
	}

	byRecipient := make(map[string]models.Extension, len(extensions))
	for _, extension := range extensions {
		byRecipient[extension.RecipientID] = extension
	}

	return byRecipient, nil
}

func (r *extensionRepository) DeleteByAssignment(ctx context.Context, assignmentID uint) error {
	return r.db.WithContext(ctx).
		Where("assignment_id = ?", assignmentID).
		Delete(&models.Extension{}).Error
}
