package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/gema-notify/internal/models"
)

// ReminderRepository persists reminder rows and owns the two mutations the
// rest of the system is allowed to perform on them: the keyed upsert and the
// atomic claim. No other code path may read-modify-write a reminder.
type ReminderRepository interface {
	Upsert(ctx context.Context, reminder *models.Reminder) error
	DeleteUnprocessed(ctx context.Context, assignmentID uint) error
	ListDue(ctx context.Context, now time.Time) ([]models.Reminder, error)
	ListByAssignment(ctx context.Context, assignmentID uint) ([]models.Reminder, error)
	Claim(ctx context.Context, id uint) (bool, error)
}

type reminderRepository struct {
	db *gorm.DB
}

// NewReminderRepository constructs a GORM-backed reminder store.
func NewReminderRepository(db *gorm.DB) ReminderRepository {
	return &reminderRepository{db: db}
}

// Upsert inserts or overwrites the row keyed by (assignment_id, kind).
// Overwriting resets processed so a rescheduled reminder becomes eligible
// again; the unique index guarantees a second call never duplicates the row.
func (r *reminderRepository) Upsert(ctx context.Context, reminder *models.Reminder) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "assignment_id"}, {Name: "kind"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"scheduled_for": reminder.ScheduledFor,
			"processed":     false,
			"updated_at":    time.Now().UTC(),
		}),
	}).Create(reminder).Error
}

// DeleteUnprocessed removes pending rows for an assignment. Processed rows
// are history and stay.
func (r *reminderRepository) DeleteUnprocessed(ctx context.Context, assignmentID uint) error {
	return r.db.WithContext(ctx).
		Where("assignment_id = ? AND processed = ?", assignmentID, false).
		Delete(&models.Reminder{}).Error
}

func (r *reminderRepository) ListDue(ctx context.Context, now time.Time) ([]models.Reminder, error) {
	var reminders []models.Reminder
	if err := r.db.WithContext(ctx).
		Where("processed = ? AND scheduled_for <= ?", false, now).
		Order("scheduled_for ASC").
		Find(&reminders).Error; err != nil {
		return nil, err
	}

	return reminders, nil
}

func (r *reminderRepository) ListByAssignment(ctx context.Context, assignmentID uint) ([]models.Reminder, error) {
	var reminders []models.Reminder
	if err := r.db.WithContext(ctx).
		Where("assignment_id = ?", assignmentID).
		Order("scheduled_for ASC").
		Find(&reminders).Error; err != nil {
		return nil, err
	}

	return reminders, nil
}

// Claim flips processed to true in a single conditional update and reports
// whether this caller won. A zero affected-row count means another worker got
// there first (or the row was deleted); callers must skip without error. This
// compare-and-set is the only concurrency control between dispatcher
// replicas, so it must stay a single statement.
func (r *reminderRepository) Claim(ctx context.Context, id uint) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Reminder{}).
		Where("id = ? AND processed = ?", id, false).
		Updates(map[string]interface{}{"processed": true, "updated_at": time.Now().UTC()})
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected == 1, nil
}
