package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/gema-notify/internal/models"
)

// AssignmentRepository reads and mirrors assignment state. Rows arrive via
// lifecycle events from the course system, keyed by its assignment IDs.
type AssignmentRepository interface {
	GetByID(ctx context.Context, id uint) (models.Assignment, error)
	Upsert(ctx context.Context, assignment *models.Assignment) error
	Delete(ctx context.Context, id uint) error
}

type assignmentRepository struct {
	db *gorm.DB
}

// NewAssignmentRepository instantiates a GORM-backed repository.
func NewAssignmentRepository(db *gorm.DB) AssignmentRepository {
	return &assignmentRepository{db: db}
}

func (r *assignmentRepository) GetByID(ctx context.Context, id uint) (models.Assignment, error) {
	var assignment models.Assignment
	if err := r.db.WithContext(ctx).First(&assignment, id).Error; err != nil {
		return models.Assignment{}, err
	}

	return assignment, nil
}

// Upsert mirrors the upstream assignment row, overwriting on repeated events.
func (r *assignmentRepository) Upsert(ctx context.Context, assignment *models.Assignment) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"course_id":   assignment.CourseID,
			"course_name": assignment.CourseName,
			"title":       assignment.Title,
			"description": assignment.Description,
			"due_date":    assignment.DueDate,
			"published":   assignment.Published,
			"late_policy": assignment.LatePolicy,
			"updated_at":  time.Now().UTC(),
		}),
	}).Create(assignment).Error
}

func (r *assignmentRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Assignment{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
