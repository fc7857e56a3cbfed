package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/gema-notify/internal/models"
)

// EnrollmentRepository resolves course rosters.
type EnrollmentRepository interface {
	ListRecipients(ctx context.Context, courseID uint) ([]string, error)
	Add(ctx context.Context, enrollment *models.Enrollment) error
}

type enrollmentRepository struct {
	db *gorm.DB
}

// NewEnrollmentRepository instantiates a GORM-backed repository.
func NewEnrollmentRepository(db *gorm.DB) EnrollmentRepository {
	return &enrollmentRepository{db: db}
}

func (r *enrollmentRepository) ListRecipients(ctx context.Context, courseID uint) ([]string, error) {
	var recipients []string
	if err := r.db.WithContext(ctx).
		Model(&models.Enrollment{}).
		Where("course_id = ?", courseID).
		Order("recipient_id ASC").
		Pluck("recipient_id", &recipients).Error; err != nil {
		return nil, err
	}

	return recipients, nil
}

func (r *enrollmentRepository) Add(ctx context.Context, enrollment *models.Enrollment) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "course_id"}, {Name: "recipient_id"}},
		DoNothing: true,
	}).Create(enrollment).Error
}

// SubmissionRepository tracks completion state per (assignment, recipient).
type SubmissionRepository interface {
	Record(ctx context.Context, submission *models.Submission) error
	HasCompleted(ctx context.Context, assignmentID uint, recipientID string) (bool, error)
	CompletedSet(ctx context.Context, assignmentID uint) (map[string]struct{}, error)
}

type submissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository instantiates a GORM-backed repository.
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) Record(ctx context.Context, submission *models.Submission) error {
	return r.db.WithContext(ctx).Create(submission).Error
}

func (r *submissionRepository) HasCompleted(ctx context.Context, assignmentID uint, recipientID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Submission{}).
		Where("assignment_id = ? AND recipient_id = ? AND completed = ?", assignmentID, recipientID, true).
		Count(&count).Error
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// CompletedSet returns the recipients with a completed submission as of the
// query. The sweep calls this at claim time, never at schedule time, because
// submissions keep arriving between the two.
func (r *submissionRepository) CompletedSet(ctx context.Context, assignmentID uint) (map[string]struct{}, error) {
	var recipients []string
	if err := r.db.WithContext(ctx).
		Model(&models.Submission{}).
		Where("assignment_id = ? AND completed = ?", assignmentID, true).
		Distinct().
		Pluck("recipient_id", &recipients).Error; err != nil {
		return nil, err
	}

	completed := make(map[string]struct{}, len(recipients))
	for _, recipient := range recipients {
		completed[recipient] = struct{}{}
	}

	return completed, nil
}

// ProfileRepository resolves delivery addresses for recipients.
type ProfileRepository interface {
	Get(ctx context.Context, recipientID string) (models.RecipientProfile, error)
	Put(ctx context.Context, profile *models.RecipientProfile) error
}

type profileRepository struct {
	db *gorm.DB
}

// NewProfileRepository instantiates a GORM-backed repository.
func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) Get(ctx context.Context, recipientID string) (models.RecipientProfile, error) {
	var profile models.RecipientProfile
	if err := r.db.WithContext(ctx).
		Where("recipient_id = ?", recipientID).
		First(&profile).Error; err != nil {
		return models.RecipientProfile{}, err
	}

	return profile, nil
}

func (r *profileRepository) Put(ctx context.Context, profile *models.RecipientProfile) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "recipient_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"name":       profile.Name,
			"email":      profile.Email,
			"phone":      profile.Phone,
			"updated_at": time.Now().UTC(),
		}),
	}).Create(profile).Error
}
