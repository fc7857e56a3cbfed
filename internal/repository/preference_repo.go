package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/gema-notify/internal/models"
)

// PreferenceRepository reads recipient notification preferences. The
// dispatcher never writes preferences; Put exists for the preferences UI
// sync and for tests.
type PreferenceRepository interface {
	Get(ctx context.Context, recipientID string) (models.NotificationPreference, error)
	Put(ctx context.Context, preference *models.NotificationPreference) error
}

type preferenceRepository struct {
	db *gorm.DB
}

// NewPreferenceRepository instantiates a GORM-backed repository.
func NewPreferenceRepository(db *gorm.DB) PreferenceRepository {
	return &preferenceRepository{db: db}
}

// Get falls back to the default preference set when the recipient never
// saved one.
func (r *preferenceRepository) Get(ctx context.Context, recipientID string) (models.NotificationPreference, error) {
	var preference models.NotificationPreference
	err := r.db.WithContext(ctx).
		Where("recipient_id = ?", recipientID).
		First(&preference).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.DefaultPreference(recipientID), nil
		}
		return models.NotificationPreference{}, err
	}

	return preference, nil
}

func (r *preferenceRepository) Put(ctx context.Context, preference *models.NotificationPreference) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "recipient_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"email_enabled":      preference.EmailEnabled,
			"sms_enabled":        preference.SMSEnabled,
			"push_enabled":       preference.PushEnabled,
			"in_app_enabled":     preference.InAppEnabled,
			"mute_deadlines":     preference.MuteDeadlines,
			"mute_submissions":   preference.MuteSubmissions,
			"mute_extensions":    preference.MuteExtensions,
			"mute_announcement":  preference.MuteAnnouncement,
			"updated_at":         time.Now().UTC(),
		}),
	}).Create(preference).Error
}
