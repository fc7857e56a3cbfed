package models

import (
	"time"

	"gorm.io/datatypes"
)

// Channel names a delivery transport.
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
	ChannelPush  Channel = "push"
	ChannelInApp Channel = "in_app"
)

// Channels lists every transport the fan-out considers for a recipient.
func Channels() []Channel {
	return []Channel{ChannelEmail, ChannelSMS, ChannelPush, ChannelInApp}
}

// NotificationPreference holds a recipient's channel switches and category
// opt-outs. Read-only input to the fan-out; the preferences UI owns writes.
type NotificationPreference struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	RecipientID      string    `gorm:"size:64;not null;uniqueIndex" json:"recipient_id"`
	EmailEnabled     bool      `gorm:"not null;default:true" json:"email_enabled"`
	SMSEnabled       bool      `gorm:"not null;default:false" json:"sms_enabled"`
	PushEnabled      bool      `gorm:"not null;default:true" json:"push_enabled"`
	InAppEnabled     bool      `gorm:"not null;default:true" json:"in_app_enabled"`
	MuteDeadlines    bool      `gorm:"not null;default:false" json:"mute_deadlines"`
	MuteSubmissions  bool      `gorm:"not null;default:false" json:"mute_submissions"`
	MuteExtensions   bool      `gorm:"not null;default:false" json:"mute_extensions"`
	MuteAnnouncement bool      `gorm:"not null;default:false" json:"mute_announcements"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// ChannelEnabled reports whether the recipient accepts deliveries on the
// given channel.
func (p NotificationPreference) ChannelEnabled(channel Channel) bool {
	switch channel {
	case ChannelEmail:
		return p.EmailEnabled
	case ChannelSMS:
		return p.SMSEnabled
	case ChannelPush:
		return p.PushEnabled
	case ChannelInApp:
		return p.InAppEnabled
	default:
		return false
	}
}

// DefaultPreference is used when a recipient never touched their settings.
func DefaultPreference(recipientID string) NotificationPreference {
	return NotificationPreference{
		RecipientID:  recipientID,
		EmailEnabled: true,
		PushEnabled:  true,
		InAppEnabled: true,
	}
}

// RecordStatus tracks the lifecycle of one delivery attempt.
type RecordStatus string

const (
	RecordPending RecordStatus = "pending"
	RecordSent    RecordStatus = "sent"
	RecordFailed  RecordStatus = "failed"
)

// NotificationRecord is the audit row written for every delivery attempt.
// Records are append-only from the dispatcher's point of view: one row per
// (recipient, channel) attempt, finalized exactly once.
type NotificationRecord struct {
	ID           uint              `gorm:"primaryKey" json:"id"`
	RecipientID  string            `gorm:"size:64;not null;index" json:"recipient_id"`
	AssignmentID uint              `gorm:"index" json:"assignment_id"`
	Channel      Channel           `gorm:"size:16;not null" json:"channel"`
	Category     string            `gorm:"size:32;not null" json:"category"`
	Type         string            `gorm:"size:64;not null" json:"type"`
	Status       RecordStatus      `gorm:"size:16;not null;index" json:"status"`
	Error        string            `gorm:"type:text" json:"error,omitempty"`
	Context      datatypes.JSONMap `gorm:"type:json" json:"context"`
	AttemptedAt  time.Time         `gorm:"not null" json:"attempted_at"`
	CompletedAt  *time.Time        `json:"completed_at,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// InboxNotification is the persisted in-app notification shown in the
// recipient's inbox and streamed to live sessions.
type InboxNotification struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	RecipientID string    `gorm:"size:64;index" json:"recipient_id"`
	Type        string    `gorm:"size:64" json:"type"`
	Priority    string    `gorm:"size:16" json:"priority"`
	Title       string    `gorm:"size:255" json:"title"`
	Body        string    `gorm:"type:text" json:"body"`
	ActionURL   string    `gorm:"size:512" json:"action_url"`
	Read        bool      `gorm:"not null;default:false" json:"read"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
