package dto

import (
	"time"

	"github.com/noah-isme/gema-notify/internal/models"
)

// RecordResponse is the serialized delivery audit row.
type RecordResponse struct {
	ID           uint                   `json:"id"`
	RecipientID  string                 `json:"recipient_id"`
	AssignmentID uint                   `json:"assignment_id,omitempty"`
	Channel      string                 `json:"channel"`
	Category     string                 `json:"category"`
	Type         string                 `json:"type"`
	Status       string                 `json:"status"`
	Error        string                 `json:"error,omitempty"`
	Context      map[string]interface{} `json:"context,omitempty"`
	AttemptedAt  time.Time              `json:"attempted_at"`
	CompletedAt  *time.Time             `json:"completed_at,omitempty"`
}

// NewRecordResponse converts a model into a DTO.
func NewRecordResponse(model models.NotificationRecord) RecordResponse {
	return RecordResponse{
		ID:           model.ID,
		RecipientID:  model.RecipientID,
		AssignmentID: model.AssignmentID,
		Channel:      string(model.Channel),
		Category:     model.Category,
		Type:         model.Type,
		Status:       string(model.Status),
		Error:        model.Error,
		Context:      model.Context,
		AttemptedAt:  model.AttemptedAt,
		CompletedAt:  model.CompletedAt,
	}
}

// NewRecordResponseSlice converts a slice of models into DTOs.
func NewRecordResponseSlice(records []models.NotificationRecord) []RecordResponse {
	out := make([]RecordResponse, 0, len(records))
	for _, record := range records {
		out = append(out, NewRecordResponse(record))
	}
	return out
}

// InboxPublishRequest describes the payload to persist an in-app
// notification. Produced by the in-app channel sender, not by API clients.
type InboxPublishRequest struct {
	RecipientID string `json:"recipient_id" validate:"required,max=64"`
	Type        string `json:"type" validate:"required,max=64"`
	Priority    string `json:"priority" validate:"omitempty,oneof=LOW MEDIUM HIGH URGENT"`
	Title       string `json:"title" validate:"required,max=255"`
	Body        string `json:"body" validate:"required,min=1,max=4000"`
	ActionURL   string `json:"action_url" validate:"omitempty,max=512"`
}

// InboxNotificationResponse represents inbox data returned to clients.
type InboxNotificationResponse struct {
	ID          uint      `json:"id"`
	RecipientID string    `json:"recipient_id"`
	Type        string    `json:"type"`
	Priority    string    `json:"priority"`
	Title       string    `json:"title"`
	Body        string    `json:"body"`
	ActionURL   string    `json:"action_url,omitempty"`
	Read        bool      `json:"read"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewInboxNotificationResponse converts an inbox model to a DTO.
func NewInboxNotificationResponse(model models.InboxNotification) InboxNotificationResponse {
	return InboxNotificationResponse{
		ID:          model.ID,
		RecipientID: model.RecipientID,
		Type:        model.Type,
		Priority:    model.Priority,
		Title:       model.Title,
		Body:        model.Body,
		ActionURL:   model.ActionURL,
		Read:        model.Read,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}

// NewInboxNotificationResponseSlice converts a slice to DTOs.
func NewInboxNotificationResponseSlice(items []models.InboxNotification) []InboxNotificationResponse {
	out := make([]InboxNotificationResponse, 0, len(items))
	for _, item := range items {
		out = append(out, NewInboxNotificationResponse(item))
	}
	return out
}
