package dto

import (
	"time"

	"github.com/noah-isme/gema-notify/internal/models"
)

// ReminderResponse is the serialized reminder row exposed on the ops API.
type ReminderResponse struct {
	ID           uint      `json:"id"`
	AssignmentID uint      `json:"assignment_id"`
	Kind         string    `json:"kind"`
	ScheduledFor time.Time `json:"scheduled_for"`
	Processed    bool      `json:"processed"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewReminderResponse converts a model into a DTO.
func NewReminderResponse(model models.Reminder) ReminderResponse {
	return ReminderResponse{
		ID:           model.ID,
		AssignmentID: model.AssignmentID,
		Kind:         string(model.Kind),
		ScheduledFor: model.ScheduledFor,
		Processed:    model.Processed,
		CreatedAt:    model.CreatedAt,
		UpdatedAt:    model.UpdatedAt,
	}
}

// NewReminderResponseSlice converts a slice of models into DTOs.
func NewReminderResponseSlice(reminders []models.Reminder) []ReminderResponse {
	out := make([]ReminderResponse, 0, len(reminders))
	for _, reminder := range reminders {
		out = append(out, NewReminderResponse(reminder))
	}
	return out
}

// SweepRunRequest triggers a manual sweep; At defaults to the server clock.
type SweepRunRequest struct {
	At string `json:"at" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
}

// SweepReportResponse summarises one sweep pass.
type SweepReportResponse struct {
	RanAt     time.Time `json:"ran_at"`
	Due       int       `json:"due"`
	Claimed   int       `json:"claimed"`
	LostRaces int       `json:"lost_races"`
	Sent      int       `json:"sent"`
	Failed    int       `json:"failed"`
}
