package models

import "time"

// ReminderKind identifies one of the reminder slots derived from an
// assignment deadline.
type ReminderKind string

const (
	ReminderDueIn48h ReminderKind = "due_in_48h"
	ReminderDueIn24h ReminderKind = "due_in_24h"
	ReminderOverdue  ReminderKind = "overdue"
)

// overdueGrace delays the overdue reminder so that submissions landing right
// at the deadline are not flagged immediately.
const overdueGrace = time.Hour

// ReminderKinds lists every kind the scheduler derives per assignment.
func ReminderKinds() []ReminderKind {
	return []ReminderKind{ReminderDueIn48h, ReminderDueIn24h, ReminderOverdue}
}

// Valid reports whether the kind is one of the known reminder slots.
func (k ReminderKind) Valid() bool {
	switch k {
	case ReminderDueIn48h, ReminderDueIn24h, ReminderOverdue:
		return true
	default:
		return false
	}
}

// TriggerAt computes the instant this kind fires for the given due date.
func (k ReminderKind) TriggerAt(dueDate time.Time) time.Time {
	switch k {
	case ReminderDueIn48h:
		return dueDate.Add(-48 * time.Hour)
	case ReminderDueIn24h:
		return dueDate.Add(-24 * time.Hour)
	case ReminderOverdue:
		return dueDate.Add(overdueGrace)
	default:
		return dueDate
	}
}

// Reminder is one scheduled firing opportunity for an assignment. The
// (assignment_id, kind) pair is unique; rescheduling overwrites the row
// instead of inserting a second one.
type Reminder struct {
	ID           uint         `gorm:"primaryKey" json:"id"`
	AssignmentID uint         `gorm:"not null;uniqueIndex:idx_reminders_assignment_kind" json:"assignment_id"`
	Kind         ReminderKind `gorm:"size:32;not null;uniqueIndex:idx_reminders_assignment_kind" json:"kind"`
	ScheduledFor time.Time    `gorm:"not null;index:idx_reminders_due" json:"scheduled_for"`
	Processed    bool         `gorm:"not null;default:false;index:idx_reminders_due" json:"processed"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// Due reports whether the reminder is eligible for claiming at the given
// instant.
func (r Reminder) Due(reference time.Time) bool {
	return !r.Processed && !r.ScheduledFor.After(reference)
}
