// Package message defines the closed catalog of notification types the
// dispatch engine can emit, together with their priorities, template
// rendering and action URLs. The catalog is a compile-time switch; adding a
// type without wiring its template is a build error surfaced by the tests.
package message

import (
	"time"

	"github.com/noah-isme/gema-notify/internal/models"
)

// Type is a stable notification type identifier consumed by channels and
// template lookups.
type Type string

const (
	TypeAssignmentPublished Type = "ASSIGNMENT_PUBLISHED"
	TypeDueReminder48h      Type = "ASSIGNMENT_DUE_REMINDER_48H"
	TypeDueReminder24h      Type = "ASSIGNMENT_DUE_REMINDER_24H"
	TypeAssignmentOverdue   Type = "ASSIGNMENT_OVERDUE"
	TypeSubmissionReceived  Type = "SUBMISSION_RECEIVED"
	TypeSubmissionGraded    Type = "SUBMISSION_GRADED"
	TypeExtensionGranted    Type = "EXTENSION_GRANTED"
	TypeExtensionRequested  Type = "EXTENSION_REQUESTED"
)

// Types lists every member of the catalog.
func Types() []Type {
	return []Type{
		TypeAssignmentPublished,
		TypeDueReminder48h,
		TypeDueReminder24h,
		TypeAssignmentOverdue,
		TypeSubmissionReceived,
		TypeSubmissionGraded,
		TypeExtensionGranted,
		TypeExtensionRequested,
	}
}

// Priority ranks a notification for channels that support it.
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
	PriorityUrgent Priority = "URGENT"
)

// Category groups types for preference opt-outs.
type Category string

const (
	CategoryDeadlines     Category = "deadlines"
	CategorySubmissions   Category = "submissions"
	CategoryExtensions    Category = "extensions"
	CategoryAnnouncements Category = "announcements"
)

// Context carries the fixed field set templates may reference. The sweep
// dispatcher fills the deadline fields per recipient, since extensions make
// the binding due date recipient-specific.
type Context struct {
	AssignmentID    uint
	AssignmentTitle string
	CourseName      string
	DueDate         time.Time
	HoursRemaining  int
	Grade           string
	Feedback        string
	RequesterName   string
	Reason          string
}

// Message is a rendered notification ready for a channel sender.
type Message struct {
	Type      Type
	Priority  Priority
	Category  Category
	Title     string
	Body      string
	ActionURL string
}

// TypeForReminderKind maps a reminder slot to its catalog type.
func TypeForReminderKind(kind models.ReminderKind) (Type, bool) {
	switch kind {
	case models.ReminderDueIn48h:
		return TypeDueReminder48h, true
	case models.ReminderDueIn24h:
		return TypeDueReminder24h, true
	case models.ReminderOverdue:
		return TypeAssignmentOverdue, true
	default:
		return "", false
	}
}
