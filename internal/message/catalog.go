package message

import (
	"fmt"
	"time"
)

// ErrUnknownType is returned when a type outside the catalog reaches Render.
var ErrUnknownType = fmt.Errorf("message: unknown notification type")

const dueDateLayout = "Mon, 02 Jan 2006 15:04 MST"

// PriorityOf returns the delivery priority assigned to a type.
func PriorityOf(t Type) Priority {
	switch t {
	case TypeAssignmentPublished:
		return PriorityMedium
	case TypeDueReminder48h:
		return PriorityMedium
	case TypeDueReminder24h:
		return PriorityHigh
	case TypeAssignmentOverdue:
		return PriorityUrgent
	case TypeSubmissionReceived:
		return PriorityLow
	case TypeSubmissionGraded:
		return PriorityMedium
	case TypeExtensionGranted:
		return PriorityMedium
	case TypeExtensionRequested:
		return PriorityHigh
	default:
		return PriorityLow
	}
}

// CategoryOf returns the preference category a type belongs to.
func CategoryOf(t Type) Category {
	switch t {
	case TypeAssignmentPublished:
		return CategoryAnnouncements
	case TypeDueReminder48h, TypeDueReminder24h, TypeAssignmentOverdue:
		return CategoryDeadlines
	case TypeSubmissionReceived, TypeSubmissionGraded:
		return CategorySubmissions
	case TypeExtensionGranted, TypeExtensionRequested:
		return CategoryExtensions
	default:
		return CategoryAnnouncements
	}
}

// Render produces the channel-agnostic message for a type from its context.
func Render(t Type, ctx Context) (Message, error) {
	msg := Message{
		Type:      t,
		Priority:  PriorityOf(t),
		Category:  CategoryOf(t),
		ActionURL: actionURL(t, ctx),
	}

	due := ctx.DueDate.Format(dueDateLayout)

	switch t {
	case TypeAssignmentPublished:
		msg.Title = fmt.Sprintf("New assignment: %s", ctx.AssignmentTitle)
		msg.Body = fmt.Sprintf("%s published a new assignment %q, due %s.",
			ctx.CourseName, ctx.AssignmentTitle, due)
	case TypeDueReminder48h:
		msg.Title = fmt.Sprintf("Due in 48 hours: %s", ctx.AssignmentTitle)
		msg.Body = fmt.Sprintf("%q for %s is due %s (%d hours remaining).",
			ctx.AssignmentTitle, ctx.CourseName, due, ctx.HoursRemaining)
	case TypeDueReminder24h:
		msg.Title = fmt.Sprintf("Due in 24 hours: %s", ctx.AssignmentTitle)
		msg.Body = fmt.Sprintf("%q for %s is due %s (%d hours remaining).",
			ctx.AssignmentTitle, ctx.CourseName, due, ctx.HoursRemaining)
	case TypeAssignmentOverdue:
		msg.Title = fmt.Sprintf("Overdue: %s", ctx.AssignmentTitle)
		msg.Body = fmt.Sprintf("%q for %s was due %s and has no completed submission from you.",
			ctx.AssignmentTitle, ctx.CourseName, due)
	case TypeSubmissionReceived:
		msg.Title = fmt.Sprintf("Submission received: %s", ctx.AssignmentTitle)
		msg.Body = fmt.Sprintf("Your submission for %q (%s) was received.",
			ctx.AssignmentTitle, ctx.CourseName)
	case TypeSubmissionGraded:
		msg.Title = fmt.Sprintf("Graded: %s", ctx.AssignmentTitle)
		msg.Body = submissionGradedBody(ctx)
	case TypeExtensionGranted:
		msg.Title = fmt.Sprintf("Deadline extended: %s", ctx.AssignmentTitle)
		msg.Body = fmt.Sprintf("Your deadline for %q (%s) was moved to %s.",
			ctx.AssignmentTitle, ctx.CourseName, due)
	case TypeExtensionRequested:
		msg.Title = fmt.Sprintf("Extension requested: %s", ctx.AssignmentTitle)
		msg.Body = extensionRequestedBody(ctx)
	default:
		return Message{}, fmt.Errorf("%w: %q", ErrUnknownType, t)
	}

	return msg, nil
}

func submissionGradedBody(ctx Context) string {
	body := fmt.Sprintf("Your submission for %q (%s) was graded: %s.",
		ctx.AssignmentTitle, ctx.CourseName, ctx.Grade)
	if ctx.Feedback != "" {
		body += " Feedback: " + ctx.Feedback
	}
	return body
}

func extensionRequestedBody(ctx Context) string {
	body := fmt.Sprintf("%s requested a deadline extension for %q (%s).",
		ctx.RequesterName, ctx.AssignmentTitle, ctx.CourseName)
	if ctx.Reason != "" {
		body += " Reason: " + ctx.Reason
	}
	return body
}

func actionURL(t Type, ctx Context) string {
	switch t {
	case TypeSubmissionReceived, TypeSubmissionGraded:
		return fmt.Sprintf("/assignments/%d/submissions", ctx.AssignmentID)
	case TypeExtensionRequested:
		return fmt.Sprintf("/assignments/%d/extensions", ctx.AssignmentID)
	default:
		return fmt.Sprintf("/assignments/%d", ctx.AssignmentID)
	}
}

// HoursUntil computes whole hours between now and the due date, never
// negative; fed into the HoursRemaining template field.
func HoursUntil(now, due time.Time) int {
	if !due.After(now) {
		return 0
	}
	return int(due.Sub(now) / time.Hour)
}
