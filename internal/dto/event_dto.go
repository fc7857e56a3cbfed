package dto

// Lifecycle event payloads posted by the course system. Each event mirrors
// the upstream state change that the dispatch engine must react to.

// AssignmentEventRequest announces a published or updated assignment.
type AssignmentEventRequest struct {
	AssignmentID uint   `json:"assignment_id" validate:"required"`
	CourseID     uint   `json:"course_id" validate:"required"`
	CourseName   string `json:"course_name" validate:"required,max=255"`
	Title        string `json:"title" validate:"required,min=3,max=255"`
	Description  string `json:"description" validate:"omitempty,max=10000"`
	DueDate      string `json:"due_date" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	Published    bool   `json:"published"`
	LatePolicy   string `json:"late_policy" validate:"omitempty,oneof=accept penalize reject"`
	Announce     bool   `json:"announce"`
}

// AssignmentRemovedRequest announces deletion or unpublication.
type AssignmentRemovedRequest struct {
	AssignmentID uint `json:"assignment_id" validate:"required"`
}

// SubmissionEventRequest announces a received or graded submission.
type SubmissionEventRequest struct {
	AssignmentID uint   `json:"assignment_id" validate:"required"`
	RecipientID  string `json:"recipient_id" validate:"required,max=64"`
	Completed    bool   `json:"completed"`
	Grade        string `json:"grade" validate:"omitempty,max=32"`
	Feedback     string `json:"feedback" validate:"omitempty,max=4000"`
	SubmittedAt  string `json:"submitted_at" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
}

// ExtensionGrantedRequest announces a per-recipient deadline extension.
type ExtensionGrantedRequest struct {
	AssignmentID uint   `json:"assignment_id" validate:"required"`
	RecipientID  string `json:"recipient_id" validate:"required,max=64"`
	NewDueDate   string `json:"new_due_date" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	Reason       string `json:"reason" validate:"omitempty,max=2000"`
	GrantedBy    string `json:"granted_by" validate:"omitempty,max=64"`
}

// ExtensionRequestedRequest asks the course staff for an extension.
type ExtensionRequestedRequest struct {
	AssignmentID  uint     `json:"assignment_id" validate:"required"`
	RequesterID   string   `json:"requester_id" validate:"required,max=64"`
	RequesterName string   `json:"requester_name" validate:"required,max=255"`
	Reason        string   `json:"reason" validate:"omitempty,max=2000"`
	NotifyIDs     []string `json:"notify_ids" validate:"required,min=1,dive,max=64"`
}
