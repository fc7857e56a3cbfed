package models

import "time"

// Enrollment links a recipient to a course roster. Rows are synced in by the
// enrollment system; this service only reads them.
type Enrollment struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CourseID    uint      `gorm:"not null;uniqueIndex:idx_enrollments_course_recipient" json:"course_id"`
	RecipientID string    `gorm:"size:64;not null;uniqueIndex:idx_enrollments_course_recipient" json:"recipient_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// Submission captures a recipient's completion state for an assignment.
// A completed submission satisfies every pending reminder for that recipient.
type Submission struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	AssignmentID uint      `gorm:"not null;index:idx_submissions_assignment_recipient" json:"assignment_id"`
	RecipientID  string    `gorm:"size:64;not null;index:idx_submissions_assignment_recipient" json:"recipient_id"`
	Completed    bool      `gorm:"not null;default:false" json:"completed"`
	Grade        string    `gorm:"size:32" json:"grade"`
	Feedback     string    `gorm:"type:text" json:"feedback"`
	SubmittedAt  time.Time `json:"submitted_at"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// RecipientProfile holds the delivery addresses known for a recipient.
type RecipientProfile struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	RecipientID string    `gorm:"size:64;not null;uniqueIndex" json:"recipient_id"`
	Name        string    `gorm:"size:255" json:"name"`
	Email       string    `gorm:"size:255" json:"email"`
	Phone       string    `gorm:"size:32" json:"phone"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
