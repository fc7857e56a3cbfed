package models

import "time"

// LatePolicy controls how submissions after the deadline are treated.
type LatePolicy string

const (
	LatePolicyAccept   LatePolicy = "accept"
	LatePolicyPenalize LatePolicy = "penalize"
	LatePolicyReject   LatePolicy = "reject"
)

// Assignment represents a course assignment with a hard deadline.
// Assignments are created and edited by instructor tooling; this service
// only reads them and reacts to lifecycle events.
type Assignment struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	CourseID    uint       `gorm:"index;not null" json:"course_id"`
	CourseName  string     `gorm:"size:255" json:"course_name"`
	Title       string     `gorm:"size:255;not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	DueDate     time.Time  `gorm:"not null" json:"due_date"`
	Published   bool       `gorm:"not null;default:false" json:"published"`
	LatePolicy  LatePolicy `gorm:"size:16;default:accept" json:"late_policy"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// IsPastDue returns true when the assignment deadline has already passed.
func (a Assignment) IsPastDue(reference time.Time) bool {
	return reference.After(a.DueDate)
}

// EffectiveDueDate returns the due date binding on a single recipient.
// An active extension overrides the assignment due date for that recipient
// exactly as granted, even when the extension date is earlier than the
// original deadline; validating the direction is the granter's concern.
func (a Assignment) EffectiveDueDate(ext *Extension) time.Time {
	if ext == nil {
		return a.DueDate
	}
	if ext.AssignmentID != a.ID {
		return a.DueDate
	}
	return ext.NewDueDate
}
