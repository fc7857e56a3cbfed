package models

import "time"

// Extension grants a single recipient a replacement due date for one
// assignment. At most one extension exists per (assignment, recipient);
// granting again overwrites the previous one.
type Extension struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	AssignmentID uint      `gorm:"not null;uniqueIndex:idx_extensions_assignment_recipient" json:"assignment_id"`
	RecipientID  string    `gorm:"size:64;not null;uniqueIndex:idx_extensions_assignment_recipient" json:"recipient_id"`
	NewDueDate   time.Time `gorm:"not null" json:"new_due_date"`
	Reason       string    `gorm:"type:text" json:"reason"`
	GrantedBy    string    `gorm:"size:64" json:"granted_by"`
	GrantedAt    time.Time `gorm:"not null" json:"granted_at"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
