package models

import (
	"time"

	"gorm.io/gorm"
)

type TaskStatus string

const (
	TaskStatusPending       TaskStatus = "PENDING"
	TaskStatusInProgress    TaskStatus = "IN_PROGRESS"
	TaskStatusToBeConfirmed TaskStatus = "TO_BE_CONFIRMED"
	TaskStatusCompleted     TaskStatus = "COMPLETED"
	TaskStatusFailed        TaskStatus = "FAILED"
	TaskStatusAbandoned     TaskStatus = "ABANDONED"
	TaskStatusExpired       TaskStatus = "EXPIRED"
)

// IsTerminal reports whether no transition leaves the status.
func (s TaskStatus) IsTerminal() bool {
	switch s {
	case TaskStatusCompleted, TaskStatusFailed, TaskStatusAbandoned:
		return true
	}
	return false
}

// Valid reports whether s is one of the known statuses.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusToBeConfirmed,
		TaskStatusCompleted, TaskStatusFailed, TaskStatusAbandoned, TaskStatusExpired:
		return true
	}
	return false
}

type Task struct {
	ID               uint64         `gorm:"primarykey" json:"id"`
	Name             string         `gorm:"type:varchar(255);not null" json:"name"`
	Description      string         `gorm:"type:text" json:"description"`
	Status           TaskStatus     `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	PublisherID      uint64         `gorm:"not null;index" json:"publisher_id"`
	ReceiverID       *uint64        `gorm:"index" json:"receiver_id"`
	TimeLimitSeconds int64          `gorm:"not null;default:0" json:"time_limit_seconds"`
	CompletedAt      *time.Time     `json:"completed_at"`
	OrganizationID   uint64         `gorm:"not null;index" json:"organization_id"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Publisher    User         `gorm:"foreignKey:PublisherID" json:"publisher,omitempty"`
	Organization Organization `gorm:"foreignKey:OrganizationID" json:"organization,omitempty"`
}

// IsReceiver reports whether userID is the task's current receiver.
func (t *Task) IsReceiver(userID uint64) bool {
	return t.ReceiverID != nil && *t.ReceiverID == userID
}
