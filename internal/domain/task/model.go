package task

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Validation bounds for task fields
const (
	MaxTitleLength       = 500
	MaxDescriptionLength = 2000
)

// Common errors
var (
	ErrTaskNotFound = errors.New("task not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrTitleTooLong = errors.New("title exceeds 500 characters")
	ErrDescTooLong  = errors.New("description exceeds 2000 characters")
)

// TaskPriority represents the priority level of a task
type TaskPriority string

const (
	PriorityHigh   TaskPriority = "high"
	PriorityMedium TaskPriority = "medium"
	PriorityLow    TaskPriority = "low"
)

func (p TaskPriority) IsValid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// Task represents a to-do item owned by exactly one user
type Task struct {
	ID             uuid.UUID    `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	UserID         uuid.UUID    `gorm:"type:uuid;not null;index" json:"user_id"`
	Title          string       `gorm:"size:500;not null" json:"title"`
	Description    string       `gorm:"type:text" json:"description"`
	Priority       TaskPriority `gorm:"type:varchar(20);not null;default:'medium'" json:"priority"`
	IsCompleted    bool         `gorm:"not null;default:false;index" json:"is_completed"`
	DueDate        *time.Time   `gorm:"index" json:"due_date,omitempty"`
	CompletionDate *time.Time   `json:"completion_date,omitempty"`
	CreatedAt      time.Time    `gorm:"not null;default:current_timestamp;index" json:"created_at"`
	UpdatedAt      time.Time    `gorm:"not null;default:current_timestamp;autoUpdateTime" json:"updated_at"`
}

func (Task) TableName() string {
	return "tasks"
}

// Validate checks if the task data is valid
func (t *Task) Validate() error {
	if t.Title == "" {
		return ErrInvalidInput
	}
	if len(t.Title) > MaxTitleLength {
		return ErrTitleTooLong
	}
	if len(t.Description) > MaxDescriptionLength {
		return ErrDescTooLong
	}
	if !t.Priority.IsValid() {
		return ErrInvalidInput
	}
	if t.UserID == uuid.Nil {
		return ErrInvalidInput
	}
	return nil
}

// BeforeCreate is called before inserting a new task record
func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.Priority == "" {
		t.Priority = PriorityMedium
	}

	t.CreatedAt = time.Now()
	t.UpdatedAt = time.Now()
	return t.Validate()
}

// BeforeUpdate is called before updating a task record
func (t *Task) BeforeUpdate(tx *gorm.DB) error {
	t.UpdatedAt = time.Now()

	if t.IsCompleted && t.CompletionDate == nil {
		now := time.Now()
		t.CompletionDate = &now
	}

	return t.Validate()
}

// TaskFilter narrows task queries; UserID is always required
type TaskFilter struct {
	UserID      uuid.UUID
	IsCompleted *bool
	Priority    *TaskPriority
	DueBefore   *time.Time
	Overdue     bool
	Page        int
	PageSize    int
}
