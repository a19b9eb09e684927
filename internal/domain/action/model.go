package action

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/Nabeerak/hackathon-todo/internal/domain/ai"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Common errors
var (
	ErrActionNotFound   = errors.New("action not found")
	ErrActionNotPending = errors.New("action is no longer pending")
	ErrTaskNotResolved  = errors.New("no task matches the reference")
	ErrTaskAmbiguous    = errors.New("multiple tasks match the reference")
	ErrInvalidInput     = errors.New("invalid input")
)

// Confirmation statuses
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusRejected  = "rejected"
)

// Execution statuses
const (
	ExecutionNotExecuted = "not_executed"
	ExecutionExecuting   = "executing"
	ExecutionSuccess     = "success"
	ExecutionFailed      = "failed"
)

// TaskAction is a proposed task operation awaiting the user's decision.
// Payload holds the extracted proposal as JSON so the action survives a
// restart in the exact form it was shown to the user. MessageID points at
// the chat message that produced the proposal; TaskID is set once a
// confirmed action has created or touched a concrete task.
type TaskAction struct {
	ID                 uuid.UUID  `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	UserID             uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	SessionID          uuid.UUID  `gorm:"type:uuid;index" json:"session_id"`
	MessageID          *uuid.UUID `gorm:"type:uuid;index" json:"message_id,omitempty"`
	TaskID             *uuid.UUID `gorm:"type:uuid;index" json:"task_id,omitempty"`
	ActionType         string     `gorm:"size:20;not null" json:"action_type"`
	Payload            string     `gorm:"type:jsonb;not null" json:"payload"`
	Confidence         float64    `gorm:"not null;default:0" json:"confidence"`
	ConfirmationStatus string     `gorm:"size:20;not null;default:'pending';index" json:"confirmation_status"`
	ExecutionStatus    string     `gorm:"size:20;not null;default:'not_executed'" json:"execution_status"`
	ErrorMessage       string     `gorm:"type:text" json:"error_message,omitempty"`
	ConfirmedAt        *time.Time `json:"confirmed_at,omitempty"`
	ExecutedAt         *time.Time `json:"executed_at,omitempty"`
	CreatedAt          time.Time  `gorm:"not null;default:current_timestamp" json:"created_at"`
	UpdatedAt          time.Time  `gorm:"not null;default:current_timestamp;autoUpdateTime" json:"updated_at"`
}

func (TaskAction) TableName() string {
	return "task_actions"
}

func (a *TaskAction) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.ConfirmationStatus == "" {
		a.ConfirmationStatus = StatusPending
	}
	if a.ExecutionStatus == "" {
		a.ExecutionStatus = ExecutionNotExecuted
	}
	a.CreatedAt = time.Now()
	a.UpdatedAt = time.Now()
	return nil
}

func (a *TaskAction) BeforeUpdate(tx *gorm.DB) error {
	a.UpdatedAt = time.Now()
	return nil
}

// IsPending reports whether the action still accepts a confirm or reject
func (a *TaskAction) IsPending() bool {
	return a.ConfirmationStatus == StatusPending
}

// Proposal decodes the stored payload back into the extracted form
func (a *TaskAction) Proposal() (ai.ExtractedTask, error) {
	var t ai.ExtractedTask
	err := json.Unmarshal([]byte(a.Payload), &t)
	return t, err
}

func encodeProposal(t ai.ExtractedTask) (string, error) {
	raw, err := json.Marshal(t)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
