package chat

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Common errors
var (
	ErrSessionNotFound = errors.New("chat session not found")
	ErrEmptyMessage    = errors.New("message text is required")
	ErrMessageTooLong  = errors.New("message exceeds the maximum length")
)

// MaxMessageLength bounds a single chat message
const MaxMessageLength = 4000

// Message roles
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// ChatSession is a conversation container. A user may accumulate several
// sessions over time; the most recent active one is reused when the
// client does not name a session explicitly.
type ChatSession struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	UserID         uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	MessageCount   int       `gorm:"not null;default:0" json:"message_count"`
	IsActive       bool      `gorm:"not null;default:true;index" json:"is_active"`
	LastActivityAt time.Time `gorm:"not null;default:current_timestamp" json:"last_activity_at"`
	CreatedAt      time.Time `gorm:"not null;default:current_timestamp" json:"created_at"`
	UpdatedAt      time.Time `gorm:"not null;default:current_timestamp;autoUpdateTime" json:"updated_at"`
}

func (ChatSession) TableName() string {
	return "chat_sessions"
}

func (s *ChatSession) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	s.IsActive = true
	s.LastActivityAt = time.Now()
	s.CreatedAt = time.Now()
	s.UpdatedAt = time.Now()
	return nil
}

// ChatMessage is one turn of the conversation. ActionID links an
// assistant turn to the pending action it proposed, if any; Metadata
// holds opaque per-message JSON the extraction layer wants to keep.
type ChatMessage struct {
	ID        uuid.UUID  `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	SessionID uuid.UUID  `gorm:"type:uuid;not null;index" json:"session_id"`
	UserID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	Role      string     `gorm:"size:20;not null" json:"role"`
	Content   string     `gorm:"type:text;not null" json:"content"`
	ActionID  *uuid.UUID `gorm:"type:uuid" json:"action_id,omitempty"`
	Metadata  string     `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt time.Time  `gorm:"not null;default:current_timestamp" json:"created_at"`
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}

func (m *ChatMessage) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	m.CreatedAt = time.Now()
	return nil
}
