package ai

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Common errors
var (
	ErrPreferencesNotFound = errors.New("preferences not found")
	ErrShortcutNotFound    = errors.New("shortcut not found")
	ErrInvalidInput        = errors.New("invalid input")
	ErrQuotaExceeded       = errors.New("daily AI request quota exceeded")
)

// Tone values accepted for assistant replies
const (
	ToneFriendly     = "friendly"
	ToneProfessional = "professional"
	ToneConcise      = "concise"
)

// UserPreferences is a per-user singleton holding assistant settings.
// LearnedShortcuts maps a shortcut name to a task template and is stored
// as raw JSON so individual keys can be patched in place.
type UserPreferences struct {
	ID                   uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	UserID               uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	Tone                 string    `gorm:"size:50;not null;default:'friendly'" json:"tone"`
	Language             string    `gorm:"size:10;not null;default:'en'" json:"language"`
	ProactiveSuggestions bool      `gorm:"not null;default:true" json:"proactive_suggestions"`
	RequireConfirmation  bool      `gorm:"not null;default:true" json:"require_confirmation"`
	CustomDailyLimit     int       `gorm:"not null;default:0" json:"custom_daily_limit"`
	LearnedShortcuts     string    `gorm:"type:jsonb;not null;default:'{}'" json:"learned_shortcuts"`
	CreatedAt            time.Time `gorm:"not null;default:current_timestamp" json:"created_at"`
	UpdatedAt            time.Time `gorm:"not null;default:current_timestamp;autoUpdateTime" json:"updated_at"`
}

func (UserPreferences) TableName() string {
	return "user_preferences"
}

func (p *UserPreferences) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Tone == "" {
		p.Tone = ToneFriendly
	}
	if p.Language == "" {
		p.Language = "en"
	}
	if p.LearnedShortcuts == "" {
		p.LearnedShortcuts = "{}"
	}
	p.CreatedAt = time.Now()
	p.UpdatedAt = time.Now()
	return nil
}

func (p *UserPreferences) BeforeUpdate(tx *gorm.DB) error {
	p.UpdatedAt = time.Now()
	return nil
}

// AIContext accumulates per-user interaction counters and a keyword
// frequency map. It only biases default suggestions; nothing reads it as
// authoritative state.
type AIContext struct {
	ID                uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	UserID            uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	TotalInteractions int       `gorm:"not null;default:0" json:"total_interactions"`
	AcceptedActions   int       `gorm:"not null;default:0" json:"accepted_actions"`
	RejectedActions   int       `gorm:"not null;default:0" json:"rejected_actions"`
	Patterns          string    `gorm:"type:jsonb;not null;default:'{}'" json:"patterns"`
	CreatedAt         time.Time `gorm:"not null;default:current_timestamp" json:"created_at"`
	UpdatedAt         time.Time `gorm:"not null;default:current_timestamp;autoUpdateTime" json:"updated_at"`
}

func (AIContext) TableName() string {
	return "ai_contexts"
}

func (c *AIContext) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.Patterns == "" {
		c.Patterns = "{}"
	}
	c.CreatedAt = time.Now()
	c.UpdatedAt = time.Now()
	return nil
}

func (c *AIContext) BeforeUpdate(tx *gorm.DB) error {
	c.UpdatedAt = time.Now()
	return nil
}
