package chat

import (
	"context"
	"errors"
	"time"

	"github.com/Nabeerak/hackathon-todo/internal/infrastructure/persistence/postgres/connection"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	GetOrCreateSession(ctx context.Context, userID uuid.UUID, sessionID *uuid.UUID) (*ChatSession, error)
	FindSession(ctx context.Context, userID, sessionID uuid.UUID) (*ChatSession, error)
	AppendMessage(ctx context.Context, msg *ChatMessage) error
	RecentMessages(ctx context.Context, sessionID uuid.UUID, limit int) ([]ChatMessage, error)
}

type chatRepository struct {
	db *connection.Database
}

func NewRepository(db *connection.Database) Repository {
	return &chatRepository{db: db}
}

// GetOrCreateSession resolves the conversation a turn belongs to. A named
// active session is reused and its last-activity timestamp bumped; with no
// usable session a fresh one is created.
func (r *chatRepository) GetOrCreateSession(ctx context.Context, userID uuid.UUID, sessionID *uuid.UUID) (*ChatSession, error) {
	var session ChatSession

	query := r.db.WithContext(ctx).Where("user_id = ? AND is_active = true", userID)
	if sessionID != nil {
		query = query.Where("id = ?", *sessionID)
	} else {
		query = query.Order("last_activity_at DESC")
	}

	err := query.First(&session).Error
	if err == nil {
		now := time.Now()
		session.LastActivityAt = now
		if err := r.db.WithContext(ctx).Model(&session).
			UpdateColumn("last_activity_at", now).Error; err != nil {
			return nil, err
		}
		return &session, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	session = ChatSession{ID: uuid.New(), UserID: userID}
	if err := r.db.WithContext(ctx).Create(&session).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

// FindSession looks up a session scoped to its owner
func (r *chatRepository) FindSession(ctx context.Context, userID, sessionID uuid.UUID) (*ChatSession, error) {
	var session ChatSession
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", sessionID, userID).
		First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// AppendMessage stores the message and bumps the session counter and
// last-activity timestamp in one transaction.
func (r *chatRepository) AppendMessage(ctx context.Context, msg *ChatMessage) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(msg).Error; err != nil {
			return err
		}
		return tx.Model(&ChatSession{}).
			Where("id = ?", msg.SessionID).
			UpdateColumns(map[string]interface{}{
				"message_count":    gorm.Expr("message_count + 1"),
				"last_activity_at": time.Now(),
			}).Error
	})
}

// RecentMessages returns the newest messages in chronological order
func (r *chatRepository) RecentMessages(ctx context.Context, sessionID uuid.UUID, limit int) ([]ChatMessage, error) {
	var messages []ChatMessage
	result := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at DESC").
		Limit(limit).
		Find(&messages)
	if result.Error != nil {
		return nil, result.Error
	}

	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}
