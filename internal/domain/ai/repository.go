package ai

import (
	"context"
	"errors"

	"github.com/Nabeerak/hackathon-todo/internal/infrastructure/persistence/postgres/connection"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	GetOrCreatePreferences(ctx context.Context, userID uuid.UUID) (*UserPreferences, error)
	UpdatePreferences(ctx context.Context, prefs *UserPreferences) error
	GetOrCreateContext(ctx context.Context, userID uuid.UUID) (*AIContext, error)
	UpdateContext(ctx context.Context, aiCtx *AIContext) error
}

type aiRepository struct {
	db *connection.Database
}

func NewRepository(db *connection.Database) Repository {
	return &aiRepository{db: db}
}

func (r *aiRepository) GetOrCreatePreferences(ctx context.Context, userID uuid.UUID) (*UserPreferences, error) {
	var prefs UserPreferences
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&prefs).Error
	if err == nil {
		return &prefs, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	prefs = UserPreferences{
		ID:                   uuid.New(),
		UserID:               userID,
		Tone:                 ToneFriendly,
		Language:             "en",
		ProactiveSuggestions: true,
		RequireConfirmation:  true,
		LearnedShortcuts:     "{}",
	}
	if err := r.db.WithContext(ctx).Create(&prefs).Error; err != nil {
		return nil, err
	}
	return &prefs, nil
}

func (r *aiRepository) UpdatePreferences(ctx context.Context, prefs *UserPreferences) error {
	result := r.db.WithContext(ctx).Save(prefs)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPreferencesNotFound
	}
	return nil
}

func (r *aiRepository) GetOrCreateContext(ctx context.Context, userID uuid.UUID) (*AIContext, error) {
	var aiCtx AIContext
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&aiCtx).Error
	if err == nil {
		return &aiCtx, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	aiCtx = AIContext{
		ID:       uuid.New(),
		UserID:   userID,
		Patterns: "{}",
	}
	if err := r.db.WithContext(ctx).Create(&aiCtx).Error; err != nil {
		return nil, err
	}
	return &aiCtx, nil
}

func (r *aiRepository) UpdateContext(ctx context.Context, aiCtx *AIContext) error {
	return r.db.WithContext(ctx).Save(aiCtx).Error
}
