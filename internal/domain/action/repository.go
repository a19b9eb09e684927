package action

import (
	"context"
	"errors"

	"github.com/Nabeerak/hackathon-todo/internal/infrastructure/persistence/postgres/connection"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, action *TaskAction) error
	FindByID(ctx context.Context, userID, id uuid.UUID) (*TaskAction, error)
	FindPending(ctx context.Context, userID uuid.UUID) ([]TaskAction, error)
	Update(ctx context.Context, action *TaskAction) error
}

type actionRepository struct {
	db *connection.Database
}

func NewRepository(db *connection.Database) Repository {
	return &actionRepository{db: db}
}

func (r *actionRepository) Create(ctx context.Context, action *TaskAction) error {
	return r.db.WithContext(ctx).Create(action).Error
}

func (r *actionRepository) FindByID(ctx context.Context, userID, id uuid.UUID) (*TaskAction, error) {
	var action TaskAction
	result := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, id).First(&action)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrActionNotFound
		}
		return nil, result.Error
	}
	return &action, nil
}

func (r *actionRepository) FindPending(ctx context.Context, userID uuid.UUID) ([]TaskAction, error) {
	var actions []TaskAction
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND confirmation_status = ?", userID, StatusPending).
		Order("created_at DESC").
		Find(&actions)
	if result.Error != nil {
		return nil, result.Error
	}
	return actions, nil
}

func (r *actionRepository) Update(ctx context.Context, action *TaskAction) error {
	result := r.db.WithContext(ctx).Save(action)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrActionNotFound
	}
	return nil
}
