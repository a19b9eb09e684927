package task

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Nabeerak/hackathon-todo/internal/infrastructure/persistence/postgres/connection"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository is the persistence boundary for tasks. Every method takes
// the owning user's id and filters by it; a task belonging to another
// user is indistinguishable from a missing one.
type Repository interface {
	Create(ctx context.Context, task *Task) error
	FindByID(ctx context.Context, userID, id uuid.UUID) (*Task, error)
	FindAll(ctx context.Context, filter TaskFilter) ([]Task, int64, error)
	FindByTitleSubstring(ctx context.Context, userID uuid.UUID, substr string) ([]Task, error)
	Update(ctx context.Context, task *Task) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
	DeleteBatch(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (int64, error)
}

type taskRepository struct {
	db *connection.Database
}

func NewRepository(db *connection.Database) Repository {
	return &taskRepository{db: db}
}

func (r *taskRepository) Create(ctx context.Context, task *Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

func (r *taskRepository) FindByID(ctx context.Context, userID, id uuid.UUID) (*Task, error) {
	var task Task
	result := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, id).First(&task)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, result.Error
	}
	return &task, nil
}

func (r *taskRepository) FindAll(ctx context.Context, filter TaskFilter) ([]Task, int64, error) {
	var tasks []Task
	var total int64

	query := r.db.WithContext(ctx).Model(&Task{}).Where("user_id = ?", filter.UserID)

	if filter.IsCompleted != nil {
		query = query.Where("is_completed = ?", *filter.IsCompleted)
	}
	if filter.Priority != nil {
		query = query.Where("priority = ?", *filter.Priority)
	}
	if filter.DueBefore != nil {
		query = query.Where("due_date < ?", *filter.DueBefore)
	}
	if filter.Overdue {
		query = query.Where("is_completed = false AND due_date IS NOT NULL AND due_date < ?", time.Now().UTC())
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.PageSize == 0 {
		filter.PageSize = 100
	}
	query = query.Offset(filter.Page * filter.PageSize).Limit(filter.PageSize)

	if err := query.Order("created_at DESC").Find(&tasks).Error; err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

func (r *taskRepository) FindByTitleSubstring(ctx context.Context, userID uuid.UUID, substr string) ([]Task, error) {
	var tasks []Task
	pattern := "%" + strings.ToLower(substr) + "%"
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND LOWER(title) LIKE ?", userID, pattern).
		Order("created_at DESC").
		Find(&tasks)
	if result.Error != nil {
		return nil, result.Error
	}
	return tasks, nil
}

func (r *taskRepository) Update(ctx context.Context, task *Task) error {
	result := r.db.WithContext(ctx).Save(task)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

func (r *taskRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&Task{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

func (r *taskRepository) DeleteBatch(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).Where("user_id = ? AND id IN ?", userID, ids).Delete(&Task{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
