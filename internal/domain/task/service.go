package task

import (
	"context"
	"time"

	"github.com/Nabeerak/hackathon-todo/internal/infrastructure/events"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Service interface {
	CreateTask(ctx context.Context, input CreateTaskInput) (*Task, error)
	GetTask(ctx context.Context, userID, id uuid.UUID) (*Task, error)
	ListTasks(ctx context.Context, filter TaskFilter) ([]Task, int64, error)
	UpdateTask(ctx context.Context, userID, id uuid.UUID, input UpdateTaskInput) (*Task, error)
	CompleteTask(ctx context.Context, userID, id uuid.UUID) (*Task, error)
	DeleteTask(ctx context.Context, userID, id uuid.UUID) error
	DeleteTasks(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (int64, error)
	SearchByTitle(ctx context.Context, userID uuid.UUID, substr string) ([]Task, error)
}

type CreateTaskInput struct {
	UserID      uuid.UUID    `json:"user_id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Priority    TaskPriority `json:"priority"`
	DueDate     *time.Time   `json:"due_date"`
}

type UpdateTaskInput struct {
	Title       *string       `json:"title,omitempty"`
	Description *string       `json:"description,omitempty"`
	Priority    *TaskPriority `json:"priority,omitempty"`
	IsCompleted *bool         `json:"is_completed,omitempty"`
	DueDate     *time.Time    `json:"due_date,omitempty"`
}

type service struct {
	repo   Repository
	hub    *events.Hub
	logger *zap.Logger
}

func NewService(repo Repository, hub *events.Hub, logger *zap.Logger) Service {
	return &service{repo: repo, hub: hub, logger: logger}
}

func (s *service) CreateTask(ctx context.Context, input CreateTaskInput) (*Task, error) {
	if input.Title == "" {
		return nil, ErrInvalidInput
	}
	if input.Priority == "" {
		input.Priority = PriorityMedium
	}

	t := &Task{
		ID:          uuid.New(),
		UserID:      input.UserID,
		Title:       input.Title,
		Description: input.Description,
		Priority:    input.Priority,
		DueDate:     input.DueDate,
	}

	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}

	s.publish(input.UserID, events.TaskCreated, t)
	return t, nil
}

func (s *service) GetTask(ctx context.Context, userID, id uuid.UUID) (*Task, error) {
	return s.repo.FindByID(ctx, userID, id)
}

func (s *service) ListTasks(ctx context.Context, filter TaskFilter) ([]Task, int64, error) {
	return s.repo.FindAll(ctx, filter)
}

func (s *service) UpdateTask(ctx context.Context, userID, id uuid.UUID, input UpdateTaskInput) (*Task, error) {
	t, err := s.repo.FindByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		t.Title = *input.Title
	}
	if input.Description != nil {
		t.Description = *input.Description
	}
	if input.Priority != nil {
		t.Priority = *input.Priority
	}
	if input.DueDate != nil {
		t.DueDate = input.DueDate
	}
	if input.IsCompleted != nil {
		t.IsCompleted = *input.IsCompleted
		if !t.IsCompleted {
			t.CompletionDate = nil
		}
	}

	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}

	s.publish(userID, events.TaskUpdated, t)
	return t, nil
}

func (s *service) CompleteTask(ctx context.Context, userID, id uuid.UUID) (*Task, error) {
	t, err := s.repo.FindByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	t.IsCompleted = true
	now := time.Now()
	t.CompletionDate = &now

	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}

	s.publish(userID, events.TaskUpdated, t)
	return t, nil
}

func (s *service) DeleteTask(ctx context.Context, userID, id uuid.UUID) error {
	t, err := s.repo.FindByID(ctx, userID, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return err
	}

	s.publish(userID, events.TaskDeleted, t)
	return nil
}

func (s *service) DeleteTasks(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (int64, error) {
	deleted, err := s.repo.DeleteBatch(ctx, userID, ids)
	if err != nil {
		return 0, err
	}

	for _, id := range ids {
		s.hub.Publish(userID, events.Event{Type: events.TaskDeleted, TaskID: id})
	}
	s.logger.Info("deleted tasks in batch",
		zap.String("user_id", userID.String()),
		zap.Int64("count", deleted))
	return deleted, nil
}

func (s *service) SearchByTitle(ctx context.Context, userID uuid.UUID, substr string) ([]Task, error) {
	return s.repo.FindByTitleSubstring(ctx, userID, substr)
}

func (s *service) publish(userID uuid.UUID, eventType events.EventType, t *Task) {
	s.hub.Publish(userID, events.Event{
		Type:   eventType,
		TaskID: t.ID,
		Data: map[string]interface{}{
			"title":        t.Title,
			"is_completed": t.IsCompleted,
		},
	})
}
