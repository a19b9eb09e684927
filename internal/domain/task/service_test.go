package task

import (
	"context"
	"strings"
	"testing"

	"github.com/Nabeerak/hackathon-todo/internal/infrastructure/events"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// Mock repository for testing
type mockRepository struct {
	tasks map[uuid.UUID]*Task
}

func newMockRepository() *mockRepository {
	return &mockRepository{tasks: make(map[uuid.UUID]*Task)}
}

func (m *mockRepository) Create(ctx context.Context, task *Task) error {
	if err := task.BeforeCreate(nil); err != nil {
		return err
	}
	copied := *task
	m.tasks[task.ID] = &copied
	return nil
}

func (m *mockRepository) FindByID(ctx context.Context, userID, id uuid.UUID) (*Task, error) {
	t, ok := m.tasks[id]
	if !ok || t.UserID != userID {
		return nil, ErrTaskNotFound
	}
	copied := *t
	return &copied, nil
}

func (m *mockRepository) FindAll(ctx context.Context, filter TaskFilter) ([]Task, int64, error) {
	var out []Task
	for _, t := range m.tasks {
		if t.UserID != filter.UserID {
			continue
		}
		if filter.IsCompleted != nil && t.IsCompleted != *filter.IsCompleted {
			continue
		}
		out = append(out, *t)
	}
	return out, int64(len(out)), nil
}

func (m *mockRepository) FindByTitleSubstring(ctx context.Context, userID uuid.UUID, substr string) ([]Task, error) {
	var out []Task
	needle := strings.ToLower(substr)
	for _, t := range m.tasks {
		if t.UserID == userID && strings.Contains(strings.ToLower(t.Title), needle) {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (m *mockRepository) Update(ctx context.Context, task *Task) error {
	if _, ok := m.tasks[task.ID]; !ok {
		return ErrTaskNotFound
	}
	copied := *task
	m.tasks[task.ID] = &copied
	return nil
}

func (m *mockRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	t, ok := m.tasks[id]
	if !ok || t.UserID != userID {
		return ErrTaskNotFound
	}
	delete(m.tasks, id)
	return nil
}

func (m *mockRepository) DeleteBatch(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (int64, error) {
	var deleted int64
	for _, id := range ids {
		if t, ok := m.tasks[id]; ok && t.UserID == userID {
			delete(m.tasks, id)
			deleted++
		}
	}
	return deleted, nil
}

func newTestService(repo Repository) Service {
	return NewService(repo, events.NewHub(zap.NewNop()), zap.NewNop())
}

func TestCreateTaskValidation(t *testing.T) {
	tests := []struct {
		name    string
		input   CreateTaskInput
		wantErr error
	}{
		{
			name:    "empty title rejected",
			input:   CreateTaskInput{UserID: uuid.New(), Title: ""},
			wantErr: ErrInvalidInput,
		},
		{
			name:    "title over limit rejected",
			input:   CreateTaskInput{UserID: uuid.New(), Title: strings.Repeat("x", MaxTitleLength+1)},
			wantErr: ErrTitleTooLong,
		},
		{
			name:    "description over limit rejected",
			input:   CreateTaskInput{UserID: uuid.New(), Title: "ok", Description: strings.Repeat("x", MaxDescriptionLength+1)},
			wantErr: ErrDescTooLong,
		},
		{
			name:  "valid input accepted",
			input: CreateTaskInput{UserID: uuid.New(), Title: "Buy milk"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(newMockRepository())
			created, err := svc.CreateTask(context.Background(), tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.input.Title, created.Title)
			assert.Equal(t, PriorityMedium, created.Priority)
			assert.False(t, created.IsCompleted)
		})
	}
}

func TestUserIsolation(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo)
	ctx := context.Background()

	userA := uuid.New()
	userB := uuid.New()

	taskA, err := svc.CreateTask(ctx, CreateTaskInput{UserID: userA, Title: "A's task"})
	require.NoError(t, err)
	_, err = svc.CreateTask(ctx, CreateTaskInput{UserID: userB, Title: "B's task"})
	require.NoError(t, err)

	// B's listing must never contain A's task
	tasksB, _, err := svc.ListTasks(ctx, TaskFilter{UserID: userB})
	require.NoError(t, err)
	for _, tk := range tasksB {
		assert.NotEqual(t, taskA.ID, tk.ID)
		assert.Equal(t, userB, tk.UserID)
	}

	// B reading, updating, completing, or deleting A's task fails as not-found
	_, err = svc.GetTask(ctx, userB, taskA.ID)
	assert.ErrorIs(t, err, ErrTaskNotFound)

	_, err = svc.UpdateTask(ctx, userB, taskA.ID, UpdateTaskInput{})
	assert.ErrorIs(t, err, ErrTaskNotFound)

	_, err = svc.CompleteTask(ctx, userB, taskA.ID)
	assert.ErrorIs(t, err, ErrTaskNotFound)

	err = svc.DeleteTask(ctx, userB, taskA.ID)
	assert.ErrorIs(t, err, ErrTaskNotFound)

	// A's task is untouched
	got, err := svc.GetTask(ctx, userA, taskA.ID)
	require.NoError(t, err)
	assert.Equal(t, "A's task", got.Title)
}

func TestCompleteTaskSetsCompletionDate(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo)
	ctx := context.Background()
	userID := uuid.New()

	created, err := svc.CreateTask(ctx, CreateTaskInput{UserID: userID, Title: "finish report"})
	require.NoError(t, err)

	completed, err := svc.CompleteTask(ctx, userID, created.ID)
	require.NoError(t, err)
	assert.True(t, completed.IsCompleted)
	assert.NotNil(t, completed.CompletionDate)
}

func TestTaskMutationsPublishEvents(t *testing.T) {
	hub := events.NewHub(zap.NewNop())
	svc := NewService(newMockRepository(), hub, zap.NewNop())
	ctx := context.Background()
	userID := uuid.New()

	ch, cancel := hub.Subscribe(userID)
	defer cancel()

	created, err := svc.CreateTask(ctx, CreateTaskInput{UserID: userID, Title: "watch this"})
	require.NoError(t, err)

	ev := <-ch
	assert.Equal(t, events.TaskCreated, ev.Type)
	assert.Equal(t, created.ID, ev.TaskID)

	_, err = svc.CompleteTask(ctx, userID, created.ID)
	require.NoError(t, err)
	ev = <-ch
	assert.Equal(t, events.TaskUpdated, ev.Type)

	require.NoError(t, svc.DeleteTask(ctx, userID, created.ID))
	ev = <-ch
	assert.Equal(t, events.TaskDeleted, ev.Type)
}
