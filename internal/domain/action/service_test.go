package action

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/Nabeerak/hackathon-todo/internal/domain/ai"
	"github.com/Nabeerak/hackathon-todo/internal/domain/task"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockActionRepository struct {
	actions map[uuid.UUID]*TaskAction
}

func newMockActionRepository() *mockActionRepository {
	return &mockActionRepository{actions: make(map[uuid.UUID]*TaskAction)}
}

func (m *mockActionRepository) Create(_ context.Context, action *TaskAction) error {
	if err := action.BeforeCreate(nil); err != nil {
		return err
	}
	copied := *action
	m.actions[action.ID] = &copied
	return nil
}

func (m *mockActionRepository) FindByID(_ context.Context, userID, id uuid.UUID) (*TaskAction, error) {
	a, ok := m.actions[id]
	if !ok || a.UserID != userID {
		return nil, ErrActionNotFound
	}
	copied := *a
	return &copied, nil
}

func (m *mockActionRepository) FindPending(_ context.Context, userID uuid.UUID) ([]TaskAction, error) {
	var pending []TaskAction
	for _, a := range m.actions {
		if a.UserID == userID && a.ConfirmationStatus == StatusPending {
			pending = append(pending, *a)
		}
	}
	return pending, nil
}

func (m *mockActionRepository) Update(_ context.Context, action *TaskAction) error {
	if _, ok := m.actions[action.ID]; !ok {
		return ErrActionNotFound
	}
	copied := *action
	m.actions[action.ID] = &copied
	return nil
}

// mockTaskService keeps tasks in a map and covers just enough of the
// task service surface for action execution.
type mockTaskService struct {
	tasks map[uuid.UUID]*task.Task
}

func newMockTaskService() *mockTaskService {
	return &mockTaskService{tasks: make(map[uuid.UUID]*task.Task)}
}

func (m *mockTaskService) seed(userID uuid.UUID, title string, completed bool) *task.Task {
	t := &task.Task{
		ID:          uuid.New(),
		UserID:      userID,
		Title:       title,
		Priority:    task.PriorityMedium,
		IsCompleted: completed,
		CreatedAt:   time.Now(),
	}
	m.tasks[t.ID] = t
	return t
}

func (m *mockTaskService) CreateTask(_ context.Context, input task.CreateTaskInput) (*task.Task, error) {
	t := &task.Task{
		ID:          uuid.New(),
		UserID:      input.UserID,
		Title:       input.Title,
		Description: input.Description,
		Priority:    input.Priority,
		DueDate:     input.DueDate,
		CreatedAt:   time.Now(),
	}
	if t.Priority == "" {
		t.Priority = task.PriorityMedium
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	m.tasks[t.ID] = t
	return t, nil
}

func (m *mockTaskService) GetTask(_ context.Context, userID, id uuid.UUID) (*task.Task, error) {
	t, ok := m.tasks[id]
	if !ok || t.UserID != userID {
		return nil, task.ErrTaskNotFound
	}
	return t, nil
}

func (m *mockTaskService) ListTasks(_ context.Context, filter task.TaskFilter) ([]task.Task, int64, error) {
	var out []task.Task
	for _, t := range m.tasks {
		if t.UserID != filter.UserID {
			continue
		}
		if filter.IsCompleted != nil && t.IsCompleted != *filter.IsCompleted {
			continue
		}
		if filter.Priority != nil && t.Priority != *filter.Priority {
			continue
		}
		if filter.Overdue {
			if t.IsCompleted || t.DueDate == nil || t.DueDate.After(time.Now()) {
				continue
			}
		}
		out = append(out, *t)
	}
	return out, int64(len(out)), nil
}

func (m *mockTaskService) UpdateTask(ctx context.Context, userID, id uuid.UUID, input task.UpdateTaskInput) (*task.Task, error) {
	t, err := m.GetTask(ctx, userID, id)
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
	if input.IsCompleted != nil {
		t.IsCompleted = *input.IsCompleted
	}
	if input.DueDate != nil {
		t.DueDate = input.DueDate
	}
	return t, nil
}

func (m *mockTaskService) CompleteTask(ctx context.Context, userID, id uuid.UUID) (*task.Task, error) {
	t, err := m.GetTask(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	t.IsCompleted = true
	now := time.Now()
	t.CompletionDate = &now
	return t, nil
}

func (m *mockTaskService) DeleteTask(ctx context.Context, userID, id uuid.UUID) error {
	if _, err := m.GetTask(ctx, userID, id); err != nil {
		return err
	}
	delete(m.tasks, id)
	return nil
}

func (m *mockTaskService) DeleteTasks(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (int64, error) {
	var deleted int64
	for _, id := range ids {
		if err := m.DeleteTask(ctx, userID, id); err == nil {
			deleted++
		}
	}
	return deleted, nil
}

func (m *mockTaskService) SearchByTitle(_ context.Context, userID uuid.UUID, substr string) ([]task.Task, error) {
	var out []task.Task
	lower := strings.ToLower(substr)
	for _, t := range m.tasks {
		if t.UserID == userID && strings.Contains(strings.ToLower(t.Title), lower) {
			out = append(out, *t)
		}
	}
	return out, nil
}

type recordingAIService struct {
	ai.Service
	accepted int
	rejected int
}

func (r *recordingAIService) RecordInteraction(_ context.Context, _ uuid.UUID, _ string, accepted *bool) error {
	if accepted != nil {
		if *accepted {
			r.accepted++
		} else {
			r.rejected++
		}
	}
	return nil
}

func newTestActionService() (Service, *mockActionRepository, *mockTaskService, *recordingAIService) {
	repo := newMockActionRepository()
	tasks := newMockTaskService()
	aiSvc := &recordingAIService{}
	return NewService(repo, tasks, aiSvc, zap.NewNop()), repo, tasks, aiSvc
}

func proposeTask(ctx context.Context, svc Service, userID uuid.UUID, proposal ai.ExtractedTask) (*Result, error) {
	return svc.Propose(ctx, ProposeInput{
		UserID:    userID,
		SessionID: uuid.New(),
		Proposal:  proposal,
	})
}

func TestProposeCreateIsPendingUntilConfirmed(t *testing.T) {
	svc, _, tasks, _ := newTestActionService()
	userID := uuid.New()
	ctx := context.Background()

	result, err := proposeTask(ctx, svc, userID, ai.ExtractedTask{
		Action: ai.ActionCreate,
		Title:  "buy milk",
	})
	require.NoError(t, err)
	require.NotNil(t, result.Action)
	assert.True(t, result.RequiresConfirmation)
	assert.Equal(t, StatusPending, result.Action.ConfirmationStatus)
	assert.Equal(t, ExecutionNotExecuted, result.Action.ExecutionStatus)
	assert.Empty(t, tasks.tasks, "nothing is created before confirmation")
}

func TestConfirmExecutesCreate(t *testing.T) {
	svc, repo, tasks, aiSvc := newTestActionService()
	userID := uuid.New()
	ctx := context.Background()

	due := time.Date(2024, 6, 1, 23, 59, 59, 0, time.UTC)
	proposed, err := proposeTask(ctx, svc, userID, ai.ExtractedTask{
		Action:   ai.ActionCreate,
		Title:    "buy milk",
		Priority: "high",
		DueDate:  &due,
	})
	require.NoError(t, err)

	result, err := svc.Confirm(ctx, userID, proposed.Action.ID, false)
	require.NoError(t, err)
	require.NotNil(t, result.Task)
	assert.Equal(t, "buy milk", result.Task.Title)
	assert.Equal(t, task.PriorityHigh, result.Task.Priority)
	require.NotNil(t, result.Task.DueDate)
	assert.Equal(t, due, *result.Task.DueDate)

	stored := repo.actions[proposed.Action.ID]
	assert.Equal(t, StatusConfirmed, stored.ConfirmationStatus)
	assert.Equal(t, ExecutionSuccess, stored.ExecutionStatus)
	assert.Len(t, tasks.tasks, 1)
	assert.Equal(t, 1, aiSvc.accepted)
}

func TestProposalCarriesChatTurnAndConfidence(t *testing.T) {
	svc, repo, _, _ := newTestActionService()
	userID := uuid.New()
	msgID := uuid.New()
	ctx := context.Background()

	result, err := svc.Propose(ctx, ProposeInput{
		UserID:     userID,
		SessionID:  uuid.New(),
		MessageID:  &msgID,
		Confidence: 0.85,
		Proposal:   ai.ExtractedTask{Action: ai.ActionCreate, Title: "book flights"},
	})
	require.NoError(t, err)

	stored := repo.actions[result.Action.ID]
	require.NotNil(t, stored.MessageID)
	assert.Equal(t, msgID, *stored.MessageID)
	assert.InDelta(t, 0.85, stored.Confidence, 1e-9)
	assert.Nil(t, stored.ConfirmedAt)
	assert.Nil(t, stored.ExecutedAt)
	assert.Nil(t, stored.TaskID)

	confirmed, err := svc.Confirm(ctx, userID, result.Action.ID, false)
	require.NoError(t, err)
	require.NotNil(t, confirmed.Action.ConfirmedAt)
	require.NotNil(t, confirmed.Action.ExecutedAt)
	require.NotNil(t, confirmed.Action.TaskID)
	assert.Equal(t, confirmed.Task.ID, *confirmed.Action.TaskID)
	assert.False(t, confirmed.Action.ExecutedAt.Before(*confirmed.Action.ConfirmedAt))
}

func TestConfirmTwiceRejectsSecondAttempt(t *testing.T) {
	svc, _, _, _ := newTestActionService()
	userID := uuid.New()
	ctx := context.Background()

	proposed, err := proposeTask(ctx, svc, userID, ai.ExtractedTask{
		Action: ai.ActionCreate,
		Title:  "once",
	})
	require.NoError(t, err)

	_, err = svc.Confirm(ctx, userID, proposed.Action.ID, false)
	require.NoError(t, err)

	_, err = svc.Confirm(ctx, userID, proposed.Action.ID, false)
	assert.ErrorIs(t, err, ErrActionNotPending)
}

func TestRejectRecordsDecision(t *testing.T) {
	svc, _, tasks, aiSvc := newTestActionService()
	userID := uuid.New()
	ctx := context.Background()

	proposed, err := proposeTask(ctx, svc, userID, ai.ExtractedTask{
		Action: ai.ActionCreate,
		Title:  "never mind",
	})
	require.NoError(t, err)

	rejected, err := svc.Reject(ctx, userID, proposed.Action.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, rejected.ConfirmationStatus)
	assert.Equal(t, ExecutionNotExecuted, rejected.ExecutionStatus)
	assert.Empty(t, tasks.tasks)
	assert.Equal(t, 1, aiSvc.rejected)

	_, err = svc.Reject(ctx, userID, proposed.Action.ID)
	assert.ErrorIs(t, err, ErrActionNotPending)
}

func TestQueryExecutesImmediately(t *testing.T) {
	svc, repo, tasks, _ := newTestActionService()
	userID := uuid.New()
	ctx := context.Background()

	tasks.seed(userID, "open one", false)
	tasks.seed(userID, "done one", true)

	result, err := proposeTask(ctx, svc, userID, ai.ExtractedTask{
		Action: ai.ActionQuery,
		Filter: "pending",
	})
	require.NoError(t, err)
	assert.Nil(t, result.Action, "queries do not create pending actions")
	assert.False(t, result.RequiresConfirmation)
	assert.Equal(t, int64(1), result.Count)
	assert.Empty(t, repo.actions)
}

func TestTaskResolution(t *testing.T) {
	svc, _, tasks, _ := newTestActionService()
	userID := uuid.New()
	ctx := context.Background()

	target := tasks.seed(userID, "water the plants", false)
	tasks.seed(userID, "call mom", false)
	tasks.seed(userID, "call dentist", false)

	cases := []struct {
		name       string
		identifier string
		wantErr    error
	}{
		{"exact id", target.ID.String(), nil},
		{"unique substring", "plants", nil},
		{"ambiguous substring", "call", ErrTaskAmbiguous},
		{"no match", "does not exist", ErrTaskNotResolved},
		{"empty", "", ErrTaskNotResolved},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			proposed, err := proposeTask(ctx, svc, userID, ai.ExtractedTask{
				Action:         ai.ActionComplete,
				TaskIdentifier: tc.identifier,
			})
			require.NoError(t, err)

			result, err := svc.Confirm(ctx, userID, proposed.Action.ID, false)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				assert.Equal(t, ExecutionFailed, result.Action.ExecutionStatus)
				return
			}
			require.NoError(t, err)
			assert.True(t, result.Task.IsCompleted)
		})
	}
}

func TestBulkDeleteRequiresExplicitConfirmation(t *testing.T) {
	svc, repo, tasks, _ := newTestActionService()
	userID := uuid.New()
	ctx := context.Background()

	tasks.seed(userID, "done a", true)
	tasks.seed(userID, "done b", true)
	tasks.seed(userID, "still open", false)

	proposed, err := proposeTask(ctx, svc, userID, ai.ExtractedTask{
		Action:   ai.ActionDelete,
		Criteria: map[string]string{"status": "completed"},
	})
	require.NoError(t, err)
	assert.True(t, proposed.RequiresConfirmation)
	assert.Equal(t, int64(2), proposed.Count)

	// a plain confirm only previews; nothing is deleted
	first, err := svc.Confirm(ctx, userID, proposed.Action.ID, false)
	require.NoError(t, err)
	assert.True(t, first.RequiresConfirmation)
	assert.Equal(t, int64(2), first.Count)
	assert.Len(t, tasks.tasks, 3)
	assert.Equal(t, StatusPending, repo.actions[proposed.Action.ID].ConfirmationStatus)

	second, err := svc.Confirm(ctx, userID, proposed.Action.ID, true)
	require.NoError(t, err)
	assert.False(t, second.RequiresConfirmation)
	assert.Equal(t, int64(2), second.Count)
	assert.Len(t, tasks.tasks, 1, "only the completed tasks are deleted")
	assert.Equal(t, ExecutionSuccess, repo.actions[proposed.Action.ID].ExecutionStatus)
}

func TestBulkDeleteFiltersByPriority(t *testing.T) {
	svc, _, tasks, _ := newTestActionService()
	userID := uuid.New()
	ctx := context.Background()

	urgent := tasks.seed(userID, "pay rent", false)
	urgent.Priority = task.PriorityHigh
	tasks.seed(userID, "water plants", false)

	proposed, err := proposeTask(ctx, svc, userID, ai.ExtractedTask{
		Action:   ai.ActionDelete,
		Criteria: map[string]string{"priority": "high"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), proposed.Count)

	result, err := svc.Confirm(ctx, userID, proposed.Action.ID, true)
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.Count)
	assert.Len(t, tasks.tasks, 1)
	_, stillThere := tasks.tasks[urgent.ID]
	assert.False(t, stillThere, "only the high priority task is deleted")
}

func TestActionsAreUserScoped(t *testing.T) {
	svc, _, _, _ := newTestActionService()
	owner := uuid.New()
	intruder := uuid.New()
	ctx := context.Background()

	proposed, err := proposeTask(ctx, svc, owner, ai.ExtractedTask{
		Action: ai.ActionCreate,
		Title:  "private",
	})
	require.NoError(t, err)

	_, err = svc.Confirm(ctx, intruder, proposed.Action.ID, false)
	assert.ErrorIs(t, err, ErrActionNotFound)
	_, err = svc.Reject(ctx, intruder, proposed.Action.ID)
	assert.ErrorIs(t, err, ErrActionNotFound)
}
