package action

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Nabeerak/hackathon-todo/internal/domain/ai"
	"github.com/Nabeerak/hackathon-todo/internal/domain/task"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// bulkPageSize caps how many tasks a criteria-based operation considers
const bulkPageSize = 500

// Result is the outcome of proposing, confirming, or executing an action
type Result struct {
	Action               *TaskAction `json:"action,omitempty"`
	Task                 *task.Task  `json:"task,omitempty"`
	Tasks                []task.Task `json:"tasks,omitempty"`
	Count                int64       `json:"count"`
	RequiresConfirmation bool        `json:"requires_confirmation"`
	Message              string      `json:"message"`
}

// ProposeInput carries one extracted operation plus the chat turn that
// produced it
type ProposeInput struct {
	UserID     uuid.UUID
	SessionID  uuid.UUID
	MessageID  *uuid.UUID
	Confidence float64
	Proposal   ai.ExtractedTask
}

type Service interface {
	Propose(ctx context.Context, input ProposeInput) (*Result, error)
	Confirm(ctx context.Context, userID, actionID uuid.UUID, bulkConfirmed bool) (*Result, error)
	Reject(ctx context.Context, userID, actionID uuid.UUID) (*TaskAction, error)
	GetAction(ctx context.Context, userID, id uuid.UUID) (*TaskAction, error)
	ListPending(ctx context.Context, userID uuid.UUID) ([]TaskAction, error)
}

type service struct {
	repo   Repository
	tasks  task.Service
	ai     ai.Service
	logger *zap.Logger
}

func NewService(repo Repository, tasks task.Service, aiService ai.Service, logger *zap.Logger) Service {
	return &service{repo: repo, tasks: tasks, ai: aiService, logger: logger}
}

// Propose records an extracted operation. Queries are read-only and run
// immediately; everything else becomes a pending action that mutates
// nothing until the user confirms it.
func (s *service) Propose(ctx context.Context, input ProposeInput) (*Result, error) {
	userID := input.UserID
	proposal := input.Proposal

	if proposal.Action == ai.ActionQuery {
		return s.runQuery(ctx, userID, proposal)
	}

	payload, err := encodeProposal(proposal)
	if err != nil {
		return nil, ErrInvalidInput
	}

	act := &TaskAction{
		ID:         uuid.New(),
		UserID:     userID,
		SessionID:  input.SessionID,
		MessageID:  input.MessageID,
		Confidence: input.Confidence,
		ActionType: proposal.Action,
		Payload:    payload,
	}
	if err := s.repo.Create(ctx, act); err != nil {
		return nil, err
	}

	result := &Result{
		Action:               act,
		RequiresConfirmation: true,
		Message:              describeProposal(proposal),
	}

	if isBulkDelete(proposal) {
		targets, err := s.collectBulkTargets(ctx, userID, proposal)
		if err != nil {
			return nil, err
		}
		result.Tasks = targets
		result.Count = int64(len(targets))
		result.Message = fmt.Sprintf("This will delete %d task(s). Please confirm before I proceed.", len(targets))
	}

	return result, nil
}

// Confirm executes a pending action. Criteria-based deletes need an
// explicit bulk confirmation: a plain confirm re-states the preview and
// leaves the action pending.
func (s *service) Confirm(ctx context.Context, userID, actionID uuid.UUID, bulkConfirmed bool) (*Result, error) {
	act, err := s.repo.FindByID(ctx, userID, actionID)
	if err != nil {
		return nil, err
	}
	if !act.IsPending() {
		return nil, ErrActionNotPending
	}

	proposal, err := act.Proposal()
	if err != nil {
		return nil, ErrInvalidInput
	}

	if isBulkDelete(proposal) && !bulkConfirmed {
		targets, err := s.collectBulkTargets(ctx, userID, proposal)
		if err != nil {
			return nil, err
		}
		return &Result{
			Action:               act,
			Tasks:                targets,
			Count:                int64(len(targets)),
			RequiresConfirmation: true,
			Message:              fmt.Sprintf("This will delete %d task(s). Confirm the bulk delete to proceed.", len(targets)),
		}, nil
	}

	confirmedAt := time.Now().UTC()
	act.ConfirmationStatus = StatusConfirmed
	act.ConfirmedAt = &confirmedAt
	act.ExecutionStatus = ExecutionExecuting
	if err := s.repo.Update(ctx, act); err != nil {
		return nil, err
	}

	result, execErr := s.execute(ctx, userID, proposal)
	executedAt := time.Now().UTC()
	act.ExecutedAt = &executedAt
	if execErr != nil {
		act.ExecutionStatus = ExecutionFailed
		act.ErrorMessage = execErr.Error()
		if err := s.repo.Update(ctx, act); err != nil {
			s.logger.Error("failed to record action failure",
				zap.String("action_id", act.ID.String()), zap.Error(err))
		}
		return &Result{Action: act, Message: "The action could not be completed."}, execErr
	}

	act.ExecutionStatus = ExecutionSuccess
	if result.Task != nil {
		act.TaskID = &result.Task.ID
	}
	if err := s.repo.Update(ctx, act); err != nil {
		return nil, err
	}

	accepted := true
	if err := s.ai.RecordInteraction(ctx, userID, proposal.Title, &accepted); err != nil {
		s.logger.Warn("failed to record accepted action", zap.Error(err))
	}

	result.Action = act
	return result, nil
}

func (s *service) Reject(ctx context.Context, userID, actionID uuid.UUID) (*TaskAction, error) {
	act, err := s.repo.FindByID(ctx, userID, actionID)
	if err != nil {
		return nil, err
	}
	if !act.IsPending() {
		return nil, ErrActionNotPending
	}

	act.ConfirmationStatus = StatusRejected
	if err := s.repo.Update(ctx, act); err != nil {
		return nil, err
	}

	proposal, err := act.Proposal()
	if err != nil {
		s.logger.Error("failed to decode rejected proposal",
			zap.String("action_id", act.ID.String()), zap.Error(err))
	}
	rejected := false
	if err := s.ai.RecordInteraction(ctx, userID, proposal.Title, &rejected); err != nil {
		s.logger.Warn("failed to record rejected action", zap.Error(err))
	}

	return act, nil
}

func (s *service) GetAction(ctx context.Context, userID, id uuid.UUID) (*TaskAction, error) {
	return s.repo.FindByID(ctx, userID, id)
}

func (s *service) ListPending(ctx context.Context, userID uuid.UUID) ([]TaskAction, error) {
	return s.repo.FindPending(ctx, userID)
}

func (s *service) execute(ctx context.Context, userID uuid.UUID, proposal ai.ExtractedTask) (*Result, error) {
	switch proposal.Action {
	case ai.ActionCreate:
		return s.execCreate(ctx, userID, proposal)
	case ai.ActionUpdate:
		return s.execUpdate(ctx, userID, proposal)
	case ai.ActionComplete:
		return s.execComplete(ctx, userID, proposal)
	case ai.ActionDelete:
		return s.execDelete(ctx, userID, proposal)
	case ai.ActionQuery:
		return s.runQuery(ctx, userID, proposal)
	default:
		return nil, ErrInvalidInput
	}
}

func (s *service) execCreate(ctx context.Context, userID uuid.UUID, proposal ai.ExtractedTask) (*Result, error) {
	input := task.CreateTaskInput{
		UserID:      userID,
		Title:       proposal.Title,
		Description: proposal.Description,
		DueDate:     proposal.DueDate,
	}
	if proposal.Priority != "" {
		input.Priority = task.TaskPriority(proposal.Priority)
	}

	created, err := s.tasks.CreateTask(ctx, input)
	if err != nil {
		return nil, err
	}
	return &Result{
		Task:    created,
		Count:   1,
		Message: fmt.Sprintf("Created task %q.", created.Title),
	}, nil
}

func (s *service) execUpdate(ctx context.Context, userID uuid.UUID, proposal ai.ExtractedTask) (*Result, error) {
	target, err := s.resolveTask(ctx, userID, proposal.TaskIdentifier)
	if err != nil {
		return nil, err
	}

	input := task.UpdateTaskInput{DueDate: proposal.DueDate}
	if proposal.Title != "" {
		input.Title = &proposal.Title
	}
	if proposal.Description != "" {
		input.Description = &proposal.Description
	}
	if proposal.Priority != "" {
		p := task.TaskPriority(proposal.Priority)
		input.Priority = &p
	}

	updated, err := s.tasks.UpdateTask(ctx, userID, target.ID, input)
	if err != nil {
		return nil, err
	}
	return &Result{
		Task:    updated,
		Count:   1,
		Message: fmt.Sprintf("Updated task %q.", updated.Title),
	}, nil
}

func (s *service) execComplete(ctx context.Context, userID uuid.UUID, proposal ai.ExtractedTask) (*Result, error) {
	target, err := s.resolveTask(ctx, userID, proposal.TaskIdentifier)
	if err != nil {
		return nil, err
	}

	completed, err := s.tasks.CompleteTask(ctx, userID, target.ID)
	if err != nil {
		return nil, err
	}
	return &Result{
		Task:    completed,
		Count:   1,
		Message: fmt.Sprintf("Marked %q as done.", completed.Title),
	}, nil
}

func (s *service) execDelete(ctx context.Context, userID uuid.UUID, proposal ai.ExtractedTask) (*Result, error) {
	if isBulkDelete(proposal) {
		targets, err := s.collectBulkTargets(ctx, userID, proposal)
		if err != nil {
			return nil, err
		}
		ids := make([]uuid.UUID, 0, len(targets))
		for _, t := range targets {
			ids = append(ids, t.ID)
		}
		deleted, err := s.tasks.DeleteTasks(ctx, userID, ids)
		if err != nil {
			return nil, err
		}
		return &Result{
			Count:   deleted,
			Message: fmt.Sprintf("Deleted %d task(s).", deleted),
		}, nil
	}

	target, err := s.resolveTask(ctx, userID, proposal.TaskIdentifier)
	if err != nil {
		return nil, err
	}
	if err := s.tasks.DeleteTask(ctx, userID, target.ID); err != nil {
		return nil, err
	}
	return &Result{
		Count:   1,
		Message: fmt.Sprintf("Deleted %q.", target.Title),
	}, nil
}

func (s *service) runQuery(ctx context.Context, userID uuid.UUID, proposal ai.ExtractedTask) (*Result, error) {
	filter := task.TaskFilter{UserID: userID, PageSize: bulkPageSize}

	switch proposal.Filter {
	case "pending", "":
		completed := false
		filter.IsCompleted = &completed
	case "completed":
		completed := true
		filter.IsCompleted = &completed
	case "overdue":
		filter.Overdue = true
	case "all":
	default:
		return nil, ErrInvalidInput
	}

	tasks, total, err := s.tasks.ListTasks(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &Result{
		Tasks:   tasks,
		Count:   total,
		Message: fmt.Sprintf("Found %d task(s).", total),
	}, nil
}

// resolveTask maps a free-form reference to exactly one task. An exact
// id wins; otherwise the reference is a case-insensitive title search
// that must match a single task.
func (s *service) resolveTask(ctx context.Context, userID uuid.UUID, identifier string) (*task.Task, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, ErrTaskNotResolved
	}

	if id, err := uuid.Parse(identifier); err == nil {
		return s.tasks.GetTask(ctx, userID, id)
	}

	matches, err := s.tasks.SearchByTitle(ctx, userID, identifier)
	if err != nil {
		return nil, err
	}
	switch len(matches) {
	case 0:
		return nil, ErrTaskNotResolved
	case 1:
		return &matches[0], nil
	default:
		return nil, ErrTaskAmbiguous
	}
}

// collectBulkTargets lists the tasks a criteria-based delete would hit
func (s *service) collectBulkTargets(ctx context.Context, userID uuid.UUID, proposal ai.ExtractedTask) ([]task.Task, error) {
	filter := task.TaskFilter{UserID: userID, PageSize: bulkPageSize}

	switch proposal.Criteria["status"] {
	case "completed":
		completed := true
		filter.IsCompleted = &completed
	case "pending":
		completed := false
		filter.IsCompleted = &completed
	case "overdue":
		filter.Overdue = true
	}
	if p := proposal.Criteria["priority"]; p != "" {
		prio := task.TaskPriority(p)
		filter.Priority = &prio
	}

	tasks, _, err := s.tasks.ListTasks(ctx, filter)
	if err != nil {
		return nil, err
	}

	if substr := strings.ToLower(proposal.Criteria["title_contains"]); substr != "" {
		filtered := tasks[:0]
		for _, t := range tasks {
			if strings.Contains(strings.ToLower(t.Title), substr) {
				filtered = append(filtered, t)
			}
		}
		tasks = filtered
	}

	return tasks, nil
}

func isBulkDelete(proposal ai.ExtractedTask) bool {
	return proposal.Action == ai.ActionDelete && len(proposal.Criteria) > 0
}

func describeProposal(proposal ai.ExtractedTask) string {
	switch proposal.Action {
	case ai.ActionCreate:
		return fmt.Sprintf("I'll create the task %q. Confirm to proceed.", proposal.Title)
	case ai.ActionUpdate:
		return fmt.Sprintf("I'll update the task matching %q. Confirm to proceed.", proposal.TaskIdentifier)
	case ai.ActionComplete:
		return fmt.Sprintf("I'll mark the task matching %q as done. Confirm to proceed.", proposal.TaskIdentifier)
	case ai.ActionDelete:
		return fmt.Sprintf("I'll delete the task matching %q. Confirm to proceed.", proposal.TaskIdentifier)
	default:
		return "Confirm to proceed."
	}
}
