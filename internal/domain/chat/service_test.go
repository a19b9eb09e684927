package chat

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/Nabeerak/hackathon-todo/internal/domain/action"
	"github.com/Nabeerak/hackathon-todo/internal/domain/ai"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

type mockChatRepository struct {
	sessions map[uuid.UUID]*ChatSession
	messages []ChatMessage
}

func newMockChatRepository() *mockChatRepository {
	return &mockChatRepository{sessions: make(map[uuid.UUID]*ChatSession)}
}

func (m *mockChatRepository) GetOrCreateSession(_ context.Context, userID uuid.UUID, sessionID *uuid.UUID) (*ChatSession, error) {
	if sessionID != nil {
		if s, ok := m.sessions[*sessionID]; ok && s.UserID == userID && s.IsActive {
			s.LastActivityAt = time.Now()
			return s, nil
		}
	} else {
		var latest *ChatSession
		for _, s := range m.sessions {
			if s.UserID == userID && s.IsActive &&
				(latest == nil || s.LastActivityAt.After(latest.LastActivityAt)) {
				latest = s
			}
		}
		if latest != nil {
			latest.LastActivityAt = time.Now()
			return latest, nil
		}
	}

	s := &ChatSession{ID: uuid.New(), UserID: userID, IsActive: true, LastActivityAt: time.Now()}
	m.sessions[s.ID] = s
	return s, nil
}

func (m *mockChatRepository) FindSession(_ context.Context, userID, sessionID uuid.UUID) (*ChatSession, error) {
	s, ok := m.sessions[sessionID]
	if !ok || s.UserID != userID {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

func (m *mockChatRepository) AppendMessage(_ context.Context, msg *ChatMessage) error {
	if msg.ID == uuid.Nil {
		msg.ID = uuid.New()
	}
	msg.CreatedAt = time.Now()
	m.messages = append(m.messages, *msg)
	if s, ok := m.sessions[msg.SessionID]; ok {
		s.MessageCount++
		s.LastActivityAt = time.Now()
	}
	return nil
}

func (m *mockChatRepository) RecentMessages(_ context.Context, sessionID uuid.UUID, limit int) ([]ChatMessage, error) {
	var out []ChatMessage
	for _, msg := range m.messages {
		if msg.SessionID == sessionID {
			out = append(out, msg)
		}
	}
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

type fixedExtractor struct {
	result    *ai.ExtractionResult
	lastInput ai.ExtractInput
}

func (f *fixedExtractor) Extract(_ context.Context, input ai.ExtractInput) *ai.ExtractionResult {
	f.lastInput = input
	return f.result
}

func (f *fixedExtractor) Ping(context.Context) error { return nil }

type stubAIService struct {
	ai.Service
	quota        *ai.QuotaStatus
	quotaErr     error
	shortcuts    string
	interactions int
}

func (s *stubAIService) CheckAndConsume(context.Context, uuid.UUID) (*ai.QuotaStatus, error) {
	return s.quota, s.quotaErr
}

func (s *stubAIService) GetPreferences(_ context.Context, userID uuid.UUID) (*ai.UserPreferences, error) {
	shortcuts := s.shortcuts
	if shortcuts == "" {
		shortcuts = "{}"
	}
	return &ai.UserPreferences{UserID: userID, LearnedShortcuts: shortcuts}, nil
}

func (s *stubAIService) RecordInteraction(context.Context, uuid.UUID, string, *bool) error {
	s.interactions++
	return nil
}

type stubActionService struct {
	action.Service
	proposals []action.ProposeInput
}

func (s *stubActionService) Propose(_ context.Context, input action.ProposeInput) (*action.Result, error) {
	s.proposals = append(s.proposals, input)

	if input.Proposal.Action == ai.ActionQuery {
		return &action.Result{Message: "Found 0 task(s)."}, nil
	}
	return &action.Result{
		Action: &action.TaskAction{
			ID:                 uuid.New(),
			UserID:             input.UserID,
			SessionID:          input.SessionID,
			MessageID:          input.MessageID,
			Confidence:         input.Confidence,
			ActionType:         input.Proposal.Action,
			ConfirmationStatus: action.StatusPending,
		},
		RequiresConfirmation: true,
		Message:              "I'll create the task. Confirm to proceed.",
	}, nil
}

func newTestChatService(extractor ai.Extractor, aiSvc ai.Service, actions action.Service) (Service, *mockChatRepository) {
	repo := newMockChatRepository()
	return NewService(repo, extractor, aiSvc, actions, zap.NewNop()), repo
}

func okQuota() *ai.QuotaStatus {
	return &ai.QuotaStatus{Allowed: true, Limit: 50, Remaining: 49}
}

func TestSendMessageProposesTaskCreation(t *testing.T) {
	now := time.Now().UTC()
	due := time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 0, time.UTC).AddDate(0, 0, 1)
	extractor := &fixedExtractor{result: &ai.ExtractionResult{
		Tasks: []ai.ExtractedTask{{
			Action:  ai.ActionCreate,
			Title:   "buy milk",
			DueDate: &due,
		}},
		Confidence: 0.95,
	}}
	actions := &stubActionService{}
	svc, repo := newTestChatService(extractor, &stubAIService{quota: okQuota()}, actions)

	userID := uuid.New()
	resp, err := svc.SendMessage(context.Background(), userID, nil, "Add buy milk tomorrow")
	require.NoError(t, err)

	// extraction was forwarded as a pending proposal, not executed
	require.Len(t, actions.proposals, 1)
	proposed := actions.proposals[0]
	assert.Equal(t, "buy milk", proposed.Proposal.Title)
	require.NotNil(t, proposed.Proposal.DueDate)
	assert.Equal(t, due, *proposed.Proposal.DueDate)
	assert.InDelta(t, 0.95, proposed.Confidence, 1e-9)
	require.NotNil(t, proposed.MessageID, "proposal points back at the user's message")
	assert.Equal(t, repo.messages[0].ID, *proposed.MessageID)

	require.Len(t, resp.Results, 1)
	assert.True(t, resp.Results[0].RequiresConfirmation)
	assert.Contains(t, resp.Reply, "Confirm")
	assert.False(t, resp.ShouldUseTraditionalForm)

	// both turns of the conversation are stored
	require.Len(t, repo.messages, 2)
	assert.Equal(t, RoleUser, repo.messages[0].Role)
	assert.Equal(t, "Add buy milk tomorrow", repo.messages[0].Content)
	assert.Equal(t, RoleAssistant, repo.messages[1].Role)
	require.NotNil(t, repo.messages[1].ActionID, "assistant turn links the pending action")
	assert.InDelta(t, 0.95, gjson.Get(repo.messages[1].Metadata, "confidence").Float(), 1e-9)
}

func TestSendMessageValidation(t *testing.T) {
	svc, _ := newTestChatService(&fixedExtractor{result: &ai.ExtractionResult{}}, &stubAIService{quota: okQuota()}, &stubActionService{})
	ctx := context.Background()
	userID := uuid.New()

	_, err := svc.SendMessage(ctx, userID, nil, "   ")
	assert.ErrorIs(t, err, ErrEmptyMessage)

	_, err = svc.SendMessage(ctx, userID, nil, strings.Repeat("x", MaxMessageLength+1))
	assert.ErrorIs(t, err, ErrMessageTooLong)
}

func TestSendMessageQuotaExceeded(t *testing.T) {
	reset := time.Now().UTC().Truncate(24 * time.Hour).Add(24 * time.Hour)
	aiSvc := &stubAIService{
		quota:    &ai.QuotaStatus{Allowed: false, Limit: 50, Used: 50, ResetTime: reset},
		quotaErr: ai.ErrQuotaExceeded,
	}
	actions := &stubActionService{}
	svc, repo := newTestChatService(&fixedExtractor{result: &ai.ExtractionResult{}}, aiSvc, actions)

	resp, err := svc.SendMessage(context.Background(), uuid.New(), nil, "add something")
	assert.ErrorIs(t, err, ai.ErrQuotaExceeded)
	require.NotNil(t, resp)
	require.NotNil(t, resp.Quota)
	assert.Equal(t, reset, resp.Quota.ResetTime)
	assert.Empty(t, repo.messages, "nothing is stored when the quota blocks the turn")
	assert.Empty(t, actions.proposals)
}

func TestSendMessageFallbackSuggestsForm(t *testing.T) {
	extractor := &fixedExtractor{result: &ai.ExtractionResult{
		Message:                  "I couldn't understand that right now.",
		ShouldUseTraditionalForm: true,
	}}
	aiSvc := &stubAIService{quota: okQuota()}
	actions := &stubActionService{}
	svc, _ := newTestChatService(extractor, aiSvc, actions)

	resp, err := svc.SendMessage(context.Background(), uuid.New(), nil, "askjdh qwe")
	require.NoError(t, err)
	assert.True(t, resp.ShouldUseTraditionalForm)
	assert.Equal(t, "I couldn't understand that right now.", resp.Reply)
	assert.Empty(t, actions.proposals)
	assert.Equal(t, 1, aiSvc.interactions)
}

func TestSendMessageAsksForClarification(t *testing.T) {
	extractor := &fixedExtractor{result: &ai.ExtractionResult{
		ClarificationNeeded: true,
		AmbiguousFields:     []string{"title"},
	}}
	actions := &stubActionService{}
	svc, _ := newTestChatService(extractor, &stubAIService{quota: okQuota()}, actions)

	resp, err := svc.SendMessage(context.Background(), uuid.New(), nil, "add a task")
	require.NoError(t, err)
	assert.Contains(t, resp.Reply, "title")
	assert.Empty(t, actions.proposals, "ambiguous input never reaches the action layer")
}

func TestSendMessagePassesShortcutsAndHistory(t *testing.T) {
	extractor := &fixedExtractor{result: &ai.ExtractionResult{
		Tasks:      []ai.ExtractedTask{{Action: ai.ActionQuery, Filter: "pending"}},
		Confidence: 0.9,
	}}
	aiSvc := &stubAIService{quota: okQuota(), shortcuts: `{"gym":"go to the gym"}`}
	svc, _ := newTestChatService(extractor, aiSvc, &stubActionService{})
	userID := uuid.New()
	ctx := context.Background()

	_, err := svc.SendMessage(ctx, userID, nil, "what's on my list?")
	require.NoError(t, err)
	assert.Equal(t, `{"gym":"go to the gym"}`, extractor.lastInput.Shortcuts)

	_, err = svc.SendMessage(ctx, userID, nil, "and overdue ones?")
	require.NoError(t, err)
	require.NotEmpty(t, extractor.lastInput.History)
	assert.Contains(t, extractor.lastInput.History[0], "what's on my list?")
}

func TestSendMessageContinuesNamedSession(t *testing.T) {
	extractor := &fixedExtractor{result: &ai.ExtractionResult{
		Tasks:      []ai.ExtractedTask{{Action: ai.ActionQuery, Filter: "pending"}},
		Confidence: 0.9,
	}}
	svc, repo := newTestChatService(extractor, &stubAIService{quota: okQuota()}, &stubActionService{})
	userID := uuid.New()
	ctx := context.Background()

	first, err := svc.SendMessage(ctx, userID, nil, "what's pending?")
	require.NoError(t, err)

	second, err := svc.SendMessage(ctx, userID, &first.SessionID, "anything else?")
	require.NoError(t, err)
	assert.Equal(t, first.SessionID, second.SessionID)
	require.Len(t, repo.sessions, 1)
	assert.Equal(t, 4, repo.sessions[first.SessionID].MessageCount)

	// a session id the user does not own starts a fresh conversation
	foreign := uuid.New()
	third, err := svc.SendMessage(ctx, userID, &foreign, "new topic")
	require.NoError(t, err)
	assert.NotEqual(t, first.SessionID, third.SessionID)
	assert.Len(t, repo.sessions, 2)
}

func TestHistoryReturnsConversation(t *testing.T) {
	extractor := &fixedExtractor{result: &ai.ExtractionResult{
		Tasks:      []ai.ExtractedTask{{Action: ai.ActionQuery, Filter: "all"}},
		Confidence: 0.9,
	}}
	svc, _ := newTestChatService(extractor, &stubAIService{quota: okQuota()}, &stubActionService{})
	userID := uuid.New()
	ctx := context.Background()

	resp, err := svc.SendMessage(ctx, userID, nil, "show everything")
	require.NoError(t, err)

	history, err := svc.History(ctx, userID, resp.SessionID, 0)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, RoleUser, history[0].Role)
	assert.Equal(t, RoleAssistant, history[1].Role)

	// another user cannot read the session
	_, err = svc.History(ctx, uuid.New(), resp.SessionID, 0)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
