package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Nabeerak/hackathon-todo/internal/domain/action"
	"github.com/Nabeerak/hackathon-todo/internal/domain/ai"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// historyWindow is how many prior turns are passed to the extractor
const historyWindow = 10

// Response is what a chat turn hands back to the API layer
type Response struct {
	SessionID                uuid.UUID            `json:"session_id"`
	MessageID                uuid.UUID            `json:"message_id"`
	Reply                    string               `json:"reply"`
	Extraction               *ai.ExtractionResult `json:"extraction,omitempty"`
	Results                  []action.Result      `json:"results,omitempty"`
	ShouldUseTraditionalForm bool                 `json:"should_use_traditional_form"`
	Quota                    *ai.QuotaStatus      `json:"quota,omitempty"`
}

type Service interface {
	SendMessage(ctx context.Context, userID uuid.UUID, sessionID *uuid.UUID, text string) (*Response, error)
	History(ctx context.Context, userID, sessionID uuid.UUID, limit int) ([]ChatMessage, error)
}

type service struct {
	repo      Repository
	extractor ai.Extractor
	aiSvc     ai.Service
	actions   action.Service
	logger    *zap.Logger
}

func NewService(repo Repository, extractor ai.Extractor, aiSvc ai.Service, actions action.Service, logger *zap.Logger) Service {
	return &service{
		repo:      repo,
		extractor: extractor,
		aiSvc:     aiSvc,
		actions:   actions,
		logger:    logger,
	}
}

// SendMessage runs one conversational turn: charge the quota, extract a
// proposal from the text, and either answer a query directly or park the
// proposal as a pending action for the user to confirm. A nil sessionID
// continues the most recent active session or starts a new one.
func (s *service) SendMessage(ctx context.Context, userID uuid.UUID, sessionID *uuid.UUID, text string) (*Response, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}
	if len(text) > MaxMessageLength {
		return nil, ErrMessageTooLong
	}

	quota, err := s.aiSvc.CheckAndConsume(ctx, userID)
	if err != nil {
		return &Response{Quota: quota}, err
	}

	session, err := s.repo.GetOrCreateSession(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}

	userMsg := &ChatMessage{
		SessionID: session.ID,
		UserID:    userID,
		Role:      RoleUser,
		Content:   text,
	}
	if err := s.repo.AppendMessage(ctx, userMsg); err != nil {
		return nil, err
	}

	prefs, err := s.aiSvc.GetPreferences(ctx, userID)
	if err != nil {
		return nil, err
	}

	history, err := s.repo.RecentMessages(ctx, session.ID, historyWindow)
	if err != nil {
		s.logger.Warn("failed to load chat history", zap.Error(err))
	}

	extraction := s.extractor.Extract(ctx, ai.ExtractInput{
		Text:      text,
		History:   formatHistory(history),
		Shortcuts: prefs.LearnedShortcuts,
	})

	response := &Response{
		SessionID:                session.ID,
		MessageID:                userMsg.ID,
		Extraction:               extraction,
		ShouldUseTraditionalForm: extraction.ShouldUseTraditionalForm,
		Quota:                    quota,
	}

	switch {
	case extraction.ShouldUseTraditionalForm:
		response.Reply = extraction.Message
		if err := s.aiSvc.RecordInteraction(ctx, userID, text, nil); err != nil {
			s.logger.Warn("failed to record interaction", zap.Error(err))
		}

	case extraction.ClarificationNeeded:
		response.Reply = clarificationReply(extraction)

	default:
		var replies []string
		for _, proposal := range extraction.Tasks {
			result, err := s.actions.Propose(ctx, action.ProposeInput{
				UserID:     userID,
				SessionID:  session.ID,
				MessageID:  &userMsg.ID,
				Confidence: extraction.Confidence,
				Proposal:   proposal,
			})
			if err != nil {
				s.logger.Error("failed to propose action",
					zap.String("action", proposal.Action), zap.Error(err))
				replies = append(replies, "Something went wrong with part of that request.")
				continue
			}
			response.Results = append(response.Results, *result)
			replies = append(replies, result.Message)
		}
		response.Reply = strings.Join(replies, " ")
	}

	var actionID *uuid.UUID
	for i := range response.Results {
		if response.Results[i].Action != nil {
			actionID = &response.Results[i].Action.ID
			break
		}
	}

	if err := s.repo.AppendMessage(ctx, &ChatMessage{
		SessionID: session.ID,
		UserID:    userID,
		Role:      RoleAssistant,
		Content:   response.Reply,
		ActionID:  actionID,
		Metadata:  assistantMetadata(extraction),
	}); err != nil {
		return nil, err
	}

	return response, nil
}

// assistantMetadata captures how the turn was interpreted alongside the
// stored message
func assistantMetadata(extraction *ai.ExtractionResult) string {
	raw, err := json.Marshal(map[string]interface{}{
		"confidence":                  extraction.Confidence,
		"clarification_needed":        extraction.ClarificationNeeded,
		"should_use_traditional_form": extraction.ShouldUseTraditionalForm,
	})
	if err != nil {
		return ""
	}
	return string(raw)
}

func (s *service) History(ctx context.Context, userID, sessionID uuid.UUID, limit int) ([]ChatMessage, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	session, err := s.repo.FindSession(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	return s.repo.RecentMessages(ctx, session.ID, limit)
}

func formatHistory(messages []ChatMessage) []string {
	var lines []string
	for _, m := range messages {
		lines = append(lines, fmt.Sprintf("%s: %s", m.Role, m.Content))
	}
	return lines
}

func clarificationReply(extraction *ai.ExtractionResult) string {
	if len(extraction.ValidationErrors) > 0 {
		var parts []string
		for _, ve := range extraction.ValidationErrors {
			parts = append(parts, ve.Message)
		}
		return "I need a correction before I can do that: " + strings.Join(parts, "; ") + "."
	}
	if len(extraction.AmbiguousFields) > 0 {
		return fmt.Sprintf("Could you clarify the %s for that task?",
			strings.Join(extraction.AmbiguousFields, " and "))
	}
	return "Could you tell me a bit more about what you'd like to do?"
}
