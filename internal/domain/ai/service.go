package ai

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	"go.uber.org/zap"
)

// QuotaStatus reports a user's standing against the daily request limit
type QuotaStatus struct {
	Allowed   bool      `json:"allowed"`
	Limit     int       `json:"limit"`
	Used      int       `json:"used"`
	Remaining int       `json:"remaining"`
	ResetTime time.Time `json:"reset_time"`
}

// UpdatePreferencesInput carries partial preference changes; nil fields
// are left untouched.
type UpdatePreferencesInput struct {
	Tone                 *string
	Language             *string
	ProactiveSuggestions *bool
	RequireConfirmation  *bool
	CustomDailyLimit     *int
}

type Service interface {
	GetPreferences(ctx context.Context, userID uuid.UUID) (*UserPreferences, error)
	UpdatePreferences(ctx context.Context, userID uuid.UUID, input UpdatePreferencesInput) (*UserPreferences, error)
	AddShortcut(ctx context.Context, userID uuid.UUID, name, template string) (*UserPreferences, error)
	RemoveShortcut(ctx context.Context, userID uuid.UUID, name string) (*UserPreferences, error)
	GetContext(ctx context.Context, userID uuid.UUID) (*AIContext, error)
	RecordInteraction(ctx context.Context, userID uuid.UUID, text string, accepted *bool) error
	Quota(ctx context.Context, userID uuid.UUID) (*QuotaStatus, error)
	CheckAndConsume(ctx context.Context, userID uuid.UUID) (*QuotaStatus, error)
	Health(ctx context.Context) error
}

type service struct {
	repo      Repository
	limiter   *Limiter
	extractor Extractor
	logger    *zap.Logger
}

func NewService(repo Repository, limiter *Limiter, extractor Extractor, logger *zap.Logger) Service {
	return &service{
		repo:      repo,
		limiter:   limiter,
		extractor: extractor,
		logger:    logger,
	}
}

func (s *service) GetPreferences(ctx context.Context, userID uuid.UUID) (*UserPreferences, error) {
	return s.repo.GetOrCreatePreferences(ctx, userID)
}

func (s *service) UpdatePreferences(ctx context.Context, userID uuid.UUID, input UpdatePreferencesInput) (*UserPreferences, error) {
	prefs, err := s.repo.GetOrCreatePreferences(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.Tone != nil {
		tone := strings.ToLower(*input.Tone)
		if tone != ToneFriendly && tone != ToneProfessional && tone != ToneConcise {
			return nil, ErrInvalidInput
		}
		prefs.Tone = tone
	}
	if input.Language != nil {
		if *input.Language == "" {
			return nil, ErrInvalidInput
		}
		prefs.Language = *input.Language
	}
	if input.ProactiveSuggestions != nil {
		prefs.ProactiveSuggestions = *input.ProactiveSuggestions
	}
	if input.RequireConfirmation != nil {
		prefs.RequireConfirmation = *input.RequireConfirmation
	}
	if input.CustomDailyLimit != nil {
		if *input.CustomDailyLimit < 0 {
			return nil, ErrInvalidInput
		}
		prefs.CustomDailyLimit = *input.CustomDailyLimit
	}

	if err := s.repo.UpdatePreferences(ctx, prefs); err != nil {
		return nil, err
	}
	return prefs, nil
}

func (s *service) AddShortcut(ctx context.Context, userID uuid.UUID, name, template string) (*UserPreferences, error) {
	name = strings.TrimSpace(name)
	template = strings.TrimSpace(template)
	if name == "" || template == "" {
		return nil, ErrInvalidInput
	}

	prefs, err := s.repo.GetOrCreatePreferences(ctx, userID)
	if err != nil {
		return nil, err
	}

	patched, err := sjson.Set(prefs.LearnedShortcuts, escapeJSONPath(name), template)
	if err != nil {
		return nil, ErrInvalidInput
	}
	prefs.LearnedShortcuts = patched

	if err := s.repo.UpdatePreferences(ctx, prefs); err != nil {
		return nil, err
	}

	s.logger.Info("shortcut saved",
		zap.String("user_id", userID.String()),
		zap.String("name", name))
	return prefs, nil
}

func (s *service) RemoveShortcut(ctx context.Context, userID uuid.UUID, name string) (*UserPreferences, error) {
	prefs, err := s.repo.GetOrCreatePreferences(ctx, userID)
	if err != nil {
		return nil, err
	}

	path := escapeJSONPath(name)
	if !gjson.Get(prefs.LearnedShortcuts, path).Exists() {
		return nil, ErrShortcutNotFound
	}

	patched, err := sjson.Delete(prefs.LearnedShortcuts, path)
	if err != nil {
		return nil, ErrInvalidInput
	}
	prefs.LearnedShortcuts = patched

	if err := s.repo.UpdatePreferences(ctx, prefs); err != nil {
		return nil, err
	}
	return prefs, nil
}

func (s *service) GetContext(ctx context.Context, userID uuid.UUID) (*AIContext, error) {
	return s.repo.GetOrCreateContext(ctx, userID)
}

// RecordInteraction bumps the interaction counters and folds the message
// keywords into the frequency map. accepted distinguishes confirmed from
// rejected proposals; nil means the exchange produced no proposal.
func (s *service) RecordInteraction(ctx context.Context, userID uuid.UUID, text string, accepted *bool) error {
	aiCtx, err := s.repo.GetOrCreateContext(ctx, userID)
	if err != nil {
		return err
	}

	aiCtx.TotalInteractions++
	if accepted != nil {
		if *accepted {
			aiCtx.AcceptedActions++
		} else {
			aiCtx.RejectedActions++
		}
	}

	patterns := aiCtx.Patterns
	for _, word := range extractKeywords(text) {
		path := escapeJSONPath(word)
		count := gjson.Get(patterns, path).Int() + 1
		if patched, err := sjson.Set(patterns, path, count); err == nil {
			patterns = patched
		}
	}
	aiCtx.Patterns = patterns

	return s.repo.UpdateContext(ctx, aiCtx)
}

func (s *service) Quota(ctx context.Context, userID uuid.UUID) (*QuotaStatus, error) {
	prefs, err := s.repo.GetOrCreatePreferences(ctx, userID)
	if err != nil {
		return nil, err
	}

	allowed, remaining, reset := s.limiter.Check(userID, prefs.CustomDailyLimit)
	limit := s.limiter.DefaultLimit()
	if prefs.CustomDailyLimit > 0 {
		limit = prefs.CustomDailyLimit
	}

	return &QuotaStatus{
		Allowed:   allowed,
		Limit:     limit,
		Used:      s.limiter.Usage(userID),
		Remaining: remaining,
		ResetTime: reset,
	}, nil
}

// CheckAndConsume charges one request against the user's quota. The
// returned status reflects the state before consumption so callers can
// report it alongside ErrQuotaExceeded.
func (s *service) CheckAndConsume(ctx context.Context, userID uuid.UUID) (*QuotaStatus, error) {
	status, err := s.Quota(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !status.Allowed {
		return status, ErrQuotaExceeded
	}
	s.limiter.Increment(userID)
	return status, nil
}

func (s *service) Health(ctx context.Context) error {
	return s.extractor.Ping(ctx)
}

// extractKeywords keeps lowercase words of 4+ letters; short words and
// punctuation carry no signal for the frequency map.
func extractKeywords(text string) []string {
	var words []string
	for _, w := range strings.Fields(strings.ToLower(text)) {
		w = strings.Trim(w, ".,!?;:'\"()")
		if len(w) >= 4 {
			words = append(words, w)
		}
	}
	return words
}

// escapeJSONPath guards dots and wildcards in user-chosen keys so they
// address a single literal map entry.
func escapeJSONPath(key string) string {
	replacer := strings.NewReplacer(".", "\\.", "*", "\\*", "?", "\\?")
	return replacer.Replace(key)
}
