package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Nabeerak/hackathon-todo/pkg/config"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// Action values proposed by the extraction adapter
const (
	ActionCreate   = "create"
	ActionUpdate   = "update"
	ActionComplete = "complete"
	ActionDelete   = "delete"
	ActionQuery    = "query"
)

// ExtractedTask is one proposed task operation parsed from free text
type ExtractedTask struct {
	Action         string            `json:"action"`
	Title          string            `json:"title,omitempty"`
	Description    string            `json:"description,omitempty"`
	DueDate        *time.Time        `json:"due_date,omitempty"`
	DueDatePhrase  string            `json:"due_date_phrase,omitempty"`
	Priority       string            `json:"priority,omitempty"`
	TaskIdentifier string            `json:"task_identifier,omitempty"`
	Filter         string            `json:"filter,omitempty"`
	Criteria       map[string]string `json:"criteria,omitempty"`
}

// FieldError is a field-level validation failure on an extracted task
type FieldError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ExtractionResult is what the adapter hands back to the chat flow. It is
// always populated: transport and parse failures produce a fallback
// result with ShouldUseTraditionalForm set, never an error.
type ExtractionResult struct {
	Tasks                    []ExtractedTask `json:"tasks"`
	Confidence               float64         `json:"confidence"`
	ClarificationNeeded      bool            `json:"clarification_needed"`
	AmbiguousFields          []string        `json:"ambiguous_fields,omitempty"`
	ValidationErrors         []FieldError    `json:"validation_errors,omitempty"`
	Message                  string          `json:"message,omitempty"`
	ShouldUseTraditionalForm bool            `json:"should_use_traditional_form"`
}

// ExtractInput carries the user text plus optional conversational context
type ExtractInput struct {
	Text      string
	History   []string
	Shortcuts string // raw JSON map of shortcut name -> task template
}

// Extractor maps free text to a structured action proposal
type Extractor interface {
	Extract(ctx context.Context, input ExtractInput) *ExtractionResult
	Ping(ctx context.Context) error
}

// OpenAIExtractor calls an OpenAI-compatible chat completion API with a
// fixed JSON-schema instruction prompt.
type OpenAIExtractor struct {
	client  openai.Client
	model   string
	timeout time.Duration
	logger  *zap.Logger
	now     func() time.Time
}

func NewOpenAIExtractor(cfg config.AIConfig, logger *zap.Logger) *OpenAIExtractor {
	opts := []option.RequestOption{option.WithAPIKey(cfg.OpenAIAPIKey)}
	if cfg.OpenAIBaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.OpenAIBaseURL))
	}

	return &OpenAIExtractor{
		client:  openai.NewClient(opts...),
		model:   cfg.Model,
		timeout: cfg.RequestTimeout,
		logger:  logger,
		now:     time.Now,
	}
}

func (e *OpenAIExtractor) Extract(ctx context.Context, input ExtractInput) *ExtractionResult {
	if containsInjection(input.Text) {
		return &ExtractionResult{
			Message:                  "I can't process that request. Please describe the task you want to manage.",
			ShouldUseTraditionalForm: true,
		}
	}

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	resp, err := e.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(e.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(buildExtractionPrompt(input)),
			openai.UserMessage(input.Text),
		},
		Temperature: openai.Float(0.3),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &openai.ResponseFormatJSONObjectParam{},
		},
	})
	if err != nil {
		e.logger.Warn("completion request failed", zap.Error(err))
		return fallbackResult()
	}
	if len(resp.Choices) == 0 {
		e.logger.Warn("completion returned no choices")
		return fallbackResult()
	}

	return ParseExtraction(resp.Choices[0].Message.Content, e.now())
}

// Ping makes a minimal request to verify the upstream API is reachable
func (e *OpenAIExtractor) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err := e.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(e.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage("ping"),
		},
		MaxTokens: openai.Int(1),
	})
	return err
}

// buildExtractionPrompt appends conversational history and learned
// shortcuts to the fixed instruction prompt.
func buildExtractionPrompt(input ExtractInput) string {
	var b strings.Builder
	b.WriteString(extractionSystemPrompt)

	if len(input.History) > 0 {
		b.WriteString("\n\nRecent conversation for context:\n")
		for _, line := range input.History {
			b.WriteString("- ")
			b.WriteString(line)
			b.WriteString("\n")
		}
	}

	if input.Shortcuts != "" && input.Shortcuts != "{}" {
		b.WriteString("\nThe user has defined these shortcuts. When the message matches a shortcut name, expand it using the template:\n")
		gjson.Parse(input.Shortcuts).ForEach(func(key, value gjson.Result) bool {
			fmt.Fprintf(&b, "- %q: %s\n", key.String(), value.Raw)
			return true
		})
	}

	return b.String()
}

// ParseExtraction turns raw model output into a validated result. Invalid
// JSON yields the fallback; invalid fields yield validation errors and a
// clarification request rather than a hard failure.
func ParseExtraction(raw string, now time.Time) *ExtractionResult {
	raw = stripCodeFence(raw)
	if !gjson.Valid(raw) {
		return fallbackResult()
	}

	parsed := gjson.Parse(raw)
	result := &ExtractionResult{
		Confidence:          parsed.Get("confidence").Float(),
		ClarificationNeeded: parsed.Get("clarification_needed").Bool(),
	}
	for _, f := range parsed.Get("ambiguous_fields").Array() {
		result.AmbiguousFields = append(result.AmbiguousFields, f.String())
	}

	for _, item := range parsed.Get("tasks").Array() {
		task := ExtractedTask{
			Action:         strings.ToLower(item.Get("action").String()),
			Title:          strings.TrimSpace(item.Get("title").String()),
			Description:    strings.TrimSpace(item.Get("description").String()),
			Priority:       strings.ToLower(item.Get("priority").String()),
			TaskIdentifier: strings.TrimSpace(item.Get("task_identifier").String()),
			Filter:         strings.ToLower(item.Get("filter").String()),
		}

		if criteria := item.Get("criteria"); criteria.IsObject() {
			task.Criteria = make(map[string]string)
			criteria.ForEach(func(key, value gjson.Result) bool {
				task.Criteria[key.String()] = value.String()
				return true
			})
		}

		if phrase := item.Get("due_date").String(); phrase != "" {
			task.DueDatePhrase = phrase
			if due, ok := ResolveDatePhrase(phrase, now); ok {
				task.DueDate = &due
			} else {
				result.ValidationErrors = append(result.ValidationErrors, FieldError{
					Field:   "due_date",
					Code:    "invalid_due_date",
					Message: fmt.Sprintf("could not understand date %q", phrase),
				})
			}
		}

		result.ValidationErrors = append(result.ValidationErrors, validateExtractedTask(task)...)
		result.Tasks = append(result.Tasks, task)
	}

	if len(result.Tasks) == 0 && !result.ClarificationNeeded {
		result.ClarificationNeeded = true
		result.AmbiguousFields = append(result.AmbiguousFields, "action")
	}

	if len(result.ValidationErrors) > 0 {
		result.ClarificationNeeded = true
		for _, ve := range result.ValidationErrors {
			result.AmbiguousFields = appendUnique(result.AmbiguousFields, ve.Field)
		}
	}

	return result
}

func validateExtractedTask(task ExtractedTask) []FieldError {
	var errs []FieldError

	switch task.Action {
	case ActionCreate, ActionUpdate, ActionComplete, ActionDelete, ActionQuery:
	default:
		errs = append(errs, FieldError{
			Field:   "action",
			Code:    "invalid_action",
			Message: fmt.Sprintf("unknown action %q", task.Action),
		})
	}

	if task.Action == ActionCreate && task.Title == "" {
		errs = append(errs, FieldError{
			Field:   "title",
			Code:    "title_required",
			Message: "a task title is required",
		})
	}
	if len(task.Title) > 500 {
		errs = append(errs, FieldError{
			Field:   "title",
			Code:    "title_too_long",
			Message: "title exceeds 500 characters",
		})
	}
	if len(task.Description) > 2000 {
		errs = append(errs, FieldError{
			Field:   "description",
			Code:    "description_too_long",
			Message: "description exceeds 2000 characters",
		})
	}
	if task.Priority != "" && task.Priority != "low" && task.Priority != "medium" && task.Priority != "high" {
		errs = append(errs, FieldError{
			Field:   "priority",
			Code:    "invalid_priority",
			Message: fmt.Sprintf("unknown priority %q", task.Priority),
		})
	}

	return errs
}

// fallbackResult is the soft-failure answer: suggest the manual form,
// never surface the upstream error to the caller.
func fallbackResult() *ExtractionResult {
	return &ExtractionResult{
		Message:                  "I couldn't understand that right now. You can try rephrasing, or add the task with the regular form.",
		ShouldUseTraditionalForm: true,
	}
}

func containsInjection(text string) bool {
	lower := strings.ToLower(text)
	for _, phrase := range injectionPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}

func appendUnique(list []string, v string) []string {
	for _, existing := range list {
		if existing == v {
			return list
		}
	}
	return append(list, v)
}
