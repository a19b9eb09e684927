package dto

// UpdatePreferencesRequest represents a partial preferences update
type UpdatePreferencesRequest struct {
	Tone                 *string `json:"tone,omitempty" binding:"omitempty,oneof=friendly professional concise"`
	Language             *string `json:"language,omitempty" binding:"omitempty,min=2,max=10"`
	ProactiveSuggestions *bool   `json:"proactive_suggestions,omitempty"`
	RequireConfirmation  *bool   `json:"require_confirmation,omitempty"`
	CustomDailyLimit     *int    `json:"custom_daily_limit,omitempty" binding:"omitempty,min=0"`
}

// AddShortcutRequest represents the request body for saving a shortcut
type AddShortcutRequest struct {
	Name     string `json:"name" binding:"required,max=100" example:"gym"`
	Template string `json:"template" binding:"required,max=500" example:"go to the gym at 6pm"`
}
