package dto

// SendMessageRequest represents the request body for a chat turn.
// SessionID continues an existing conversation; omitted, the most recent
// active session is reused or a new one started.
type SendMessageRequest struct {
	Message   string `json:"message" binding:"required,max=4000" example:"Add buy milk tomorrow"`
	SessionID string `json:"session_id,omitempty" binding:"omitempty,uuid"`
}

// ConfirmActionRequest carries the explicit bulk acknowledgement.
// Criteria-based deletes only execute when BulkConfirmed is set; a plain
// confirm re-states the preview and leaves the action pending.
type ConfirmActionRequest struct {
	BulkConfirmed bool `json:"bulk_confirmed"`
}
