package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/Nabeerak/hackathon-todo/internal/api/dto"
	"github.com/Nabeerak/hackathon-todo/internal/api/middleware"
	"github.com/Nabeerak/hackathon-todo/internal/domain/action"
	"github.com/Nabeerak/hackathon-todo/internal/domain/ai"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AIHandler struct {
	service ai.Service
	actions action.Service
}

func NewAIHandler(service ai.Service, actions action.Service) *AIHandler {
	return &AIHandler{service: service, actions: actions}
}

// Quota godoc
// @Summary Daily quota status
// @Description Report remaining assistant requests for today (UTC window)
// @Tags ai
// @Produce json
// @Security BearerAuth
// @Success 200 {object} ai.QuotaStatus
// @Router /api/ai/quota [get]
func (h *AIHandler) Quota(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	status, err := h.service.Quota(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load quota"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": status})
}

// GetPreferences godoc
// @Summary Assistant preferences
// @Tags ai
// @Produce json
// @Security BearerAuth
// @Success 200 {object} ai.UserPreferences
// @Router /api/ai/preferences [get]
func (h *AIHandler) GetPreferences(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	prefs, err := h.service.GetPreferences(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load preferences"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": prefs})
}

// UpdatePreferences godoc
// @Summary Update assistant preferences
// @Description Apply a partial update; omitted fields are unchanged
// @Tags ai
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.UpdatePreferencesRequest true "Fields to update"
// @Success 200 {object} ai.UserPreferences
// @Failure 400 {object} map[string]string "Invalid request"
// @Router /api/ai/preferences [patch]
func (h *AIHandler) UpdatePreferences(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var req dto.UpdatePreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	prefs, err := h.service.UpdatePreferences(c.Request.Context(), userID, ai.UpdatePreferencesInput{
		Tone:                 req.Tone,
		Language:             req.Language,
		ProactiveSuggestions: req.ProactiveSuggestions,
		RequireConfirmation:  req.RequireConfirmation,
		CustomDailyLimit:     req.CustomDailyLimit,
	})
	if err != nil {
		if errors.Is(err, ai.ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update preferences"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": prefs})
}

// AddShortcut godoc
// @Summary Save a shortcut
// @Description Teach the assistant a named task template
// @Tags ai
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.AddShortcutRequest true "Shortcut"
// @Success 200 {object} ai.UserPreferences
// @Router /api/ai/preferences/shortcuts [post]
func (h *AIHandler) AddShortcut(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var req dto.AddShortcutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	prefs, err := h.service.AddShortcut(c.Request.Context(), userID, req.Name, req.Template)
	if err != nil {
		if errors.Is(err, ai.ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save shortcut"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": prefs})
}

// RemoveShortcut godoc
// @Summary Delete a shortcut
// @Tags ai
// @Produce json
// @Security BearerAuth
// @Param name path string true "Shortcut name"
// @Success 200 {object} ai.UserPreferences
// @Failure 404 {object} map[string]string "Shortcut not found"
// @Router /api/ai/preferences/shortcuts/{name} [delete]
func (h *AIHandler) RemoveShortcut(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	prefs, err := h.service.RemoveShortcut(c.Request.Context(), userID, c.Param("name"))
	if err != nil {
		if errors.Is(err, ai.ErrShortcutNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "shortcut not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete shortcut"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": prefs})
}

// ConfirmAction godoc
// @Summary Confirm a pending action
// @Description Execute a proposed task operation. Criteria-based deletes
// @Description only run when the body sets bulk_confirmed.
// @Tags ai
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Action ID" format(uuid)
// @Param request body dto.ConfirmActionRequest false "Bulk acknowledgement"
// @Success 200 {object} action.Result
// @Failure 404 {object} map[string]string "Action not found"
// @Failure 409 {object} map[string]string "Action already decided"
// @Router /api/ai/actions/{id}/confirm [post]
func (h *AIHandler) ConfirmAction(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	actionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid action id"})
		return
	}

	// body is optional; an empty one is a plain confirm
	var req dto.ConfirmActionRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.actions.Confirm(c.Request.Context(), userID, actionID, req.BulkConfirmed)
	if err != nil {
		status := actionErrorStatus(err)
		body := gin.H{"error": err.Error()}
		if result != nil && result.Action != nil {
			body["action"] = result.Action
		}
		c.JSON(status, body)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}

// RejectAction godoc
// @Summary Reject a pending action
// @Tags ai
// @Produce json
// @Security BearerAuth
// @Param id path string true "Action ID" format(uuid)
// @Success 200 {object} action.TaskAction
// @Failure 404 {object} map[string]string "Action not found"
// @Failure 409 {object} map[string]string "Action already decided"
// @Router /api/ai/actions/{id}/reject [post]
func (h *AIHandler) RejectAction(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	actionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid action id"})
		return
	}

	rejected, err := h.actions.Reject(c.Request.Context(), userID, actionID)
	if err != nil {
		c.JSON(actionErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"action": rejected, "message": "Okay, I won't do that."}})
}

// GetAction godoc
// @Summary Fetch an action
// @Tags ai
// @Produce json
// @Security BearerAuth
// @Param id path string true "Action ID" format(uuid)
// @Success 200 {object} action.TaskAction
// @Failure 404 {object} map[string]string "Action not found"
// @Router /api/ai/actions/{id} [get]
func (h *AIHandler) GetAction(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	actionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid action id"})
		return
	}

	act, err := h.actions.GetAction(c.Request.Context(), userID, actionID)
	if err != nil {
		c.JSON(actionErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": act})
}

// PendingActions godoc
// @Summary List pending actions
// @Tags ai
// @Produce json
// @Security BearerAuth
// @Success 200 {array} action.TaskAction
// @Router /api/ai/actions/pending [get]
func (h *AIHandler) PendingActions(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	pending, err := h.actions.ListPending(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list pending actions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": pending})
}

func actionErrorStatus(err error) int {
	switch {
	case errors.Is(err, action.ErrActionNotFound):
		return http.StatusNotFound
	case errors.Is(err, action.ErrActionNotPending):
		return http.StatusConflict
	case errors.Is(err, action.ErrTaskNotResolved):
		return http.StatusNotFound
	case errors.Is(err, action.ErrTaskAmbiguous),
		errors.Is(err, action.ErrInvalidInput):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// GetContext godoc
// @Summary Interaction statistics
// @Description Accumulated counters and learned keyword patterns
// @Tags ai
// @Produce json
// @Security BearerAuth
// @Success 200 {object} ai.AIContext
// @Router /api/ai/context [get]
func (h *AIHandler) GetContext(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	aiCtx, err := h.service.GetContext(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load context"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": aiCtx})
}

// Health godoc
// @Summary Assistant health
// @Description Check that the upstream completion API is reachable
// @Tags ai
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} map[string]string "Upstream unavailable"
// @Router /api/ai/health [get]
func (h *AIHandler) Health(c *gin.Context) {
	if err := h.service.Health(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
