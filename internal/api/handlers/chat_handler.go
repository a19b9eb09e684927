package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Nabeerak/hackathon-todo/internal/api/dto"
	"github.com/Nabeerak/hackathon-todo/internal/api/middleware"
	"github.com/Nabeerak/hackathon-todo/internal/domain/ai"
	"github.com/Nabeerak/hackathon-todo/internal/domain/chat"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ChatHandler struct {
	service chat.Service
}

func NewChatHandler(service chat.Service) *ChatHandler {
	return &ChatHandler{service: service}
}

// SendMessage godoc
// @Summary Send a chat message
// @Description Run one assistant turn; task mutations become pending actions
// @Tags chat
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.SendMessageRequest true "Chat message"
// @Success 200 {object} chat.Response
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 429 {object} map[string]string "Daily quota exceeded"
// @Router /api/chat/message [post]
func (h *ChatHandler) SendMessage(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var req dto.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var sessionID *uuid.UUID
	if req.SessionID != "" {
		parsed, err := uuid.Parse(req.SessionID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session id"})
			return
		}
		sessionID = &parsed
	}

	resp, err := h.service.SendMessage(c.Request.Context(), userID, sessionID, req.Message)
	if err != nil {
		switch {
		case errors.Is(err, ai.ErrQuotaExceeded):
			middleware.QuotaRejections.Inc()
			body := gin.H{"error": "daily assistant quota exceeded"}
			if resp != nil && resp.Quota != nil {
				body["quota"] = resp.Quota
			}
			c.JSON(http.StatusTooManyRequests, body)
		case errors.Is(err, chat.ErrEmptyMessage), errors.Is(err, chat.ErrMessageTooLong):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "chat request failed"})
		}
		return
	}

	if resp.ShouldUseTraditionalForm {
		middleware.ChatTurns.WithLabelValues("fallback").Inc()
	} else if resp.Extraction != nil && resp.Extraction.ClarificationNeeded {
		middleware.ChatTurns.WithLabelValues("clarification").Inc()
	} else {
		middleware.ChatTurns.WithLabelValues("proposed").Inc()
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// History godoc
// @Summary Conversation history for a session
// @Tags chat
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID" format(uuid)
// @Param limit query int false "Maximum messages to return"
// @Success 200 {array} chat.ChatMessage
// @Failure 404 {object} map[string]string "Session not found"
// @Router /api/chat/sessions/{id}/messages [get]
func (h *ChatHandler) History(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session id"})
		return
	}

	limit := 50
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = parsed
	}

	messages, err := h.service.History(c.Request.Context(), userID, sessionID, limit)
	if err != nil {
		if errors.Is(err, chat.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": messages})
}
