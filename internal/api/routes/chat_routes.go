package routes

import (
	"github.com/Nabeerak/hackathon-todo/internal/api/handlers"
	"github.com/Nabeerak/hackathon-todo/internal/api/middleware"
	"github.com/gin-gonic/gin"
)

// ChatRoutes handles the setup of assistant conversation routes
type ChatRoutes struct {
	handler   *handlers.ChatHandler
	jwtSecret string
}

func NewChatRoutes(handler *handlers.ChatHandler, jwtSecret string) *ChatRoutes {
	return &ChatRoutes{handler: handler, jwtSecret: jwtSecret}
}

// RegisterRoutes registers all chat routes. Conversation state changes on
// every call, so nothing here is cached.
func (r *ChatRoutes) RegisterRoutes(router *gin.Engine) {
	chatGroup := router.Group("/api/chat")
	chatGroup.Use(middleware.NewAuthMiddleware(r.jwtSecret))

	chatGroup.POST("/message", r.handler.SendMessage)
	chatGroup.GET("/sessions/:id/messages", r.handler.History)
}
