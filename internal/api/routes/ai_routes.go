package routes

import (
	"github.com/Nabeerak/hackathon-todo/internal/api/handlers"
	"github.com/Nabeerak/hackathon-todo/internal/api/middleware"
	"github.com/gin-gonic/gin"
)

// AIRoutes handles the setup of assistant settings routes
type AIRoutes struct {
	handler   *handlers.AIHandler
	jwtSecret string
}

func NewAIRoutes(handler *handlers.AIHandler, jwtSecret string) *AIRoutes {
	return &AIRoutes{handler: handler, jwtSecret: jwtSecret}
}

// RegisterRoutes registers assistant settings and action decision routes.
// Confirmed actions mutate tasks, so confirm invalidates the task cache.
func (r *AIRoutes) RegisterRoutes(router *gin.Engine, cache *middleware.CacheMiddleware) {
	// health is unauthenticated so probes can reach it
	router.GET("/api/ai/health", r.handler.Health)

	aiGroup := router.Group("/api/ai")
	aiGroup.Use(middleware.NewAuthMiddleware(r.jwtSecret))

	aiGroup.GET("/quota", r.handler.Quota)
	aiGroup.GET("/context", r.handler.GetContext)

	aiGroup.GET("/preferences", r.handler.GetPreferences)
	aiGroup.PATCH("/preferences", r.handler.UpdatePreferences)

	aiGroup.POST("/preferences/shortcuts", r.handler.AddShortcut)
	aiGroup.DELETE("/preferences/shortcuts/:name", r.handler.RemoveShortcut)

	aiGroup.GET("/actions/pending", r.handler.PendingActions)
	aiGroup.GET("/actions/:id", r.handler.GetAction)
	aiGroup.POST("/actions/:id/confirm", cache.CacheInvalidate("tasks:*"), r.handler.ConfirmAction)
	aiGroup.POST("/actions/:id/reject", r.handler.RejectAction)
}
