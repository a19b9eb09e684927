package routes

import (
	"github.com/Nabeerak/hackathon-todo/internal/api/handlers"
	"github.com/Nabeerak/hackathon-todo/internal/api/middleware"
	"github.com/gin-gonic/gin"
)

// TaskRoutes handles the setup of task-related routes
type TaskRoutes struct {
	handler   *handlers.TaskHandler
	jwtSecret string
}

func NewTaskRoutes(handler *handlers.TaskHandler, jwtSecret string) *TaskRoutes {
	return &TaskRoutes{handler: handler, jwtSecret: jwtSecret}
}

// RegisterRoutes registers all task-related routes
func (r *TaskRoutes) RegisterRoutes(router *gin.Engine, cache *middleware.CacheMiddleware) {
	tasks := router.Group("/api/tasks")
	tasks.Use(middleware.NewAuthMiddleware(r.jwtSecret))

	// the event stream must never be cached
	tasks.GET("/events", r.handler.StreamEvents)

	tasks.GET("", cache.CacheResponse(), r.handler.ListTasks)
	tasks.GET("/:id", cache.CacheResponse(), r.handler.GetTask)

	tasks.POST("", cache.CacheInvalidate("tasks:*"), r.handler.CreateTask)
	tasks.PUT("/:id", cache.CacheInvalidate("tasks:*"), r.handler.UpdateTask)
	tasks.POST("/:id/complete", cache.CacheInvalidate("tasks:*"), r.handler.CompleteTask)
	tasks.DELETE("/:id", cache.CacheInvalidate("tasks:*"), r.handler.DeleteTask)
	tasks.POST("/bulk-delete", cache.CacheInvalidate("tasks:*"), r.handler.BulkDeleteTasks)
}
