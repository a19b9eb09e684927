package routes

import (
	"github.com/Nabeerak/hackathon-todo/internal/api/handlers"
	"github.com/Nabeerak/hackathon-todo/internal/api/middleware"
	"github.com/gin-gonic/gin"
)

// AuthRoutes handles the setup of authentication routes
type AuthRoutes struct {
	handler   *handlers.AuthHandler
	jwtSecret string
}

func NewAuthRoutes(handler *handlers.AuthHandler, jwtSecret string) *AuthRoutes {
	return &AuthRoutes{handler: handler, jwtSecret: jwtSecret}
}

// RegisterRoutes registers all authentication routes
func (r *AuthRoutes) RegisterRoutes(router *gin.Engine) {
	authGroup := router.Group("/api/auth")

	authGroup.POST("/signup", r.handler.Signup)
	authGroup.POST("/signin", r.handler.Signin)

	authGroup.GET("/me", middleware.NewAuthMiddleware(r.jwtSecret), r.handler.Me)
}
