package handlers

import (
	"errors"
	"net/http"

	"github.com/Nabeerak/hackathon-todo/internal/api/dto"
	"github.com/Nabeerak/hackathon-todo/internal/api/middleware"
	"github.com/Nabeerak/hackathon-todo/internal/domain/user"
	"github.com/Nabeerak/hackathon-todo/pkg/config"
	"github.com/Nabeerak/hackathon-todo/pkg/security/auth"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	service user.Service
	authCfg config.AuthConfig
}

func NewAuthHandler(service user.Service, authCfg config.AuthConfig) *AuthHandler {
	return &AuthHandler{service: service, authCfg: authCfg}
}

// Register godoc
// @Summary Register a new account
// @Description Create a user account and return a session token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "Registration request"
// @Success 201 {object} dto.AuthResponse "Account created"
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 409 {object} map[string]string "Email already registered"
// @Router /api/auth/signup [post]
func (h *AuthHandler) Signup(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := h.service.Register(c.Request.Context(), user.RegisterInput{
		Email:       req.Email,
		Username:    req.Username,
		Password:    req.Password,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		switch {
		case errors.Is(err, user.ErrEmailExists):
			c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
		case errors.Is(err, user.ErrInvalidInput):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create account"})
		}
		return
	}

	token, err := auth.GenerateToken(created.ID, created.Email,
		h.authCfg.JWTSecret, h.authCfg.JWTIssuer, h.authCfg.JWTExpiryHours)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue token"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": dto.AuthResponse{
		Token: token,
		User:  dto.ToUserResponse(created),
	}})
}

// Login godoc
// @Summary Authenticate
// @Description Exchange credentials for a session token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login request"
// @Success 200 {object} dto.AuthResponse "Authenticated"
// @Failure 401 {object} map[string]string "Invalid credentials"
// @Router /api/auth/signin [post]
func (h *AuthHandler) Signin(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	authed, err := h.service.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	token, err := auth.GenerateToken(authed.ID, authed.Email,
		h.authCfg.JWTSecret, h.authCfg.JWTIssuer, h.authCfg.JWTExpiryHours)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": dto.AuthResponse{
		Token: token,
		User:  dto.ToUserResponse(authed),
	}})
}

// Me godoc
// @Summary Current user
// @Description Return the authenticated user's profile
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.UserResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Router /api/auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	u, err := h.service.GetUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": dto.ToUserResponse(u)})
}
