package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vargak/pennyflow-backend/internal/api/dto"
	"github.com/vargak/pennyflow-backend/internal/api/middleware"
	"github.com/vargak/pennyflow-backend/internal/application/service"
	"github.com/vargak/pennyflow-backend/internal/infrastructure/storage"
)

// AuthHandler handles registration and login
type AuthHandler struct {
	auth *service.AuthService
	repo storage.Repository
}

// NewAuthHandler creates an auth handler
func NewAuthHandler(auth *service.AuthService, repo storage.Repository) *AuthHandler {
	return &AuthHandler{auth: auth, repo: repo}
}

// Register creates a new account
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ValidationError(err.Error()))
		return
	}

	user, err := h.auth.Register(req.Email, req.Password)
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.AuthResponse{User: user})
}

// Login exchanges credentials for a token
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ValidationError(err.Error()))
		return
	}

	token, user, err := h.auth.Login(req.Email, req.Password)
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.AuthResponse{Token: token, User: user})
}

// Me returns the authenticated user's profile
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.repo.GetUser(middleware.UserID(c))
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}
