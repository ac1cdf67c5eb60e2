package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/abdxl-cloud/RuqyaHub/internal/middleware"
	"github.com/abdxl-cloud/RuqyaHub/internal/service"
	"github.com/abdxl-cloud/RuqyaHub/internal/service/auth"
)

// AuthHandler exposes the auth gate over REST.
type AuthHandler struct {
	svc *service.Services
}

// NewAuthHandler creates the auth handler.
func NewAuthHandler(svc *service.Services) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req auth.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	resp, err := h.svc.Auth.Login(c.Request.Context(), &req)
	if err != nil {
		errorResponse(c, err)
		return
	}
	success(c, resp)
}

// Me handles GET /auth/me for token introspection.
func (h *AuthHandler) Me(c *gin.Context) {
	user, ok := middleware.GetCurrentUser(c)
	if !ok {
		errorResponse(c, auth.ErrInvalidToken)
		return
	}
	success(c, user)
}
