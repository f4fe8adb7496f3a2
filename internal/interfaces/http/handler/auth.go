package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	appauth "github.com/tenantgrid/backend/internal/application/auth"
	"github.com/tenantgrid/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// AuthHandler serves credential login.
type AuthHandler struct {
	BaseHandler
	service *appauth.Service
}

// NewAuthHandler creates an auth handler.
func NewAuthHandler(service *appauth.Service, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// RegisterRoutes registers auth routes.
func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/auth/login", h.Login)
}

// Login exchanges credentials for a bearer token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondValidationError(c, err)
		return
	}

	token, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.RespondError(c, err)
		return
	}

	h.RespondSuccess(c, http.StatusOK, token)
}
