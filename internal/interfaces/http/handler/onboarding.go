package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tenantgrid/backend/internal/application/onboarding"
	"github.com/tenantgrid/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// OnboardingHandler serves tenant registration. It is the one write surface
// that runs unauthenticated: the tenant being created has no credentials
// yet.
type OnboardingHandler struct {
	BaseHandler
	service *onboarding.Service
}

// NewOnboardingHandler creates an onboarding handler.
func NewOnboardingHandler(service *onboarding.Service, logger *zap.Logger) *OnboardingHandler {
	return &OnboardingHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// RegisterRoutes registers onboarding routes.
func (h *OnboardingHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/onboarding/register", h.Register)
}

// Register provisions a new tenant with a confirmed account and a seeded
// metadata record.
func (h *OnboardingHandler) Register(c *gin.Context) {
	var req dto.RegisterTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondValidationError(c, err)
		return
	}

	result, err := h.service.Register(c.Request.Context(), onboarding.RegisterInput{
		TenantName: req.TenantName,
		Email:      req.Email,
		Password:   req.Password,
	})
	if err != nil {
		h.RespondError(c, err)
		return
	}

	h.RespondSuccess(c, http.StatusCreated, result)
}
