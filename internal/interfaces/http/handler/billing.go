package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	appbilling "github.com/tenantgrid/backend/internal/application/billing"
	"github.com/tenantgrid/backend/internal/domain/tenant"
	"github.com/tenantgrid/backend/internal/interfaces/http/dto"
	"github.com/tenantgrid/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// BillingHandler serves the per-tenant billing summary.
type BillingHandler struct {
	BaseHandler
	service *appbilling.SummaryService
}

// NewBillingHandler creates a billing handler.
func NewBillingHandler(service *appbilling.SummaryService, logger *zap.Logger) *BillingHandler {
	return &BillingHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// RegisterRoutes registers billing routes.
func (h *BillingHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/tenants/:tenant_id/billing", h.GetSummary)
}

// GetSummary returns the current usage count and total cost for the scoped
// tenant. The cost is serialized as a decimal string.
func (h *BillingHandler) GetSummary(c *gin.Context) {
	var uri dto.BillingURI
	if err := c.ShouldBindUri(&uri); err != nil {
		h.RespondValidationError(c, err)
		return
	}

	scope, err := tenant.Authorize(middleware.GetIdentityClaims(c), uri.TenantID)
	if err != nil {
		h.RespondError(c, err)
		return
	}

	summary, err := h.service.GetSummary(c.Request.Context(), scope)
	if err != nil {
		h.RespondError(c, err)
		return
	}

	h.RespondSuccess(c, http.StatusOK, dto.BillingSummaryResponse{
		TenantID:   summary.TenantID,
		UsageCount: summary.UsageCount,
		TotalCost:  summary.TotalCost.StringFixed(2),
	})
}
