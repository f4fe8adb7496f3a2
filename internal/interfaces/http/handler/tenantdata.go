package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tenantgrid/backend/internal/application/tenantdata"
	"github.com/tenantgrid/backend/internal/domain/tenant"
	"github.com/tenantgrid/backend/internal/interfaces/http/dto"
	"github.com/tenantgrid/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// TenantDataHandler serves tenant-scoped record reads and writes.
type TenantDataHandler struct {
	BaseHandler
	service *tenantdata.Service
}

// NewTenantDataHandler creates a tenant data handler.
func NewTenantDataHandler(service *tenantdata.Service, logger *zap.Logger) *TenantDataHandler {
	return &TenantDataHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// RegisterRoutes registers tenant data routes.
func (h *TenantDataHandler) RegisterRoutes(router *gin.RouterGroup) {
	items := router.Group("/tenants/:tenant_id/items")
	{
		items.GET("/:item_id", h.GetItem)
		items.POST("/:item_id", h.StoreItem)
	}
}

// GetItem returns one record. The access guard runs before any lookup, so
// a cross-tenant request is 403 even when the record does not exist.
func (h *TenantDataHandler) GetItem(c *gin.Context) {
	var uri dto.RecordURI
	if err := c.ShouldBindUri(&uri); err != nil {
		h.RespondValidationError(c, err)
		return
	}

	scope, err := tenant.Authorize(middleware.GetIdentityClaims(c), uri.TenantID)
	if err != nil {
		h.RespondError(c, err)
		return
	}

	record, err := h.service.Get(c.Request.Context(), scope, uri.ItemID)
	if err != nil {
		h.RespondError(c, err)
		return
	}

	h.RespondSuccess(c, http.StatusOK, dto.RecordResponse{
		TenantID: record.TenantID,
		ItemID:   record.ItemID,
		Payload:  record.Payload,
	})
}

// StoreItem writes one record, last-write-wins.
func (h *TenantDataHandler) StoreItem(c *gin.Context) {
	var uri dto.RecordURI
	if err := c.ShouldBindUri(&uri); err != nil {
		h.RespondValidationError(c, err)
		return
	}

	var req dto.StoreRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondValidationError(c, err)
		return
	}

	scope, err := tenant.Authorize(middleware.GetIdentityClaims(c), uri.TenantID)
	if err != nil {
		h.RespondError(c, err)
		return
	}

	if err := h.service.Store(c.Request.Context(), scope, uri.ItemID, req.Payload); err != nil {
		h.RespondError(c, err)
		return
	}

	h.RespondSuccess(c, http.StatusCreated, dto.RecordResponse{
		TenantID: scope.TenantID(),
		ItemID:   uri.ItemID,
		Payload:  req.Payload,
	})
}
