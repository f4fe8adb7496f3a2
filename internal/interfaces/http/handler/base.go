// Package handler contains the gin HTTP handlers for the tenant data
// platform API.
package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tenantgrid/backend/internal/domain/shared"
	"github.com/tenantgrid/backend/internal/infrastructure/identity"
	"github.com/tenantgrid/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// BaseHandler provides shared response helpers.
type BaseHandler struct {
	logger *zap.Logger
}

// NewBaseHandler creates a base handler.
func NewBaseHandler(logger *zap.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

// RespondSuccess writes a success response.
func (h *BaseHandler) RespondSuccess(c *gin.Context, status int, data interface{}) {
	c.JSON(status, dto.NewSuccessResponse(data))
}

// RespondError maps an application error to an HTTP response. Domain error
// codes translate to statuses directly; anything unrecognized is an opaque
// 500 so internal failure detail never reaches a caller.
func (h *BaseHandler) RespondError(c *gin.Context, err error) {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		status := statusForCode(domainErr.Code)
		if status == http.StatusInternalServerError {
			h.respondInternal(c, err)
			return
		}
		c.JSON(status, dto.NewErrorResponse(domainErr.Code, domainErr.Message))
		return
	}

	h.respondInternal(c, err)
}

func (h *BaseHandler) respondInternal(c *gin.Context, err error) {
	h.logger.Error("request failed",
		zap.String("path", c.Request.URL.Path),
		zap.String("method", c.Request.Method),
		zap.Error(err),
	)
	c.JSON(http.StatusInternalServerError,
		dto.NewErrorResponse("INTERNAL_ERROR", "An internal error occurred"))
}

// RespondValidationError writes a 400 for malformed request input.
func (h *BaseHandler) RespondValidationError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, dto.NewErrorResponse("INVALID_INPUT", err.Error()))
}

func statusForCode(code string) int {
	switch code {
	case shared.ErrInvalidInput.Code:
		return http.StatusBadRequest
	case "UNAUTHORIZED":
		return http.StatusUnauthorized
	case shared.ErrForbidden.Code:
		// Cross-tenant access is forbidden, never "not found": the guard
		// rejects before any lookup, so there is nothing to hide.
		return http.StatusForbidden
	case shared.ErrNotFound.Code:
		return http.StatusNotFound
	case identity.ErrAccountExists.Code:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
