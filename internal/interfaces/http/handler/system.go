package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SystemHandler serves operational endpoints.
type SystemHandler struct {
	BaseHandler
	startedAt time.Time
	version   string
}

// NewSystemHandler creates a system handler.
func NewSystemHandler(version string, logger *zap.Logger) *SystemHandler {
	return &SystemHandler{
		BaseHandler: NewBaseHandler(logger),
		startedAt:   time.Now(),
		version:     version,
	}
}

// RegisterRoutes registers system routes on the root router; health checks
// run unauthenticated.
func (h *SystemHandler) RegisterRoutes(router *gin.Engine) {
	router.GET("/health", h.Health)
}

// Health reports liveness.
func (h *SystemHandler) Health(c *gin.Context) {
	h.RespondSuccess(c, http.StatusOK, gin.H{
		"status":  "ok",
		"version": h.version,
		"uptime":  time.Since(h.startedAt).String(),
	})
}
