// Package tenantdata is the application service for tenant-scoped record
// reads and writes. It sits between the HTTP layer and the record
// repository, owning the not-found distinction and the access metrics.
package tenantdata

import (
	"context"
	"encoding/json"

	"github.com/tenantgrid/backend/internal/domain/shared"
	"github.com/tenantgrid/backend/internal/domain/tenant"
	"github.com/tenantgrid/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// Service handles tenant data record operations.
type Service struct {
	records tenant.RecordRepository
	metrics *telemetry.PlatformMetrics
	logger  *zap.Logger
}

// NewService creates the tenant data service.
func NewService(records tenant.RecordRepository, metrics *telemetry.PlatformMetrics, logger *zap.Logger) *Service {
	return &Service{
		records: records,
		metrics: metrics,
		logger:  logger,
	}
}

// Get returns the record for (scope, itemID). A missing record is
// shared.ErrNotFound, which the HTTP layer maps to 404 - distinct from the
// 403 an unauthorized scope produces before this code ever runs.
func (s *Service) Get(ctx context.Context, scope tenant.Scope, itemID string) (*tenant.Record, error) {
	if itemID == "" {
		return nil, shared.ErrInvalidInput
	}

	record, err := s.records.Get(ctx, scope, itemID)
	if err != nil {
		s.logger.Error("record read failed",
			zap.String("tenant_id", scope.TenantID()),
			zap.String("item_id", itemID),
			zap.Error(err),
		)
		s.metrics.RecordDataAccessFailure(ctx, "get")
		s.metrics.RecordError(ctx, "tenantdata")
		return nil, err
	}
	if record == nil {
		s.metrics.RecordDataAccessFailure(ctx, "get")
		return nil, shared.ErrNotFound
	}

	s.metrics.RecordDataAccessSuccess(ctx, "get")
	return record, nil
}

// Store writes the record unconditionally (last-write-wins). The payload
// must be a JSON object; its fields are otherwise opaque to the platform.
func (s *Service) Store(ctx context.Context, scope tenant.Scope, itemID string, payload json.RawMessage) error {
	if itemID == "" || len(payload) == 0 {
		return shared.ErrInvalidInput
	}
	if !json.Valid(payload) {
		return shared.ErrInvalidInput
	}

	if err := s.records.Put(ctx, scope, itemID, payload); err != nil {
		s.logger.Error("record write failed",
			zap.String("tenant_id", scope.TenantID()),
			zap.String("item_id", itemID),
			zap.Error(err),
		)
		s.metrics.RecordDataAccessFailure(ctx, "put")
		s.metrics.RecordError(ctx, "tenantdata")
		return err
	}

	s.metrics.RecordDataAccessSuccess(ctx, "put")
	s.logger.Info("record stored",
		zap.String("tenant_id", scope.TenantID()),
		zap.String("item_id", itemID),
	)
	return nil
}
