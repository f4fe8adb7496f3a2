// Package billing exposes the read side of usage accounting: the on-demand
// billing summary derived from the usage counter and the pricing rule.
package billing

import (
	"context"

	"github.com/tenantgrid/backend/internal/domain/billing"
	"github.com/tenantgrid/backend/internal/domain/tenant"
	"github.com/tenantgrid/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// SummaryService computes billing summaries. Reads go through the same
// tenant scope capability as data access, so there is no path to another
// tenant's figures.
type SummaryService struct {
	usage   billing.UsageStore
	price   billing.PricePerUnit
	metrics *telemetry.PlatformMetrics
	logger  *zap.Logger
}

// NewSummaryService creates the billing summary service.
func NewSummaryService(usage billing.UsageStore, price billing.PricePerUnit, metrics *telemetry.PlatformMetrics, logger *zap.Logger) *SummaryService {
	return &SummaryService{
		usage:   usage,
		price:   price,
		metrics: metrics,
		logger:  logger,
	}
}

// GetSummary returns the point-in-time billing view for the scoped tenant.
// A tenant with no recorded usage gets a zero summary, not an error.
func (s *SummaryService) GetSummary(ctx context.Context, scope tenant.Scope) (billing.Summary, error) {
	count, err := s.usage.GetUsage(ctx, scope.TenantID())
	if err != nil {
		s.logger.Error("usage counter read failed",
			zap.String("tenant_id", scope.TenantID()),
			zap.Error(err),
		)
		s.metrics.RecordError(ctx, "billing")
		return billing.Summary{}, err
	}
	return billing.NewSummary(scope.TenantID(), count, s.price), nil
}
