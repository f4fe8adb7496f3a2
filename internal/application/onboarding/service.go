// Package onboarding implements tenant provisioning: minting a tenant ID,
// registering and confirming the identity-provider account, and seeding the
// tenant's metadata record.
package onboarding

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tenantgrid/backend/internal/domain/shared"
	"github.com/tenantgrid/backend/internal/domain/tenant"
	"github.com/tenantgrid/backend/internal/infrastructure/identity"
	"github.com/tenantgrid/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// RegisterInput contains the onboarding request.
type RegisterInput struct {
	TenantName string
	Email      string
	Password   string
}

// Result reports a completed onboarding.
type Result struct {
	TenantID   string    `json:"tenant_id"`
	TenantName string    `json:"tenant_name"`
	Email      string    `json:"email"`
	CreatedAt  time.Time `json:"created_at"`
}

// Service orchestrates the onboarding sequence. The steps run in order and
// the sequence aborts on the first failure without compensation: a tenant
// left with a registered-but-unconfirmed account, or no metadata record, is
// surfaced to the operator through the error rather than silently unwound.
// Account registration is not idempotent, so automatic retries would mint
// duplicate accounts.
type Service struct {
	provider identity.Provider
	records  tenant.RecordRepository
	metrics  *telemetry.PlatformMetrics
	logger   *zap.Logger
	now      func() time.Time
}

// NewService creates the onboarding service.
func NewService(provider identity.Provider, records tenant.RecordRepository, metrics *telemetry.PlatformMetrics, logger *zap.Logger) *Service {
	return &Service{
		provider: provider,
		records:  records,
		metrics:  metrics,
		logger:   logger,
		now:      time.Now,
	}
}

// Register provisions a new tenant. On success the tenant has a confirmed
// account and a tenant_info record it can immediately read back through the
// data API.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*Result, error) {
	if input.TenantName == "" || input.Email == "" || input.Password == "" {
		return nil, shared.ErrInvalidInput
	}

	tenantID := uuid.New().String()
	logger := s.logger.With(
		zap.String("tenant_id", tenantID),
		zap.String("tenant_name", input.TenantName),
	)

	if _, err := s.provider.RegisterAccount(ctx, identity.RegisterAccountInput{
		TenantID: tenantID,
		Email:    input.Email,
		Password: input.Password,
	}); err != nil {
		logger.Error("account registration failed", zap.Error(err))
		s.metrics.RecordError(ctx, "onboarding")
		return nil, fmt.Errorf("register account: %w", err)
	}

	if err := s.provider.ConfirmAccount(ctx, input.Email); err != nil {
		logger.Error("account confirmation failed, tenant left unconfirmed", zap.Error(err))
		s.metrics.RecordError(ctx, "onboarding")
		return nil, fmt.Errorf("confirm account: %w", err)
	}

	createdAt := s.now().UTC()
	info := tenant.Info{TenantName: input.TenantName, CreatedAt: createdAt}
	payload, err := json.Marshal(info)
	if err != nil {
		return nil, fmt.Errorf("encode tenant info: %w", err)
	}

	// No caller claims exist yet for a tenant being created, so the seed
	// write runs under a system scope.
	scope := tenant.NewSystemScope(tenantID)
	if err := s.records.Put(ctx, scope, tenant.InfoItemID, payload); err != nil {
		logger.Error("tenant info write failed, account already confirmed", zap.Error(err))
		s.metrics.RecordError(ctx, "onboarding")
		return nil, fmt.Errorf("seed tenant info: %w", err)
	}

	s.metrics.RecordOnboardingSuccess(ctx)
	logger.Info("tenant onboarded", zap.String("email", input.Email))

	return &Result{
		TenantID:   tenantID,
		TenantName: input.TenantName,
		Email:      input.Email,
		CreatedAt:  createdAt,
	}, nil
}
