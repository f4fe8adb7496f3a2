// Package auth implements credential login for onboarded tenant accounts.
package auth

import (
	"context"

	"github.com/tenantgrid/backend/internal/infrastructure/auth"
	"github.com/tenantgrid/backend/internal/infrastructure/identity"
	"github.com/tenantgrid/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// Service exchanges account credentials for a bearer token carrying the
// account's tenant claim.
type Service struct {
	provider identity.Provider
	tokens   *auth.JWTService
	metrics  *telemetry.PlatformMetrics
	logger   *zap.Logger
}

// NewService creates the login service.
func NewService(provider identity.Provider, tokens *auth.JWTService, metrics *telemetry.PlatformMetrics, logger *zap.Logger) *Service {
	return &Service{
		provider: provider,
		tokens:   tokens,
		metrics:  metrics,
		logger:   logger,
	}
}

// Login authenticates the credentials and issues a token. Authentication
// failures pass through the identity package's sentinel errors so the HTTP
// layer can map them without string matching.
func (s *Service) Login(ctx context.Context, email, password string) (*auth.Token, error) {
	account, err := s.provider.Authenticate(ctx, email, password)
	if err != nil {
		s.logger.Warn("authentication failed", zap.Error(err))
		return nil, err
	}

	token, err := s.tokens.GenerateToken(account.TenantID, account.ID, account.Email)
	if err != nil {
		s.logger.Error("token generation failed", zap.Error(err))
		s.metrics.RecordError(ctx, "auth")
		return nil, err
	}

	s.logger.Info("account logged in",
		zap.String("tenant_id", account.TenantID),
		zap.String("account_id", account.ID),
	)
	return token, nil
}
