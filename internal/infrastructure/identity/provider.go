// Package identity integrates the external identity provider the platform
// registers tenant accounts with. The Provider interface is the seam; the
// bundled directory implementation keeps accounts in the relational store
// and is what development and tests run against.
package identity

import (
	"context"
	"time"
)

// Account is an identity-provider account bound to a tenant.
type Account struct {
	ID        string
	TenantID  string
	Email     string
	Confirmed bool
	CreatedAt time.Time
}

// RegisterAccountInput contains input for registering an account.
type RegisterAccountInput struct {
	TenantID string
	Email    string
	Password string
}

// Provider is the identity-provider client. Account creation is not
// idempotent, so callers must not retry a failed RegisterAccount blindly.
type Provider interface {
	// RegisterAccount creates an unconfirmed account bound to the tenant.
	RegisterAccount(ctx context.Context, input RegisterAccountInput) (*Account, error)

	// ConfirmAccount marks a registered account as confirmed.
	ConfirmAccount(ctx context.Context, email string) error

	// Authenticate verifies credentials and returns the confirmed account.
	Authenticate(ctx context.Context, email, password string) (*Account, error)
}
