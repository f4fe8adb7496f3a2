// Package tenant defines the tenant data model and the access guard that
// every tenant-scoped operation must pass through.
//
// The guard is not a convention but a capability: repositories and billing
// reads accept a Scope value, and the only way to obtain a Scope for a
// tenant is a successful Authorize call with claims for that same tenant.
// Handler code cannot reach tenant data with a raw tenant ID string.
package tenant

import (
	"github.com/tenantgrid/backend/internal/domain/shared"
)

// ErrTenantMismatch is returned when the claimed tenant does not match the
// requested tenant scope. The message deliberately names neither tenant.
var ErrTenantMismatch = shared.NewDomainError("FORBIDDEN", "Access to this tenant is forbidden")

// ErrTenantRequired is returned when authorization is attempted without a
// tenant identifier on either side.
var ErrTenantRequired = shared.NewDomainError("INVALID_INPUT", "Tenant identifier is required")

// Scope is a capability proving that the holder was authorized for a single
// tenant. The tenant ID is unexported so a Scope cannot be forged or
// re-pointed after construction.
type Scope struct {
	tenantID string
}

// TenantID returns the tenant this scope was authorized for.
func (s Scope) TenantID() string {
	return s.tenantID
}

// IsZero reports whether the scope was never authorized.
func (s Scope) IsZero() bool {
	return s.tenantID == ""
}

// Authorize compares the claimed tenant identity against the requested
// tenant and returns a Scope for it. It fails with ErrTenantMismatch for any
// cross-tenant request regardless of subject or resource, and performs no
// reads or writes on either outcome.
func Authorize(claims Claims, requestedTenantID string) (Scope, error) {
	if claims.TenantID == "" || requestedTenantID == "" {
		return Scope{}, ErrTenantRequired
	}
	if claims.TenantID != requestedTenantID {
		return Scope{}, ErrTenantMismatch
	}
	return Scope{tenantID: requestedTenantID}, nil
}

// NewSystemScope returns a scope for system-level operations that run
// without caller claims, such as writing the initial record during
// onboarding. Use with extreme caution - this bypasses the access guard.
func NewSystemScope(tenantID string) Scope {
	return Scope{tenantID: tenantID}
}
