// Package billing holds the usage accounting model: the durable per-tenant
// usage counter, the pricing rule, and the derived billing summary.
package billing

import "context"

// UsageStore is the durable per-tenant usage counter. Counters are created
// implicitly on the first increment and only ever grow within this system.
type UsageStore interface {
	// AddUsage atomically adds delta to the tenant's counter and returns the
	// new total. The increment must be a single server-side operation, not a
	// read-modify-write, so concurrent deliveries never lose updates.
	AddUsage(ctx context.Context, tenantID string, delta int64) (int64, error)

	// GetUsage returns the tenant's current counter. A tenant with no
	// recorded usage yields 0, not an error.
	GetUsage(ctx context.Context, tenantID string) (int64, error)
}
