package tenant

import (
	"context"
	"encoding/json"
	"time"
)

// InfoItemID is the reserved item holding a tenant's own metadata,
// written once during onboarding.
const InfoItemID = "tenant_info"

// Record is a single tenant-scoped data item. (tenant_id, item_id) uniquely
// identifies a record; the payload is opaque to the platform.
type Record struct {
	TenantID  string          `json:"tenant_id"`
	ItemID    string          `json:"item_id"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Info is the payload stored under InfoItemID.
type Info struct {
	TenantName string    `json:"tenant_name"`
	CreatedAt  time.Time `json:"created_at"`
}

// RecordRepository is the tenant data store. Every method takes a Scope, so
// a caller that never passed the access guard cannot touch the store.
type RecordRepository interface {
	// Get returns the record for (scope.TenantID(), itemID), or nil when the
	// record does not exist. Absence is not an error.
	Get(ctx context.Context, scope Scope, itemID string) (*Record, error)

	// Put stores the record unconditionally (last-write-wins) and publishes
	// a change event for it on success.
	Put(ctx context.Context, scope Scope, itemID string, payload json.RawMessage) error
}
