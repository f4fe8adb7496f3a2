package tenant

import "context"

// EventKind classifies a data mutation observed on the tenant data store.
type EventKind string

const (
	EventInsert EventKind = "INSERT"
	EventModify EventKind = "MODIFY"
	EventRemove EventKind = "REMOVE"
)

// ChangeEvent is emitted after a record write. Delivery to consumers is
// at-least-once and ordered only within a single tenant's partition.
// NewUsageDelta is nil when the write carried no usage figure.
type ChangeEvent struct {
	Kind          EventKind `json:"event_kind"`
	TenantID      string    `json:"tenant_id"`
	ItemID        string    `json:"item_id"`
	NewUsageDelta *int64    `json:"new_usage_delta,omitempty"`
}

// ChangePublisher is the explicit event-emission capability the record
// store is constructed with. Making it an interface (instead of an implicit
// platform behavior) lets the usage meter be driven by a fake source in
// tests.
type ChangePublisher interface {
	PublishChange(ctx context.Context, event ChangeEvent) error
}

// ChangePublisherFunc adapts a function to the ChangePublisher interface.
type ChangePublisherFunc func(ctx context.Context, event ChangeEvent) error

// PublishChange implements ChangePublisher.
func (f ChangePublisherFunc) PublishChange(ctx context.Context, event ChangeEvent) error {
	return f(ctx, event)
}
