package billing

import "context"

// Notice is the message published to the invoice queue after a counter
// update. Delivery is best-effort and at-least-once; the counter remains
// the source of truth, so downstream invoice generation must deduplicate.
type Notice struct {
	TenantID   string `json:"tenant_id"`
	UsageDelta int64  `json:"usage_delta"`
}

// NoticePublisher publishes billing notices for asynchronous invoice
// generation.
type NoticePublisher interface {
	PublishNotice(ctx context.Context, notice Notice) error
}
