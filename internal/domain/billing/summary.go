package billing

import "github.com/shopspring/decimal"

// Summary is a point-in-time billing view for one tenant. It is derived on
// every request and never stored.
type Summary struct {
	TenantID   string          `json:"tenant_id"`
	UsageCount int64           `json:"usage_count"`
	TotalCost  decimal.Decimal `json:"total_cost"`
}

// NewSummary computes a summary from the current counter and pricing rule.
func NewSummary(tenantID string, usageCount int64, price PricePerUnit) Summary {
	return Summary{
		TenantID:   tenantID,
		UsageCount: usageCount,
		TotalCost:  price.Cost(usageCount),
	}
}
