package dto

import "encoding/json"

// RecordURI binds the tenant data path parameters.
type RecordURI struct {
	TenantID string `uri:"tenant_id" binding:"required"`
	ItemID   string `uri:"item_id" binding:"required"`
}

// BillingURI binds the billing summary path parameter.
type BillingURI struct {
	TenantID string `uri:"tenant_id" binding:"required"`
}

// StoreRecordRequest is the body of a record write. The payload is stored
// verbatim.
type StoreRecordRequest struct {
	Payload json.RawMessage `json:"payload" binding:"required"`
}

// RecordResponse is the body of a record read.
type RecordResponse struct {
	TenantID string          `json:"tenant_id"`
	ItemID   string          `json:"item_id"`
	Payload  json.RawMessage `json:"payload"`
}

// RegisterTenantRequest is the onboarding request body.
type RegisterTenantRequest struct {
	TenantName string `json:"tenant_name" binding:"required,min=1,max=255"`
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required,min=8"`
}

// LoginRequest is the credential login body.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// BillingSummaryResponse is the billing summary body. The cost is a decimal
// string, never a float.
type BillingSummaryResponse struct {
	TenantID   string `json:"tenant_id"`
	UsageCount int64  `json:"usage_count"`
	TotalCost  string `json:"total_cost"`
}
