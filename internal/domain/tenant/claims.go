package tenant

// Claims holds the verified identity assertions the platform consumes.
// They are produced by the identity layer after token validation; nothing
// in this package checks signatures or expiry.
type Claims struct {
	TenantID  string
	SubjectID string
}
