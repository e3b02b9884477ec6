package service

// Well-known actor roles, mirroring the JWT role claim.
const (
	RoleAdmin    = "admin"
	RoleVendor   = "vendor"
	RoleCustomer = "customer"
)

// Actor identifies who is performing an operation. Handlers build it from
// JWT claims; tests build it directly.
type Actor struct {
	UserID     string
	BusinessID string
	Role       string
}

// IsAdmin reports whether the actor may bypass ownership checks.
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}
