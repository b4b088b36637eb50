package domain

// Role classifies the authenticated caller.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

// Principal is the already-authenticated actor identity every lifecycle
// operation receives. The admin is a principal variant produced by the
// identity layer from configured credentials; it is never a persisted user
// record.
type Principal struct {
	ID          string
	Role        Role
	DisplayName string
}

// IsAdmin reports whether the principal carries the administrator role.
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}
