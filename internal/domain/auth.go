package domain

// Role is the closed set of account roles.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleAgent      Role = "agent"
	RoleCustomer   Role = "customer"
	RoleSuperAdmin Role = "super_admin"
)

// ParseRole converts a stored or claimed role string into a Role.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleAdmin, RoleAgent, RoleCustomer, RoleSuperAdmin:
		return Role(s), true
	default:
		return "", false
	}
}

func (r Role) String() string { return string(r) }

// Actor is the authenticated caller of an operation.
type Actor struct {
	ID   int64
	Role Role
}
