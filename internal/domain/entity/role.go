package entity

// Role represents a member's role inside a tenant.
type Role string

const (
	// RoleOwner may manage other members of the tenant.
	RoleOwner Role = "owner"
	// RoleMember is a regular tenant member.
	RoleMember Role = "member"
)

// String returns the string representation of the Role.
func (r Role) String() string {
	return string(r)
}

// IsValid checks if the Role is a valid value.
func (r Role) IsValid() bool {
	switch r {
	case RoleOwner, RoleMember:
		return true
	default:
		return false
	}
}
