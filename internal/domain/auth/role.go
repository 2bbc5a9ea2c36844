// internal/domain/auth/role.go
package auth

import "strings"

// Role is who is signing in
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

// ParseRole reads the login role query value. Anything but "admin" is a customer.
func ParseRole(s string) Role {
	if strings.EqualFold(strings.TrimSpace(s), string(RoleAdmin)) {
		return RoleAdmin
	}
	return RoleCustomer
}

// IsAdmin reports whether r is the admin role
func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}
