package domain

import "time"

// Claims is the identity carried by a session token.
type Claims struct {
	ID      string
	Name    string
	Email   string
	Role    Role
	Expires time.Time
}

// IsSuperAdmin reports whether the caller holds the SUPERADMIN role.
func (c *Claims) IsSuperAdmin() bool {
	return c != nil && c.Role == RoleSuperAdmin
}
