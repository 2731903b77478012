package domain

import (
	"fmt"
	"time"
)

// Role is the privilege level of a user account.
type Role uint8

const (
	roleInvalid Role = iota
	RoleUser
	RoleSuperAdmin
)

// ParseRole converts the wire representation into a Role.
func ParseRole(s string) (Role, error) {
	switch s {
	case "USER":
		return RoleUser, nil
	case "SUPERADMIN":
		return RoleSuperAdmin, nil
	default:
		return roleInvalid, fmt.Errorf("unknown role %q", s)
	}
}

func (r Role) String() string {
	switch r {
	case RoleUser:
		return "USER"
	case RoleSuperAdmin:
		return "SUPERADMIN"
	default:
		return "INVALID"
	}
}

// Valid reports whether r is one of the declared roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleSuperAdmin
}

func (r Role) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("invalid role %d", r)
	}
	return []byte(r.String()), nil
}

func (r *Role) UnmarshalText(text []byte) error {
	parsed, err := ParseRole(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// User is the stored account record.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PublicUser is the projection of a User that may leave the service.
// Role and Active are only populated for privileged readers.
type PublicUser struct {
	ID     string
	Name   string
	Email  string
	Role   *Role
	Active *bool
}

// Public projects u for a caller; withStatus adds role and active flag.
func (u *User) Public(withStatus bool) PublicUser {
	pub := PublicUser{ID: u.ID, Name: u.Name, Email: u.Email}
	if withStatus {
		role, active := u.Role, u.Active
		pub.Role = &role
		pub.Active = &active
	}
	return pub
}

// UserFilter selects records. Zero-valued fields do not constrain the match.
type UserFilter struct {
	ID         string
	Email      string
	ActiveOnly bool
}

// Matches reports whether u satisfies the filter.
func (f UserFilter) Matches(u *User) bool {
	if f.ID != "" && u.ID != f.ID {
		return false
	}
	if f.Email != "" && u.Email != f.Email {
		return false
	}
	if f.ActiveOnly && !u.Active {
		return false
	}
	return true
}

// UserChanges lists the mutable columns of a record; nil means unchanged.
type UserChanges struct {
	Name   *string
	Role   *Role
	Active *bool
}

// Empty reports whether no column is being changed.
func (c UserChanges) Empty() bool {
	return c.Name == nil && c.Role == nil && c.Active == nil
}

// Apply writes the changes onto u.
func (c UserChanges) Apply(u *User) {
	if c.Name != nil {
		u.Name = *c.Name
	}
	if c.Role != nil {
		u.Role = *c.Role
	}
	if c.Active != nil {
		u.Active = *c.Active
	}
}
