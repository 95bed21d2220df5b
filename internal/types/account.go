package types

import (
	"time"

	"github.com/google/uuid"
)

// Role is the closed set of admin-panel roles. There is no implicit
// ordering between roles; capabilities are granted through explicit
// RoleSets below.
type Role string

const (
	RoleViewer     Role = "viewer"
	RoleEditor     Role = "editor"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

// ParseRole validates a role string against the closed enumeration.
// An empty string maps to RoleViewer, the default for new accounts.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case "":
		return RoleViewer, true
	case RoleViewer, RoleEditor, RoleAdmin, RoleSuperAdmin:
		return Role(s), true
	}
	return "", false
}

// RoleSet is a named allow-list of roles for one capability.
type RoleSet map[Role]struct{}

func NewRoleSet(roles ...Role) RoleSet {
	set := make(RoleSet, len(roles))
	for _, r := range roles {
		set[r] = struct{}{}
	}
	return set
}

func (s RoleSet) Contains(r Role) bool {
	_, ok := s[r]
	return ok
}

// Per-capability role policies. Routes reference these named sets
// instead of inline role literals.
var (
	// RoleSetAuthenticated admits every role; it still runs the full
	// gate so the active-account check applies to every protected route.
	RoleSetAuthenticated = NewRoleSet(RoleViewer, RoleEditor, RoleAdmin, RoleSuperAdmin)
	// RoleSetUserAdmin covers account creation, listing and ban/unban.
	RoleSetUserAdmin = NewRoleSet(RoleAdmin, RoleSuperAdmin)
	// RoleSetUserDelete covers hard account deletion.
	RoleSetUserDelete = NewRoleSet(RoleSuperAdmin)
)

// Account is the persisted identity record.
type Account struct {
	ID           uuid.UUID  `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"` // never serialized
	Role         Role       `json:"role"`
	IsActive     bool       `json:"is_active"`
	CreatedBy    *uuid.UUID `json:"created_by,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// Summary returns the external projection of an account. The password
// hash is dropped here as well as by the `json:"-"` tag, so a summary
// can never carry it even through struct copies.
func (a *Account) Summary() AccountSummary {
	return AccountSummary{
		ID:        a.ID,
		Username:  a.Username,
		Email:     a.Email,
		Role:      a.Role,
		IsActive:  a.IsActive,
		CreatedBy: a.CreatedBy,
		CreatedAt: a.CreatedAt,
	}
}

// AccountSummary is what handlers return to clients.
type AccountSummary struct {
	ID        uuid.UUID  `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	Role      Role       `json:"role"`
	IsActive  bool       `json:"is_active"`
	CreatedBy *uuid.UUID `json:"created_by,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// CreateAccountParams carries the fields for account creation. Role
// defaults to viewer when empty; the lifecycle service validates it.
type CreateAccountParams struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}
