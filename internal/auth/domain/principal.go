package domain

import (
	"slices"
	"strings"
)

// Principal is the authenticated identity snapshot embedded into a token at issuance.
// It is never a live reference to the user record.
type Principal struct {
	Subject     string
	Role        Role
	Permissions []Permission
}

// NewPrincipal builds a Principal holding a deduplicated, sorted copy of permissions.
func NewPrincipal(subject string, role Role, permissions []Permission) Principal {
	perms := slices.Clone(permissions)
	slices.Sort(perms)
	perms = slices.Compact(perms)
	if perms == nil {
		perms = []Permission{}
	}

	return Principal{
		Subject:     subject,
		Role:        role,
		Permissions: perms,
	}
}

// HasPermission reports whether the principal was granted the permission at issuance.
func (p Principal) HasPermission(permission Permission) bool {
	_, found := slices.BinarySearch(p.Permissions, permission)
	if found {
		return true
	}
	// Principals built by hand may not be sorted.
	return slices.Contains(p.Permissions, permission)
}

// PermissionStrings returns the permissions as plain strings for claim encoding.
func (p Principal) PermissionStrings() []string {
	out := make([]string, len(p.Permissions))
	for i, perm := range p.Permissions {
		out[i] = string(perm)
	}
	return out
}

// ParsePermissions converts claim strings back into permissions, skipping blanks.
func ParsePermissions(values []string) []Permission {
	out := make([]Permission, 0, len(values))
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		out = append(out, Permission(value))
	}
	return out
}
