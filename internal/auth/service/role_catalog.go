package service

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	authDomain "github.com/allisson/authgate/internal/auth/domain"
	apperrors "github.com/allisson/authgate/internal/errors"
)

// roleCatalog implements RoleCatalog over an immutable map.
type roleCatalog struct {
	grants map[authDomain.Role][]authDomain.Permission
}

// NewRoleCatalog creates a RoleCatalog from grants. The map is copied and every
// permission list is deduplicated and sorted.
func NewRoleCatalog(grants map[authDomain.Role][]authDomain.Permission) RoleCatalog {
	copied := make(map[authDomain.Role][]authDomain.Permission, len(grants))
	for role, permissions := range grants {
		copied[role] = authDomain.NewPrincipal("", role, permissions).Permissions
	}
	return &roleCatalog{grants: copied}
}

// DefaultRoleCatalog returns the built-in admin, operator and viewer roles.
func DefaultRoleCatalog() RoleCatalog {
	return NewRoleCatalog(map[authDomain.Role][]authDomain.Permission{
		authDomain.RoleAdmin: {
			authDomain.CustomerReadPermission,
			authDomain.CustomerWritePermission,
			authDomain.AccountReadPermission,
			authDomain.AccountWritePermission,
			authDomain.ProviderReadPermission,
			authDomain.ProviderWritePermission,
		},
		authDomain.RoleOperator: {
			authDomain.CustomerReadPermission,
			authDomain.AccountReadPermission,
			authDomain.AccountWritePermission,
			authDomain.ProviderReadPermission,
		},
		authDomain.RoleViewer: {
			authDomain.CustomerReadPermission,
			authDomain.AccountReadPermission,
			authDomain.ProviderReadPermission,
		},
	})
}

// ParseRoleCatalog builds a catalog from the AUTH_ROLE_PERMISSIONS format:
//
//	admin=customer:read|customer:write;viewer=customer:read
//
// An empty definition yields DefaultRoleCatalog. A role may have no permissions ("guest=").
func ParseRoleCatalog(definition string) (RoleCatalog, error) {
	definition = strings.TrimSpace(definition)
	if definition == "" {
		return DefaultRoleCatalog(), nil
	}

	grants := make(map[authDomain.Role][]authDomain.Permission)
	for entry := range strings.SplitSeq(definition, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		name, perms, ok := strings.Cut(entry, "=")
		role := authDomain.Role(strings.TrimSpace(name))
		if !ok || role == "" {
			return nil, apperrors.Wrap(apperrors.ErrInvalidInput, fmt.Sprintf("invalid role definition %q", entry))
		}
		if _, exists := grants[role]; exists {
			return nil, apperrors.Wrap(apperrors.ErrInvalidInput, fmt.Sprintf("duplicate role %q", role))
		}

		grants[role] = authDomain.ParsePermissions(strings.Split(perms, "|"))
	}

	if len(grants) == 0 {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "role catalog is empty")
	}

	return NewRoleCatalog(grants), nil
}

// Resolve returns a copy so callers cannot mutate the catalog.
func (r *roleCatalog) Resolve(role authDomain.Role) ([]authDomain.Permission, error) {
	permissions, ok := r.grants[role]
	if !ok {
		return nil, authDomain.ErrUnknownRole
	}
	return slices.Clone(permissions), nil
}

func (r *roleCatalog) Roles() []authDomain.Role {
	return slices.Sorted(maps.Keys(r.grants))
}
