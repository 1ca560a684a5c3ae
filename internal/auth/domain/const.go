// Package domain defines the authentication and session domain models.
// Tokens carry a frozen principal snapshot (subject, role, permissions) and are
// revoked through a TTL-backed session store.
package domain

// Role is the single authorization tag assigned to a user.
type Role string

// Permission is an authorization grant resolved from a role through the role catalog.
type Permission string

const (
	// RoleAdmin manages customers and accounts.
	RoleAdmin Role = "admin"

	// RoleOperator handles day-to-day account operations.
	RoleOperator Role = "operator"

	// RoleViewer has read-only access.
	RoleViewer Role = "viewer"
)

const (
	CustomerReadPermission  Permission = "customer:read"
	CustomerWritePermission Permission = "customer:write"
	AccountReadPermission   Permission = "account:read"
	AccountWritePermission  Permission = "account:write"
	ProviderReadPermission  Permission = "provider:read"
	ProviderWritePermission Permission = "provider:write"
)

// BlacklistSentinel is the session record value meaning "this token is revoked".
const BlacklistSentinel = "revoked"

// BearerTokenType is the token type reported to clients on issuance.
const BearerTokenType = "Bearer"
