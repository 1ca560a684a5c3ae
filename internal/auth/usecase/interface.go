// Package usecase orchestrates the authentication lifecycle: credential checks,
// token issuance with session records, revocation, and per-request verification.
package usecase

import (
	"context"
	"time"

	authDomain "github.com/allisson/authgate/internal/auth/domain"
)

// SessionStore keeps one TTL-bound record per issued token.
//
// Records are keyed per token and independent of each other. A record either holds the
// subject (live) or the revocation sentinel (blacklisted); writers never extend a TTL
// beyond the value they are given.
type SessionStore interface {
	// Record marks token as live for ttl. ttl must be positive.
	Record(ctx context.Context, token, subject string, ttl time.Duration) error

	// IsLive reports whether a record (live or blacklisted) exists for token.
	IsLive(ctx context.Context, token string) (bool, error)

	// Blacklist overwrites the record with the revocation sentinel for remaining.
	// A non-positive remaining writes nothing.
	Blacklist(ctx context.Context, token string, remaining time.Duration) error

	// IsBlacklisted reports whether the record holds the revocation sentinel.
	IsBlacklisted(ctx context.Context, token string) (bool, error)
}

// UserRepository defines persistence operations for login users.
// Implementations must support transaction-aware operations via context propagation.
type UserRepository interface {
	// Create stores a new user. Returns ErrUserAlreadyExists on a duplicate username.
	Create(ctx context.Context, user *authDomain.User) error

	// Update persists the mutable fields of an existing user.
	Update(ctx context.Context, user *authDomain.User) error

	// GetByUsername retrieves a user. Returns ErrUserNotFound if not found.
	GetByUsername(ctx context.Context, username string) (*authDomain.User, error)

	// GetByUsernameForUpdate retrieves a user holding a row lock for the current transaction.
	GetByUsernameForUpdate(ctx context.Context, username string) (*authDomain.User, error)
}

// CredentialAuthenticator checks login credentials and resolves the principal to embed
// in a token.
type CredentialAuthenticator interface {
	// Authenticate returns the principal for valid credentials.
	// Returns ErrInvalidCredentials for an unknown user, an inactive user or a wrong
	// password, and ErrUserLocked inside a lockout window.
	Authenticate(ctx context.Context, input *authDomain.LoginInput) (*authDomain.Principal, error)
}

// UserUseCase manages the credential store consulted at login.
type UserUseCase interface {
	CredentialAuthenticator

	// Create provisions a user with a role from the role catalog. When input.Password is
	// empty a random password is generated and returned once in the output.
	Create(ctx context.Context, input *authDomain.CreateUserInput) (*authDomain.CreateUserOutput, error)

	// Unlock clears the failed attempt counter and any lockout window.
	Unlock(ctx context.Context, username string) error
}

// AuthUseCase is the token lifecycle exposed to the transport.
type AuthUseCase interface {
	// Login authenticates the credentials, issues a token and records its session.
	// No session record is written when authentication fails.
	Login(ctx context.Context, input *authDomain.LoginInput) (*authDomain.IssuedToken, error)

	// Logout blacklists token for the rest of its validity. Logging out an expired
	// token is a no-op. Forged or malformed tokens are rejected.
	Logout(ctx context.Context, token string) error

	// Refresh revokes token and issues a new one for the same principal snapshot.
	Refresh(
		ctx context.Context,
		token string,
		principal authDomain.Principal,
	) (*authDomain.IssuedToken, error)
}

// AuthenticationGate decides, per request, whether a bearer token is acceptable.
type AuthenticationGate interface {
	// Authenticate checks, in order, the header shape, session liveness, revocation and
	// the token itself. Store failures are returned as-is so the caller rejects the request.
	Authenticate(ctx context.Context, authorizationHeader string) (*authDomain.Authentication, error)
}
