package domain

import (
	"github.com/allisson/authgate/internal/errors"
)

// Per-request token failures. All of them wrap errors.ErrUnauthorized so the
// transport can reject them with one generic response.
var (
	// ErrMissingOrMalformedHeader indicates the Authorization header is absent or lacks the Bearer scheme.
	ErrMissingOrMalformedHeader = errors.Wrap(errors.ErrUnauthorized, "missing or malformed authorization header")

	// ErrSessionNotFound indicates the session store holds no record for the token.
	ErrSessionNotFound = errors.Wrap(errors.ErrUnauthorized, "session not found or expired")

	// ErrTokenRevoked indicates the token was blacklisted by logout or refresh.
	ErrTokenRevoked = errors.Wrap(errors.ErrUnauthorized, "token revoked")

	// ErrTokenMalformed indicates the token could not be parsed.
	ErrTokenMalformed = errors.Wrap(errors.ErrUnauthorized, "token malformed")

	// ErrTokenSignatureInvalid indicates the signature or signing algorithm does not match.
	ErrTokenSignatureInvalid = errors.Wrap(errors.ErrUnauthorized, "token signature invalid")

	// ErrTokenExpired indicates the token is past its expiry.
	ErrTokenExpired = errors.Wrap(errors.ErrUnauthorized, "token expired")
)

// Login and account errors.
var (
	// ErrInvalidCredentials indicates a wrong username or password.
	ErrInvalidCredentials = errors.Wrap(errors.ErrInvalidCredentials, "invalid username or password")

	// ErrUserLocked indicates too many failed login attempts.
	ErrUserLocked = errors.Wrap(errors.ErrLocked, "user is locked")

	// ErrUserNotFound indicates a user with the given identifier was not found.
	ErrUserNotFound = errors.Wrap(errors.ErrNotFound, "user not found")

	// ErrUserAlreadyExists indicates the username is already taken.
	ErrUserAlreadyExists = errors.Wrap(errors.ErrConflict, "user already exists")

	// ErrUnknownRole indicates the role is absent from the role catalog.
	ErrUnknownRole = errors.Wrap(errors.ErrInvalidInput, "unknown role")

	// ErrInsufficientPermission indicates the principal lacks a required permission.
	ErrInsufficientPermission = errors.Wrap(errors.ErrForbidden, "insufficient permission")
)

// ErrKeyLoadFailure indicates the signing key pair could not be loaded. It is fatal at startup.
var ErrKeyLoadFailure = errors.New("key load failure")

// FailureReason returns a stable label for an authentication failure, used in logs
// and metrics only. It is never sent to the caller.
func FailureReason(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, ErrMissingOrMalformedHeader):
		return "missing_or_malformed_header"
	case errors.Is(err, ErrSessionNotFound):
		return "session_not_found"
	case errors.Is(err, ErrTokenRevoked):
		return "revoked"
	case errors.Is(err, ErrTokenMalformed):
		return "malformed"
	case errors.Is(err, ErrTokenSignatureInvalid):
		return "signature_invalid"
	case errors.Is(err, ErrTokenExpired):
		return "expired"
	case errors.Is(err, ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, ErrUserLocked):
		return "locked"
	case errors.Is(err, ErrKeyLoadFailure):
		return "key_load_failure"
	default:
		return "internal"
	}
}
