// Package service provides the technical services of the authentication subsystem.
//
// It loads the RS256 key pair, encodes and verifies signed tokens, resolves roles into
// permissions and hashes user passwords. Everything here is constructed once at startup
// and is safe for concurrent use.
package service

import (
	"context"
	"time"

	authDomain "github.com/allisson/authgate/internal/auth/domain"
)

// PasswordService defines operations for user password generation and validation.
// Implementations must use industry-standard hashing algorithms (e.g., argon2).
type PasswordService interface {
	// GeneratePassword creates a new cryptographically secure random password.
	// Returns both the plain text password (shown once to the operator) and its hash.
	GeneratePassword() (plainPassword string, passwordHash string, err error)

	// HashPassword hashes a plain text password.
	HashPassword(plainPassword string) (passwordHash string, err error)

	// ComparePassword reports whether the plain password matches the hash.
	// Malformed hashes never match.
	ComparePassword(plainPassword string, passwordHash string) bool
}

// TokenCodec issues and verifies RS256 signed tokens.
//
// Verification is pure: it depends only on the public key and the codec clock.
// Every failure is one of authDomain.ErrTokenMalformed, authDomain.ErrTokenSignatureInvalid
// or authDomain.ErrTokenExpired.
type TokenCodec interface {
	// Issue signs a claim set {sub, role, permissions, iat, exp, jti} for the principal.
	Issue(principal authDomain.Principal, ttl time.Duration) (*authDomain.IssuedToken, error)

	// Verify parses the token, checks its signature and expiry and returns the claims.
	Verify(token string) (*authDomain.Claims, error)

	ExtractSubject(token string) (string, error)
	ExtractRole(token string) (authDomain.Role, error)
	ExtractPermissions(token string) ([]authDomain.Permission, error)
	ExtractExpiry(token string) (time.Time, error)
}

// RoleCatalog resolves a role into its permission set. It is immutable after construction.
type RoleCatalog interface {
	// Resolve returns a copy of the permissions granted to role.
	// Returns authDomain.ErrUnknownRole if the role is not in the catalog.
	Resolve(role authDomain.Role) ([]authDomain.Permission, error)

	// Roles returns the catalog roles in lexical order.
	Roles() []authDomain.Role
}

// KeyDecrypter unwraps a KMS-encrypted private key file.
type KeyDecrypter interface {
	Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error)
}

// KeyKeeper is a KMS keeper able to wrap and unwrap private keys.
// *secrets.Keeper from gocloud.dev implements it.
type KeyKeeper interface {
	KeyDecrypter
	Encrypt(ctx context.Context, plaintext []byte) ([]byte, error)
	Close() error
}

// KMSService opens KMS keepers from provider URIs.
type KMSService interface {
	// OpenKeeper opens a keeper for the provider encoded in keyURI.
	// Supports: gcpkms://, awskms://, azurekeyvault://, hashivault://, base64key://
	OpenKeeper(ctx context.Context, keyURI string) (KeyKeeper, error)
}
