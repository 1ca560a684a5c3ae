// Package http provides the HTTP surface of the authentication subsystem: the bearer
// token gate, permission checks, rate limiting and the login/logout/refresh handlers.
package http

import (
	"context"

	authDomain "github.com/allisson/authgate/internal/auth/domain"
)

// authenticationKey is a context key type for storing the gate result.
type authenticationKey struct{}

// WithAuthentication stores the accepted authentication in the context.
func WithAuthentication(ctx context.Context, authentication *authDomain.Authentication) context.Context {
	return context.WithValue(ctx, authenticationKey{}, authentication)
}

// GetAuthentication retrieves the authentication stored by AuthenticationMiddleware.
func GetAuthentication(ctx context.Context) (*authDomain.Authentication, bool) {
	authentication, ok := ctx.Value(authenticationKey{}).(*authDomain.Authentication)
	return authentication, ok && authentication != nil
}

// GetPrincipal retrieves the principal snapshot embedded in the accepted token.
func GetPrincipal(ctx context.Context) (authDomain.Principal, bool) {
	authentication, ok := GetAuthentication(ctx)
	if !ok {
		return authDomain.Principal{}, false
	}
	return authentication.Principal, true
}
