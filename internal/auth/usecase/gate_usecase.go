package usecase

import (
	"context"
	"fmt"
	"strings"

	authDomain "github.com/allisson/authgate/internal/auth/domain"
	authService "github.com/allisson/authgate/internal/auth/service"
)

// authenticationGate implements AuthenticationGate.
type authenticationGate struct {
	codec authService.TokenCodec
	store SessionStore
}

// Authenticate runs header, liveness, revocation and token checks in that order. The
// first failing step decides the error.
func (g *authenticationGate) Authenticate(
	ctx context.Context,
	authorizationHeader string,
) (*authDomain.Authentication, error) {
	token, err := ParseBearerToken(authorizationHeader)
	if err != nil {
		return nil, err
	}

	live, err := g.store.IsLive(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("check session liveness: %w", err)
	}
	if !live {
		return nil, authDomain.ErrSessionNotFound
	}

	revoked, err := g.store.IsBlacklisted(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("check session revocation: %w", err)
	}
	if revoked {
		return nil, authDomain.ErrTokenRevoked
	}

	claims, err := g.codec.Verify(token)
	if err != nil {
		return nil, err
	}

	return &authDomain.Authentication{
		Token:     token,
		Principal: claims.Principal(),
		Claims:    claims,
	}, nil
}

// ParseBearerToken extracts the token from an "Authorization: Bearer <token>" value.
// The scheme is case-insensitive. Returns ErrMissingOrMalformedHeader otherwise.
func ParseBearerToken(authorizationHeader string) (string, error) {
	scheme, token, found := strings.Cut(strings.TrimSpace(authorizationHeader), " ")
	if !found || !strings.EqualFold(scheme, authDomain.BearerTokenType) {
		return "", authDomain.ErrMissingOrMalformedHeader
	}

	token = strings.TrimSpace(token)
	if token == "" || strings.ContainsAny(token, " \t") {
		return "", authDomain.ErrMissingOrMalformedHeader
	}

	return token, nil
}

// NewAuthenticationGate creates a new AuthenticationGate.
func NewAuthenticationGate(codec authService.TokenCodec, store SessionStore) AuthenticationGate {
	return &authenticationGate{
		codec: codec,
		store: store,
	}
}
