package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	authDomain "github.com/allisson/authgate/internal/auth/domain"
	authService "github.com/allisson/authgate/internal/auth/service"
	"github.com/allisson/authgate/internal/config"
)

// authUseCase implements AuthUseCase.
type authUseCase struct {
	authenticator CredentialAuthenticator
	codec         authService.TokenCodec
	store         SessionStore
	tokenTTL      time.Duration
	now           func() time.Time
}

// Login issues a token for valid credentials and records its session.
//
// The session record lives exactly until the token's exp, so it never outlives the token.
func (a *authUseCase) Login(
	ctx context.Context,
	input *authDomain.LoginInput,
) (*authDomain.IssuedToken, error) {
	principal, err := a.authenticator.Authenticate(ctx, input)
	if err != nil {
		return nil, err
	}

	return a.issue(ctx, *principal)
}

// Logout blacklists the token for its remaining validity.
func (a *authUseCase) Logout(ctx context.Context, token string) error {
	expiresAt, err := a.codec.ExtractExpiry(token)
	if err != nil {
		if errors.Is(err, authDomain.ErrTokenExpired) {
			return nil
		}
		return err
	}

	remaining := expiresAt.Sub(a.now())
	if remaining <= 0 {
		return nil
	}

	return a.store.Blacklist(ctx, token, remaining)
}

// Refresh revokes the presented token before issuing its replacement. Claims are
// copied from principal, not looked up again.
func (a *authUseCase) Refresh(
	ctx context.Context,
	token string,
	principal authDomain.Principal,
) (*authDomain.IssuedToken, error) {
	if err := a.Logout(ctx, token); err != nil {
		return nil, err
	}

	return a.issue(ctx, principal)
}

func (a *authUseCase) issue(ctx context.Context, principal authDomain.Principal) (*authDomain.IssuedToken, error) {
	issued, err := a.codec.Issue(principal, a.tokenTTL)
	if err != nil {
		return nil, err
	}

	ttl := issued.ExpiresAt.Sub(a.now())
	if ttl <= 0 {
		return nil, fmt.Errorf("issued token already expired at %s", issued.ExpiresAt.Format(time.RFC3339))
	}

	if err := a.store.Record(ctx, issued.AccessToken, principal.Subject, ttl); err != nil {
		return nil, err
	}

	return issued, nil
}

// NewAuthUseCase creates a new AuthUseCase. Tokens are valid for cfg.AuthTokenExpiration.
func NewAuthUseCase(
	cfg *config.Config,
	authenticator CredentialAuthenticator,
	codec authService.TokenCodec,
	store SessionStore,
) AuthUseCase {
	return &authUseCase{
		authenticator: authenticator,
		codec:         codec,
		store:         store,
		tokenTTL:      cfg.AuthTokenExpiration,
		now:           time.Now,
	}
}
