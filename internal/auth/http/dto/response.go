package dto

import (
	"time"

	authDomain "github.com/allisson/authgate/internal/auth/domain"
)

// TokenResponse is returned by login and refresh.
type TokenResponse struct {
	AccessToken string    `json:"accessToken"`
	TokenType   string    `json:"tokenType"`
	ExpiresIn   int64     `json:"expiresIn"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// MapIssuedTokenToResponse converts an issued token to its API representation.
// ExpiresIn is expressed in whole seconds.
func MapIssuedTokenToResponse(issued *authDomain.IssuedToken) TokenResponse {
	return TokenResponse{
		AccessToken: issued.AccessToken,
		TokenType:   authDomain.BearerTokenType,
		ExpiresIn:   int64(issued.ExpiresIn / time.Second),
		ExpiresAt:   issued.ExpiresAt.UTC(),
	}
}

// PrincipalResponse exposes the principal snapshot frozen in the presented token.
type PrincipalResponse struct {
	Subject     string    `json:"subject"`
	Role        string    `json:"role"`
	Permissions []string  `json:"permissions"`
	IssuedAt    time.Time `json:"issuedAt"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// MapAuthenticationToPrincipalResponse converts the gate result to its API representation.
func MapAuthenticationToPrincipalResponse(authentication *authDomain.Authentication) PrincipalResponse {
	response := PrincipalResponse{
		Subject:     authentication.Principal.Subject,
		Role:        string(authentication.Principal.Role),
		Permissions: authentication.Principal.PermissionStrings(),
	}
	if response.Permissions == nil {
		response.Permissions = []string{}
	}
	if authentication.Claims != nil {
		response.IssuedAt = authentication.Claims.IssuedAt.UTC()
		response.ExpiresAt = authentication.Claims.ExpiresAt.UTC()
	}
	return response
}
