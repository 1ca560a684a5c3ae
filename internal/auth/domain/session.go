package domain

import "time"

// LoginInput contains the credentials submitted to the login endpoint.
type LoginInput struct {
	Username string
	Password string
}

// IssuedToken is the result of minting a token.
type IssuedToken struct {
	AccessToken string
	IssuedAt    time.Time
	ExpiresAt   time.Time
	// ExpiresIn is the total validity window encoded in the token (exp - iat).
	ExpiresIn time.Duration
}

// Authentication is the accepting state of the authentication gate.
type Authentication struct {
	Token     string
	Principal Principal
	Claims    *Claims
}
