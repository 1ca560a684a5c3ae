package service

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	authDomain "github.com/allisson/authgate/internal/auth/domain"
	apperrors "github.com/allisson/authgate/internal/errors"
)

// tokenClaims is the wire claim set.
type tokenClaims struct {
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
	jwt.RegisteredClaims
}

// tokenCodec implements TokenCodec with RS256 via golang-jwt.
type tokenCodec struct {
	keys   *KeyPair
	issuer string
	now    func() time.Time
	parser *jwt.Parser
}

// TokenCodecOption configures a TokenCodec.
type TokenCodecOption func(*tokenCodec)

// WithIssuer writes issuer into the "iss" claim and requires it on verification.
func WithIssuer(issuer string) TokenCodecOption {
	return func(c *tokenCodec) {
		c.issuer = issuer
	}
}

// WithClock replaces the wall clock used for iat, exp and expiry checks.
func WithClock(now func() time.Time) TokenCodecOption {
	return func(c *tokenCodec) {
		c.now = now
	}
}

// NewTokenCodec creates a TokenCodec bound to keys. A verify-only key pair yields a
// codec whose Issue always fails.
func NewTokenCodec(keys *KeyPair, opts ...TokenCodecOption) TokenCodec {
	c := &tokenCodec{
		keys: keys,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
		jwt.WithStrictDecoding(),
	}
	if c.issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(c.issuer))
	}
	c.parser = jwt.NewParser(parserOpts...)

	return c
}

// Issue signs a token for principal valid for ttl.
//
// Token timestamps have second precision: iat is the current second and exp is
// iat+ttl rounded down, so the token never outlives ttl.
func (c *tokenCodec) Issue(principal authDomain.Principal, ttl time.Duration) (*authDomain.IssuedToken, error) {
	if !c.keys.CanSign() {
		return nil, apperrors.New("token codec has no signing key")
	}
	if principal.Subject == "" {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "principal subject is required")
	}
	if ttl < time.Second {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "token ttl must be at least one second")
	}

	issuedAt := c.now().UTC().Truncate(time.Second)
	expiresAt := issuedAt.Add(ttl).Truncate(time.Second)
	snapshot := authDomain.NewPrincipal(principal.Subject, principal.Role, principal.Permissions)

	claims := tokenClaims{
		Role:        string(snapshot.Role),
		Permissions: snapshot.PermissionStrings(),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.Must(uuid.NewV7()).String(),
			Issuer:    c.issuer,
			Subject:   snapshot.Subject,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(c.keys.PrivateKey())
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to sign token")
	}

	return &authDomain.IssuedToken{
		AccessToken: signed,
		IssuedAt:    issuedAt,
		ExpiresAt:   expiresAt,
		ExpiresIn:   expiresAt.Sub(issuedAt),
	}, nil
}

// Verify checks the signature before the claims, so an expired forgery is reported
// as a signature failure.
func (c *tokenCodec) Verify(token string) (*authDomain.Claims, error) {
	claims := &tokenClaims{}
	if _, err := c.parser.ParseWithClaims(token, claims, c.publicKey); err != nil {
		return nil, c.classify(token, err)
	}

	if claims.Subject == "" || claims.IssuedAt == nil {
		return nil, authDomain.ErrTokenMalformed
	}

	return &authDomain.Claims{
		ID:          claims.ID,
		Issuer:      claims.Issuer,
		Subject:     claims.Subject,
		Role:        authDomain.Role(claims.Role),
		Permissions: authDomain.ParsePermissions(claims.Permissions),
		IssuedAt:    claims.IssuedAt.UTC(),
		ExpiresAt:   claims.ExpiresAt.UTC(),
	}, nil
}

// ExtractSubject returns the "sub" claim of a valid token.
func (c *tokenCodec) ExtractSubject(token string) (string, error) {
	claims, err := c.Verify(token)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// ExtractRole returns the "role" claim of a valid token.
func (c *tokenCodec) ExtractRole(token string) (authDomain.Role, error) {
	claims, err := c.Verify(token)
	if err != nil {
		return "", err
	}
	return claims.Role, nil
}

// ExtractPermissions returns the "permissions" claim of a valid token.
func (c *tokenCodec) ExtractPermissions(token string) ([]authDomain.Permission, error) {
	claims, err := c.Verify(token)
	if err != nil {
		return nil, err
	}
	return claims.Permissions, nil
}

// ExtractExpiry returns the "exp" claim of a valid token.
func (c *tokenCodec) ExtractExpiry(token string) (time.Time, error) {
	claims, err := c.Verify(token)
	if err != nil {
		return time.Time{}, err
	}
	return claims.ExpiresAt, nil
}

func (c *tokenCodec) publicKey(*jwt.Token) (any, error) {
	return c.keys.PublicKey(), nil
}

// classify maps golang-jwt errors onto the token failure taxonomy.
func (c *tokenCodec) classify(token string, err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return authDomain.ErrTokenSignatureInvalid
	case errors.Is(err, jwt.ErrTokenMalformed):
		if c.signatureOnlyMalformed(token) {
			return authDomain.ErrTokenSignatureInvalid
		}
		return authDomain.ErrTokenMalformed
	case errors.Is(err, jwt.ErrTokenExpired):
		return authDomain.ErrTokenExpired
	default:
		return authDomain.ErrTokenMalformed
	}
}

// signatureOnlyMalformed reports whether header and claims of token decode cleanly,
// leaving the signature segment as the only broken part.
func (c *tokenCodec) signatureOnlyMalformed(token string) bool {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return false
	}

	var header map[string]any
	if !c.decodeJSONSegment(parts[0], &header) {
		return false
	}
	claims := &tokenClaims{}
	return c.decodeJSONSegment(parts[1], claims)
}

func (c *tokenCodec) decodeJSONSegment(segment string, v any) bool {
	data, err := c.parser.DecodeSegment(segment)
	if err != nil {
		return false
	}
	return json.Unmarshal(data, v) == nil
}
