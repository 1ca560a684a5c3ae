package service

import (
	"crypto/rand"
	"encoding/base64"

	"github.com/allisson/go-pwdhash"

	apperrors "github.com/allisson/authgate/internal/errors"
)

// passwordService implements PasswordService using Argon2id.
type passwordService struct {
	hasher *pwdhash.PasswordHasher
}

// GeneratePassword creates a random 18-byte password, base64 URL-encoded.
func (s *passwordService) GeneratePassword() (plainPassword string, passwordHash string, err error) {
	randomBytes := make([]byte, 18)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", "", apperrors.Wrap(err, "failed to generate random password")
	}

	plainPassword = base64.RawURLEncoding.EncodeToString(randomBytes)

	passwordHash, err = s.HashPassword(plainPassword)
	if err != nil {
		return "", "", err
	}

	return plainPassword, passwordHash, nil
}

// HashPassword hashes a plain text password using Argon2id.
func (s *passwordService) HashPassword(plainPassword string) (string, error) {
	passwordHash, err := s.hasher.Hash([]byte(plainPassword))
	if err != nil {
		return "", apperrors.Wrap(err, "failed to hash password")
	}
	return passwordHash, nil
}

func (s *passwordService) ComparePassword(plainPassword string, passwordHash string) bool {
	ok, err := s.hasher.Verify([]byte(plainPassword), passwordHash)
	if err != nil {
		return false
	}
	return ok
}

// NewPasswordService creates a PasswordService using the Moderate policy.
func NewPasswordService() PasswordService {
	hasher, err := pwdhash.New(
		pwdhash.WithPolicy(pwdhash.PolicyModerate),
	)
	if err != nil {
		// This should never happen with a built-in policy
		panic(err)
	}

	return &passwordService{
		hasher: hasher,
	}
}
