package domain

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "github.com/allisson/authgate/internal/errors"
)

func TestTokenFailuresWrapUnauthorized(t *testing.T) {
	failures := []error{
		ErrMissingOrMalformedHeader,
		ErrSessionNotFound,
		ErrTokenRevoked,
		ErrTokenMalformed,
		ErrTokenSignatureInvalid,
		ErrTokenExpired,
	}

	for _, err := range failures {
		assert.ErrorIs(t, err, apperrors.ErrUnauthorized, err.Error())
	}

	assert.NotErrorIs(t, ErrInvalidCredentials, apperrors.ErrUnauthorized)
	assert.ErrorIs(t, ErrInvalidCredentials, apperrors.ErrInvalidCredentials)
	assert.ErrorIs(t, ErrUserLocked, apperrors.ErrLocked)
	assert.NotErrorIs(t, ErrKeyLoadFailure, apperrors.ErrUnauthorized)
}

func TestFailureReason(t *testing.T) {
	tests := []struct {
		err      error
		expected string
	}{
		{nil, "none"},
		{ErrMissingOrMalformedHeader, "missing_or_malformed_header"},
		{ErrSessionNotFound, "session_not_found"},
		{ErrTokenRevoked, "revoked"},
		{ErrTokenMalformed, "malformed"},
		{ErrTokenSignatureInvalid, "signature_invalid"},
		{fmt.Errorf("verify: %w", ErrTokenExpired), "expired"},
		{ErrInvalidCredentials, "invalid_credentials"},
		{ErrUserLocked, "locked"},
		{ErrKeyLoadFailure, "key_load_failure"},
		{fmt.Errorf("redis down"), "internal"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, FailureReason(tt.err))
	}
}
