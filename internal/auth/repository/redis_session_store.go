// Package repository implements persistence for the authentication subsystem.
//
// Session records live in Redis, keyed by a SHA-256 digest of the token. Users live in
// PostgreSQL or MySQL with transaction support via database.GetTx(); PostgreSQL uses native
// UUID types, MySQL uses BINARY(16).
package repository

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	authDomain "github.com/allisson/authgate/internal/auth/domain"
	apperrors "github.com/allisson/authgate/internal/errors"
)

// RedisSessionStore tracks live and revoked tokens in Redis.
//
// Every token is an independent key and writes are last-writer-wins, so no locking is
// needed. Redis evicts records when their TTL elapses.
type RedisSessionStore struct {
	client redis.Cmdable
	prefix string
}

// NewRedisSessionStore creates a session store. Keys are "<prefix>:<sha256(token)>".
func NewRedisSessionStore(client redis.Cmdable, prefix string) *RedisSessionStore {
	return &RedisSessionStore{client: client, prefix: prefix}
}

// Key returns the record key for token. The raw token is never stored.
func (s *RedisSessionStore) Key(token string) string {
	sum := sha256.Sum256([]byte(token))
	return s.prefix + ":" + hex.EncodeToString(sum[:])
}

// Record stores subject as the live value of token for ttl.
func (s *RedisSessionStore) Record(ctx context.Context, token, subject string, ttl time.Duration) error {
	if ttl <= 0 {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "session ttl must be positive")
	}

	if err := s.client.Set(ctx, s.Key(token), subject, ttl).Err(); err != nil {
		return apperrors.Wrap(err, "failed to record session")
	}
	return nil
}

// IsLive reports whether a record for token exists.
func (s *RedisSessionStore) IsLive(ctx context.Context, token string) (bool, error) {
	n, err := s.client.Exists(ctx, s.Key(token)).Result()
	if err != nil {
		return false, apperrors.Wrap(err, "failed to check session liveness")
	}
	return n > 0, nil
}

// Blacklist overwrites the record of token with the revocation sentinel for the
// remaining validity. A non-positive remaining writes nothing since the token can no
// longer verify.
func (s *RedisSessionStore) Blacklist(ctx context.Context, token string, remaining time.Duration) error {
	if remaining <= 0 {
		return nil
	}

	if err := s.client.Set(ctx, s.Key(token), authDomain.BlacklistSentinel, remaining).Err(); err != nil {
		return apperrors.Wrap(err, "failed to blacklist session")
	}
	return nil
}

// IsBlacklisted reports whether the record of token holds the revocation sentinel.
func (s *RedisSessionStore) IsBlacklisted(ctx context.Context, token string) (bool, error) {
	value, err := s.client.Get(ctx, s.Key(token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, apperrors.Wrap(err, "failed to check session blacklist")
	}
	return value == authDomain.BlacklistSentinel, nil
}

// Ping checks the connection to Redis.
func (s *RedisSessionStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return apperrors.Wrap(err, "failed to ping session store")
	}
	return nil
}
