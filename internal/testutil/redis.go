package testutil

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	authRepository "github.com/allisson/authgate/internal/auth/repository"
)

// TestSessionPrefix is the key prefix used by NewSessionStore.
const TestSessionPrefix = "authgate-test:session"

// NewRedis starts an in-process Redis server and a client bound to it. Both are closed
// when the test ends.
func NewRedis(t testing.TB) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
	})

	return server, client
}

// NewSessionStore returns a session store backed by a fresh in-process Redis server.
// The server is returned so tests can inspect TTLs and advance time.
func NewSessionStore(t testing.TB) (*authRepository.RedisSessionStore, *miniredis.Miniredis) {
	t.Helper()

	server, client := NewRedis(t)

	return authRepository.NewRedisSessionStore(client, TestSessionPrefix), server
}
