package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	authDomain "github.com/allisson/authgate/internal/auth/domain"
)

// mockSessionStore is a mock implementation of SessionStore for testing.
type mockSessionStore struct {
	mock.Mock
}

func (m *mockSessionStore) Record(ctx context.Context, token, subject string, ttl time.Duration) error {
	args := m.Called(ctx, token, subject, ttl)
	return args.Error(0)
}

func (m *mockSessionStore) IsLive(ctx context.Context, token string) (bool, error) {
	args := m.Called(ctx, token)
	return args.Bool(0), args.Error(1)
}

func (m *mockSessionStore) Blacklist(ctx context.Context, token string, remaining time.Duration) error {
	args := m.Called(ctx, token, remaining)
	return args.Error(0)
}

func (m *mockSessionStore) IsBlacklisted(ctx context.Context, token string) (bool, error) {
	args := m.Called(ctx, token)
	return args.Bool(0), args.Error(1)
}

// mockUserRepository is a mock implementation of UserRepository for testing.
type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) Create(ctx context.Context, user *authDomain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepository) Update(ctx context.Context, user *authDomain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepository) GetByUsername(ctx context.Context, username string) (*authDomain.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.User), args.Error(1)
}

func (m *mockUserRepository) GetByUsernameForUpdate(
	ctx context.Context,
	username string,
) (*authDomain.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.User), args.Error(1)
}

// mockPasswordService is a mock implementation of PasswordService for testing.
type mockPasswordService struct {
	mock.Mock
}

func (m *mockPasswordService) GeneratePassword() (string, string, error) {
	args := m.Called()
	return args.String(0), args.String(1), args.Error(2)
}

func (m *mockPasswordService) HashPassword(plainPassword string) (string, error) {
	args := m.Called(plainPassword)
	return args.String(0), args.Error(1)
}

func (m *mockPasswordService) ComparePassword(plainPassword string, passwordHash string) bool {
	args := m.Called(plainPassword, passwordHash)
	return args.Bool(0)
}

// mockTokenCodec is a mock implementation of TokenCodec for testing.
type mockTokenCodec struct {
	mock.Mock
}

func (m *mockTokenCodec) Issue(principal authDomain.Principal, ttl time.Duration) (*authDomain.IssuedToken, error) {
	args := m.Called(principal, ttl)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.IssuedToken), args.Error(1)
}

func (m *mockTokenCodec) Verify(token string) (*authDomain.Claims, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.Claims), args.Error(1)
}

func (m *mockTokenCodec) ExtractSubject(token string) (string, error) {
	args := m.Called(token)
	return args.String(0), args.Error(1)
}

func (m *mockTokenCodec) ExtractRole(token string) (authDomain.Role, error) {
	args := m.Called(token)
	return args.Get(0).(authDomain.Role), args.Error(1)
}

func (m *mockTokenCodec) ExtractPermissions(token string) ([]authDomain.Permission, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]authDomain.Permission), args.Error(1)
}

func (m *mockTokenCodec) ExtractExpiry(token string) (time.Time, error) {
	args := m.Called(token)
	return args.Get(0).(time.Time), args.Error(1)
}

// mockCredentialAuthenticator is a mock implementation of CredentialAuthenticator for testing.
type mockCredentialAuthenticator struct {
	mock.Mock
}

func (m *mockCredentialAuthenticator) Authenticate(
	ctx context.Context,
	input *authDomain.LoginInput,
) (*authDomain.Principal, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.Principal), args.Error(1)
}

// passthroughTxManager runs the callback directly and counts transactions.
type passthroughTxManager struct {
	calls     int
	lastError error
}

func (m *passthroughTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	m.calls++
	m.lastError = fn(ctx)
	return m.lastError
}

// fakeClock is a manually advanced clock shared by codec and use cases.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, time.March, 1, 9, 30, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
