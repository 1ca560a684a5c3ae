// Package mocks provides testify mock implementations of the auth use case interfaces.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	authDomain "github.com/allisson/authgate/internal/auth/domain"
)

// MockAuthUseCase is a mock implementation of AuthUseCase for testing.
type MockAuthUseCase struct {
	mock.Mock
}

// Login mocks the Login method of AuthUseCase.
func (m *MockAuthUseCase) Login(
	ctx context.Context,
	input *authDomain.LoginInput,
) (*authDomain.IssuedToken, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.IssuedToken), args.Error(1)
}

// Logout mocks the Logout method of AuthUseCase.
func (m *MockAuthUseCase) Logout(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

// Refresh mocks the Refresh method of AuthUseCase.
func (m *MockAuthUseCase) Refresh(
	ctx context.Context,
	token string,
	principal authDomain.Principal,
) (*authDomain.IssuedToken, error) {
	args := m.Called(ctx, token, principal)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.IssuedToken), args.Error(1)
}

// MockAuthenticationGate is a mock implementation of AuthenticationGate for testing.
type MockAuthenticationGate struct {
	mock.Mock
}

// Authenticate mocks the Authenticate method of AuthenticationGate.
func (m *MockAuthenticationGate) Authenticate(
	ctx context.Context,
	authorizationHeader string,
) (*authDomain.Authentication, error) {
	args := m.Called(ctx, authorizationHeader)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.Authentication), args.Error(1)
}

// MockUserUseCase is a mock implementation of UserUseCase for testing.
type MockUserUseCase struct {
	mock.Mock
}

// Authenticate mocks the Authenticate method of UserUseCase.
func (m *MockUserUseCase) Authenticate(
	ctx context.Context,
	input *authDomain.LoginInput,
) (*authDomain.Principal, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.Principal), args.Error(1)
}

// Create mocks the Create method of UserUseCase.
func (m *MockUserUseCase) Create(
	ctx context.Context,
	input *authDomain.CreateUserInput,
) (*authDomain.CreateUserOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.CreateUserOutput), args.Error(1)
}

// Unlock mocks the Unlock method of UserUseCase.
func (m *MockUserUseCase) Unlock(ctx context.Context, username string) error {
	args := m.Called(ctx, username)
	return args.Error(0)
}
