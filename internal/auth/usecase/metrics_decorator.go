package usecase

import (
	"context"
	"time"

	authDomain "github.com/allisson/authgate/internal/auth/domain"
	"github.com/allisson/authgate/internal/metrics"
)

// authUseCaseWithMetrics decorates AuthUseCase with metrics instrumentation.
type authUseCaseWithMetrics struct {
	next    AuthUseCase
	metrics metrics.BusinessMetrics
}

// NewAuthUseCaseWithMetrics wraps an AuthUseCase with metrics recording.
func NewAuthUseCaseWithMetrics(useCase AuthUseCase, m metrics.BusinessMetrics) AuthUseCase {
	return &authUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// Login records metrics for login operations. The status label carries the failure reason.
func (a *authUseCaseWithMetrics) Login(
	ctx context.Context,
	input *authDomain.LoginInput,
) (*authDomain.IssuedToken, error) {
	start := time.Now()
	output, err := a.next.Login(ctx, input)
	a.record(ctx, "login", start, err)
	return output, err
}

// Logout records metrics for logout operations.
func (a *authUseCaseWithMetrics) Logout(ctx context.Context, token string) error {
	start := time.Now()
	err := a.next.Logout(ctx, token)
	a.record(ctx, "logout", start, err)
	return err
}

// Refresh records metrics for refresh operations.
func (a *authUseCaseWithMetrics) Refresh(
	ctx context.Context,
	token string,
	principal authDomain.Principal,
) (*authDomain.IssuedToken, error) {
	start := time.Now()
	output, err := a.next.Refresh(ctx, token, principal)
	a.record(ctx, "refresh", start, err)
	return output, err
}

func (a *authUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := metricStatus(err)
	a.metrics.RecordOperation(ctx, "auth", operation, status)
	a.metrics.RecordDuration(ctx, "auth", operation, time.Since(start), status)
}

// authenticationGateWithMetrics decorates AuthenticationGate with metrics instrumentation.
type authenticationGateWithMetrics struct {
	next    AuthenticationGate
	metrics metrics.BusinessMetrics
}

// NewAuthenticationGateWithMetrics wraps an AuthenticationGate with metrics recording.
func NewAuthenticationGateWithMetrics(gate AuthenticationGate, m metrics.BusinessMetrics) AuthenticationGate {
	return &authenticationGateWithMetrics{
		next:    gate,
		metrics: m,
	}
}

// Authenticate records metrics for gate decisions.
func (g *authenticationGateWithMetrics) Authenticate(
	ctx context.Context,
	authorizationHeader string,
) (*authDomain.Authentication, error) {
	start := time.Now()
	authentication, err := g.next.Authenticate(ctx, authorizationHeader)

	status := metricStatus(err)
	g.metrics.RecordOperation(ctx, "auth", "gate_authenticate", status)
	g.metrics.RecordDuration(ctx, "auth", "gate_authenticate", time.Since(start), status)

	return authentication, err
}

// userUseCaseWithMetrics decorates UserUseCase with metrics instrumentation.
type userUseCaseWithMetrics struct {
	next    UserUseCase
	metrics metrics.BusinessMetrics
}

// NewUserUseCaseWithMetrics wraps a UserUseCase with metrics recording.
func NewUserUseCaseWithMetrics(useCase UserUseCase, m metrics.BusinessMetrics) UserUseCase {
	return &userUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// Authenticate records metrics for credential checks.
func (u *userUseCaseWithMetrics) Authenticate(
	ctx context.Context,
	input *authDomain.LoginInput,
) (*authDomain.Principal, error) {
	start := time.Now()
	principal, err := u.next.Authenticate(ctx, input)
	u.record(ctx, "user_authenticate", start, err)
	return principal, err
}

// Create records metrics for user creation operations.
func (u *userUseCaseWithMetrics) Create(
	ctx context.Context,
	input *authDomain.CreateUserInput,
) (*authDomain.CreateUserOutput, error) {
	start := time.Now()
	output, err := u.next.Create(ctx, input)
	u.record(ctx, "user_create", start, err)
	return output, err
}

// Unlock records metrics for user unlock operations.
func (u *userUseCaseWithMetrics) Unlock(ctx context.Context, username string) error {
	start := time.Now()
	err := u.next.Unlock(ctx, username)
	u.record(ctx, "user_unlock", start, err)
	return err
}

func (u *userUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := metricStatus(err)
	u.metrics.RecordOperation(ctx, "auth", operation, status)
	u.metrics.RecordDuration(ctx, "auth", operation, time.Since(start), status)
}

// metricStatus is "success" or the failure reason label.
func metricStatus(err error) string {
	if err == nil {
		return "success"
	}
	return authDomain.FailureReason(err)
}
