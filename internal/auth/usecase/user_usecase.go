package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	authDomain "github.com/allisson/authgate/internal/auth/domain"
	authService "github.com/allisson/authgate/internal/auth/service"
	"github.com/allisson/authgate/internal/config"
	"github.com/allisson/authgate/internal/database"
	customValidation "github.com/allisson/authgate/internal/validation"
)

// dummyPassword feeds the hash compared for unknown users so a miss costs the same as a
// wrong password.
const dummyPassword = "authgate-timing-equalizer"

// userUseCase implements UserUseCase on top of a SQL user table.
type userUseCase struct {
	txManager       database.TxManager
	userRepo        UserRepository
	passwordService authService.PasswordService
	roleCatalog     authService.RoleCatalog
	maxAttempts     int
	lockoutDuration time.Duration
	now             func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

// Authenticate verifies the credentials inside one transaction holding the user row lock,
// so concurrent failures for the same username are counted exactly once each.
//
// Reaching LockoutMaxAttempts consecutive failures opens a lockout window of
// LockoutDuration and resets the counter. A successful login clears the counter.
func (u *userUseCase) Authenticate(
	ctx context.Context,
	input *authDomain.LoginInput,
) (*authDomain.Principal, error) {
	var (
		principal *authDomain.Principal
		authErr   error
	)

	err := u.txManager.WithTx(ctx, func(ctx context.Context) error {
		user, err := u.userRepo.GetByUsernameForUpdate(ctx, input.Username)
		if err != nil {
			if errors.Is(err, authDomain.ErrUserNotFound) {
				u.passwordService.ComparePassword(input.Password, u.timingHash())
				authErr = authDomain.ErrInvalidCredentials
				return nil
			}
			return err
		}

		now := u.now().UTC()

		if !user.IsActive {
			u.passwordService.ComparePassword(input.Password, u.timingHash())
			authErr = authDomain.ErrInvalidCredentials
			return nil
		}

		if user.IsLocked(now) {
			authErr = authDomain.ErrUserLocked
			return nil
		}

		if !u.passwordService.ComparePassword(input.Password, user.PasswordHash) {
			user.FailedAttempts++
			if u.maxAttempts > 0 && user.FailedAttempts >= u.maxAttempts {
				lockedUntil := now.Add(u.lockoutDuration)
				user.LockedUntil = &lockedUntil
				user.FailedAttempts = 0
			}
			user.UpdatedAt = now
			authErr = authDomain.ErrInvalidCredentials
			// The counter must survive the rejection, so the transaction commits.
			return u.userRepo.Update(ctx, user)
		}

		permissions, err := u.roleCatalog.Resolve(user.Role)
		if err != nil {
			return fmt.Errorf("user %s holds role %q outside the catalog", user.Username, user.Role)
		}

		if user.FailedAttempts > 0 || user.LockedUntil != nil {
			user.FailedAttempts = 0
			user.LockedUntil = nil
			user.UpdatedAt = now
			if err := u.userRepo.Update(ctx, user); err != nil {
				return err
			}
		}

		p := authDomain.NewPrincipal(user.Username, user.Role, permissions)
		principal = &p
		return nil
	})
	if err != nil {
		return nil, err
	}
	if authErr != nil {
		return nil, authErr
	}

	return principal, nil
}

// Create validates and stores a new user.
func (u *userUseCase) Create(
	ctx context.Context,
	input *authDomain.CreateUserInput,
) (*authDomain.CreateUserOutput, error) {
	err := validation.Errors{
		"username": validation.Validate(
			input.Username,
			validation.Required,
			customValidation.Username,
		),
		"password": validation.Validate(
			input.Password,
			validation.When(
				input.Password != "",
				customValidation.NoWhitespace,
				customValidation.DefaultPasswordStrength,
			),
		),
		"role": validation.Validate(string(input.Role), validation.Required),
	}.Filter()
	if err != nil {
		return nil, customValidation.WrapValidationError(err)
	}

	if _, err := u.roleCatalog.Resolve(input.Role); err != nil {
		return nil, err
	}

	output := &authDomain.CreateUserOutput{
		ID:       uuid.Must(uuid.NewV7()),
		Username: input.Username,
		Role:     input.Role,
	}

	var passwordHash string
	if input.Password == "" {
		output.PlainPassword, passwordHash, err = u.passwordService.GeneratePassword()
	} else {
		passwordHash, err = u.passwordService.HashPassword(input.Password)
	}
	if err != nil {
		return nil, err
	}

	now := u.now().UTC()
	user := &authDomain.User{
		ID:           output.ID,
		Username:     input.Username,
		PasswordHash: passwordHash,
		Role:         input.Role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := u.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	return output, nil
}

// Unlock clears the lockout state of a user.
func (u *userUseCase) Unlock(ctx context.Context, username string) error {
	return u.txManager.WithTx(ctx, func(ctx context.Context) error {
		user, err := u.userRepo.GetByUsernameForUpdate(ctx, username)
		if err != nil {
			return err
		}

		user.FailedAttempts = 0
		user.LockedUntil = nil
		user.UpdatedAt = u.now().UTC()
		return u.userRepo.Update(ctx, user)
	})
}

// timingHash lazily hashes dummyPassword with the configured policy.
func (u *userUseCase) timingHash() string {
	u.dummyOnce.Do(func() {
		hash, err := u.passwordService.HashPassword(dummyPassword)
		if err == nil {
			u.dummyHash = hash
		}
	})
	return u.dummyHash
}

// NewUserUseCase creates a new UserUseCase with the provided dependencies.
func NewUserUseCase(
	cfg *config.Config,
	txManager database.TxManager,
	userRepo UserRepository,
	passwordService authService.PasswordService,
	roleCatalog authService.RoleCatalog,
) UserUseCase {
	return &userUseCase{
		txManager:       txManager,
		userRepo:        userRepo,
		passwordService: passwordService,
		roleCatalog:     roleCatalog,
		maxAttempts:     cfg.LockoutMaxAttempts,
		lockoutDuration: cfg.LockoutDuration,
		now:             time.Now,
	}
}
