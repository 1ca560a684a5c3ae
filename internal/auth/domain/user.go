package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is the credential record consulted at login.
type User struct {
	ID             uuid.UUID
	Username       string
	PasswordHash   string
	Role           Role
	IsActive       bool
	FailedAttempts int
	LockedUntil    *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// IsLocked reports whether the account is inside a lockout window at now.
func (u *User) IsLocked(now time.Time) bool {
	return u.LockedUntil != nil && now.Before(*u.LockedUntil)
}

// CreateUserInput contains the parameters for provisioning a user.
type CreateUserInput struct {
	Username string
	Password string
	Role     Role
}

// CreateUserOutput is returned once after provisioning. PlainPassword is only set when
// the password was generated.
type CreateUserOutput struct {
	ID            uuid.UUID
	Username      string
	Role          Role
	PlainPassword string
}
