package repository

import (
	"context"
	"database/sql"
	"errors"

	authDomain "github.com/allisson/authgate/internal/auth/domain"
	"github.com/allisson/authgate/internal/database"
	apperrors "github.com/allisson/authgate/internal/errors"
)

// MySQLUserRepository implements User persistence for MySQL using BINARY(16) for UUIDs.
type MySQLUserRepository struct {
	db *sql.DB
}

// Create inserts a new User. Returns ErrUserAlreadyExists on a duplicate username.
func (m *MySQLUserRepository) Create(ctx context.Context, user *authDomain.User) error {
	querier := database.GetTx(ctx, m.db)

	id, err := user.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal user id")
	}

	query := `INSERT INTO users (` + userColumnList + `)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
		user.Username,
		user.PasswordHash,
		string(user.Role),
		user.IsActive,
		user.FailedAttempts,
		user.LockedUntil,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if isMySQLUniqueViolation(err) {
			return authDomain.ErrUserAlreadyExists
		}
		return apperrors.Wrap(err, "failed to create user")
	}
	return nil
}

// Update modifies an existing User identified by ID.
//
// MySQL reports zero affected rows when the values are unchanged, so a missing user
// is not detected here.
func (m *MySQLUserRepository) Update(ctx context.Context, user *authDomain.User) error {
	querier := database.GetTx(ctx, m.db)

	id, err := user.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal user id")
	}

	query := `UPDATE users
			  SET password_hash = ?,
				  role = ?,
				  is_active = ?,
				  failed_attempts = ?,
				  locked_until = ?,
				  updated_at = ?
			  WHERE id = ?`

	_, err = querier.ExecContext(
		ctx,
		query,
		user.PasswordHash,
		string(user.Role),
		user.IsActive,
		user.FailedAttempts,
		user.LockedUntil,
		user.UpdatedAt,
		id,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update user")
	}
	return nil
}

// GetByUsername retrieves a User by username.
func (m *MySQLUserRepository) GetByUsername(ctx context.Context, username string) (*authDomain.User, error) {
	return m.get(ctx, `SELECT `+userColumnList+` FROM users WHERE username = ?`, username)
}

// GetByUsernameForUpdate retrieves a User and locks its row until the surrounding
// transaction ends.
func (m *MySQLUserRepository) GetByUsernameForUpdate(
	ctx context.Context,
	username string,
) (*authDomain.User, error) {
	return m.get(ctx, `SELECT `+userColumnList+` FROM users WHERE username = ? FOR UPDATE`, username)
}

func (m *MySQLUserRepository) get(ctx context.Context, query string, args ...any) (*authDomain.User, error) {
	querier := database.GetTx(ctx, m.db)

	var user authDomain.User
	var idBytes []byte

	err := querier.QueryRowContext(ctx, query, args...).Scan(
		&idBytes,
		&user.Username,
		&user.PasswordHash,
		&user.Role,
		&user.IsActive,
		&user.FailedAttempts,
		&user.LockedUntil,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, authDomain.ErrUserNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get user")
	}

	if err := user.ID.UnmarshalBinary(idBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal user id")
	}

	return &user, nil
}

// NewMySQLUserRepository creates a new MySQL User repository.
func NewMySQLUserRepository(db *sql.DB) *MySQLUserRepository {
	return &MySQLUserRepository{db: db}
}
