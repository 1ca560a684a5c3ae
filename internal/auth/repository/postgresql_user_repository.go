package repository

import (
	"context"
	"database/sql"
	"errors"

	authDomain "github.com/allisson/authgate/internal/auth/domain"
	"github.com/allisson/authgate/internal/database"
	apperrors "github.com/allisson/authgate/internal/errors"
)

const userColumnList = `id, username, password_hash, role, is_active, failed_attempts, locked_until, created_at, updated_at`

// PostgreSQLUserRepository implements User persistence for PostgreSQL.
type PostgreSQLUserRepository struct {
	db *sql.DB
}

// Create inserts a new User. Returns ErrUserAlreadyExists on a duplicate username.
func (p *PostgreSQLUserRepository) Create(ctx context.Context, user *authDomain.User) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO users (` + userColumnList + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := querier.ExecContext(
		ctx,
		query,
		user.ID,
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
		if isPostgreSQLUniqueViolation(err) {
			return authDomain.ErrUserAlreadyExists
		}
		return apperrors.Wrap(err, "failed to create user")
	}
	return nil
}

// Update modifies an existing User identified by ID.
func (p *PostgreSQLUserRepository) Update(ctx context.Context, user *authDomain.User) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE users
			  SET password_hash = $1,
				  role = $2,
				  is_active = $3,
				  failed_attempts = $4,
				  locked_until = $5,
				  updated_at = $6
			  WHERE id = $7`

	result, err := querier.ExecContext(
		ctx,
		query,
		user.PasswordHash,
		string(user.Role),
		user.IsActive,
		user.FailedAttempts,
		user.LockedUntil,
		user.UpdatedAt,
		user.ID,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update user")
	}

	return requireAffected(result)
}

// GetByUsername retrieves a User by username.
func (p *PostgreSQLUserRepository) GetByUsername(ctx context.Context, username string) (*authDomain.User, error) {
	return p.get(ctx, `SELECT `+userColumnList+` FROM users WHERE username = $1`, username)
}

// GetByUsernameForUpdate retrieves a User and locks its row until the surrounding
// transaction ends.
func (p *PostgreSQLUserRepository) GetByUsernameForUpdate(
	ctx context.Context,
	username string,
) (*authDomain.User, error) {
	return p.get(ctx, `SELECT `+userColumnList+` FROM users WHERE username = $1 FOR UPDATE`, username)
}

func (p *PostgreSQLUserRepository) get(ctx context.Context, query string, args ...any) (*authDomain.User, error) {
	querier := database.GetTx(ctx, p.db)

	var user authDomain.User
	err := querier.QueryRowContext(ctx, query, args...).Scan(
		&user.ID,
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

	return &user, nil
}

// NewPostgreSQLUserRepository creates a new PostgreSQL User repository.
func NewPostgreSQLUserRepository(db *sql.DB) *PostgreSQLUserRepository {
	return &PostgreSQLUserRepository{db: db}
}

func requireAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to read affected rows")
	}
	if affected == 0 {
		return authDomain.ErrUserNotFound
	}
	return nil
}
