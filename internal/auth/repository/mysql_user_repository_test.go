package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authDomain "github.com/allisson/authgate/internal/auth/domain"
)

func TestNewMySQLUserRepository(t *testing.T) {
	db, _ := newSQLMock(t)

	repo := NewMySQLUserRepository(db)
	assert.NotNil(t, repo)
	assert.IsType(t, &MySQLUserRepository{}, repo)
}

func TestMySQLUserRepository_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_StoresBinaryID", func(t *testing.T) {
		db, mock := newSQLMock(t)
		user := newTestUser()
		id, err := user.ID.MarshalBinary()
		require.NoError(t, err)

		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
			WithArgs(id, "alice", user.PasswordHash, "admin", true, 0, nil, user.CreatedAt, user.UpdatedAt).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err = NewMySQLUserRepository(db).Create(ctx, user)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Error_DuplicateUsername", func(t *testing.T) {
		db, mock := newSQLMock(t)

		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
			WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'alice'"})

		err := NewMySQLUserRepository(db).Create(ctx, newTestUser())
		assert.ErrorIs(t, err, authDomain.ErrUserAlreadyExists)
	})
}

func TestMySQLUserRepository_Update(t *testing.T) {
	db, mock := newSQLMock(t)
	user := newTestUser()
	user.FailedAttempts = 3
	id, err := user.ID.MarshalBinary()
	require.NoError(t, err)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users")).
		WithArgs(user.PasswordHash, "admin", true, 3, nil, user.UpdatedAt, id).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = NewMySQLUserRepository(db).Update(context.Background(), user)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLUserRepository_GetByUsername(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_DecodesBinaryID", func(t *testing.T) {
		db, mock := newSQLMock(t)
		user := newTestUser()
		id, err := user.ID.MarshalBinary()
		require.NoError(t, err)
		lockedUntil := user.UpdatedAt.Add(time.Minute)

		mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE username = ?")).
			WithArgs("alice").
			WillReturnRows(sqlmock.NewRows(userColumns).AddRow(
				id, user.Username, user.PasswordHash, "operator", true, 1, lockedUntil, user.CreatedAt, user.UpdatedAt,
			))

		got, err := NewMySQLUserRepository(db).GetByUsername(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
		assert.Equal(t, authDomain.RoleOperator, got.Role)
		require.NotNil(t, got.LockedUntil)
		assert.Equal(t, lockedUntil, *got.LockedUntil)
	})

	t.Run("Error_NotFound", func(t *testing.T) {
		db, mock := newSQLMock(t)

		mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE username = ? FOR UPDATE")).
			WillReturnRows(sqlmock.NewRows(userColumns))

		got, err := NewMySQLUserRepository(db).GetByUsernameForUpdate(ctx, "ghost")
		assert.Nil(t, got)
		assert.ErrorIs(t, err, authDomain.ErrUserNotFound)
	})

	t.Run("Error_InvalidBinaryID", func(t *testing.T) {
		db, mock := newSQLMock(t)
		user := newTestUser()

		mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE username = ?")).
			WillReturnRows(sqlmock.NewRows(userColumns).AddRow(
				[]byte{1, 2, 3}, user.Username, user.PasswordHash, "admin", true, 0, nil, user.CreatedAt, user.UpdatedAt,
			))

		_, err := NewMySQLUserRepository(db).GetByUsername(ctx, "alice")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to unmarshal user id")
	})
}
