package database

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db, mock
}

func TestNewTxManager(t *testing.T) {
	db, _ := newMockDB(t)

	txManager := NewTxManager(db)
	assert.NotNil(t, txManager)
	assert.IsType(t, &sqlTxManager{}, txManager)
}

func TestWithTx_Commit(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE users").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := NewTxManager(db).WithTx(context.Background(), func(ctx context.Context) error {
		querier := GetTx(ctx, db)
		assert.IsType(t, &sql.Tx{}, querier)
		_, err := querier.ExecContext(ctx, "UPDATE users SET failed_attempts = 0")
		return err
	})

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTx_RollbackOnError(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	testError := assert.AnError
	err := NewTxManager(db).WithTx(context.Background(), func(ctx context.Context) error {
		return testError
	})

	assert.Equal(t, testError, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTx_RollbackFailureIsJoined(t *testing.T) {
	db, mock := newMockDB(t)
	rollbackErr := errors.New("connection reset")
	mock.ExpectBegin()
	mock.ExpectRollback().WillReturnError(rollbackErr)

	err := NewTxManager(db).WithTx(context.Background(), func(ctx context.Context) error {
		return assert.AnError
	})

	assert.ErrorIs(t, err, assert.AnError)
	assert.ErrorIs(t, err, rollbackErr)
}

func TestWithTx_BeginError(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin().WillReturnError(assert.AnError)

	called := false
	err := NewTxManager(db).WithTx(context.Background(), func(ctx context.Context) error {
		called = true
		return nil
	})

	assert.ErrorIs(t, err, assert.AnError)
	assert.False(t, called)
}

func TestWithTx_NestedJoinsOuter(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	txManager := NewTxManager(db)
	err := txManager.WithTx(context.Background(), func(outer context.Context) error {
		return txManager.WithTx(outer, func(inner context.Context) error {
			assert.Same(t, GetTx(outer, db), GetTx(inner, db))
			return nil
		})
	})

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetTx_WithoutTransaction(t *testing.T) {
	db, _ := newMockDB(t)
	assert.Same(t, db, GetTx(context.Background(), db))
}
