package commands

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRunMigrations(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("invalid-driver", func(t *testing.T) {
		err := RunMigrations(logger, "invalid", "postgres://localhost")
		require.Error(t, err)
		require.Contains(t, err.Error(), "failed to create migrate instance")
	})

	t.Run("invalid-connection-string", func(t *testing.T) {
		err := RunMigrations(logger, "postgres", "invalid-connection-string")
		require.Error(t, err)
		require.Contains(t, err.Error(), "failed to create migrate instance")
	})

	t.Run("mysql-without-scheme", func(t *testing.T) {
		err := RunMigrations(logger, "mysql", "user:password@tcp(127.0.0.1:1)/authgate")
		require.Error(t, err)
		require.Contains(t, err.Error(), "failed to create migrate instance")
	})
}
