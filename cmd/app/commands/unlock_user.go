package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	authUseCase "github.com/allisson/authgate/internal/auth/usecase"
)

// RunUnlockUser clears the failed login counter and lockout window of a user.
func RunUnlockUser(
	ctx context.Context,
	userUseCase authUseCase.UserUseCase,
	logger *slog.Logger,
	out io.Writer,
	username string,
) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return fmt.Errorf("username is required")
	}

	if err := userUseCase.Unlock(ctx, username); err != nil {
		return fmt.Errorf("failed to unlock user: %w", err)
	}

	_, _ = fmt.Fprintf(out, "User %s unlocked\n", username)
	logger.Info("user unlocked", slog.String("username", username))
	return nil
}
