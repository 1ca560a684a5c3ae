package commands

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"strings"

	authDomain "github.com/allisson/authgate/internal/auth/domain"
	authUseCase "github.com/allisson/authgate/internal/auth/usecase"
)

// createUserResult is the JSON output of RunCreateUser.
type createUserResult struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	Password string `json:"password,omitempty"`
}

// RunCreateUser provisions a login user. Without promptPassword a random password is
// generated and printed once; with it the password is read from io.Reader.
//
// Requirements: Database must be migrated and accessible.
func RunCreateUser(
	ctx context.Context,
	userUseCase authUseCase.UserUseCase,
	logger *slog.Logger,
	username string,
	role string,
	promptPassword bool,
	format string,
	io IOTuple,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	input := &authDomain.CreateUserInput{
		Username: strings.TrimSpace(username),
		Role:     authDomain.Role(strings.TrimSpace(role)),
	}

	if promptPassword {
		password, err := readPassword(io)
		if err != nil {
			return err
		}
		input.Password = password
	}

	logger.Info("creating user", slog.String("username", input.Username), slog.String("role", string(input.Role)))

	output, err := userUseCase.Create(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	result := createUserResult{
		ID:       output.ID.String(),
		Username: output.Username,
		Role:     string(output.Role),
		Password: output.PlainPassword,
	}

	if format == "json" {
		if err := writeJSON(io.Writer, result); err != nil {
			return err
		}
	} else {
		_, _ = fmt.Fprintln(io.Writer, "User created successfully")
		_, _ = fmt.Fprintf(io.Writer, "ID:       %s\n", result.ID)
		_, _ = fmt.Fprintf(io.Writer, "Username: %s\n", result.Username)
		_, _ = fmt.Fprintf(io.Writer, "Role:     %s\n", result.Role)
		if result.Password != "" {
			_, _ = fmt.Fprintf(io.Writer, "Password: %s\n", result.Password)
			_, _ = fmt.Fprintln(io.Writer, "\nWARNING: store this password now, it cannot be retrieved later.")
		}
	}

	logger.Info("user created", slog.String("user_id", result.ID), slog.String("username", result.Username))
	return nil
}

// readPassword reads one line from io.Reader as the password.
func readPassword(io IOTuple) (string, error) {
	_, _ = fmt.Fprint(io.Writer, "Enter password: ")

	line, err := bufio.NewReader(io.Reader).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return "", fmt.Errorf("password cannot be empty")
	}
	_, _ = fmt.Fprintln(io.Writer)
	return password, nil
}
