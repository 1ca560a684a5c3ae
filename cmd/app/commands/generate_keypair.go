package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	authService "github.com/allisson/authgate/internal/auth/service"
)

// GenerateKeyPairOptions configures RunGenerateKeyPair.
type GenerateKeyPairOptions struct {
	Bits           int
	PrivateKeyPath string
	PublicKeyPath  string
	// KMSKeyURI, when set, wraps the private key with the KMS key before writing it.
	KMSKeyURI string
	Force     bool
}

// RunGenerateKeyPair creates an RSA signing key pair and writes it as PEM files.
//
// The private key file is written with 0600 permissions, optionally KMS-encrypted so it
// can be loaded with AUTH_KEY_KMS_URI. Existing files are kept unless opts.Force is set.
// The environment variables pointing at the new files are printed to out.
func RunGenerateKeyPair(
	ctx context.Context,
	kmsService authService.KMSService,
	logger *slog.Logger,
	out io.Writer,
	opts GenerateKeyPairOptions,
) error {
	if !opts.Force {
		for _, path := range []string{opts.PrivateKeyPath, opts.PublicKeyPath} {
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			} else if !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("failed to check %s: %w", path, err)
			}
		}
	}

	logger.Info("generating signing key pair", slog.Int("bits", opts.Bits))

	keys, err := authService.GenerateKeyPair(opts.Bits)
	if err != nil {
		return fmt.Errorf("failed to generate key pair: %w", err)
	}

	privatePEM, publicPEM, err := keys.EncodePEM()
	if err != nil {
		return fmt.Errorf("failed to encode key pair: %w", err)
	}

	if opts.KMSKeyURI != "" {
		keeper, err := kmsService.OpenKeeper(ctx, opts.KMSKeyURI)
		if err != nil {
			return err
		}
		defer func() {
			if closeErr := keeper.Close(); closeErr != nil {
				logger.Warn("failed to close KMS keeper", slog.Any("error", closeErr))
			}
		}()

		privatePEM, err = authService.EncryptPrivateKey(ctx, keeper, privatePEM)
		if err != nil {
			return err
		}
	}

	if err := writeKeyFile(opts.PrivateKeyPath, privatePEM, 0o600); err != nil {
		return err
	}
	if err := writeKeyFile(opts.PublicKeyPath, publicPEM, 0o644); err != nil {
		return err
	}

	_, _ = fmt.Fprintln(out, "# Signing key pair generated")
	_, _ = fmt.Fprintln(out, "# Copy these environment variables to your .env file")
	_, _ = fmt.Fprintln(out)
	_, _ = fmt.Fprintf(out, "AUTH_PRIVATE_KEY_PATH=\"%s\"\n", opts.PrivateKeyPath)
	_, _ = fmt.Fprintf(out, "AUTH_PUBLIC_KEY_PATH=\"%s\"\n", opts.PublicKeyPath)
	if opts.KMSKeyURI != "" {
		_, _ = fmt.Fprintf(out, "AUTH_KEY_KMS_URI=\"%s\"\n", opts.KMSKeyURI)
	}

	logger.Info("signing key pair written",
		slog.String("private_key_path", opts.PrivateKeyPath),
		slog.String("public_key_path", opts.PublicKeyPath),
		slog.Bool("kms", opts.KMSKeyURI != ""))

	return nil
}

func writeKeyFile(path string, data []byte, perm os.FileMode) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("failed to create directory for %s: %w", path, err)
		}
	}
	if err := os.WriteFile(path, data, perm); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
