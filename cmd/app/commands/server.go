package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/allisson/authgate/internal/app"
	authDomain "github.com/allisson/authgate/internal/auth/domain"
	"github.com/allisson/authgate/internal/config"
)

const shutdownTimeout = 15 * time.Second

// runnable is implemented by the API and metrics servers.
type runnable interface {
	Start(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// RunServer starts the API server and, when enabled, the metrics server.
//
// The signing key pair is loaded before any listener opens; a key load failure
// aborts startup. Blocks until SIGINT/SIGTERM or until one server fails, then shuts
// every server down within shutdownTimeout.
func RunServer(ctx context.Context, version string) error {
	cfg := config.Load()
	container := app.NewContainer(cfg)

	logger := container.Logger()
	logger.Info("starting server", slog.String("version", version))

	defer closeContainer(container, logger)

	if _, err := container.KeyPair(); err != nil {
		if errors.Is(err, authDomain.ErrKeyLoadFailure) {
			logger.Error("cannot start without a signing key pair", slog.Any("error", err))
		}
		return fmt.Errorf("failed to load signing keys: %w", err)
	}

	server, err := container.HTTPServer()
	if err != nil {
		return fmt.Errorf("failed to initialize HTTP server: %w", err)
	}

	servers := map[string]runnable{"api": server}

	metricsServer, err := container.MetricsServer()
	if err != nil {
		return fmt.Errorf("failed to initialize metrics server: %w", err)
	}
	if metricsServer != nil {
		servers["metrics"] = metricsServer
	}

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	return serve(ctx, logger, servers)
}

// serve runs every server until ctx is done or one of them fails, then shuts all of
// them down.
func serve(ctx context.Context, logger *slog.Logger, servers map[string]runnable) error {
	group, groupCtx := errgroup.WithContext(ctx)

	for name, srv := range servers {
		group.Go(func() error {
			if err := srv.Start(groupCtx); err != nil {
				return fmt.Errorf("%s server error: %w", name, err)
			}
			return nil
		})
	}

	group.Go(func() error {
		<-groupCtx.Done()
		logger.Info("shutdown initiated")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()

		var shutdownErrors []error
		for name, srv := range servers {
			if err := srv.Shutdown(shutdownCtx); err != nil {
				shutdownErrors = append(shutdownErrors, fmt.Errorf("%s server shutdown: %w", name, err))
			}
		}
		return errors.Join(shutdownErrors...)
	})

	return group.Wait()
}
