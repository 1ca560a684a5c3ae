// Package app provides dependency injection container for assembling application components.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/redis/go-redis/v9"

	authRepository "github.com/allisson/authgate/internal/auth/repository"
	"github.com/allisson/authgate/internal/config"
	"github.com/allisson/authgate/internal/database"
	"github.com/allisson/authgate/internal/http"
	"github.com/allisson/authgate/internal/metrics"
)

// Container holds all application dependencies and provides methods to access them.
// Components are created on first access and shared afterwards.
type Container struct {
	config *config.Config

	// ctx bounds background goroutines owned by components (rate limiter cleanup).
	ctx    context.Context
	cancel context.CancelFunc

	// Infrastructure
	logger          *slog.Logger
	db              *sql.DB
	redisClient     *redis.Client
	metricsProvider *metrics.Provider
	businessMetrics metrics.BusinessMetrics

	// Managers
	txManager database.TxManager

	// Repositories
	sessionStore *authRepository.RedisSessionStore

	// Servers
	httpServer    *http.Server
	metricsServer *http.MetricsServer

	authComponents

	// Initialization flags and mutex for thread-safety
	mu                  sync.Mutex
	loggerInit          sync.Once
	dbInit              sync.Once
	redisInit           sync.Once
	metricsProviderInit sync.Once
	businessMetricsInit sync.Once
	txManagerInit       sync.Once
	sessionStoreInit    sync.Once
	httpServerInit      sync.Once
	metricsServerInit   sync.Once
	initErrors          map[string]error
}

// NewContainer creates a new dependency injection container with the provided configuration.
func NewContainer(cfg *config.Config) *Container {
	ctx, cancel := context.WithCancel(context.Background())
	return &Container{
		config:     cfg,
		ctx:        ctx,
		cancel:     cancel,
		initErrors: make(map[string]error),
	}
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger returns the configured logger instance.
func (c *Container) Logger() *slog.Logger {
	c.loggerInit.Do(func() {
		c.logger = c.initLogger()
	})
	return c.logger
}

// once runs init under the given sync.Once and remembers its error under name.
func (c *Container) once(o *sync.Once, name string, init func() error) error {
	o.Do(func() {
		if err := init(); err != nil {
			c.mu.Lock()
			c.initErrors[name] = err
			c.mu.Unlock()
		}
	})
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.initErrors[name]
}

// DB returns the user database connection.
func (c *Container) DB() (*sql.DB, error) {
	err := c.once(&c.dbInit, "db", func() (err error) {
		c.db, err = c.initDB()
		return err
	})
	if err != nil {
		return nil, err
	}
	return c.db, nil
}

// RedisClient returns the session store connection.
func (c *Container) RedisClient() (*redis.Client, error) {
	err := c.once(&c.redisInit, "redis", func() (err error) {
		c.redisClient, err = c.initRedisClient()
		return err
	})
	if err != nil {
		return nil, err
	}
	return c.redisClient, nil
}

// TxManager returns the transaction manager.
func (c *Container) TxManager() (database.TxManager, error) {
	err := c.once(&c.txManagerInit, "txManager", func() error {
		db, err := c.DB()
		if err != nil {
			return fmt.Errorf("failed to get database for tx manager: %w", err)
		}
		c.txManager = database.NewTxManager(db)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c.txManager, nil
}

// SessionStore returns the Redis backed session store.
func (c *Container) SessionStore() (*authRepository.RedisSessionStore, error) {
	err := c.once(&c.sessionStoreInit, "sessionStore", func() error {
		client, err := c.RedisClient()
		if err != nil {
			return fmt.Errorf("failed to get redis client for session store: %w", err)
		}
		c.sessionStore = authRepository.NewRedisSessionStore(client, c.config.RedisKeyPrefix)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c.sessionStore, nil
}

// MetricsProvider returns the metrics provider, or nil when metrics are disabled.
func (c *Container) MetricsProvider() (*metrics.Provider, error) {
	err := c.once(&c.metricsProviderInit, "metricsProvider", func() error {
		if !c.config.MetricsEnabled {
			return nil
		}
		provider, err := metrics.NewProvider(c.config.MetricsNamespace)
		if err != nil {
			return fmt.Errorf("failed to create metrics provider: %w", err)
		}
		c.metricsProvider = provider
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c.metricsProvider, nil
}

// BusinessMetrics returns the business metrics recorder. It is a no-op when metrics are disabled.
func (c *Container) BusinessMetrics() (metrics.BusinessMetrics, error) {
	err := c.once(&c.businessMetricsInit, "businessMetrics", func() error {
		provider, err := c.MetricsProvider()
		if err != nil {
			return err
		}
		if provider == nil {
			c.businessMetrics = metrics.NewNoOpBusinessMetrics()
			return nil
		}
		bm, err := metrics.NewBusinessMetrics(provider.MeterProvider(), c.config.MetricsNamespace)
		if err != nil {
			return fmt.Errorf("failed to create business metrics: %w", err)
		}
		c.businessMetrics = bm
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c.businessMetrics, nil
}

// HTTPServer returns the API server with its router configured.
func (c *Container) HTTPServer() (*http.Server, error) {
	err := c.once(&c.httpServerInit, "httpServer", func() (err error) {
		c.httpServer, err = c.initHTTPServer()
		return err
	})
	if err != nil {
		return nil, err
	}
	return c.httpServer, nil
}

// MetricsServer returns the metrics server, or nil when metrics are disabled.
func (c *Container) MetricsServer() (*http.MetricsServer, error) {
	err := c.once(&c.metricsServerInit, "metricsServer", func() error {
		provider, err := c.MetricsProvider()
		if err != nil {
			return err
		}
		if provider == nil {
			return nil
		}
		c.metricsServer = http.NewMetricsServer(c.config.ServerHost, c.config.MetricsPort, c.Logger(), provider)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c.metricsServer, nil
}

// Shutdown releases every initialized resource. Servers must be stopped by the caller.
func (c *Container) Shutdown(ctx context.Context) error {
	c.cancel()

	c.mu.Lock()
	defer c.mu.Unlock()

	var shutdownErrors []error

	if c.metricsProvider != nil {
		if err := c.metricsProvider.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics provider shutdown: %w", err))
		}
	}

	if c.redisClient != nil {
		if err := c.redisClient.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("redis close: %w", err))
		}
	}

	if c.db != nil {
		if err := c.db.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("database close: %w", err))
		}
	}

	return errors.Join(shutdownErrors...)
}

// initLogger creates a JSON logger at the configured level, defaulting to info.
func (c *Container) initLogger() *slog.Logger {
	var logLevel slog.Level
	switch c.config.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
}

func (c *Container) initDB() (*sql.DB, error) {
	db, err := database.Connect(c.ctx, database.Config{
		Driver:             c.config.DBDriver,
		ConnectionString:   c.config.DBConnectionString,
		MaxOpenConnections: c.config.DBMaxOpenConnections,
		MaxIdleConnections: c.config.DBMaxIdleConnections,
		ConnMaxLifetime:    c.config.DBConnMaxLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

func (c *Container) initRedisClient() (*redis.Client, error) {
	client, err := database.ConnectRedis(c.ctx, database.RedisConfig{
		Addr:       c.config.RedisAddr,
		Password:   c.config.RedisPassword,
		DB:         c.config.RedisDB,
		TLSEnabled: c.config.RedisTLSEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to session store: %w", err)
	}
	return client, nil
}

func (c *Container) initHTTPServer() (*http.Server, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for http server: %w", err)
	}

	store, err := c.SessionStore()
	if err != nil {
		return nil, fmt.Errorf("failed to get session store for http server: %w", err)
	}

	authHandler, err := c.AuthHandler()
	if err != nil {
		return nil, fmt.Errorf("failed to get auth handler for http server: %w", err)
	}

	gate, err := c.AuthenticationGate()
	if err != nil {
		return nil, fmt.Errorf("failed to get authentication gate for http server: %w", err)
	}

	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for http server: %w", err)
	}

	server := http.NewServer(db, store, c.config.ServerHost, c.config.ServerPort, c.Logger())
	server.SetupRouter(c.ctx, c.config, authHandler, gate, provider)

	return server, nil
}
