package app

import (
	"fmt"
	"log/slog"
	"sync"

	authHTTP "github.com/allisson/authgate/internal/auth/http"
	authRepository "github.com/allisson/authgate/internal/auth/repository"
	authService "github.com/allisson/authgate/internal/auth/service"
	authUseCase "github.com/allisson/authgate/internal/auth/usecase"
)

// authComponents groups the token lifecycle dependencies held by the Container.
type authComponents struct {
	keyPair            *authService.KeyPair
	tokenCodec         authService.TokenCodec
	roleCatalog        authService.RoleCatalog
	passwordService    authService.PasswordService
	kmsService         authService.KMSService
	userRepository     authUseCase.UserRepository
	userUseCase        authUseCase.UserUseCase
	authUseCase        authUseCase.AuthUseCase
	authenticationGate authUseCase.AuthenticationGate
	authHandler        *authHTTP.AuthHandler

	keyPairInit            sync.Once
	tokenCodecInit         sync.Once
	roleCatalogInit        sync.Once
	passwordServiceInit    sync.Once
	kmsServiceInit         sync.Once
	userRepositoryInit     sync.Once
	userUseCaseInit        sync.Once
	authUseCaseInit        sync.Once
	authenticationGateInit sync.Once
	authHandlerInit        sync.Once
}

// PasswordService returns the argon2id password service.
func (c *Container) PasswordService() authService.PasswordService {
	c.passwordServiceInit.Do(func() {
		c.passwordService = authService.NewPasswordService()
	})
	return c.passwordService
}

// KMSService returns the service used to open KMS keepers for wrapped private keys.
func (c *Container) KMSService() authService.KMSService {
	c.kmsServiceInit.Do(func() {
		c.kmsService = authService.NewKMSService()
	})
	return c.kmsService
}

// KeyPair loads the signing key pair once. Failures wrap domain.ErrKeyLoadFailure and
// must stop the process.
func (c *Container) KeyPair() (*authService.KeyPair, error) {
	err := c.once(&c.keyPairInit, "keyPair", func() (err error) {
		c.keyPair, err = c.initKeyPair()
		return err
	})
	if err != nil {
		return nil, err
	}
	return c.keyPair, nil
}

// RoleCatalog returns the immutable role to permission catalog.
func (c *Container) RoleCatalog() (authService.RoleCatalog, error) {
	err := c.once(&c.roleCatalogInit, "roleCatalog", func() (err error) {
		c.roleCatalog, err = authService.ParseRoleCatalog(c.config.AuthRolePermissions)
		if err != nil {
			return fmt.Errorf("failed to parse role catalog: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c.roleCatalog, nil
}

// TokenCodec returns the RS256 codec bound to the loaded key pair.
func (c *Container) TokenCodec() (authService.TokenCodec, error) {
	err := c.once(&c.tokenCodecInit, "tokenCodec", func() error {
		keys, err := c.KeyPair()
		if err != nil {
			return err
		}
		c.tokenCodec = authService.NewTokenCodec(keys, authService.WithIssuer(c.config.AuthTokenIssuer))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c.tokenCodec, nil
}

// UserRepository returns the user repository for the configured driver.
func (c *Container) UserRepository() (authUseCase.UserRepository, error) {
	err := c.once(&c.userRepositoryInit, "userRepository", func() (err error) {
		c.userRepository, err = c.initUserRepository()
		return err
	})
	if err != nil {
		return nil, err
	}
	return c.userRepository, nil
}

// UserUseCase returns the credential store use case, instrumented with business metrics.
func (c *Container) UserUseCase() (authUseCase.UserUseCase, error) {
	err := c.once(&c.userUseCaseInit, "userUseCase", func() (err error) {
		c.userUseCase, err = c.initUserUseCase()
		return err
	})
	if err != nil {
		return nil, err
	}
	return c.userUseCase, nil
}

// AuthUseCase returns the login/logout/refresh use case, instrumented with business metrics.
func (c *Container) AuthUseCase() (authUseCase.AuthUseCase, error) {
	err := c.once(&c.authUseCaseInit, "authUseCase", func() (err error) {
		c.authUseCase, err = c.initAuthUseCase()
		return err
	})
	if err != nil {
		return nil, err
	}
	return c.authUseCase, nil
}

// AuthenticationGate returns the per-request gate, instrumented with business metrics.
func (c *Container) AuthenticationGate() (authUseCase.AuthenticationGate, error) {
	err := c.once(&c.authenticationGateInit, "authenticationGate", func() (err error) {
		c.authenticationGate, err = c.initAuthenticationGate()
		return err
	})
	if err != nil {
		return nil, err
	}
	return c.authenticationGate, nil
}

// AuthHandler returns the HTTP handler for the token lifecycle.
func (c *Container) AuthHandler() (*authHTTP.AuthHandler, error) {
	err := c.once(&c.authHandlerInit, "authHandler", func() error {
		useCase, err := c.AuthUseCase()
		if err != nil {
			return fmt.Errorf("failed to get auth use case for auth handler: %w", err)
		}
		c.authHandler = authHTTP.NewAuthHandler(useCase, c.Logger())
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c.authHandler, nil
}

// initKeyPair reads the PEM files, unwrapping the private key through KMS when
// AUTH_KEY_KMS_URI is set.
func (c *Container) initKeyPair() (*authService.KeyPair, error) {
	var opts []authService.KeyOption

	if c.config.AuthKeyKMSURI != "" {
		keeper, err := c.KMSService().OpenKeeper(c.ctx, c.config.AuthKeyKMSURI)
		if err != nil {
			return nil, fmt.Errorf("failed to open kms keeper: %w", err)
		}
		defer func() {
			if closeErr := keeper.Close(); closeErr != nil {
				c.Logger().Warn("failed to close kms keeper", slog.Any("error", closeErr))
			}
		}()
		opts = append(opts, authService.WithKeyDecrypter(keeper))
	}

	keys, err := authService.LoadKeyPair(c.ctx, c.config.AuthPrivateKeyPath, c.config.AuthPublicKeyPath, opts...)
	if err != nil {
		return nil, err
	}

	c.Logger().Info("signing key pair loaded",
		slog.Int("bits", keys.PublicKey().N.BitLen()),
		slog.Bool("kms", c.config.AuthKeyKMSURI != ""))

	return keys, nil
}

func (c *Container) initUserRepository() (authUseCase.UserRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for user repository: %w", err)
	}

	switch c.config.DBDriver {
	case "mysql":
		return authRepository.NewMySQLUserRepository(db), nil
	case "postgres":
		return authRepository.NewPostgreSQLUserRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

func (c *Container) initUserUseCase() (authUseCase.UserUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for user use case: %w", err)
	}

	userRepository, err := c.UserRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get user repository for user use case: %w", err)
	}

	catalog, err := c.RoleCatalog()
	if err != nil {
		return nil, err
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, err
	}

	useCase := authUseCase.NewUserUseCase(c.config, txManager, userRepository, c.PasswordService(), catalog)
	return authUseCase.NewUserUseCaseWithMetrics(useCase, businessMetrics), nil
}

func (c *Container) initAuthUseCase() (authUseCase.AuthUseCase, error) {
	userUseCase, err := c.UserUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get user use case for auth use case: %w", err)
	}

	codec, err := c.TokenCodec()
	if err != nil {
		return nil, err
	}

	store, err := c.SessionStore()
	if err != nil {
		return nil, err
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, err
	}

	useCase := authUseCase.NewAuthUseCase(c.config, userUseCase, codec, store)
	return authUseCase.NewAuthUseCaseWithMetrics(useCase, businessMetrics), nil
}

func (c *Container) initAuthenticationGate() (authUseCase.AuthenticationGate, error) {
	codec, err := c.TokenCodec()
	if err != nil {
		return nil, err
	}

	store, err := c.SessionStore()
	if err != nil {
		return nil, err
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, err
	}

	gate := authUseCase.NewAuthenticationGate(codec, store)
	return authUseCase.NewAuthenticationGateWithMetrics(gate, businessMetrics), nil
}
