package http

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	authDomain "github.com/allisson/authgate/internal/auth/domain"
	authUseCase "github.com/allisson/authgate/internal/auth/usecase"
	apperrors "github.com/allisson/authgate/internal/errors"
	"github.com/allisson/authgate/internal/httputil"
)

// AuthenticationMiddleware runs the authentication gate on the Authorization header.
//
// Every token failure (missing header, no session, revoked, malformed, bad signature,
// expired) produces the same 401 body; the reason is only logged at debug level.
// Session store failures produce a 500 and the request is rejected.
//
// Usage:
//
//	protected := router.Group("/v1/auth", AuthenticationMiddleware(gate, logger))
//	protected.GET("/me", func(c *gin.Context) {
//	    principal, _ := GetPrincipal(c.Request.Context())
//	    ...
//	})
func AuthenticationMiddleware(gate authUseCase.AuthenticationGate, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authentication, err := gate.Authenticate(c.Request.Context(), c.GetHeader("Authorization"))
		if err != nil {
			if apperrors.Is(err, apperrors.ErrUnauthorized) {
				logger.Debug("authentication failed",
					slog.String("reason", authDomain.FailureReason(err)),
					slog.String("path", c.FullPath()),
					slog.String("client_ip", c.ClientIP()))
				httputil.AbortUnauthorizedGin(c)
				return
			}
			httputil.HandleErrorGin(c, err, logger)
			c.Abort()
			return
		}

		ctx := WithAuthentication(c.Request.Context(), authentication)
		c.Request = c.Request.WithContext(ctx)

		logger.Debug("authentication successful",
			slog.String("subject", authentication.Principal.Subject),
			slog.String("role", string(authentication.Principal.Role)))

		c.Next()
	}
}

// RequirePermission allows the request only when the principal holds every listed
// permission. It must run after AuthenticationMiddleware.
//
// Error handling:
//   - No authentication in context → 401 Unauthorized
//   - Missing permission → 403 Forbidden
func RequirePermission(logger *slog.Logger, permissions ...authDomain.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := GetPrincipal(c.Request.Context())
		if !ok {
			logger.Debug("authorization failed: no authenticated principal in context")
			httputil.AbortUnauthorizedGin(c)
			return
		}

		for _, permission := range permissions {
			if !principal.HasPermission(permission) {
				logger.Debug("authorization failed: insufficient permissions",
					slog.String("subject", principal.Subject),
					slog.String("role", string(principal.Role)),
					slog.String("permission", string(permission)))
				httputil.HandleErrorGin(c, authDomain.ErrInsufficientPermission, logger)
				c.Abort()
				return
			}
		}

		c.Next()
	}
}
