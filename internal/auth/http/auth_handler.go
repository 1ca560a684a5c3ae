package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/allisson/authgate/internal/auth/http/dto"
	authUseCase "github.com/allisson/authgate/internal/auth/usecase"
	"github.com/allisson/authgate/internal/httputil"
	customValidation "github.com/allisson/authgate/internal/validation"
)

// AuthHandler handles HTTP requests for the token lifecycle.
type AuthHandler struct {
	authUseCase authUseCase.AuthUseCase
	logger      *slog.Logger
}

// NewAuthHandler creates a new auth handler with required dependencies.
func NewAuthHandler(authUseCase authUseCase.AuthUseCase, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authUseCase: authUseCase,
		logger:      logger,
	}
}

// LoginHandler exchanges credentials for an access token.
// POST /v1/auth/login - No authentication required.
// Returns 200 OK with the token, its type and its validity in seconds.
func (h *AuthHandler) LoginHandler(c *gin.Context) {
	var req dto.LoginRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	issued, err := h.authUseCase.Login(c.Request.Context(), req.ToLoginInput())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapIssuedTokenToResponse(issued))
}

// LogoutHandler revokes the presented token.
// POST /v1/auth/logout - Requires "Authorization: Bearer <token>". The session gate is
// not consulted, so logging out twice or after expiry still succeeds.
// Returns 204 No Content.
func (h *AuthHandler) LogoutHandler(c *gin.Context) {
	token, err := authUseCase.ParseBearerToken(c.GetHeader("Authorization"))
	if err != nil {
		h.logger.Debug("logout rejected", slog.String("reason", "missing_or_malformed_header"))
		httputil.AbortUnauthorizedGin(c)
		return
	}

	if err := h.authUseCase.Logout(c.Request.Context(), token); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}

// RefreshHandler revokes the presented token and issues a new one for the same principal.
// POST /v1/auth/refresh - Requires AuthenticationMiddleware.
// Returns 200 OK with the new token.
func (h *AuthHandler) RefreshHandler(c *gin.Context) {
	authentication, ok := GetAuthentication(c.Request.Context())
	if !ok {
		httputil.AbortUnauthorizedGin(c)
		return
	}

	issued, err := h.authUseCase.Refresh(
		c.Request.Context(),
		authentication.Token,
		authentication.Principal,
	)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapIssuedTokenToResponse(issued))
}

// MeHandler returns the principal snapshot embedded in the presented token.
// GET /v1/auth/me - Requires AuthenticationMiddleware.
func (h *AuthHandler) MeHandler(c *gin.Context) {
	authentication, ok := GetAuthentication(c.Request.Context())
	if !ok {
		httputil.AbortUnauthorizedGin(c)
		return
	}

	c.JSON(http.StatusOK, dto.MapAuthenticationToPrincipalResponse(authentication))
}
