// Package httputil provides HTTP utility functions for request and response handling.
package httputil

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/allisson/authgate/internal/errors"
)

// ErrorResponse represents a structured error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    string `json:"code,omitempty"`
}

// errorMapping binds a base sentinel to its response. Order matters: the first match wins.
type errorMapping struct {
	target     error
	statusCode int
	response   ErrorResponse
	// exposeMessage replaces the fixed message with err.Error().
	exposeMessage bool
}

var errorMappings = []errorMapping{
	{
		target:     apperrors.ErrNotFound,
		statusCode: http.StatusNotFound,
		response:   ErrorResponse{Error: "not_found", Message: "The requested resource was not found"},
	},
	{
		target:     apperrors.ErrConflict,
		statusCode: http.StatusConflict,
		response:   ErrorResponse{Error: "conflict", Message: "A conflict occurred with existing data"},
	},
	{
		target:        apperrors.ErrInvalidInput,
		statusCode:    http.StatusUnprocessableEntity,
		response:      ErrorResponse{Error: "invalid_input"},
		exposeMessage: true,
	},
	{
		target:     apperrors.ErrInvalidCredentials,
		statusCode: http.StatusUnauthorized,
		response:   ErrorResponse{Error: "invalid_credentials", Message: "Invalid username or password"},
	},
	{
		target:     apperrors.ErrUnauthorized,
		statusCode: http.StatusUnauthorized,
		response:   unauthorizedResponse,
	},
	{
		target:     apperrors.ErrLocked,
		statusCode: http.StatusLocked,
		response: ErrorResponse{
			Error:   "account_locked",
			Message: "Account is locked due to too many failed login attempts",
		},
	},
	{
		target:     apperrors.ErrForbidden,
		statusCode: http.StatusForbidden,
		response:   ErrorResponse{Error: "forbidden", Message: "You don't have permission to access this resource"},
	},
}

// unauthorizedResponse is the single body returned for every rejected bearer token.
// It never reveals which check failed.
var unauthorizedResponse = ErrorResponse{Error: "unauthorized", Message: "Authentication is required"}

// HandleErrorGin maps domain errors to HTTP status codes and writes a JSON response.
// Unknown errors become a 500 without details. Client errors are logged at warn level,
// server errors at error level.
func HandleErrorGin(c *gin.Context, err error, logger *slog.Logger) {
	if err == nil {
		return
	}

	statusCode := http.StatusInternalServerError
	errorResponse := ErrorResponse{Error: "internal_error", Message: "An internal error occurred"}

	for _, mapping := range errorMappings {
		if apperrors.Is(err, mapping.target) {
			statusCode = mapping.statusCode
			errorResponse = mapping.response
			if mapping.exposeMessage {
				errorResponse.Message = err.Error()
			}
			break
		}
	}

	if logger != nil {
		level := slog.LevelWarn
		if statusCode >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		logger.Log(c.Request.Context(), level, "request failed",
			slog.Int("status_code", statusCode),
			slog.String("error_code", errorResponse.Error),
			slog.Any("error", err),
		)
	}

	if statusCode == http.StatusUnauthorized {
		c.Header("WWW-Authenticate", `Bearer realm="authgate"`)
	}
	c.JSON(statusCode, errorResponse)
}

// AbortUnauthorizedGin aborts the request with the generic 401 body.
func AbortUnauthorizedGin(c *gin.Context) {
	c.Header("WWW-Authenticate", `Bearer realm="authgate"`)
	c.AbortWithStatusJSON(http.StatusUnauthorized, unauthorizedResponse)
}

// HandleBadRequestGin writes a 400 Bad Request response for malformed JSON or parameters.
func HandleBadRequestGin(c *gin.Context, err error, logger *slog.Logger) {
	if logger != nil {
		logger.Warn("bad request", slog.Any("error", err))
	}

	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:   "bad_request",
		Message: err.Error(),
	})
}

// HandleValidationErrorGin writes a 422 Unprocessable Entity response for validation errors.
func HandleValidationErrorGin(c *gin.Context, err error, logger *slog.Logger) {
	if logger != nil {
		logger.Warn("validation failed", slog.Any("error", err))
	}

	c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
		Error:   "validation_error",
		Message: err.Error(),
	})
}
