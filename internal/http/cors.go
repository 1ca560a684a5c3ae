package http

import (
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// createCORSMiddleware returns a CORS middleware for the auth API, or nil when CORS
// is disabled or no usable origin is configured. Credentials travel in the
// Authorization header, never in cookies, so AllowCredentials stays off.
func createCORSMiddleware(enabled bool, allowOriginsStr string, logger *slog.Logger) gin.HandlerFunc {
	if !enabled {
		return nil
	}

	origins := parseOrigins(allowOriginsStr)
	if len(origins) == 0 {
		logger.Warn("CORS enabled but no valid origins configured, CORS will not be applied")
		return nil
	}

	logger.Info("CORS enabled",
		slog.Int("origin_count", len(origins)),
		slog.Any("origins", origins))

	return cors.New(cors.Config{
		AllowOrigins:  origins,
		AllowMethods:  []string{"GET", "POST"},
		AllowHeaders:  []string{"Authorization", "Content-Type"},
		ExposeHeaders: []string{"X-Request-Id", "WWW-Authenticate", "Retry-After"},
		MaxAge:        12 * time.Hour,
	})
}

// parseOrigins splits a comma-separated origin list, dropping blanks, trailing
// slashes and duplicates.
func parseOrigins(originsStr string) []string {
	var origins []string
	for part := range strings.SplitSeq(originsStr, ",") {
		origin := strings.TrimSuffix(strings.TrimSpace(part), "/")
		if origin == "" || slices.Contains(origins, origin) {
			continue
		}
		origins = append(origins, origin)
	}
	return origins
}
