package http

import (
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/allisson/vaultkeys/internal/authrequest/http/dto"
)

// createCORSMiddleware lets browser extensions and web vaults reach the relay.
// It returns nil when CORS is disabled or no origin is configured. A single
// "*" allows every origin; the relay never reads cookies, so credentials are
// not allowed either way.
func createCORSMiddleware(enabled bool, allowOriginsStr string, logger *slog.Logger) gin.HandlerFunc {
	if !enabled {
		return nil
	}

	origins := parseOrigins(allowOriginsStr)
	if len(origins) == 0 {
		logger.Warn("CORS enabled but no origins configured - CORS will not be applied")
		return nil
	}

	// Browser extension clients send chrome-extension:// style origins.
	config := cors.Config{
		AllowMethods:           []string{http.MethodGet, http.MethodPost, http.MethodPut},
		AllowHeaders:           []string{"Content-Type", "Authorization", dto.AccessCodeHeader},
		ExposeHeaders:          []string{"X-Request-Id", "Retry-After"},
		AllowBrowserExtensions: true,
		MaxAge:                 12 * time.Hour,
	}
	if slices.Contains(origins, "*") {
		config.AllowAllOrigins = true
		logger.Warn("CORS allows every origin")
	} else {
		config.AllowOrigins = origins
		logger.Info("CORS enabled", slog.Any("origins", origins))
	}

	return cors.New(config)
}

// parseOrigins splits a comma-separated origin list, dropping blanks and
// trailing slashes.
func parseOrigins(originsStr string) []string {
	var origins []string
	for part := range strings.SplitSeq(originsStr, ",") {
		origin := strings.TrimRight(strings.TrimSpace(part), "/")
		if origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}
