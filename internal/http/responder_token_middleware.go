package http

import (
	"crypto/sha256"
	"crypto/subtle"
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/allisson/vaultkeys/internal/errors"
	"github.com/allisson/vaultkeys/internal/httputil"
)

// ErrResponderTokenRequired is returned when a guarded relay endpoint is
// called without the configured responder token.
var ErrResponderTokenRequired = apperrors.Wrap(apperrors.ErrForbidden, "responder token required")

// ResponderTokenMiddleware requires "Authorization: Bearer <token>" on the
// endpoints that list and answer pending requests. It returns nil when token
// is empty, leaving those endpoints open.
//
// Failures are 403 rather than 401: the relay reserves 401 for a wrong access code.
func ResponderTokenMiddleware(token string, logger *slog.Logger) gin.HandlerFunc {
	if token == "" {
		return nil
	}
	want := sha256.Sum256([]byte(token))

	return func(c *gin.Context) {
		const bearerPrefix = "bearer "
		header := c.GetHeader("Authorization")
		if len(header) <= len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
			httputil.HandleErrorGin(c, ErrResponderTokenRequired, logger)
			c.Abort()
			return
		}

		got := sha256.Sum256([]byte(header[len(bearerPrefix):]))
		if subtle.ConstantTimeCompare(got[:], want[:]) != 1 {
			httputil.HandleErrorGin(c, ErrResponderTokenRequired, logger)
			c.Abort()
			return
		}
		c.Next()
	}
}
