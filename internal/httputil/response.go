// Package httputil writes the relay's JSON error responses.
package httputil

import (
	"log/slog"
	"net/http"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"

	apperrors "github.com/allisson/vaultkeys/internal/errors"
)

// ErrorResponse is the body of every non-2xx relay response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// errorRule maps a sentinel to a response. An empty message echoes the
// error text, which domain errors keep free of secrets.
type errorRule struct {
	target  error
	status  int
	code    string
	message string
}

// Checked in order: the first sentinel found in the chain wins.
var errorRules = []errorRule{
	{apperrors.ErrNotFound, http.StatusNotFound, "not_found", "The requested resource was not found"},
	{apperrors.ErrConflict, http.StatusConflict, "conflict", ""},
	{apperrors.ErrInvalidInput, http.StatusUnprocessableEntity, "invalid_input", ""},
	{apperrors.ErrIntegrity, http.StatusUnprocessableEntity, "integrity_error", "The data failed an integrity check"},
	{apperrors.ErrUnsupported, http.StatusUnprocessableEntity, "unsupported", ""},
	{apperrors.ErrUnauthorized, http.StatusUnauthorized, "unauthorized", "Authentication is required"},
	{apperrors.ErrForbidden, http.StatusForbidden, "forbidden", ""},
	{apperrors.ErrRateLimited, http.StatusTooManyRequests, "rate_limit_exceeded", ""},
}

// StatusFor maps a domain error to its HTTP status code and error response.
// Errors outside the domain sentinels are 500s with no detail.
func StatusFor(err error) (int, ErrorResponse) {
	for _, rule := range errorRules {
		if !apperrors.Is(err, rule.target) {
			continue
		}
		message := rule.message
		if message == "" {
			message = err.Error()
		}
		return rule.status, ErrorResponse{Error: rule.code, Message: message}
	}
	return http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: "An internal error occurred",
	}
}

// HandleErrorGin writes the response for err. Client errors are logged at
// WARN and server errors at ERROR, with the full error chain.
func HandleErrorGin(c *gin.Context, err error, logger *slog.Logger) {
	if err == nil {
		return
	}
	status, body := StatusFor(err)
	logFailure(c, logger, status, "request failed", err, slog.String("error_code", body.Error))
	c.JSON(status, body)
}

// HandleBadRequestGin writes a 400 for a body or parameter that did not parse.
func HandleBadRequestGin(c *gin.Context, err error, logger *slog.Logger) {
	logFailure(c, logger, http.StatusBadRequest, "bad request", err)
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: "bad_request", Message: err.Error()})
}

// HandleValidationErrorGin writes a 422 for a request that parsed but failed validation.
func HandleValidationErrorGin(c *gin.Context, err error, logger *slog.Logger) {
	logFailure(c, logger, http.StatusUnprocessableEntity, "validation failed", err)
	c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "validation_error", Message: err.Error()})
}

func logFailure(c *gin.Context, logger *slog.Logger, status int, msg string, err error, attrs ...slog.Attr) {
	if logger == nil {
		return
	}
	level := slog.LevelWarn
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	attrs = append(attrs,
		slog.Int("status_code", status),
		slog.String("request_id", requestID(c)),
		slog.Any("error", err),
	)
	logger.LogAttrs(c, level, msg, attrs...)
}

// requestID reads the id set by the requestid middleware. Contexts built
// without a request have none.
func requestID(c *gin.Context) string {
	if c.Request == nil {
		return ""
	}
	return requestid.Get(c)
}
