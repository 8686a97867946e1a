// Package http provides the HTTP handlers of the auth request relay.
package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/allisson/vaultkeys/internal/authrequest/http/dto"
	authRequestUseCase "github.com/allisson/vaultkeys/internal/authrequest/usecase"
	"github.com/allisson/vaultkeys/internal/httputil"
	customValidation "github.com/allisson/vaultkeys/internal/validation"
)

// AuthRequestHandler handles HTTP requests for the auth request relay.
type AuthRequestHandler struct {
	relayUseCase authRequestUseCase.RelayUseCase
	logger       *slog.Logger
}

// NewAuthRequestHandler creates a new auth request handler.
func NewAuthRequestHandler(relayUseCase authRequestUseCase.RelayUseCase, logger *slog.Logger) *AuthRequestHandler {
	return &AuthRequestHandler{
		relayUseCase: relayUseCase,
		logger:       logger,
	}
}

// RegisterRoutes mounts the relay endpoints on group. responderGuards run
// before the endpoints an approving device uses: listing and answering.
func (h *AuthRequestHandler) RegisterRoutes(group *gin.RouterGroup, responderGuards ...gin.HandlerFunc) {
	guarded := func(handler gin.HandlerFunc) []gin.HandlerFunc {
		return append(slices.Clone(responderGuards), handler)
	}

	group.POST("", h.CreateHandler)
	group.GET("", guarded(h.ListPendingHandler)...)
	group.GET("/:id", h.GetHandler)
	group.PUT("/:id", guarded(h.RespondHandler)...)
}

// CreateHandler stores a new auth request.
// POST /v1/auth-requests - Returns 201 Created.
func (h *AuthRequestHandler) CreateHandler(c *gin.Context) {
	var req dto.CreateAuthRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	created, err := h.relayUseCase.Create(c.Request.Context(), req.ToInput())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapAuthRequestToResponse(created))
}

// GetHandler returns an auth request. The response fields are only included
// when the X-Access-Code header matches.
// GET /v1/auth-requests/:id - Returns 200 OK.
func (h *AuthRequestHandler) GetHandler(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	req, err := h.relayUseCase.Get(c.Request.Context(), id, c.GetHeader(dto.AccessCodeHeader))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapAuthRequestToResponse(req))
}

// ListPendingHandler lists the pending requests of an account.
// GET /v1/auth-requests?email= - Returns 200 OK.
func (h *AuthRequestHandler) ListPendingHandler(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		httputil.HandleValidationErrorGin(c, fmt.Errorf("email query parameter is required"), h.logger)
		return
	}

	reqs, err := h.relayUseCase.ListPending(c.Request.Context(), email)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapAuthRequestsToListResponse(reqs))
}

// RespondHandler records an approval or denial.
// PUT /v1/auth-requests/:id - Returns 200 OK.
func (h *AuthRequestHandler) RespondHandler(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req dto.UpdateAuthRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	resp, err := req.ToDomain()
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	answered, err := h.relayUseCase.Respond(c.Request.Context(), id, resp)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapAuthRequestToResponse(answered))
}

func (h *AuthRequestHandler) parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleBadRequestGin(c,
			fmt.Errorf("invalid auth request ID format: must be a valid UUID"),
			h.logger)
		return uuid.Nil, false
	}
	return id, true
}
