package http

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	authRequestDomain "github.com/allisson/vaultkeys/internal/authrequest/domain"
	authRequestHTTP "github.com/allisson/vaultkeys/internal/authrequest/http"
	"github.com/allisson/vaultkeys/internal/authrequest/usecase/mocks"
)

func TestResponderTokenMiddleware_NilWhenUnset(t *testing.T) {
	assert.Nil(t, ResponderTokenMiddleware("", discardLogger()))
}

func TestSetupRouter_ResponderToken(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	relay := &mocks.MockRelayUseCase{}
	relay.On("ListPending", mock.Anything, "ada@example.com").
		Return([]*authRequestDomain.AuthRequest{}, nil)

	cfg := testConfig()
	cfg.RateLimitEnabled = false
	cfg.RelayResponderToken = "s3cret"
	server := NewServer(nil, "localhost", 8080, logger)
	server.SetupRouter(ctx, cfg, authRequestHTTP.NewAuthRequestHandler(relay, logger), nil)

	list := func(authorization string) int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/v1/auth-requests?email=ada@example.com", nil)
		if authorization != "" {
			req.Header.Set("Authorization", authorization)
		}
		server.router.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusForbidden, list(""))
	assert.Equal(t, http.StatusForbidden, list("Bearer wrong"))
	assert.Equal(t, http.StatusForbidden, list("Basic s3cret"))
	assert.Equal(t, http.StatusForbidden, list("Bearer "))
	assert.Equal(t, http.StatusOK, list("Bearer s3cret"))
	assert.Equal(t, http.StatusOK, list("bearer s3cret"))
	relay.AssertNumberOfCalls(t, "ListPending", 2)

	t.Run("RespondIsGuarded", func(t *testing.T) {
		w := httptest.NewRecorder()
		body := strings.NewReader(`{"deviceIdentifier":"phone","requestApproved":false}`)
		req := httptest.NewRequest(http.MethodPut, "/v1/auth-requests/"+uuid.NewString(), body)
		req.Header.Set("Content-Type", "application/json")
		server.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
		relay.AssertNotCalled(t, "Respond", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("RequesterEndpointsStayOpen", func(t *testing.T) {
		id := uuid.New()
		relay.On("Get", mock.Anything, id, "").
			Return(nil, authRequestDomain.ErrAuthRequestNotFound).Once()

		w := httptest.NewRecorder()
		server.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/auth-requests/"+id.String(), nil))

		// Reaching the use case proves the guard did not run.
		assert.Equal(t, http.StatusNotFound, w.Code)
		relay.AssertExpectations(t)
	})
}
