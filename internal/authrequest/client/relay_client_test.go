package client

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	authRequestDomain "github.com/allisson/vaultkeys/internal/authrequest/domain"
	authRequestHTTP "github.com/allisson/vaultkeys/internal/authrequest/http"
	"github.com/allisson/vaultkeys/internal/authrequest/usecase/mocks"
	cryptoDomain "github.com/allisson/vaultkeys/internal/crypto/domain"
	apperrors "github.com/allisson/vaultkeys/internal/errors"
)

const testAccessCode = "ABCDEFGHJKLMNPQRSTUVWXYZa"

// newRelayServer serves the real relay handlers on top of a mocked use case.
func newRelayServer(t *testing.T) (*RelayClient, *mocks.MockRelayUseCase) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	relay := &mocks.MockRelayUseCase{}
	t.Cleanup(func() { relay.AssertExpectations(t) })

	router := gin.New()
	handler := authRequestHTTP.NewAuthRequestHandler(relay, slog.New(slog.NewTextHandler(io.Discard, nil)))
	handler.RegisterRoutes(router.Group("/v1/auth-requests"))

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return NewRelayClient(Config{BaseURL: server.URL + "/", Timeout: 5 * time.Second}), relay
}

func newAuthRequest(status authRequestDomain.Status) *authRequestDomain.AuthRequest {
	now := time.Now().UTC().Truncate(time.Second)
	return &authRequestDomain.AuthRequest{
		ID:                      uuid.New(),
		Email:                   "user@example.com",
		RequestDeviceIdentifier: "laptop",
		PublicKey:               "AAAA",
		Status:                  status,
		CreatedAt:               now,
		ExpiresAt:               now.Add(15 * time.Minute),
	}
}

func TestRelayClient_Create(t *testing.T) {
	client, relay := newRelayServer(t)
	created := newAuthRequest(authRequestDomain.StatusPending)
	input := &authRequestDomain.CreateAuthRequestInput{
		Email:            "user@example.com",
		DeviceIdentifier: "laptop",
		PublicKey:        "AAAA",
		AccessCode:       testAccessCode,
	}
	relay.On("Create", mock.Anything, input).Return(created, nil).Once()

	got, err := client.Create(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, created, got)
}

func TestRelayClient_Get(t *testing.T) {
	client, relay := newRelayServer(t)
	stored := newAuthRequest(authRequestDomain.StatusApproved)
	key, err := cryptoDomain.ParseEncString("3.AAAA")
	require.NoError(t, err)
	hash, err := cryptoDomain.ParseEncString("3.BBBB")
	require.NoError(t, err)
	respondedAt := stored.CreatedAt.Add(time.Minute)
	stored.Key = &key
	stored.MasterPasswordHash = &hash
	stored.ResponseDeviceIdentifier = "phone"
	stored.ResponseAt = &respondedAt

	relay.On("Get", mock.Anything, stored.ID, testAccessCode).Return(stored, nil).Once()

	got, err := client.Get(context.Background(), stored.ID, testAccessCode)
	require.NoError(t, err)
	require.NotNil(t, got.ResponseAt)
	assert.True(t, respondedAt.Equal(*got.ResponseAt))
	got.ResponseAt = stored.ResponseAt
	assert.Equal(t, stored, got)
}

func TestRelayClient_ListPending(t *testing.T) {
	client, relay := newRelayServer(t)
	first := newAuthRequest(authRequestDomain.StatusPending)
	second := newAuthRequest(authRequestDomain.StatusPending)
	relay.On("ListPending", mock.Anything, "user+tag@example.com").
		Return([]*authRequestDomain.AuthRequest{first, second}, nil).
		Once()

	got, err := client.ListPending(context.Background(), "user+tag@example.com")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, first.ID, got[0].ID)
	assert.Equal(t, second.ID, got[1].ID)
}

func TestRelayClient_Respond(t *testing.T) {
	client, relay := newRelayServer(t)
	answered := newAuthRequest(authRequestDomain.StatusDenied)
	answer := &authRequestDomain.PasswordlessAuthRequest{DeviceIdentifier: "phone"}
	relay.On("Respond", mock.Anything, answered.ID, answer).Return(answered, nil).Once()

	got, err := client.Respond(context.Background(), answered.ID, answer)
	require.NoError(t, err)
	assert.Equal(t, authRequestDomain.StatusDenied, got.Status)
}

func TestRelayClient_ErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		relayErr error
		want     error
	}{
		{name: "NotFound", relayErr: authRequestDomain.ErrAuthRequestNotFound, want: authRequestDomain.ErrAuthRequestNotFound},
		{name: "InvalidTransition", relayErr: authRequestDomain.ErrInvalidTransition, want: authRequestDomain.ErrInvalidTransition},
		{name: "Expired", relayErr: authRequestDomain.ErrAuthRequestExpired, want: authRequestDomain.ErrAuthRequestExpired},
		{name: "InvalidInput", relayErr: authRequestDomain.ErrInvalidRequest, want: authRequestDomain.ErrInvalidRequest},
		{name: "InvalidAccessCode", relayErr: authRequestDomain.ErrInvalidAccessCode, want: authRequestDomain.ErrInvalidAccessCode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, relay := newRelayServer(t)
			id := uuid.New()
			relay.On("Get", mock.Anything, id, testAccessCode).Return(nil, tt.relayErr).Once()

			_, err := client.Get(context.Background(), id, testAccessCode)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestRelayClient_BadRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"bad_request"}`))
	}))
	t.Cleanup(server.Close)

	client := NewRelayClient(Config{BaseURL: server.URL})
	_, err := client.Respond(context.Background(), uuid.New(), &authRequestDomain.PasswordlessAuthRequest{
		DeviceIdentifier: "phone",
	})
	assert.ErrorIs(t, err, authRequestDomain.ErrInvalidRequest)
}

func TestRelayClient_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(server.Close)

	client := NewRelayClient(Config{BaseURL: server.URL})
	_, err := client.ListPending(context.Background(), "user@example.com")
	assert.ErrorContains(t, err, "relay returned 502")
}

func TestRelayClient_ResponderToken(t *testing.T) {
	var authorization string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authorization = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))
	t.Cleanup(server.Close)

	client := NewRelayClient(Config{BaseURL: server.URL, ResponderToken: "s3cret"})
	_, err := client.ListPending(context.Background(), "user@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Bearer s3cret", authorization)

	_, err = NewRelayClient(Config{BaseURL: server.URL}).ListPending(context.Background(), "user@example.com")
	require.NoError(t, err)
	assert.Empty(t, authorization)
}

func TestRelayClient_StatusErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{name: "RateLimited", status: http.StatusTooManyRequests, want: apperrors.ErrRateLimited},
		{name: "Forbidden", status: http.StatusForbidden, want: apperrors.ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Retry-After", "3")
				w.WriteHeader(tt.status)
			}))
			t.Cleanup(server.Close)

			_, err := NewRelayClient(Config{BaseURL: server.URL}).ListPending(context.Background(), "user@example.com")
			assert.ErrorIs(t, err, tt.want)
			assert.NotErrorIs(t, err, apperrors.ErrConflict)
		})
	}
}
