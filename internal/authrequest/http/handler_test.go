package http

import (
	"bytes"
	"encoding/json"
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
	"github.com/allisson/vaultkeys/internal/authrequest/http/dto"
	"github.com/allisson/vaultkeys/internal/authrequest/usecase/mocks"
	cryptoDomain "github.com/allisson/vaultkeys/internal/crypto/domain"
)

const testAccessCode = "ABCDEFGHJKLMNPQRSTUVWXYZa"

func setupTestHandler(t *testing.T) (*gin.Engine, *mocks.MockRelayUseCase) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	relay := &mocks.MockRelayUseCase{}
	t.Cleanup(func() { relay.AssertExpectations(t) })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	router := gin.New()
	NewAuthRequestHandler(relay, logger).RegisterRoutes(router.Group("/v1/auth-requests"))
	return router, relay
}

func doRequest(router *gin.Engine, method, path string, body any, header http.Header) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func newAuthRequest(status authRequestDomain.Status) *authRequestDomain.AuthRequest {
	now := time.Now().UTC().Truncate(time.Second)
	return &authRequestDomain.AuthRequest{
		ID:                      uuid.New(),
		Email:                   "user@example.com",
		RequestDeviceIdentifier: "laptop",
		PublicKey:               "AAAA",
		AccessCodeHash:          authRequestDomain.HashAccessCode(testAccessCode),
		Status:                  status,
		CreatedAt:               now,
		ExpiresAt:               now.Add(15 * time.Minute),
	}
}

func TestAuthRequestHandler_Create(t *testing.T) {
	router, relay := setupTestHandler(t)
	created := newAuthRequest(authRequestDomain.StatusPending)

	relay.On("Create", mock.Anything, &authRequestDomain.CreateAuthRequestInput{
		Email:            "user@example.com",
		DeviceIdentifier: "laptop",
		PublicKey:        "AAAA",
		AccessCode:       testAccessCode,
	}).Return(created, nil).Once()

	w := doRequest(router, http.MethodPost, "/v1/auth-requests", dto.CreateAuthRequestRequest{
		Email:            "user@example.com",
		DeviceIdentifier: "laptop",
		PublicKey:        "AAAA",
		AccessCode:       testAccessCode,
	}, nil)

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp dto.AuthRequestResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, created.ID.String(), resp.ID)
	assert.Equal(t, "pending", resp.Status)
	assert.NotContains(t, w.Body.String(), created.AccessCodeHash)
}

func TestAuthRequestHandler_Create_Invalid(t *testing.T) {
	router, _ := setupTestHandler(t)

	w := doRequest(router, http.MethodPost, "/v1/auth-requests", dto.CreateAuthRequestRequest{
		Email:            "user@example.com",
		DeviceIdentifier: "laptop",
		PublicKey:        "AAAA",
		AccessCode:       "short",
	}, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/v1/auth-requests", bytes.NewBufferString("{"))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthRequestHandler_Get(t *testing.T) {
	router, relay := setupTestHandler(t)
	stored := newAuthRequest(authRequestDomain.StatusApproved)
	key, err := authRequestKey()
	require.NoError(t, err)
	stored.Key = key

	relay.On("Get", mock.Anything, stored.ID, testAccessCode).Return(stored, nil).Once()

	w := doRequest(router, http.MethodGet, "/v1/auth-requests/"+stored.ID.String(), nil,
		http.Header{dto.AccessCodeHeader: []string{testAccessCode}})

	assert.Equal(t, http.StatusOK, w.Code)
	var resp dto.AuthRequestResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "approved", resp.Status)
	assert.Equal(t, stored.Key.String(), resp.Key)
}

func TestAuthRequestHandler_Get_Errors(t *testing.T) {
	t.Run("InvalidID", func(t *testing.T) {
		router, _ := setupTestHandler(t)
		w := doRequest(router, http.MethodGet, "/v1/auth-requests/not-a-uuid", nil, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("NotFound", func(t *testing.T) {
		router, relay := setupTestHandler(t)
		id := uuid.New()
		relay.On("Get", mock.Anything, id, "").Return(nil, authRequestDomain.ErrAuthRequestNotFound).Once()

		w := doRequest(router, http.MethodGet, "/v1/auth-requests/"+id.String(), nil, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("WrongAccessCode", func(t *testing.T) {
		router, relay := setupTestHandler(t)
		id := uuid.New()
		relay.On("Get", mock.Anything, id, "wrong").Return(nil, authRequestDomain.ErrInvalidAccessCode).Once()

		w := doRequest(router, http.MethodGet, "/v1/auth-requests/"+id.String(), nil,
			http.Header{dto.AccessCodeHeader: []string{"wrong"}})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestAuthRequestHandler_ListPending(t *testing.T) {
	router, relay := setupTestHandler(t)
	pending := newAuthRequest(authRequestDomain.StatusPending)
	relay.On("ListPending", mock.Anything, "user@example.com").
		Return([]*authRequestDomain.AuthRequest{pending}, nil).
		Once()

	w := doRequest(router, http.MethodGet, "/v1/auth-requests?email=user@example.com", nil, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp dto.ListAuthRequestsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, pending.ID.String(), resp.Data[0].ID)

	w = doRequest(router, http.MethodGet, "/v1/auth-requests", nil, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestAuthRequestHandler_Respond(t *testing.T) {
	router, relay := setupTestHandler(t)
	answered := newAuthRequest(authRequestDomain.StatusApproved)

	relay.On("Respond", mock.Anything, answered.ID, mock.MatchedBy(func(resp *authRequestDomain.PasswordlessAuthRequest) bool {
		return resp.RequestApproved && resp.Key != nil && resp.Key.String() == "3.AAAA" && resp.DeviceIdentifier == "phone"
	})).Return(answered, nil).Once()

	w := doRequest(router, http.MethodPut, "/v1/auth-requests/"+answered.ID.String(), dto.UpdateAuthRequestRequest{
		Key:              "3.AAAA",
		DeviceIdentifier: "phone",
		RequestApproved:  true,
	}, nil)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthRequestHandler_Respond_Errors(t *testing.T) {
	t.Run("ApprovalWithoutKey", func(t *testing.T) {
		router, _ := setupTestHandler(t)
		w := doRequest(router, http.MethodPut, "/v1/auth-requests/"+uuid.NewString(), dto.UpdateAuthRequestRequest{
			DeviceIdentifier: "phone",
			RequestApproved:  true,
		}, nil)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("AlreadyAnswered", func(t *testing.T) {
		router, relay := setupTestHandler(t)
		id := uuid.New()
		relay.On("Respond", mock.Anything, id, mock.Anything).Return(nil, authRequestDomain.ErrInvalidTransition).Once()

		w := doRequest(router, http.MethodPut, "/v1/auth-requests/"+id.String(), dto.UpdateAuthRequestRequest{
			DeviceIdentifier: "phone",
		}, nil)
		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func authRequestKey() (*cryptoDomain.EncString, error) {
	key, err := cryptoDomain.ParseEncString("3.AAAA")
	if err != nil {
		return nil, err
	}
	return &key, nil
}
