// Package mocks provides mock implementations of the auth request interfaces for testing.
package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	authRequestDomain "github.com/allisson/vaultkeys/internal/authrequest/domain"
	cryptoDomain "github.com/allisson/vaultkeys/internal/crypto/domain"
)

func authRequest(v interface{}) *authRequestDomain.AuthRequest {
	if v == nil {
		return nil
	}
	return v.(*authRequestDomain.AuthRequest)
}

func authRequests(v interface{}) []*authRequestDomain.AuthRequest {
	if v == nil {
		return nil
	}
	return v.([]*authRequestDomain.AuthRequest)
}

// MockAuthRequestRepository is a mock implementation of AuthRequestRepository.
type MockAuthRequestRepository struct {
	mock.Mock
}

// Create mocks the Create method.
func (m *MockAuthRequestRepository) Create(ctx context.Context, req *authRequestDomain.AuthRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

// Get mocks the Get method.
func (m *MockAuthRequestRepository) Get(ctx context.Context, id uuid.UUID) (*authRequestDomain.AuthRequest, error) {
	args := m.Called(ctx, id)
	return authRequest(args.Get(0)), args.Error(1)
}

// GetForUpdate mocks the GetForUpdate method.
func (m *MockAuthRequestRepository) GetForUpdate(
	ctx context.Context,
	id uuid.UUID,
) (*authRequestDomain.AuthRequest, error) {
	args := m.Called(ctx, id)
	return authRequest(args.Get(0)), args.Error(1)
}

// ListPendingByEmail mocks the ListPendingByEmail method.
func (m *MockAuthRequestRepository) ListPendingByEmail(
	ctx context.Context,
	email string,
	now time.Time,
) ([]*authRequestDomain.AuthRequest, error) {
	args := m.Called(ctx, email, now)
	return authRequests(args.Get(0)), args.Error(1)
}

// Update mocks the Update method.
func (m *MockAuthRequestRepository) Update(ctx context.Context, req *authRequestDomain.AuthRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

// DeleteExpiredBefore mocks the DeleteExpiredBefore method.
func (m *MockAuthRequestRepository) DeleteExpiredBefore(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

// MockRelayClient is a mock implementation of RelayClient.
type MockRelayClient struct {
	mock.Mock
}

// Create mocks the Create method.
func (m *MockRelayClient) Create(
	ctx context.Context,
	input *authRequestDomain.CreateAuthRequestInput,
) (*authRequestDomain.AuthRequest, error) {
	args := m.Called(ctx, input)
	return authRequest(args.Get(0)), args.Error(1)
}

// Get mocks the Get method.
func (m *MockRelayClient) Get(
	ctx context.Context,
	id uuid.UUID,
	accessCode string,
) (*authRequestDomain.AuthRequest, error) {
	args := m.Called(ctx, id, accessCode)
	return authRequest(args.Get(0)), args.Error(1)
}

// ListPending mocks the ListPending method.
func (m *MockRelayClient) ListPending(ctx context.Context, email string) ([]*authRequestDomain.AuthRequest, error) {
	args := m.Called(ctx, email)
	return authRequests(args.Get(0)), args.Error(1)
}

// Respond mocks the Respond method.
func (m *MockRelayClient) Respond(
	ctx context.Context,
	id uuid.UUID,
	resp *authRequestDomain.PasswordlessAuthRequest,
) (*authRequestDomain.AuthRequest, error) {
	args := m.Called(ctx, id, resp)
	return authRequest(args.Get(0)), args.Error(1)
}

// MockRelayUseCase is a mock implementation of RelayUseCase.
type MockRelayUseCase struct {
	mock.Mock
}

// Create mocks the Create method.
func (m *MockRelayUseCase) Create(
	ctx context.Context,
	input *authRequestDomain.CreateAuthRequestInput,
) (*authRequestDomain.AuthRequest, error) {
	args := m.Called(ctx, input)
	return authRequest(args.Get(0)), args.Error(1)
}

// Get mocks the Get method.
func (m *MockRelayUseCase) Get(
	ctx context.Context,
	id uuid.UUID,
	accessCode string,
) (*authRequestDomain.AuthRequest, error) {
	args := m.Called(ctx, id, accessCode)
	return authRequest(args.Get(0)), args.Error(1)
}

// ListPending mocks the ListPending method.
func (m *MockRelayUseCase) ListPending(ctx context.Context, email string) ([]*authRequestDomain.AuthRequest, error) {
	args := m.Called(ctx, email)
	return authRequests(args.Get(0)), args.Error(1)
}

// Respond mocks the Respond method.
func (m *MockRelayUseCase) Respond(
	ctx context.Context,
	id uuid.UUID,
	resp *authRequestDomain.PasswordlessAuthRequest,
) (*authRequestDomain.AuthRequest, error) {
	args := m.Called(ctx, id, resp)
	return authRequest(args.Get(0)), args.Error(1)
}

// PurgeExpired mocks the PurgeExpired method.
func (m *MockRelayUseCase) PurgeExpired(ctx context.Context, olderThan time.Duration) (int64, error) {
	args := m.Called(ctx, olderThan)
	return args.Get(0).(int64), args.Error(1)
}

// MockAuthRequestService is a mock implementation of AuthRequestService.
type MockAuthRequestService struct {
	mock.Mock
}

// ApproveOrDenyAuthRequest mocks the ApproveOrDenyAuthRequest method.
func (m *MockAuthRequestService) ApproveOrDenyAuthRequest(
	ctx context.Context,
	session *cryptoDomain.Session,
	approve bool,
	request *authRequestDomain.AuthRequest,
) (*authRequestDomain.AuthRequest, error) {
	args := m.Called(ctx, session, approve, request)
	return authRequest(args.Get(0)), args.Error(1)
}

// DecryptPubKeyEncryptedUserKey mocks the DecryptPubKeyEncryptedUserKey method.
func (m *MockAuthRequestService) DecryptPubKeyEncryptedUserKey(
	wrapped cryptoDomain.EncString,
	privateKey []byte,
) (*cryptoDomain.SymmetricCryptoKey, error) {
	args := m.Called(wrapped, privateKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cryptoDomain.SymmetricCryptoKey), args.Error(1)
}

// DecryptPubKeyEncryptedMasterKeyAndHash mocks the DecryptPubKeyEncryptedMasterKeyAndHash method.
func (m *MockAuthRequestService) DecryptPubKeyEncryptedMasterKeyAndHash(
	wrappedKey, wrappedHash cryptoDomain.EncString,
	privateKey []byte,
) (*cryptoDomain.SymmetricCryptoKey, string, error) {
	args := m.Called(wrappedKey, wrappedHash, privateKey)
	if args.Get(0) == nil {
		return nil, args.String(1), args.Error(2)
	}
	return args.Get(0).(*cryptoDomain.SymmetricCryptoKey), args.String(1), args.Error(2)
}

// SetUserKeyAfterDecryptingSharedUserKey mocks the SetUserKeyAfterDecryptingSharedUserKey method.
func (m *MockAuthRequestService) SetUserKeyAfterDecryptingSharedUserKey(
	ctx context.Context,
	session *cryptoDomain.Session,
	userID uuid.UUID,
	request *authRequestDomain.AuthRequest,
	pending *authRequestDomain.PendingLogin,
) error {
	args := m.Called(ctx, session, userID, request, pending)
	return args.Error(0)
}

// SetKeysAfterDecryptingSharedMasterKeyAndHash mocks the SetKeysAfterDecryptingSharedMasterKeyAndHash method.
func (m *MockAuthRequestService) SetKeysAfterDecryptingSharedMasterKeyAndHash(
	ctx context.Context,
	session *cryptoDomain.Session,
	userID uuid.UUID,
	request *authRequestDomain.AuthRequest,
	pending *authRequestDomain.PendingLogin,
) error {
	args := m.Called(ctx, session, userID, request, pending)
	return args.Error(0)
}

// CreateAuthRequest mocks the CreateAuthRequest method.
func (m *MockAuthRequestService) CreateAuthRequest(
	ctx context.Context,
	email, deviceIdentifier string,
) (*authRequestDomain.PendingLogin, error) {
	args := m.Called(ctx, email, deviceIdentifier)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authRequestDomain.PendingLogin), args.Error(1)
}

// CompleteLogin mocks the CompleteLogin method.
func (m *MockAuthRequestService) CompleteLogin(
	ctx context.Context,
	session *cryptoDomain.Session,
	userID uuid.UUID,
	pending *authRequestDomain.PendingLogin,
) error {
	args := m.Called(ctx, session, userID, pending)
	return args.Error(0)
}
