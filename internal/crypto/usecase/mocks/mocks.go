// Package mocks provides mock implementations of the crypto use case interfaces for testing.
package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	cryptoDomain "github.com/allisson/vaultkeys/internal/crypto/domain"
)

// MockAccountKeysRepository is a mock implementation of AccountKeysRepository.
type MockAccountKeysRepository struct {
	mock.Mock
}

// Create mocks the Create method.
func (m *MockAccountKeysRepository) Create(ctx context.Context, keys *cryptoDomain.AccountKeys) error {
	args := m.Called(ctx, keys)
	return args.Error(0)
}

// Get mocks the Get method.
func (m *MockAccountKeysRepository) Get(ctx context.Context, userID uuid.UUID) (*cryptoDomain.AccountKeys, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cryptoDomain.AccountKeys), args.Error(1)
}

// UpdateDeviceKey mocks the UpdateDeviceKey method.
func (m *MockAccountKeysRepository) UpdateDeviceKey(ctx context.Context, keys *cryptoDomain.AccountKeys) error {
	args := m.Called(ctx, keys)
	return args.Error(0)
}

// CreateOrganizationKey mocks the CreateOrganizationKey method.
func (m *MockAccountKeysRepository) CreateOrganizationKey(
	ctx context.Context,
	orgKey *cryptoDomain.OrganizationKey,
) error {
	args := m.Called(ctx, orgKey)
	return args.Error(0)
}

// ListOrganizationKeys mocks the ListOrganizationKeys method.
func (m *MockAccountKeysRepository) ListOrganizationKeys(
	ctx context.Context,
	userID uuid.UUID,
) ([]*cryptoDomain.OrganizationKey, error) {
	args := m.Called(ctx, userID)
	if fn, ok := args.Get(0).(func(context.Context, uuid.UUID) []*cryptoDomain.OrganizationKey); ok {
		return fn(ctx, userID), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*cryptoDomain.OrganizationKey), args.Error(1)
}

// MockKeyHierarchyUseCase is a mock implementation of KeyHierarchyUseCase.
type MockKeyHierarchyUseCase struct {
	mock.Mock
}

func symmetricKey(v interface{}) *cryptoDomain.SymmetricCryptoKey {
	if v == nil {
		return nil
	}
	return v.(*cryptoDomain.SymmetricCryptoKey)
}

// UnwrapUserKey mocks the UnwrapUserKey method.
func (m *MockKeyHierarchyUseCase) UnwrapUserKey(
	ctx context.Context,
	wrapped cryptoDomain.EncString,
	masterKey *cryptoDomain.SymmetricCryptoKey,
) (*cryptoDomain.SymmetricCryptoKey, error) {
	args := m.Called(ctx, wrapped, masterKey)
	return symmetricKey(args.Get(0)), args.Error(1)
}

// UnwrapOrgKey mocks the UnwrapOrgKey method.
func (m *MockKeyHierarchyUseCase) UnwrapOrgKey(
	ctx context.Context,
	wrapped cryptoDomain.EncString,
	privateKey []byte,
) (*cryptoDomain.SymmetricCryptoKey, error) {
	args := m.Called(ctx, wrapped, privateKey)
	return symmetricKey(args.Get(0)), args.Error(1)
}

// WrapKey mocks the WrapKey method.
func (m *MockKeyHierarchyUseCase) WrapKey(
	ctx context.Context,
	child *cryptoDomain.SymmetricCryptoKey,
	parent cryptoDomain.WrappingKey,
) (cryptoDomain.EncString, error) {
	args := m.Called(ctx, child, parent)
	return args.Get(0).(cryptoDomain.EncString), args.Error(1)
}

// UnlockWithPassword mocks the UnlockWithPassword method.
func (m *MockKeyHierarchyUseCase) UnlockWithPassword(
	ctx context.Context,
	session *cryptoDomain.Session,
	userID uuid.UUID,
	password string,
) error {
	args := m.Called(ctx, session, userID, password)
	return args.Error(0)
}

// LoginWithPassword mocks the LoginWithPassword method.
func (m *MockKeyHierarchyUseCase) LoginWithPassword(
	ctx context.Context,
	session *cryptoDomain.Session,
	userID uuid.UUID,
	password string,
) (string, error) {
	args := m.Called(ctx, session, userID, password)
	return args.String(0), args.Error(1)
}

// UnlockWithUserKey mocks the UnlockWithUserKey method.
func (m *MockKeyHierarchyUseCase) UnlockWithUserKey(
	ctx context.Context,
	session *cryptoDomain.Session,
	gen cryptoDomain.Generation,
	userID uuid.UUID,
	userKey *cryptoDomain.SymmetricCryptoKey,
	grant *cryptoDomain.MasterKeyGrant,
) error {
	args := m.Called(ctx, session, gen, userID, userKey, grant)
	return args.Error(0)
}

// UnlockWithDevice mocks the UnlockWithDevice method.
func (m *MockKeyHierarchyUseCase) UnlockWithDevice(
	ctx context.Context,
	session *cryptoDomain.Session,
	userID uuid.UUID,
) error {
	args := m.Called(ctx, session, userID)
	return args.Error(0)
}

// EnrollDevice mocks the EnrollDevice method.
func (m *MockKeyHierarchyUseCase) EnrollDevice(
	ctx context.Context,
	session *cryptoDomain.Session,
	userID uuid.UUID,
) error {
	args := m.Called(ctx, session, userID)
	return args.Error(0)
}

// VerifyMasterPassword mocks the VerifyMasterPassword method.
func (m *MockKeyHierarchyUseCase) VerifyMasterPassword(
	ctx context.Context,
	userID uuid.UUID,
	password string,
) (bool, error) {
	args := m.Called(ctx, userID, password)
	return args.Bool(0), args.Error(1)
}

// Register mocks the Register method.
func (m *MockKeyHierarchyUseCase) Register(
	ctx context.Context,
	input *cryptoDomain.RegisterInput,
) (*cryptoDomain.AccountKeys, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cryptoDomain.AccountKeys), args.Error(1)
}

// CreateOrganizationKey mocks the CreateOrganizationKey method.
func (m *MockKeyHierarchyUseCase) CreateOrganizationKey(
	ctx context.Context,
	session *cryptoDomain.Session,
	userID, orgID uuid.UUID,
) (*cryptoDomain.OrganizationKey, error) {
	args := m.Called(ctx, session, userID, orgID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cryptoDomain.OrganizationKey), args.Error(1)
}

// MakeSendKey mocks the MakeSendKey method.
func (m *MockKeyHierarchyUseCase) MakeSendKey(
	ctx context.Context,
	parent *cryptoDomain.SymmetricCryptoKey,
) (*cryptoDomain.SendKey, error) {
	args := m.Called(ctx, parent)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cryptoDomain.SendKey), args.Error(1)
}

// MakeAttachmentKey mocks the MakeAttachmentKey method.
func (m *MockKeyHierarchyUseCase) MakeAttachmentKey(
	ctx context.Context,
	parent *cryptoDomain.SymmetricCryptoKey,
) (*cryptoDomain.SymmetricCryptoKey, cryptoDomain.EncString, error) {
	args := m.Called(ctx, parent)
	return symmetricKey(args.Get(0)), args.Get(1).(cryptoDomain.EncString), args.Error(2)
}

// Lock mocks the Lock method.
func (m *MockKeyHierarchyUseCase) Lock(ctx context.Context, session *cryptoDomain.Session) {
	m.Called(ctx, session)
}
