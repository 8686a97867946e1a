// Package mocks provides mock implementations of the vault interfaces for testing.
package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	cryptoDomain "github.com/allisson/vaultkeys/internal/crypto/domain"
	vaultDomain "github.com/allisson/vaultkeys/internal/vault/domain"
)

func cipherRecord(v interface{}) *vaultDomain.CipherRecord {
	if v == nil {
		return nil
	}
	return v.(*vaultDomain.CipherRecord)
}

func cipherRecords(v interface{}) []*vaultDomain.CipherRecord {
	if v == nil {
		return nil
	}
	return v.([]*vaultDomain.CipherRecord)
}

func latest(v interface{}) *vaultDomain.CipherDataLatest {
	if v == nil {
		return nil
	}
	return v.(*vaultDomain.CipherDataLatest)
}

// MockCipherRepository is a mock implementation of CipherRepository.
type MockCipherRepository struct {
	mock.Mock
}

// Create mocks the Create method.
func (m *MockCipherRepository) Create(ctx context.Context, record *vaultDomain.CipherRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

// Get mocks the Get method.
func (m *MockCipherRepository) Get(ctx context.Context, id uuid.UUID) (*vaultDomain.CipherRecord, error) {
	args := m.Called(ctx, id)
	return cipherRecord(args.Get(0)), args.Error(1)
}

// ListByUser mocks the ListByUser method.
func (m *MockCipherRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*vaultDomain.CipherRecord, error) {
	args := m.Called(ctx, userID)
	return cipherRecords(args.Get(0)), args.Error(1)
}

// Update mocks the Update method.
func (m *MockCipherRepository) Update(ctx context.Context, record *vaultDomain.CipherRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

// MockCipherMigrator is a mock implementation of CipherMigrator.
type MockCipherMigrator struct {
	mock.Mock
}

// ToLatestVersion mocks the ToLatestVersion method.
func (m *MockCipherMigrator) ToLatestVersion(
	ctx context.Context,
	data vaultDomain.CipherData,
	key *cryptoDomain.SymmetricCryptoKey,
) (*vaultDomain.CipherDataLatest, error) {
	args := m.Called(ctx, data, key)
	return latest(args.Get(0)), args.Error(1)
}

// MigrateAll mocks the MigrateAll method.
func (m *MockCipherMigrator) MigrateAll(
	ctx context.Context,
	session *cryptoDomain.Session,
	records []*vaultDomain.CipherRecord,
) ([]*vaultDomain.CipherDataLatest, error) {
	args := m.Called(ctx, session, records)
	if v := args.Get(0); v != nil {
		return v.([]*vaultDomain.CipherDataLatest), args.Error(1)
	}
	return nil, args.Error(1)
}

// MigrateStored mocks the MigrateStored method.
func (m *MockCipherMigrator) MigrateStored(
	ctx context.Context,
	session *cryptoDomain.Session,
	userID uuid.UUID,
) (*vaultDomain.MigrationReport, error) {
	args := m.Called(ctx, session, userID)
	if v := args.Get(0); v != nil {
		return v.(*vaultDomain.MigrationReport), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockCipherEncryptor is a mock implementation of CipherEncryptor.
type MockCipherEncryptor struct {
	mock.Mock
}

// Encrypt mocks the Encrypt method.
func (m *MockCipherEncryptor) Encrypt(
	ctx context.Context,
	view *vaultDomain.CipherView,
	key *cryptoDomain.SymmetricCryptoKey,
) (*vaultDomain.CipherDataLatest, error) {
	args := m.Called(ctx, view, key)
	return latest(args.Get(0)), args.Error(1)
}

// Decrypt mocks the Decrypt method.
func (m *MockCipherEncryptor) Decrypt(
	ctx context.Context,
	data *vaultDomain.CipherDataLatest,
	key *cryptoDomain.SymmetricCryptoKey,
) (*vaultDomain.CipherView, error) {
	args := m.Called(ctx, data, key)
	if v := args.Get(0); v != nil {
		return v.(*vaultDomain.CipherView), args.Error(1)
	}
	return nil, args.Error(1)
}
