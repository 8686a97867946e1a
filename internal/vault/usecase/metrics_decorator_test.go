package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/vaultkeys/internal/crypto/domain"
	vaultDomain "github.com/allisson/vaultkeys/internal/vault/domain"
	"github.com/allisson/vaultkeys/internal/vault/usecase/mocks"
)

type mockBusinessMetrics struct {
	mock.Mock
}

func (m *mockBusinessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {
	m.Called(ctx, domain, operation, status)
}

func (m *mockBusinessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
	m.Called(ctx, domain, operation, duration, status)
}

func expectMetrics(m *mockBusinessMetrics, ctx context.Context, operation, status string) {
	m.On("RecordOperation", ctx, "vault", operation, status).Return().Once()
	m.On("RecordDuration", ctx, "vault", operation, mock.AnythingOfType("time.Duration"), status).
		Return().
		Once()
}

func TestCipherMigratorMetricsDecorator(t *testing.T) {
	ctx := context.Background()
	session := cryptoDomain.NewSession()
	latest := &vaultDomain.CipherDataLatest{Item: &vaultDomain.SecureNoteItem{}}

	t.Run("ToLatestVersion_Success", func(t *testing.T) {
		next := &mocks.MockCipherMigrator{}
		m := &mockBusinessMetrics{}
		next.On("ToLatestVersion", ctx, latest, (*cryptoDomain.SymmetricCryptoKey)(nil)).Return(latest, nil).Once()
		expectMetrics(m, ctx, "cipher_migrate", "success")

		got, err := NewCipherMigratorWithMetrics(next, m).ToLatestVersion(ctx, latest, nil)
		require.NoError(t, err)
		assert.Same(t, latest, got)
		next.AssertExpectations(t)
		m.AssertExpectations(t)
	})

	t.Run("MigrateAll_Error", func(t *testing.T) {
		next := &mocks.MockCipherMigrator{}
		m := &mockBusinessMetrics{}
		migrateErr := errors.New("migrate failed")
		next.On("MigrateAll", ctx, session, []*vaultDomain.CipherRecord(nil)).Return(nil, migrateErr).Once()
		expectMetrics(m, ctx, "cipher_migrate_all", "error")

		_, err := NewCipherMigratorWithMetrics(next, m).MigrateAll(ctx, session, nil)
		assert.ErrorIs(t, err, migrateErr)
		next.AssertExpectations(t)
		m.AssertExpectations(t)
	})

	t.Run("MigrateStored_Success", func(t *testing.T) {
		next := &mocks.MockCipherMigrator{}
		m := &mockBusinessMetrics{}
		userID := uuid.New()
		report := &vaultDomain.MigrationReport{Total: 1, Migrated: 1}
		next.On("MigrateStored", ctx, session, userID).Return(report, nil).Once()
		expectMetrics(m, ctx, "cipher_migrate_stored", "success")

		got, err := NewCipherMigratorWithMetrics(next, m).MigrateStored(ctx, session, userID)
		require.NoError(t, err)
		assert.Equal(t, report, got)
		next.AssertExpectations(t)
		m.AssertExpectations(t)
	})
}

func TestCipherEncryptorMetricsDecorator(t *testing.T) {
	ctx := context.Background()
	view := &vaultDomain.CipherView{Name: "n", Item: &vaultDomain.SecureNoteView{}}
	data := &vaultDomain.CipherDataLatest{Item: &vaultDomain.SecureNoteItem{}}

	t.Run("Encrypt_Success", func(t *testing.T) {
		next := &mocks.MockCipherEncryptor{}
		m := &mockBusinessMetrics{}
		next.On("Encrypt", ctx, view, (*cryptoDomain.SymmetricCryptoKey)(nil)).Return(data, nil).Once()
		expectMetrics(m, ctx, "cipher_encrypt", "success")

		got, err := NewCipherEncryptorWithMetrics(next, m).Encrypt(ctx, view, nil)
		require.NoError(t, err)
		assert.Same(t, data, got)
		next.AssertExpectations(t)
		m.AssertExpectations(t)
	})

	t.Run("Decrypt_Error", func(t *testing.T) {
		next := &mocks.MockCipherEncryptor{}
		m := &mockBusinessMetrics{}
		next.On("Decrypt", ctx, data, (*cryptoDomain.SymmetricCryptoKey)(nil)).
			Return(nil, cryptoDomain.ErrIntegrityCheckFailed).
			Once()
		expectMetrics(m, ctx, "cipher_decrypt", "error")

		_, err := NewCipherEncryptorWithMetrics(next, m).Decrypt(ctx, data, nil)
		assert.ErrorIs(t, err, cryptoDomain.ErrIntegrityCheckFailed)
		next.AssertExpectations(t)
		m.AssertExpectations(t)
	})
}
