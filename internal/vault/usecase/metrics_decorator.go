package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	cryptoDomain "github.com/allisson/vaultkeys/internal/crypto/domain"
	"github.com/allisson/vaultkeys/internal/metrics"
	vaultDomain "github.com/allisson/vaultkeys/internal/vault/domain"
)

func record(ctx context.Context, m metrics.BusinessMetrics, operation string, start time.Time, err error) {
	metrics.Observe(ctx, m, metrics.DomainVault, operation, start, err)
}

// cipherMigratorWithMetrics decorates CipherMigrator with metrics instrumentation.
type cipherMigratorWithMetrics struct {
	next    CipherMigrator
	metrics metrics.BusinessMetrics
}

// NewCipherMigratorWithMetrics wraps a CipherMigrator with metrics recording.
func NewCipherMigratorWithMetrics(migrator CipherMigrator, m metrics.BusinessMetrics) CipherMigrator {
	return &cipherMigratorWithMetrics{next: migrator, metrics: m}
}

// ToLatestVersion records metrics for single cipher migration.
func (c *cipherMigratorWithMetrics) ToLatestVersion(
	ctx context.Context,
	data vaultDomain.CipherData,
	key *cryptoDomain.SymmetricCryptoKey,
) (*vaultDomain.CipherDataLatest, error) {
	start := time.Now()
	latest, err := c.next.ToLatestVersion(ctx, data, key)
	record(ctx, c.metrics, "cipher_migrate", start, err)
	return latest, err
}

// MigrateAll records metrics for batch migration.
func (c *cipherMigratorWithMetrics) MigrateAll(
	ctx context.Context,
	session *cryptoDomain.Session,
	records []*vaultDomain.CipherRecord,
) ([]*vaultDomain.CipherDataLatest, error) {
	start := time.Now()
	latest, err := c.next.MigrateAll(ctx, session, records)
	record(ctx, c.metrics, "cipher_migrate_all", start, err)
	return latest, err
}

// MigrateStored records metrics for stored cipher migration.
func (c *cipherMigratorWithMetrics) MigrateStored(
	ctx context.Context,
	session *cryptoDomain.Session,
	userID uuid.UUID,
) (*vaultDomain.MigrationReport, error) {
	start := time.Now()
	report, err := c.next.MigrateStored(ctx, session, userID)
	record(ctx, c.metrics, "cipher_migrate_stored", start, err)
	return report, err
}

// cipherEncryptorWithMetrics decorates CipherEncryptor with metrics instrumentation.
type cipherEncryptorWithMetrics struct {
	next    CipherEncryptor
	metrics metrics.BusinessMetrics
}

// NewCipherEncryptorWithMetrics wraps a CipherEncryptor with metrics recording.
func NewCipherEncryptorWithMetrics(encryptor CipherEncryptor, m metrics.BusinessMetrics) CipherEncryptor {
	return &cipherEncryptorWithMetrics{next: encryptor, metrics: m}
}

// Encrypt records metrics for cipher encryption.
func (c *cipherEncryptorWithMetrics) Encrypt(
	ctx context.Context,
	view *vaultDomain.CipherView,
	key *cryptoDomain.SymmetricCryptoKey,
) (*vaultDomain.CipherDataLatest, error) {
	start := time.Now()
	data, err := c.next.Encrypt(ctx, view, key)
	record(ctx, c.metrics, "cipher_encrypt", start, err)
	return data, err
}

// Decrypt records metrics for cipher decryption.
func (c *cipherEncryptorWithMetrics) Decrypt(
	ctx context.Context,
	data *vaultDomain.CipherDataLatest,
	key *cryptoDomain.SymmetricCryptoKey,
) (*vaultDomain.CipherView, error) {
	start := time.Now()
	view, err := c.next.Decrypt(ctx, data, key)
	record(ctx, c.metrics, "cipher_decrypt", start, err)
	return view, err
}
