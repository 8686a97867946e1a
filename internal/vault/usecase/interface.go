// Package usecase migrates stored cipher data to the latest version and
// converts between encrypted cipher data and plaintext views.
//
// Migration walks the version chain one step at a time. A step may decrypt
// fields with the cipher's key to derive new ones, so records are migrated in
// parallel with the user or organization key taken from the session.
package usecase

import (
	"context"

	"github.com/google/uuid"

	cryptoDomain "github.com/allisson/vaultkeys/internal/crypto/domain"
	vaultDomain "github.com/allisson/vaultkeys/internal/vault/domain"
)

// CipherRepository defines persistence for stored cipher blobs.
//
// Available implementations:
//   - PostgreSQLCipherRepository
//   - MySQLCipherRepository
type CipherRepository interface {
	Create(ctx context.Context, record *vaultDomain.CipherRecord) error
	Get(ctx context.Context, id uuid.UUID) (*vaultDomain.CipherRecord, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*vaultDomain.CipherRecord, error)
	// Update replaces the version and blob of a stored cipher.
	Update(ctx context.Context, record *vaultDomain.CipherRecord) error
}

// CipherMigrator upgrades cipher data to vaultDomain.LatestVersion.
type CipherMigrator interface {
	// ToLatestVersion migrates data one version at a time. Latest data is
	// returned unchanged; unknown versions fail with ErrUnsupportedVersion.
	ToLatestVersion(
		ctx context.Context,
		data vaultDomain.CipherData,
		key *cryptoDomain.SymmetricCryptoKey,
	) (*vaultDomain.CipherDataLatest, error)

	// MigrateAll migrates records in parallel, each under its organization key
	// or the user key. The first failure aborts the batch with a
	// *vaultDomain.RecordError.
	MigrateAll(
		ctx context.Context,
		session *cryptoDomain.Session,
		records []*vaultDomain.CipherRecord,
	) ([]*vaultDomain.CipherDataLatest, error)

	// MigrateStored migrates every stored cipher of userID that is not at the
	// latest version and writes them back in one transaction. Any unknown
	// version aborts the run before anything is written.
	MigrateStored(
		ctx context.Context,
		session *cryptoDomain.Session,
		userID uuid.UUID,
	) (*vaultDomain.MigrationReport, error)
}

// CipherEncryptor converts between plaintext views and latest cipher data.
type CipherEncryptor interface {
	Encrypt(
		ctx context.Context,
		view *vaultDomain.CipherView,
		key *cryptoDomain.SymmetricCryptoKey,
	) (*vaultDomain.CipherDataLatest, error)

	// Decrypt opens data and verifies every login URI checksum.
	Decrypt(
		ctx context.Context,
		data *vaultDomain.CipherDataLatest,
		key *cryptoDomain.SymmetricCryptoKey,
	) (*vaultDomain.CipherView, error)
}
