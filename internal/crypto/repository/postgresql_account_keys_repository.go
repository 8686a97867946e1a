// Package repository persists wrapped account and organization keys.
//
// Only EncStrings, public keys and KMS-sealed blobs reach the database. Each
// repository has a PostgreSQL and a MySQL implementation; both join an ambient
// transaction through database.GetTx.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	cryptoDomain "github.com/allisson/vaultkeys/internal/crypto/domain"
	"github.com/allisson/vaultkeys/internal/database"
	apperrors "github.com/allisson/vaultkeys/internal/errors"
)

// PostgreSQLAccountKeysRepository implements account key persistence for PostgreSQL.
type PostgreSQLAccountKeysRepository struct {
	db *sql.DB
}

// NewPostgreSQLAccountKeysRepository creates a new PostgreSQLAccountKeysRepository.
func NewPostgreSQLAccountKeysRepository(db *sql.DB) *PostgreSQLAccountKeysRepository {
	return &PostgreSQLAccountKeysRepository{db: db}
}

// Create inserts the wrapped keys of a new account.
func (p *PostgreSQLAccountKeysRepository) Create(ctx context.Context, keys *cryptoDomain.AccountKeys) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO account_keys (user_id, email, kdf_type, kdf_iterations, kdf_memory, kdf_parallelism,
			  public_key, master_key_wrapped_user_key, user_key_wrapped_private_key, device_wrapped_user_key,
			  sealed_device_key, local_password_verifier, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	_, err := querier.ExecContext(
		ctx,
		query,
		keys.UserID,
		keys.Email,
		keys.Kdf.Type,
		keys.Kdf.Iterations,
		keys.Kdf.Memory,
		keys.Kdf.Parallelism,
		[]byte(keys.PublicKey),
		keys.MasterKeyWrappedUserKey.String(),
		keys.UserKeyWrappedPrivateKey.String(),
		nullEncString(keys.DeviceWrappedUserKey),
		keys.SealedDeviceKey,
		keys.LocalPasswordVerifier,
		keys.CreatedAt,
		keys.UpdatedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return cryptoDomain.ErrAccountKeysAlreadyExist
		}
		return apperrors.Wrap(err, "failed to create account keys")
	}
	return nil
}

// Get returns the wrapped keys of an account.
func (p *PostgreSQLAccountKeysRepository) Get(
	ctx context.Context,
	userID uuid.UUID,
) (*cryptoDomain.AccountKeys, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT user_id, email, kdf_type, kdf_iterations, kdf_memory, kdf_parallelism, public_key,
			  master_key_wrapped_user_key, user_key_wrapped_private_key, device_wrapped_user_key,
			  sealed_device_key, local_password_verifier, created_at, updated_at
			  FROM account_keys WHERE user_id = $1`

	var row accountKeysRow
	err := querier.QueryRowContext(ctx, query, userID).Scan(
		&row.userID,
		&row.email,
		&row.kdfType,
		&row.kdfIterations,
		&row.kdfMemory,
		&row.kdfParallelism,
		&row.publicKey,
		&row.masterKeyWrappedUserKey,
		&row.userKeyWrappedPrivateKey,
		&row.deviceWrappedUserKey,
		&row.sealedDeviceKey,
		&row.localPasswordVerifier,
		&row.createdAt,
		&row.updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, cryptoDomain.ErrAccountKeysNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get account keys")
	}

	return row.toDomain()
}

// UpdateDeviceKey stores (or clears, when wrapped is nil) the device unlock factor.
func (p *PostgreSQLAccountKeysRepository) UpdateDeviceKey(
	ctx context.Context,
	keys *cryptoDomain.AccountKeys,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE account_keys
			  SET device_wrapped_user_key = $1,
				  sealed_device_key = $2,
				  updated_at = $3
			  WHERE user_id = $4`

	result, err := querier.ExecContext(
		ctx,
		query,
		nullEncString(keys.DeviceWrappedUserKey),
		keys.SealedDeviceKey,
		keys.UpdatedAt,
		keys.UserID,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update device key")
	}
	return expectOneRow(result, cryptoDomain.ErrAccountKeysNotFound)
}

// CreateOrganizationKey stores an organization key wrapped for a member.
func (p *PostgreSQLAccountKeysRepository) CreateOrganizationKey(
	ctx context.Context,
	orgKey *cryptoDomain.OrganizationKey,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO organization_keys (user_id, organization_id, wrapped_key, created_at)
			  VALUES ($1, $2, $3, $4)`

	_, err := querier.ExecContext(
		ctx,
		query,
		orgKey.UserID,
		orgKey.OrganizationID,
		orgKey.WrappedKey.String(),
		orgKey.CreatedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return apperrors.Wrap(apperrors.ErrConflict, "organization key already exists")
		}
		return apperrors.Wrap(err, "failed to create organization key")
	}
	return nil
}

// ListOrganizationKeys returns every organization key wrapped for the user.
func (p *PostgreSQLAccountKeysRepository) ListOrganizationKeys(
	ctx context.Context,
	userID uuid.UUID,
) ([]*cryptoDomain.OrganizationKey, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT user_id, organization_id, wrapped_key, created_at
			  FROM organization_keys WHERE user_id = $1 ORDER BY organization_id`

	rows, err := querier.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list organization keys")
	}
	defer func() { _ = rows.Close() }()

	var orgKeys []*cryptoDomain.OrganizationKey
	for rows.Next() {
		var orgKey cryptoDomain.OrganizationKey
		var wrapped string
		if err := rows.Scan(&orgKey.UserID, &orgKey.OrganizationID, &wrapped, &orgKey.CreatedAt); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan organization key")
		}
		if orgKey.WrappedKey, err = cryptoDomain.ParseEncString(wrapped); err != nil {
			return nil, apperrors.Wrapf(err, "organization %s", orgKey.OrganizationID)
		}
		orgKeys = append(orgKeys, &orgKey)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate organization keys")
	}
	return orgKeys, nil
}
