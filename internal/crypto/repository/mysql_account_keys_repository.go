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

// MySQLAccountKeysRepository implements account key persistence for MySQL.
// Uses BINARY(16) for UUIDs and BLOB for binary data with transaction support.
type MySQLAccountKeysRepository struct {
	db *sql.DB
}

// NewMySQLAccountKeysRepository creates a new MySQLAccountKeysRepository.
func NewMySQLAccountKeysRepository(db *sql.DB) *MySQLAccountKeysRepository {
	return &MySQLAccountKeysRepository{db: db}
}

// Create inserts the wrapped keys of a new account.
func (m *MySQLAccountKeysRepository) Create(ctx context.Context, keys *cryptoDomain.AccountKeys) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO account_keys (user_id, email, kdf_type, kdf_iterations, kdf_memory, kdf_parallelism,
			  public_key, master_key_wrapped_user_key, user_key_wrapped_private_key, device_wrapped_user_key,
			  sealed_device_key, local_password_verifier, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	userID, err := keys.UserID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal user id")
	}

	_, err = querier.ExecContext(
		ctx,
		query,
		userID,
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
func (m *MySQLAccountKeysRepository) Get(ctx context.Context, userID uuid.UUID) (*cryptoDomain.AccountKeys, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT user_id, email, kdf_type, kdf_iterations, kdf_memory, kdf_parallelism, public_key,
			  master_key_wrapped_user_key, user_key_wrapped_private_key, device_wrapped_user_key,
			  sealed_device_key, local_password_verifier, created_at, updated_at
			  FROM account_keys WHERE user_id = ?`

	id, err := userID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal user id")
	}

	var row accountKeysRow
	err = querier.QueryRowContext(ctx, query, id).Scan(
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
func (m *MySQLAccountKeysRepository) UpdateDeviceKey(ctx context.Context, keys *cryptoDomain.AccountKeys) error {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE account_keys
			  SET device_wrapped_user_key = ?,
				  sealed_device_key = ?,
				  updated_at = ?
			  WHERE user_id = ?`

	id, err := keys.UserID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal user id")
	}

	result, err := querier.ExecContext(
		ctx,
		query,
		nullEncString(keys.DeviceWrappedUserKey),
		keys.SealedDeviceKey,
		keys.UpdatedAt,
		id,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update device key")
	}
	return expectOneRow(result, cryptoDomain.ErrAccountKeysNotFound)
}

// CreateOrganizationKey stores an organization key wrapped for a member.
func (m *MySQLAccountKeysRepository) CreateOrganizationKey(
	ctx context.Context,
	orgKey *cryptoDomain.OrganizationKey,
) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO organization_keys (user_id, organization_id, wrapped_key, created_at)
			  VALUES (?, ?, ?, ?)`

	userID, err := orgKey.UserID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal user id")
	}
	orgID, err := orgKey.OrganizationID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal organization id")
	}

	_, err = querier.ExecContext(ctx, query, userID, orgID, orgKey.WrappedKey.String(), orgKey.CreatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return apperrors.Wrap(apperrors.ErrConflict, "organization key already exists")
		}
		return apperrors.Wrap(err, "failed to create organization key")
	}
	return nil
}

// ListOrganizationKeys returns every organization key wrapped for the user.
func (m *MySQLAccountKeysRepository) ListOrganizationKeys(
	ctx context.Context,
	userID uuid.UUID,
) ([]*cryptoDomain.OrganizationKey, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT user_id, organization_id, wrapped_key, created_at
			  FROM organization_keys WHERE user_id = ? ORDER BY organization_id`

	id, err := userID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal user id")
	}

	rows, err := querier.QueryContext(ctx, query, id)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list organization keys")
	}
	defer func() { _ = rows.Close() }()

	var orgKeys []*cryptoDomain.OrganizationKey
	for rows.Next() {
		var orgKey cryptoDomain.OrganizationKey
		var userIDBytes, orgIDBytes []byte
		var wrapped string
		if err := rows.Scan(&userIDBytes, &orgIDBytes, &wrapped, &orgKey.CreatedAt); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan organization key")
		}
		if orgKey.UserID, err = scanUUID(userIDBytes); err != nil {
			return nil, err
		}
		if orgKey.OrganizationID, err = scanUUID(orgIDBytes); err != nil {
			return nil, err
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
