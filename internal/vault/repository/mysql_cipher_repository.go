package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/allisson/vaultkeys/internal/database"
	apperrors "github.com/allisson/vaultkeys/internal/errors"
	vaultDomain "github.com/allisson/vaultkeys/internal/vault/domain"
)

// MySQLCipherRepository implements cipher persistence for MySQL.
// Uses BINARY(16) for UUIDs.
type MySQLCipherRepository struct {
	db *sql.DB
}

// NewMySQLCipherRepository creates a new MySQLCipherRepository.
func NewMySQLCipherRepository(db *sql.DB) *MySQLCipherRepository {
	return &MySQLCipherRepository{db: db}
}

// binaryOrNil returns an untyped nil for a missing id so the driver writes NULL.
func binaryOrNil(id *uuid.UUID) (any, error) {
	if id == nil {
		return nil, nil
	}
	return id.MarshalBinary()
}

// Create inserts a new cipher.
func (m *MySQLCipherRepository) Create(ctx context.Context, record *vaultDomain.CipherRecord) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO ciphers (` + cipherColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`

	id, err := record.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal cipher id")
	}
	userID, err := record.UserID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal user id")
	}
	orgID, err := binaryOrNil(record.OrganizationID)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal organization id")
	}

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
		userID,
		orgID,
		record.Version,
		record.Data,
		record.CreatedAt,
		record.UpdatedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return vaultDomain.ErrCipherAlreadyExists
		}
		return apperrors.Wrap(err, "failed to create cipher")
	}
	return nil
}

// Get returns a cipher by id.
func (m *MySQLCipherRepository) Get(ctx context.Context, id uuid.UUID) (*vaultDomain.CipherRecord, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + cipherColumns + ` FROM ciphers WHERE id = ?`

	binaryID, err := id.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal cipher id")
	}

	record, err := scanCipher(querier.QueryRowContext(ctx, query, binaryID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, vaultDomain.ErrCipherNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get cipher")
	}
	return record, nil
}

// ListByUser returns every cipher of a user ordered by id.
func (m *MySQLCipherRepository) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
) ([]*vaultDomain.CipherRecord, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + cipherColumns + ` FROM ciphers WHERE user_id = ? ORDER BY id`

	binaryUserID, err := userID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal user id")
	}

	rows, err := querier.QueryContext(ctx, query, binaryUserID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list ciphers")
	}
	return scanCiphers(rows)
}

// Update replaces the version and blob of a cipher.
func (m *MySQLCipherRepository) Update(ctx context.Context, record *vaultDomain.CipherRecord) error {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE ciphers SET version = ?, data = ?, updated_at = ? WHERE id = ?`

	id, err := record.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal cipher id")
	}

	result, err := querier.ExecContext(ctx, query, record.Version, record.Data, record.UpdatedAt, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to update cipher")
	}
	return expectOneRow(result)
}
