// Package repository persists versioned cipher blobs.
//
// Blobs are stored as raw bytes so data of an unknown version is kept byte
// for byte until a newer build can migrate it.
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

// PostgreSQLCipherRepository implements cipher persistence for PostgreSQL.
type PostgreSQLCipherRepository struct {
	db *sql.DB
}

// NewPostgreSQLCipherRepository creates a new PostgreSQLCipherRepository.
func NewPostgreSQLCipherRepository(db *sql.DB) *PostgreSQLCipherRepository {
	return &PostgreSQLCipherRepository{db: db}
}

// Create inserts a new cipher.
func (p *PostgreSQLCipherRepository) Create(ctx context.Context, record *vaultDomain.CipherRecord) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO ciphers (` + cipherColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := querier.ExecContext(
		ctx,
		query,
		record.ID,
		record.UserID,
		record.OrganizationID,
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
func (p *PostgreSQLCipherRepository) Get(ctx context.Context, id uuid.UUID) (*vaultDomain.CipherRecord, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + cipherColumns + ` FROM ciphers WHERE id = $1`

	record, err := scanCipher(querier.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, vaultDomain.ErrCipherNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get cipher")
	}
	return record, nil
}

// ListByUser returns every cipher of a user ordered by id.
func (p *PostgreSQLCipherRepository) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
) ([]*vaultDomain.CipherRecord, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + cipherColumns + ` FROM ciphers WHERE user_id = $1 ORDER BY id`

	rows, err := querier.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list ciphers")
	}
	return scanCiphers(rows)
}

// Update replaces the version and blob of a cipher.
func (p *PostgreSQLCipherRepository) Update(ctx context.Context, record *vaultDomain.CipherRecord) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE ciphers SET version = $1, data = $2, updated_at = $3 WHERE id = $4`

	result, err := querier.ExecContext(ctx, query, record.Version, record.Data, record.UpdatedAt, record.ID)
	if err != nil {
		return apperrors.Wrap(err, "failed to update cipher")
	}
	return expectOneRow(result)
}
