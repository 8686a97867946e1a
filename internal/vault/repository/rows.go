package repository

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/allisson/vaultkeys/internal/errors"
	vaultDomain "github.com/allisson/vaultkeys/internal/vault/domain"
)

const cipherColumns = `id, user_id, organization_id, version, data, created_at, updated_at`

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// cipherRow holds ids in either the textual (PostgreSQL) or the 16-byte
// binary (MySQL) form.
type cipherRow struct {
	id             []byte
	userID         []byte
	organizationID []byte
	version        int
	data           []byte
	createdAt      time.Time
	updatedAt      time.Time
}

func scanCipher(s scanner) (*vaultDomain.CipherRecord, error) {
	var row cipherRow
	if err := s.Scan(
		&row.id,
		&row.userID,
		&row.organizationID,
		&row.version,
		&row.data,
		&row.createdAt,
		&row.updatedAt,
	); err != nil {
		return nil, err
	}
	return row.toDomain()
}

func (r *cipherRow) toDomain() (*vaultDomain.CipherRecord, error) {
	record := &vaultDomain.CipherRecord{
		Version:   r.version,
		Data:      r.data,
		CreatedAt: r.createdAt,
		UpdatedAt: r.updatedAt,
	}
	if err := record.ID.Scan(r.id); err != nil {
		return nil, apperrors.Wrap(err, "failed to parse cipher id")
	}
	if err := record.UserID.Scan(r.userID); err != nil {
		return nil, apperrors.Wrap(err, "failed to parse cipher user id")
	}
	if r.organizationID != nil {
		var orgID uuid.UUID
		if err := orgID.Scan(r.organizationID); err != nil {
			return nil, apperrors.Wrap(err, "failed to parse cipher organization id")
		}
		record.OrganizationID = &orgID
	}
	return record, nil
}

func scanCiphers(rows *sql.Rows) ([]*vaultDomain.CipherRecord, error) {
	defer func() { _ = rows.Close() }()

	var records []*vaultDomain.CipherRecord
	for rows.Next() {
		record, err := scanCipher(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan cipher")
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate ciphers")
	}
	return records, nil
}

// expectOneRow maps an update that matched nothing to ErrCipherNotFound.
func expectOneRow(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to read affected rows")
	}
	if n == 0 {
		return vaultDomain.ErrCipherNotFound
	}
	return nil
}
