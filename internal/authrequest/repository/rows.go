package repository

import (
	"database/sql"
	"time"

	authRequestDomain "github.com/allisson/vaultkeys/internal/authrequest/domain"
	cryptoDomain "github.com/allisson/vaultkeys/internal/crypto/domain"
	apperrors "github.com/allisson/vaultkeys/internal/errors"
)

const authRequestColumns = `id, email, request_device_identifier, public_key, access_code_hash, status,
			  response_key, response_master_password_hash, response_device_identifier, response_at,
			  created_at, expires_at`

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// authRequestRow is the column set shared by both SQL dialects. id holds
// either the textual (PostgreSQL) or the 16-byte binary (MySQL) form.
type authRequestRow struct {
	id                       []byte
	email                    string
	requestDeviceIdentifier  string
	publicKey                string
	accessCodeHash           string
	status                   string
	key                      sql.NullString
	masterPasswordHash       sql.NullString
	responseDeviceIdentifier sql.NullString
	responseAt               sql.NullTime
	createdAt                time.Time
	expiresAt                time.Time
}

func scanAuthRequest(s scanner) (*authRequestDomain.AuthRequest, error) {
	var row authRequestRow
	if err := s.Scan(
		&row.id,
		&row.email,
		&row.requestDeviceIdentifier,
		&row.publicKey,
		&row.accessCodeHash,
		&row.status,
		&row.key,
		&row.masterPasswordHash,
		&row.responseDeviceIdentifier,
		&row.responseAt,
		&row.createdAt,
		&row.expiresAt,
	); err != nil {
		return nil, err
	}
	return row.toDomain()
}

func (r *authRequestRow) toDomain() (*authRequestDomain.AuthRequest, error) {
	req := &authRequestDomain.AuthRequest{
		Email:                    r.email,
		RequestDeviceIdentifier:  r.requestDeviceIdentifier,
		PublicKey:                r.publicKey,
		AccessCodeHash:           r.accessCodeHash,
		Status:                   authRequestDomain.Status(r.status),
		ResponseDeviceIdentifier: r.responseDeviceIdentifier.String,
		CreatedAt:                r.createdAt,
		ExpiresAt:                r.expiresAt,
	}
	if err := req.ID.Scan(r.id); err != nil {
		return nil, apperrors.Wrap(err, "failed to parse auth request id")
	}
	if r.responseAt.Valid {
		at := r.responseAt.Time
		req.ResponseAt = &at
	}

	var err error
	if req.Key, err = parseNullEncString(r.key); err != nil {
		return nil, apperrors.Wrap(err, "response key")
	}
	if req.MasterPasswordHash, err = parseNullEncString(r.masterPasswordHash); err != nil {
		return nil, apperrors.Wrap(err, "response master password hash")
	}
	return req, nil
}

func parseNullEncString(s sql.NullString) (*cryptoDomain.EncString, error) {
	if !s.Valid {
		return nil, nil
	}
	enc, err := cryptoDomain.ParseEncString(s.String)
	if err != nil {
		return nil, err
	}
	return &enc, nil
}

func nullEncString(enc *cryptoDomain.EncString) sql.NullString {
	if enc == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: enc.String(), Valid: true}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

// expectTransition maps an update that matched no pending row.
func expectTransition(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to read affected rows")
	}
	if n == 0 {
		return authRequestDomain.ErrInvalidTransition
	}
	return nil
}
