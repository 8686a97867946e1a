package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	authRequestDomain "github.com/allisson/vaultkeys/internal/authrequest/domain"
	"github.com/allisson/vaultkeys/internal/database"
	apperrors "github.com/allisson/vaultkeys/internal/errors"
)

// MySQLAuthRequestRepository implements auth request persistence for MySQL.
// Uses BINARY(16) for UUIDs.
type MySQLAuthRequestRepository struct {
	db *sql.DB
}

// NewMySQLAuthRequestRepository creates a new MySQLAuthRequestRepository.
func NewMySQLAuthRequestRepository(db *sql.DB) *MySQLAuthRequestRepository {
	return &MySQLAuthRequestRepository{db: db}
}

// Create inserts a new auth request.
func (m *MySQLAuthRequestRepository) Create(ctx context.Context, req *authRequestDomain.AuthRequest) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO auth_requests (` + authRequestColumns + `)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	id, err := req.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal auth request id")
	}

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
		req.Email,
		req.RequestDeviceIdentifier,
		req.PublicKey,
		req.AccessCodeHash,
		string(req.Status),
		nullEncString(req.Key),
		nullEncString(req.MasterPasswordHash),
		nullString(req.ResponseDeviceIdentifier),
		nullTime(req.ResponseAt),
		req.CreatedAt,
		req.ExpiresAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return apperrors.Wrap(apperrors.ErrConflict, "auth request already exists")
		}
		return apperrors.Wrap(err, "failed to create auth request")
	}
	return nil
}

// Get returns an auth request by id.
func (m *MySQLAuthRequestRepository) Get(ctx context.Context, id uuid.UUID) (*authRequestDomain.AuthRequest, error) {
	return m.get(ctx, id, "")
}

// GetForUpdate returns an auth request by id and locks its row until the
// surrounding transaction ends.
func (m *MySQLAuthRequestRepository) GetForUpdate(
	ctx context.Context,
	id uuid.UUID,
) (*authRequestDomain.AuthRequest, error) {
	return m.get(ctx, id, " FOR UPDATE")
}

func (m *MySQLAuthRequestRepository) get(
	ctx context.Context,
	id uuid.UUID,
	lock string,
) (*authRequestDomain.AuthRequest, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + authRequestColumns + ` FROM auth_requests WHERE id = ?` + lock

	binaryID, err := id.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal auth request id")
	}

	req, err := scanAuthRequest(querier.QueryRowContext(ctx, query, binaryID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, authRequestDomain.ErrAuthRequestNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get auth request")
	}
	return req, nil
}

// ListPendingByEmail returns pending requests for email that have not expired at now.
func (m *MySQLAuthRequestRepository) ListPendingByEmail(
	ctx context.Context,
	email string,
	now time.Time,
) ([]*authRequestDomain.AuthRequest, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + authRequestColumns + ` FROM auth_requests
			  WHERE email = ? AND status = ? AND expires_at >= ?
			  ORDER BY created_at DESC`

	rows, err := querier.QueryContext(ctx, query, email, string(authRequestDomain.StatusPending), now)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list auth requests")
	}
	defer func() { _ = rows.Close() }()

	var reqs []*authRequestDomain.AuthRequest
	for rows.Next() {
		req, err := scanAuthRequest(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan auth request")
		}
		reqs = append(reqs, req)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate auth requests")
	}
	return reqs, nil
}

// Update persists the status and response of a request that is still pending.
// It fails with ErrInvalidTransition when the stored row has moved on.
func (m *MySQLAuthRequestRepository) Update(ctx context.Context, req *authRequestDomain.AuthRequest) error {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE auth_requests
			  SET status = ?,
				  response_key = ?,
				  response_master_password_hash = ?,
				  response_device_identifier = ?,
				  response_at = ?
			  WHERE id = ? AND status = ?`

	id, err := req.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal auth request id")
	}

	result, err := querier.ExecContext(
		ctx,
		query,
		string(req.Status),
		nullEncString(req.Key),
		nullEncString(req.MasterPasswordHash),
		nullString(req.ResponseDeviceIdentifier),
		nullTime(req.ResponseAt),
		id,
		string(authRequestDomain.StatusPending),
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update auth request")
	}
	return expectTransition(result)
}

// DeleteExpiredBefore deletes requests that expired before the given time and
// returns how many were removed.
func (m *MySQLAuthRequestRepository) DeleteExpiredBefore(ctx context.Context, before time.Time) (int64, error) {
	querier := database.GetTx(ctx, m.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM auth_requests WHERE expires_at < ?`, before)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete expired auth requests")
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to read affected rows")
	}
	return n, nil
}
