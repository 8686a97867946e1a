// Package repository persists auth requests for the relay server.
//
// Updates only apply to rows that are still pending, so two devices answering
// the same request cannot both win.
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

// PostgreSQLAuthRequestRepository implements auth request persistence for PostgreSQL.
type PostgreSQLAuthRequestRepository struct {
	db *sql.DB
}

// NewPostgreSQLAuthRequestRepository creates a new PostgreSQLAuthRequestRepository.
func NewPostgreSQLAuthRequestRepository(db *sql.DB) *PostgreSQLAuthRequestRepository {
	return &PostgreSQLAuthRequestRepository{db: db}
}

// Create inserts a new auth request.
func (p *PostgreSQLAuthRequestRepository) Create(ctx context.Context, req *authRequestDomain.AuthRequest) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO auth_requests (` + authRequestColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := querier.ExecContext(
		ctx,
		query,
		req.ID,
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
func (p *PostgreSQLAuthRequestRepository) Get(
	ctx context.Context,
	id uuid.UUID,
) (*authRequestDomain.AuthRequest, error) {
	return p.get(ctx, id, "")
}

// GetForUpdate returns an auth request by id and locks its row until the
// surrounding transaction ends.
func (p *PostgreSQLAuthRequestRepository) GetForUpdate(
	ctx context.Context,
	id uuid.UUID,
) (*authRequestDomain.AuthRequest, error) {
	return p.get(ctx, id, " FOR UPDATE")
}

func (p *PostgreSQLAuthRequestRepository) get(
	ctx context.Context,
	id uuid.UUID,
	lock string,
) (*authRequestDomain.AuthRequest, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + authRequestColumns + ` FROM auth_requests WHERE id = $1` + lock

	req, err := scanAuthRequest(querier.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, authRequestDomain.ErrAuthRequestNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get auth request")
	}
	return req, nil
}

// ListPendingByEmail returns pending requests for email that have not expired at now.
func (p *PostgreSQLAuthRequestRepository) ListPendingByEmail(
	ctx context.Context,
	email string,
	now time.Time,
) ([]*authRequestDomain.AuthRequest, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + authRequestColumns + ` FROM auth_requests
			  WHERE email = $1 AND status = $2 AND expires_at >= $3
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
func (p *PostgreSQLAuthRequestRepository) Update(ctx context.Context, req *authRequestDomain.AuthRequest) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE auth_requests
			  SET status = $1,
				  response_key = $2,
				  response_master_password_hash = $3,
				  response_device_identifier = $4,
				  response_at = $5
			  WHERE id = $6 AND status = $7`

	result, err := querier.ExecContext(
		ctx,
		query,
		string(req.Status),
		nullEncString(req.Key),
		nullEncString(req.MasterPasswordHash),
		nullString(req.ResponseDeviceIdentifier),
		nullTime(req.ResponseAt),
		req.ID,
		string(authRequestDomain.StatusPending),
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update auth request")
	}
	return expectTransition(result)
}

// DeleteExpiredBefore deletes requests that expired before the given time and
// returns how many were removed.
func (p *PostgreSQLAuthRequestRepository) DeleteExpiredBefore(ctx context.Context, before time.Time) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM auth_requests WHERE expires_at < $1`, before)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete expired auth requests")
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to read affected rows")
	}
	return n, nil
}
