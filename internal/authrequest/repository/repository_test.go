package repository

import (
	"database/sql"
	"database/sql/driver"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	authRequestDomain "github.com/allisson/vaultkeys/internal/authrequest/domain"
	cryptoDomain "github.com/allisson/vaultkeys/internal/crypto/domain"
)

var authRequestColumnNames = []string{
	"id", "email", "request_device_identifier", "public_key", "access_code_hash", "status",
	"response_key", "response_master_password_hash", "response_device_identifier", "response_at",
	"created_at", "expires_at",
}

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func newPendingRequest() *authRequestDomain.AuthRequest {
	now := time.Now().UTC().Truncate(time.Second)
	return &authRequestDomain.AuthRequest{
		ID:                      uuid.Must(uuid.NewV7()),
		Email:                   "user@example.com",
		RequestDeviceIdentifier: "requester",
		PublicKey:               "AAAA",
		AccessCodeHash:          authRequestDomain.HashAccessCode("ABCDEFGHJKLMNPQRSTUVWXYZa"),
		Status:                  authRequestDomain.StatusPending,
		CreatedAt:               now,
		ExpiresAt:               now.Add(15 * time.Minute),
	}
}

// approve answers req the way the relay does before calling Update.
func approve(t *testing.T, req *authRequestDomain.AuthRequest) {
	t.Helper()
	key, err := cryptoDomain.ParseEncString("3.S0VZ")
	require.NoError(t, err)
	hash, err := cryptoDomain.ParseEncString("3.SEFTSA==")
	require.NoError(t, err)
	require.NoError(t, req.Respond(&authRequestDomain.PasswordlessAuthRequest{
		Key:                &key,
		MasterPasswordHash: &hash,
		DeviceIdentifier:   "approver",
		RequestApproved:    true,
	}, req.CreatedAt.Add(time.Minute)))
}

// approvedRow returns the stored form of an approved request with the given id column.
func approvedRow(req *authRequestDomain.AuthRequest, id driver.Value) *sqlmock.Rows {
	responseAt := req.CreatedAt.Add(time.Minute)
	return sqlmock.NewRows(authRequestColumnNames).AddRow(
		id,
		req.Email,
		req.RequestDeviceIdentifier,
		req.PublicKey,
		req.AccessCodeHash,
		"approved",
		"3.S0VZ",
		"3.SEFTSA==",
		"approver",
		responseAt,
		req.CreatedAt,
		req.ExpiresAt,
	)
}

func pendingRow(req *authRequestDomain.AuthRequest, id driver.Value) []driver.Value {
	return []driver.Value{
		id,
		req.Email,
		req.RequestDeviceIdentifier,
		req.PublicKey,
		req.AccessCodeHash,
		"pending",
		nil,
		nil,
		nil,
		nil,
		req.CreatedAt,
		req.ExpiresAt,
	}
}
