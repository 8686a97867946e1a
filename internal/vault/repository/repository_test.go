package repository

import (
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	vaultDomain "github.com/allisson/vaultkeys/internal/vault/domain"
)

var cipherColumnNames = []string{"id", "user_id", "organization_id", "version", "data", "created_at", "updated_at"}

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func newCipherRecord(orgID *uuid.UUID) *vaultDomain.CipherRecord {
	now := time.Now().UTC().Truncate(time.Second)
	return &vaultDomain.CipherRecord{
		ID:             uuid.Must(uuid.NewV7()),
		UserID:         uuid.Must(uuid.NewV7()),
		OrganizationID: orgID,
		Version:        1,
		Data:           []byte(`{"version":1}`),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}
