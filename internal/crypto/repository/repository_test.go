package repository

import (
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/vaultkeys/internal/crypto/domain"
)

var accountKeysColumns = []string{
	"user_id", "email", "kdf_type", "kdf_iterations", "kdf_memory", "kdf_parallelism", "public_key",
	"master_key_wrapped_user_key", "user_key_wrapped_private_key", "device_wrapped_user_key",
	"sealed_device_key", "local_password_verifier", "created_at", "updated_at",
}

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func mustEncString(t *testing.T, s string) cryptoDomain.EncString {
	t.Helper()
	enc, err := cryptoDomain.ParseEncString(s)
	require.NoError(t, err)
	return enc
}

func newAccountKeys(t *testing.T) *cryptoDomain.AccountKeys {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Second)
	return &cryptoDomain.AccountKeys{
		UserID:                   uuid.Must(uuid.NewV7()),
		Email:                    "user@example.com",
		Kdf:                      cryptoDomain.DefaultArgon2idConfig(),
		PublicKey:                cryptoDomain.PublicKey("spki-bytes"),
		MasterKeyWrappedUserKey:  mustEncString(t, "0.AAAA|BBBB|CCCC"),
		UserKeyWrappedPrivateKey: mustEncString(t, "0.DDDD|EEEE|FFFF"),
		LocalPasswordVerifier:    "$argon2id$v=19$m=65536,t=3,p=4$c2FsdA$aGFzaA",
		CreatedAt:                now,
		UpdatedAt:                now,
	}
}
