package repository

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	cryptoDomain "github.com/allisson/vaultkeys/internal/crypto/domain"
	apperrors "github.com/allisson/vaultkeys/internal/errors"
)

// accountKeysRow is the column set shared by both SQL dialects. userID holds
// either the textual (PostgreSQL) or the 16-byte binary (MySQL) form.
type accountKeysRow struct {
	userID                   []byte
	email                    string
	kdfType                  int
	kdfIterations            int
	kdfMemory                int
	kdfParallelism           int
	publicKey                []byte
	masterKeyWrappedUserKey  string
	userKeyWrappedPrivateKey string
	deviceWrappedUserKey     sql.NullString
	sealedDeviceKey          []byte
	localPasswordVerifier    string
	createdAt                time.Time
	updatedAt                time.Time
}

func (r *accountKeysRow) toDomain() (*cryptoDomain.AccountKeys, error) {
	keys := &cryptoDomain.AccountKeys{
		Email: r.email,
		Kdf: cryptoDomain.KdfConfig{
			Type:        cryptoDomain.KdfType(r.kdfType),
			Iterations:  r.kdfIterations,
			Memory:      r.kdfMemory,
			Parallelism: r.kdfParallelism,
		},
		PublicKey:             cryptoDomain.PublicKey(r.publicKey),
		SealedDeviceKey:       r.sealedDeviceKey,
		LocalPasswordVerifier: r.localPasswordVerifier,
		CreatedAt:             r.createdAt,
		UpdatedAt:             r.updatedAt,
	}

	if err := keys.UserID.Scan(r.userID); err != nil {
		return nil, apperrors.Wrap(err, "failed to parse user id")
	}

	var err error
	if keys.MasterKeyWrappedUserKey, err = cryptoDomain.ParseEncString(r.masterKeyWrappedUserKey); err != nil {
		return nil, apperrors.Wrap(err, "master key wrapped user key")
	}
	if keys.UserKeyWrappedPrivateKey, err = cryptoDomain.ParseEncString(r.userKeyWrappedPrivateKey); err != nil {
		return nil, apperrors.Wrap(err, "user key wrapped private key")
	}
	if r.deviceWrappedUserKey.Valid {
		deviceWrapped, err := cryptoDomain.ParseEncString(r.deviceWrappedUserKey.String)
		if err != nil {
			return nil, apperrors.Wrap(err, "device wrapped user key")
		}
		keys.DeviceWrappedUserKey = &deviceWrapped
	}

	return keys, nil
}

func nullEncString(enc *cryptoDomain.EncString) sql.NullString {
	if enc == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: enc.String(), Valid: true}
}

func expectOneRow(result sql.Result, notFound error) error {
	n, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to read affected rows")
	}
	if n == 0 {
		return notFound
	}
	return nil
}

func scanUUID(b []byte) (uuid.UUID, error) {
	var id uuid.UUID
	if err := id.Scan(b); err != nil {
		return uuid.Nil, apperrors.Wrap(err, "failed to parse uuid")
	}
	return id, nil
}
