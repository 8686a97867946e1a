// Package usecase implements the key hierarchy of a vault account.
//
// Use cases coordinate the cryptographic services and the account key
// repository to register accounts, unlock sessions and wrap keys. Unwrapped
// keys only ever live in a cryptoDomain.Session; everything persisted is
// wrapped.
//
// # Unlock flows
//
//	password ──KDF──▶ master key ──▶ user key ──▶ private key ──▶ org keys
//	device key (KMS sealed) ──────▶ user key ──▶ ...
//
// Every flow captures the session generation before any slow work and commits
// with it, so a Lock that races an unlock always wins.
package usecase

import (
	"context"

	"github.com/google/uuid"

	cryptoDomain "github.com/allisson/vaultkeys/internal/crypto/domain"
)

// AccountKeysRepository defines persistence for wrapped account and organization keys.
//
// Available implementations:
//   - PostgreSQLAccountKeysRepository
//   - MySQLAccountKeysRepository
type AccountKeysRepository interface {
	Create(ctx context.Context, keys *cryptoDomain.AccountKeys) error
	Get(ctx context.Context, userID uuid.UUID) (*cryptoDomain.AccountKeys, error)
	UpdateDeviceKey(ctx context.Context, keys *cryptoDomain.AccountKeys) error
	CreateOrganizationKey(ctx context.Context, orgKey *cryptoDomain.OrganizationKey) error
	ListOrganizationKeys(ctx context.Context, userID uuid.UUID) ([]*cryptoDomain.OrganizationKey, error)
}

// KeyHierarchyUseCase defines the operations on an account's key hierarchy.
type KeyHierarchyUseCase interface {
	// UnwrapUserKey decrypts the User Key with the Master Key. A 32-byte master
	// key is stretched first. Every failure is reported as ErrWrongKey.
	//
	// Security Note: callers MUST Zero the returned key after use.
	UnwrapUserKey(
		ctx context.Context,
		wrapped cryptoDomain.EncString,
		masterKey *cryptoDomain.SymmetricCryptoKey,
	) (*cryptoDomain.SymmetricCryptoKey, error)

	// UnwrapOrgKey decrypts an Organization Key with the user's PKCS#8 private key.
	// Every failure is reported as ErrWrongKey.
	UnwrapOrgKey(
		ctx context.Context,
		wrapped cryptoDomain.EncString,
		privateKey []byte,
	) (*cryptoDomain.SymmetricCryptoKey, error)

	// WrapKey encrypts child under parent: AES for a symmetric parent (stretched
	// first when it is 32 bytes) and RSA-OAEP for a PublicKey.
	WrapKey(
		ctx context.Context,
		child *cryptoDomain.SymmetricCryptoKey,
		parent cryptoDomain.WrappingKey,
	) (cryptoDomain.EncString, error)

	// UnlockWithPassword unlocks session with the master password. The master
	// key is discarded once the user key is unwrapped.
	UnlockWithPassword(ctx context.Context, session *cryptoDomain.Session, userID uuid.UUID, password string) error

	// LoginWithPassword unlocks session like UnlockWithPassword and also grants
	// the master key to it. It returns the server authorization hash.
	LoginWithPassword(
		ctx context.Context,
		session *cryptoDomain.Session,
		userID uuid.UUID,
		password string,
	) (string, error)

	// UnlockWithUserKey completes an unlock that obtained the user key out of
	// band, such as an approved auth request. It loads the private key and the
	// organization keys and commits at gen. grant may be nil.
	UnlockWithUserKey(
		ctx context.Context,
		session *cryptoDomain.Session,
		gen cryptoDomain.Generation,
		userID uuid.UUID,
		userKey *cryptoDomain.SymmetricCryptoKey,
		grant *cryptoDomain.MasterKeyGrant,
	) error

	// UnlockWithDevice unlocks session with the KMS sealed device key.
	UnlockWithDevice(ctx context.Context, session *cryptoDomain.Session, userID uuid.UUID) error

	// EnrollDevice seals a fresh device key for the unlocked account.
	EnrollDevice(ctx context.Context, session *cryptoDomain.Session, userID uuid.UUID) error

	// VerifyMasterPassword checks password against the stored local verifier
	// without touching any session.
	VerifyMasterPassword(ctx context.Context, userID uuid.UUID, password string) (bool, error)

	// Register creates and persists the full key hierarchy of a new account.
	Register(ctx context.Context, input *cryptoDomain.RegisterInput) (*cryptoDomain.AccountKeys, error)

	// CreateOrganizationKey creates an organization key for the unlocked user,
	// persists it wrapped with the user's public key and caches it in session.
	CreateOrganizationKey(
		ctx context.Context,
		session *cryptoDomain.Session,
		userID, orgID uuid.UUID,
	) (*cryptoDomain.OrganizationKey, error)

	// MakeSendKey creates Send key material and wraps the material with parent.
	MakeSendKey(ctx context.Context, parent *cryptoDomain.SymmetricCryptoKey) (*cryptoDomain.SendKey, error)

	// MakeAttachmentKey creates a 512-bit attachment key wrapped with parent.
	MakeAttachmentKey(
		ctx context.Context,
		parent *cryptoDomain.SymmetricCryptoKey,
	) (*cryptoDomain.SymmetricCryptoKey, cryptoDomain.EncString, error)

	// Lock zeroes every key cached by session and starts a new generation.
	Lock(ctx context.Context, session *cryptoDomain.Session)
}
