// Package usecase implements both ends of the auth request exchange.
//
// AuthRequestService is the client protocol: a new device creates a request
// with a fresh RSA keypair, an unlocked device approves it by encrypting its
// master key and hash (or, failing that, its user key) to the request's public
// key, and the new device opens the response with its private key.
//
// RelayUseCase is the server that stores requests and responses between the
// two devices.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	authRequestDomain "github.com/allisson/vaultkeys/internal/authrequest/domain"
	cryptoDomain "github.com/allisson/vaultkeys/internal/crypto/domain"
)

// AuthRequestRepository defines persistence for auth requests.
type AuthRequestRepository interface {
	Create(ctx context.Context, req *authRequestDomain.AuthRequest) error
	Get(ctx context.Context, id uuid.UUID) (*authRequestDomain.AuthRequest, error)
	// GetForUpdate is Get with a row lock, used inside a transaction.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*authRequestDomain.AuthRequest, error)
	ListPendingByEmail(ctx context.Context, email string, now time.Time) ([]*authRequestDomain.AuthRequest, error)
	// Update persists the status and response fields of a request.
	Update(ctx context.Context, req *authRequestDomain.AuthRequest) error
	DeleteExpiredBefore(ctx context.Context, before time.Time) (int64, error)
}

// AccountKeysRepository is the part of the account key store the client needs.
type AccountKeysRepository interface {
	Get(ctx context.Context, userID uuid.UUID) (*cryptoDomain.AccountKeys, error)
}

// RelayClient talks to a relay server. client.RelayClient implements it over HTTP.
type RelayClient interface {
	Create(
		ctx context.Context,
		input *authRequestDomain.CreateAuthRequestInput,
	) (*authRequestDomain.AuthRequest, error)
	Get(ctx context.Context, id uuid.UUID, accessCode string) (*authRequestDomain.AuthRequest, error)
	ListPending(ctx context.Context, email string) ([]*authRequestDomain.AuthRequest, error)
	Respond(
		ctx context.Context,
		id uuid.UUID,
		resp *authRequestDomain.PasswordlessAuthRequest,
	) (*authRequestDomain.AuthRequest, error)
}

// AuthRequestService is the client side of the exchange.
type AuthRequestService interface {
	// ApproveOrDenyAuthRequest answers request from the unlocked session.
	// Missing id or public key fails with ErrInvalidRequest before any
	// cryptographic work.
	ApproveOrDenyAuthRequest(
		ctx context.Context,
		session *cryptoDomain.Session,
		approve bool,
		request *authRequestDomain.AuthRequest,
	) (*authRequestDomain.AuthRequest, error)

	// DecryptPubKeyEncryptedUserKey opens a user key shared by an approving device.
	DecryptPubKeyEncryptedUserKey(
		wrapped cryptoDomain.EncString,
		privateKey []byte,
	) (*cryptoDomain.SymmetricCryptoKey, error)

	// DecryptPubKeyEncryptedMasterKeyAndHash opens a master key and its hash
	// shared by an approving device.
	DecryptPubKeyEncryptedMasterKeyAndHash(
		wrappedKey, wrappedHash cryptoDomain.EncString,
		privateKey []byte,
	) (*cryptoDomain.SymmetricCryptoKey, string, error)

	// SetUserKeyAfterDecryptingSharedUserKey unlocks session with a shared user key.
	SetUserKeyAfterDecryptingSharedUserKey(
		ctx context.Context,
		session *cryptoDomain.Session,
		userID uuid.UUID,
		request *authRequestDomain.AuthRequest,
		pending *authRequestDomain.PendingLogin,
	) error

	// SetKeysAfterDecryptingSharedMasterKeyAndHash unlocks session with a shared
	// master key. The master key, its hash and the user key are committed
	// together or not at all.
	SetKeysAfterDecryptingSharedMasterKeyAndHash(
		ctx context.Context,
		session *cryptoDomain.Session,
		userID uuid.UUID,
		request *authRequestDomain.AuthRequest,
		pending *authRequestDomain.PendingLogin,
	) error

	// CreateAuthRequest starts a login on this device.
	CreateAuthRequest(ctx context.Context, email, deviceIdentifier string) (*authRequestDomain.PendingLogin, error)

	// CompleteLogin fetches the answer to pending and unlocks session with it.
	CompleteLogin(
		ctx context.Context,
		session *cryptoDomain.Session,
		userID uuid.UUID,
		pending *authRequestDomain.PendingLogin,
	) error
}

// RelayUseCase is the server side that stores requests between devices.
type RelayUseCase interface {
	Create(
		ctx context.Context,
		input *authRequestDomain.CreateAuthRequestInput,
	) (*authRequestDomain.AuthRequest, error)

	// Get returns the request, expiring it first when its time has passed.
	// The response fields are only returned when accessCode matches; an
	// empty accessCode returns the request without them.
	Get(ctx context.Context, id uuid.UUID, accessCode string) (*authRequestDomain.AuthRequest, error)

	ListPending(ctx context.Context, email string) ([]*authRequestDomain.AuthRequest, error)

	Respond(
		ctx context.Context,
		id uuid.UUID,
		resp *authRequestDomain.PasswordlessAuthRequest,
	) (*authRequestDomain.AuthRequest, error)

	// PurgeExpired deletes requests that expired more than olderThan ago.
	PurgeExpired(ctx context.Context, olderThan time.Duration) (int64, error)
}
