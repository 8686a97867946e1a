package usecase

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"unicode/utf8"

	"github.com/google/uuid"

	authRequestDomain "github.com/allisson/vaultkeys/internal/authrequest/domain"
	cryptoDomain "github.com/allisson/vaultkeys/internal/crypto/domain"
	cryptoService "github.com/allisson/vaultkeys/internal/crypto/service"
	cryptoUseCase "github.com/allisson/vaultkeys/internal/crypto/usecase"
	apperrors "github.com/allisson/vaultkeys/internal/errors"
)

// authRequestService implements AuthRequestService.
type authRequestService struct {
	keyHierarchy     cryptoUseCase.KeyHierarchyUseCase
	accountKeys      AccountKeysRepository
	encryptService   cryptoService.EncryptService
	rsa              cryptoService.AsymmetricCipher
	relay            RelayClient
	deviceIdentifier string
	rand             io.Reader
}

// ApproveOrDenyAuthRequest answers request from the unlocked session.
func (s *authRequestService) ApproveOrDenyAuthRequest(
	ctx context.Context,
	session *cryptoDomain.Session,
	approve bool,
	request *authRequestDomain.AuthRequest,
) (*authRequestDomain.AuthRequest, error) {
	if request == nil || request.ID == uuid.Nil {
		return nil, apperrors.Wrap(authRequestDomain.ErrInvalidRequest, "auth request has no id")
	}
	if request.PublicKey == "" {
		return nil, apperrors.Wrap(authRequestDomain.ErrInvalidRequest, "auth request has no public key")
	}
	der, err := base64.StdEncoding.DecodeString(request.PublicKey)
	if err != nil {
		return nil, apperrors.Wrap(authRequestDomain.ErrInvalidRequest, "auth request public key is not base64")
	}
	publicKey := cryptoDomain.PublicKey(der)

	// A denial carries no key material, so it works from a locked session too.
	if !approve {
		return s.relay.Respond(ctx, request.ID, &authRequestDomain.PasswordlessAuthRequest{
			DeviceIdentifier: s.deviceIdentifier,
		})
	}

	var keyToEncrypt []byte
	var encryptedHash *cryptoDomain.EncString

	masterKey, masterKeyHash, err := session.MasterKey()
	switch {
	case err == nil:
		defer masterKey.Zero()
		hash, err := s.encryptService.RSAEncrypt([]byte(masterKeyHash), publicKey)
		if err != nil {
			return nil, err
		}
		encryptedHash = &hash
		keyToEncrypt = masterKey.EncKey()
	case errors.Is(err, cryptoDomain.ErrMasterKeyNotAvailable):
		userKey, err := session.UserKey()
		if err != nil {
			return nil, err
		}
		defer userKey.Zero()
		keyToEncrypt = userKey.Key()
	default:
		return nil, err
	}
	defer cryptoDomain.Zero(keyToEncrypt)

	encryptedKey, err := s.encryptService.RSAEncrypt(keyToEncrypt, publicKey)
	if err != nil {
		return nil, err
	}

	return s.relay.Respond(ctx, request.ID, &authRequestDomain.PasswordlessAuthRequest{
		Key:                &encryptedKey,
		MasterPasswordHash: encryptedHash,
		DeviceIdentifier:   s.deviceIdentifier,
		RequestApproved:    true,
	})
}

// DecryptPubKeyEncryptedUserKey opens a shared user key.
func (s *authRequestService) DecryptPubKeyEncryptedUserKey(
	wrapped cryptoDomain.EncString,
	privateKey []byte,
) (*cryptoDomain.SymmetricCryptoKey, error) {
	plaintext, err := s.encryptService.RSADecrypt(wrapped, privateKey)
	if err != nil {
		return nil, cryptoDomain.ErrDecryptionFailed
	}
	defer cryptoDomain.Zero(plaintext)

	userKey, err := cryptoDomain.NewSymmetricCryptoKey(plaintext)
	if err != nil {
		return nil, cryptoDomain.ErrDecryptionFailed
	}
	return userKey, nil
}

// DecryptPubKeyEncryptedMasterKeyAndHash opens a shared master key and hash.
func (s *authRequestService) DecryptPubKeyEncryptedMasterKeyAndHash(
	wrappedKey, wrappedHash cryptoDomain.EncString,
	privateKey []byte,
) (*cryptoDomain.SymmetricCryptoKey, string, error) {
	rawKey, err := s.encryptService.RSADecrypt(wrappedKey, privateKey)
	if err != nil {
		return nil, "", cryptoDomain.ErrDecryptionFailed
	}
	defer cryptoDomain.Zero(rawKey)

	rawHash, err := s.encryptService.RSADecrypt(wrappedHash, privateKey)
	if err != nil {
		return nil, "", cryptoDomain.ErrDecryptionFailed
	}
	if !utf8.Valid(rawHash) {
		return nil, "", cryptoDomain.ErrDecryptionFailed
	}

	masterKey, err := cryptoDomain.NewSymmetricCryptoKey(rawKey)
	if err != nil {
		return nil, "", cryptoDomain.ErrDecryptionFailed
	}
	return masterKey, string(rawHash), nil
}

// SetUserKeyAfterDecryptingSharedUserKey unlocks session with a shared user key.
func (s *authRequestService) SetUserKeyAfterDecryptingSharedUserKey(
	ctx context.Context,
	session *cryptoDomain.Session,
	userID uuid.UUID,
	request *authRequestDomain.AuthRequest,
	pending *authRequestDomain.PendingLogin,
) error {
	if request == nil || request.Key == nil {
		return apperrors.Wrap(authRequestDomain.ErrInvalidRequest, "auth request has no key")
	}
	gen := session.Generation()

	return pending.Consume(func(privateKey []byte) error {
		userKey, err := s.DecryptPubKeyEncryptedUserKey(*request.Key, privateKey)
		if err != nil {
			return err
		}
		defer userKey.Zero()

		return s.keyHierarchy.UnlockWithUserKey(ctx, session, gen, userID, userKey, nil)
	})
}

// SetKeysAfterDecryptingSharedMasterKeyAndHash unlocks session with a shared master key.
func (s *authRequestService) SetKeysAfterDecryptingSharedMasterKeyAndHash(
	ctx context.Context,
	session *cryptoDomain.Session,
	userID uuid.UUID,
	request *authRequestDomain.AuthRequest,
	pending *authRequestDomain.PendingLogin,
) error {
	if request == nil || request.Key == nil || request.MasterPasswordHash == nil {
		return apperrors.Wrap(authRequestDomain.ErrInvalidRequest, "auth request has no master key")
	}
	gen := session.Generation()

	return pending.Consume(func(privateKey []byte) error {
		masterKey, masterKeyHash, err := s.DecryptPubKeyEncryptedMasterKeyAndHash(
			*request.Key,
			*request.MasterPasswordHash,
			privateKey,
		)
		if err != nil {
			return err
		}
		defer masterKey.Zero()

		keys, err := s.accountKeys.Get(ctx, userID)
		if err != nil {
			return err
		}

		userKey, err := s.keyHierarchy.UnwrapUserKey(ctx, keys.MasterKeyWrappedUserKey, masterKey)
		if err != nil {
			return err
		}
		defer userKey.Zero()

		grant := &cryptoDomain.MasterKeyGrant{Key: masterKey, Hash: masterKeyHash}
		return s.keyHierarchy.UnlockWithUserKey(ctx, session, gen, userID, userKey, grant)
	})
}

// CreateAuthRequest starts a login on this device.
func (s *authRequestService) CreateAuthRequest(
	ctx context.Context,
	email, deviceIdentifier string,
) (*authRequestDomain.PendingLogin, error) {
	accessCode, err := newAccessCode(s.rand)
	if err != nil {
		return nil, err
	}

	publicKey, privateKey, err := s.rsa.GenerateKeyPair(cryptoService.DefaultRSABits)
	if err != nil {
		return nil, err
	}

	input := &authRequestDomain.CreateAuthRequestInput{
		Email:            cryptoDomain.NormalizeEmail(email),
		DeviceIdentifier: deviceIdentifier,
		PublicKey:        base64.StdEncoding.EncodeToString(publicKey),
		AccessCode:       accessCode,
	}
	if err := input.Validate(); err != nil {
		cryptoDomain.Zero(privateKey)
		return nil, err
	}

	req, err := s.relay.Create(ctx, input)
	if err != nil {
		cryptoDomain.Zero(privateKey)
		return nil, err
	}

	return authRequestDomain.NewPendingLogin(req.ID, input.Email, accessCode, publicKey, privateKey), nil
}

// CompleteLogin fetches the answer to pending and unlocks session with it.
func (s *authRequestService) CompleteLogin(
	ctx context.Context,
	session *cryptoDomain.Session,
	userID uuid.UUID,
	pending *authRequestDomain.PendingLogin,
) error {
	if pending.Consumed() {
		return authRequestDomain.ErrAlreadyConsumed
	}

	req, err := s.relay.Get(ctx, pending.RequestID, pending.AccessCode)
	if err != nil {
		return err
	}

	switch req.Status {
	case authRequestDomain.StatusPending:
		return authRequestDomain.ErrAuthRequestPending
	case authRequestDomain.StatusDenied:
		pending.Discard()
		return authRequestDomain.ErrAuthRequestDenied
	case authRequestDomain.StatusExpired:
		pending.Discard()
		return authRequestDomain.ErrAuthRequestExpired
	case authRequestDomain.StatusApproved:
	default:
		return apperrors.Wrapf(authRequestDomain.ErrInvalidRequest, "unknown status %q", req.Status)
	}

	if req.MasterPasswordHash != nil {
		return s.SetKeysAfterDecryptingSharedMasterKeyAndHash(ctx, session, userID, req, pending)
	}
	return s.SetUserKeyAfterDecryptingSharedUserKey(ctx, session, userID, req, pending)
}

// NewAuthRequestService creates a new AuthRequestService. deviceIdentifier
// names this device in the responses it submits.
func NewAuthRequestService(
	keyHierarchy cryptoUseCase.KeyHierarchyUseCase,
	accountKeys AccountKeysRepository,
	encryptService cryptoService.EncryptService,
	rsa cryptoService.AsymmetricCipher,
	relay RelayClient,
	deviceIdentifier string,
) AuthRequestService {
	return &authRequestService{
		keyHierarchy:     keyHierarchy,
		accountKeys:      accountKeys,
		encryptService:   encryptService,
		rsa:              rsa,
		relay:            relay,
		deviceIdentifier: deviceIdentifier,
	}
}
