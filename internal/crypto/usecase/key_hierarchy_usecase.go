package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	cryptoDomain "github.com/allisson/vaultkeys/internal/crypto/domain"
	cryptoService "github.com/allisson/vaultkeys/internal/crypto/service"
	"github.com/allisson/vaultkeys/internal/database"
	apperrors "github.com/allisson/vaultkeys/internal/errors"
)

const (
	userKeyBits       = 512
	orgKeyBits        = 512
	deviceKeyBits     = 512
	attachmentKeyBits = 512

	sendMaterialBits = 128
	sendKeySalt      = "bitwarden-send"
	sendKeyPurpose   = "send"
)

// keyHierarchyUseCase implements KeyHierarchyUseCase.
type keyHierarchyUseCase struct {
	txManager      database.TxManager
	repo           AccountKeysRepository
	keyGenerator   cryptoService.KeyGenerator
	encryptService cryptoService.EncryptService
	rsa            cryptoService.AsymmetricCipher
	verifier       cryptoService.PasswordVerifier
	deviceKeeper   cryptoService.KMSKeeper
}

// withMAC returns key when it already has a MAC half, otherwise a stretched
// copy. release zeroes the copy and is a no-op for key itself.
func (k *keyHierarchyUseCase) withMAC(
	key *cryptoDomain.SymmetricCryptoKey,
) (*cryptoDomain.SymmetricCryptoKey, func(), error) {
	if key.HasMAC() {
		return key, func() {}, nil
	}
	stretched, err := k.keyGenerator.StretchKey(key)
	if err != nil {
		return nil, nil, err
	}
	return stretched, stretched.Zero, nil
}

// UnwrapUserKey decrypts the User Key with the Master Key.
func (k *keyHierarchyUseCase) UnwrapUserKey(
	ctx context.Context,
	wrapped cryptoDomain.EncString,
	masterKey *cryptoDomain.SymmetricCryptoKey,
) (*cryptoDomain.SymmetricCryptoKey, error) {
	if masterKey == nil {
		return nil, cryptoDomain.ErrWrongKey
	}
	stretched, release, err := k.withMAC(masterKey)
	if err != nil {
		return nil, cryptoDomain.ErrWrongKey
	}
	defer release()

	return k.unwrapSymmetric(wrapped, stretched)
}

func (k *keyHierarchyUseCase) unwrapSymmetric(
	wrapped cryptoDomain.EncString,
	key *cryptoDomain.SymmetricCryptoKey,
) (*cryptoDomain.SymmetricCryptoKey, error) {
	plaintext, err := k.encryptService.Decrypt(wrapped, key)
	if err != nil {
		return nil, cryptoDomain.ErrWrongKey
	}
	defer cryptoDomain.Zero(plaintext)

	unwrapped, err := cryptoDomain.NewSymmetricCryptoKey(plaintext)
	if err != nil {
		return nil, cryptoDomain.ErrWrongKey
	}
	return unwrapped, nil
}

// UnwrapOrgKey decrypts an Organization Key with the user's private key.
func (k *keyHierarchyUseCase) UnwrapOrgKey(
	ctx context.Context,
	wrapped cryptoDomain.EncString,
	privateKey []byte,
) (*cryptoDomain.SymmetricCryptoKey, error) {
	plaintext, err := k.encryptService.RSADecrypt(wrapped, privateKey)
	if err != nil {
		return nil, cryptoDomain.ErrWrongKey
	}
	defer cryptoDomain.Zero(plaintext)

	orgKey, err := cryptoDomain.NewSymmetricCryptoKey(plaintext)
	if err != nil {
		return nil, cryptoDomain.ErrWrongKey
	}
	return orgKey, nil
}

// WrapKey encrypts child under parent.
func (k *keyHierarchyUseCase) WrapKey(
	ctx context.Context,
	child *cryptoDomain.SymmetricCryptoKey,
	parent cryptoDomain.WrappingKey,
) (cryptoDomain.EncString, error) {
	if child == nil {
		return cryptoDomain.EncString{}, cryptoDomain.ErrInvalidKeySize
	}
	raw := child.Key()
	defer cryptoDomain.Zero(raw)

	return k.wrapBytes(raw, parent)
}

func (k *keyHierarchyUseCase) wrapBytes(
	plaintext []byte,
	parent cryptoDomain.WrappingKey,
) (cryptoDomain.EncString, error) {
	switch p := parent.(type) {
	case *cryptoDomain.SymmetricCryptoKey:
		if p == nil {
			return cryptoDomain.EncString{}, cryptoDomain.ErrInvalidKeySize
		}
		key, release, err := k.withMAC(p)
		if err != nil {
			return cryptoDomain.EncString{}, err
		}
		defer release()
		return k.encryptService.Encrypt(plaintext, key)
	case cryptoDomain.PublicKey:
		return k.encryptService.RSAEncrypt(plaintext, p)
	default:
		return cryptoDomain.EncString{}, cryptoDomain.ErrKeyTypeMismatch
	}
}

// loadSessionKeys decrypts the private key and every organization key of the
// account. On error nothing it allocated is left unzeroed.
func (k *keyHierarchyUseCase) loadSessionKeys(
	ctx context.Context,
	keys *cryptoDomain.AccountKeys,
	userKey *cryptoDomain.SymmetricCryptoKey,
) (cryptoDomain.SessionKeys, error) {
	privateKey, err := k.encryptService.Decrypt(keys.UserKeyWrappedPrivateKey, userKey)
	if err != nil {
		return cryptoDomain.SessionKeys{}, cryptoDomain.ErrWrongKey
	}

	sessionKeys := cryptoDomain.SessionKeys{
		UserID:     keys.UserID,
		UserKey:    userKey,
		PrivateKey: privateKey,
		OrgKeys:    make(map[uuid.UUID]*cryptoDomain.SymmetricCryptoKey),
	}

	orgKeys, err := k.repo.ListOrganizationKeys(ctx, keys.UserID)
	if err != nil {
		cryptoDomain.Zero(privateKey)
		return cryptoDomain.SessionKeys{}, err
	}
	for _, orgKey := range orgKeys {
		unwrapped, err := k.UnwrapOrgKey(ctx, orgKey.WrappedKey, privateKey)
		if err != nil {
			cryptoDomain.Zero(privateKey)
			for _, key := range sessionKeys.OrgKeys {
				key.Zero()
			}
			return cryptoDomain.SessionKeys{}, err
		}
		sessionKeys.OrgKeys[orgKey.OrganizationID] = unwrapped
	}

	return sessionKeys, nil
}

func (k *keyHierarchyUseCase) unlockWithPassword(
	ctx context.Context,
	session *cryptoDomain.Session,
	userID uuid.UUID,
	password string,
	grantMasterKey bool,
) (string, error) {
	gen := session.Generation()

	keys, err := k.repo.Get(ctx, userID)
	if err != nil {
		return "", err
	}

	masterKey, err := k.keyGenerator.DeriveKeyFromPassword(
		password,
		cryptoDomain.NormalizeEmail(keys.Email),
		keys.Kdf,
	)
	if err != nil {
		return "", err
	}
	defer masterKey.Zero()

	userKey, err := k.UnwrapUserKey(ctx, keys.MasterKeyWrappedUserKey, masterKey)
	if err != nil {
		return "", err
	}

	sessionKeys, err := k.loadSessionKeys(ctx, keys, userKey)
	if err != nil {
		userKey.Zero()
		return "", err
	}
	defer sessionKeys.Wipe()

	var serverHash string
	if grantMasterKey {
		serverHash, err = k.keyGenerator.HashMasterKey(password, masterKey, cryptoDomain.ServerAuthorization)
		if err != nil {
			return "", err
		}
		sessionKeys.MasterKey = masterKey
		sessionKeys.MasterKeyHash = serverHash
	}

	if err := session.Commit(gen, sessionKeys); err != nil {
		return "", err
	}
	return serverHash, nil
}

// UnlockWithPassword unlocks session with the master password.
func (k *keyHierarchyUseCase) UnlockWithPassword(
	ctx context.Context,
	session *cryptoDomain.Session,
	userID uuid.UUID,
	password string,
) error {
	_, err := k.unlockWithPassword(ctx, session, userID, password, false)
	return err
}

// LoginWithPassword unlocks session and grants it the master key.
func (k *keyHierarchyUseCase) LoginWithPassword(
	ctx context.Context,
	session *cryptoDomain.Session,
	userID uuid.UUID,
	password string,
) (string, error) {
	return k.unlockWithPassword(ctx, session, userID, password, true)
}

// UnlockWithUserKey loads the rest of the key chain for an externally obtained user key.
func (k *keyHierarchyUseCase) UnlockWithUserKey(
	ctx context.Context,
	session *cryptoDomain.Session,
	gen cryptoDomain.Generation,
	userID uuid.UUID,
	userKey *cryptoDomain.SymmetricCryptoKey,
	grant *cryptoDomain.MasterKeyGrant,
) error {
	keys, err := k.repo.Get(ctx, userID)
	if err != nil {
		return err
	}

	sessionKeys, err := k.loadSessionKeys(ctx, keys, userKey)
	if err != nil {
		return err
	}
	// userKey belongs to the caller.
	sessionKeys.UserKey = nil
	defer sessionKeys.Wipe()
	commitKeys := sessionKeys
	commitKeys.UserKey = userKey

	if grant != nil {
		commitKeys.MasterKey = grant.Key
		commitKeys.MasterKeyHash = grant.Hash
	}
	return session.Commit(gen, commitKeys)
}

// UnlockWithDevice unlocks session with the sealed device key.
func (k *keyHierarchyUseCase) UnlockWithDevice(
	ctx context.Context,
	session *cryptoDomain.Session,
	userID uuid.UUID,
) error {
	if k.deviceKeeper == nil {
		return cryptoDomain.ErrDeviceUnlockNotConfigured
	}
	gen := session.Generation()

	keys, err := k.repo.Get(ctx, userID)
	if err != nil {
		return err
	}
	if !keys.DeviceEnrolled() {
		return cryptoDomain.ErrDeviceNotEnrolled
	}

	raw, err := k.deviceKeeper.Decrypt(ctx, keys.SealedDeviceKey)
	if err != nil {
		return apperrors.Wrap(err, "failed to unseal device key")
	}
	deviceKey, err := cryptoDomain.NewSymmetricCryptoKey(raw)
	cryptoDomain.Zero(raw)
	if err != nil {
		return cryptoDomain.ErrWrongKey
	}
	defer deviceKey.Zero()

	userKey, err := k.unwrapSymmetric(*keys.DeviceWrappedUserKey, deviceKey)
	if err != nil {
		return err
	}

	sessionKeys, err := k.loadSessionKeys(ctx, keys, userKey)
	if err != nil {
		userKey.Zero()
		return err
	}
	defer sessionKeys.Wipe()

	return session.Commit(gen, sessionKeys)
}

// sessionGeneration returns the generation of a session unlocked for userID.
func sessionGeneration(session *cryptoDomain.Session, userID uuid.UUID) (cryptoDomain.Generation, error) {
	gen := session.Generation()
	sessionUserID, err := session.UserID()
	if err != nil {
		return 0, err
	}
	if sessionUserID != userID {
		return 0, cryptoDomain.ErrSessionAccountMismatch
	}
	return gen, nil
}

// EnrollDevice seals a fresh device key and stores the user key wrapped with it.
func (k *keyHierarchyUseCase) EnrollDevice(
	ctx context.Context,
	session *cryptoDomain.Session,
	userID uuid.UUID,
) error {
	if k.deviceKeeper == nil {
		return cryptoDomain.ErrDeviceUnlockNotConfigured
	}
	if _, err := sessionGeneration(session, userID); err != nil {
		return err
	}

	userKey, err := session.UserKey()
	if err != nil {
		return err
	}
	defer userKey.Zero()

	deviceKey, err := k.keyGenerator.CreateKey(deviceKeyBits)
	if err != nil {
		return err
	}
	defer deviceKey.Zero()

	wrapped, err := k.WrapKey(ctx, userKey, deviceKey)
	if err != nil {
		return err
	}

	raw := deviceKey.Key()
	sealed, err := k.deviceKeeper.Encrypt(ctx, raw)
	cryptoDomain.Zero(raw)
	if err != nil {
		return apperrors.Wrap(err, "failed to seal device key")
	}

	return k.txManager.WithTx(ctx, func(ctx context.Context) error {
		keys, err := k.repo.Get(ctx, userID)
		if err != nil {
			return err
		}
		keys.DeviceWrappedUserKey = &wrapped
		keys.SealedDeviceKey = sealed
		keys.UpdatedAt = time.Now().UTC()
		return k.repo.UpdateDeviceKey(ctx, keys)
	})
}

// VerifyMasterPassword checks password against the local verifier.
func (k *keyHierarchyUseCase) VerifyMasterPassword(
	ctx context.Context,
	userID uuid.UUID,
	password string,
) (bool, error) {
	keys, err := k.repo.Get(ctx, userID)
	if err != nil {
		return false, err
	}

	masterKey, err := k.keyGenerator.DeriveKeyFromPassword(
		password,
		cryptoDomain.NormalizeEmail(keys.Email),
		keys.Kdf,
	)
	if err != nil {
		return false, err
	}
	defer masterKey.Zero()

	localHash, err := k.keyGenerator.HashMasterKey(password, masterKey, cryptoDomain.LocalAuthorization)
	if err != nil {
		return false, err
	}
	return k.verifier.Verify(localHash, keys.LocalPasswordVerifier), nil
}

// Register creates the key hierarchy of a new account.
func (k *keyHierarchyUseCase) Register(
	ctx context.Context,
	input *cryptoDomain.RegisterInput,
) (*cryptoDomain.AccountKeys, error) {
	// The email salts the master key, so it is validated in the form unlock uses.
	normalized := *input
	normalized.Email = cryptoDomain.NormalizeEmail(input.Email)
	input = &normalized
	if err := input.Validate(); err != nil {
		return nil, err
	}
	if err := input.Kdf.Validate(); err != nil {
		return nil, err
	}
	email := input.Email

	masterKey, err := k.keyGenerator.DeriveKeyFromPassword(input.Password, email, input.Kdf)
	if err != nil {
		return nil, err
	}
	defer masterKey.Zero()

	userKey, err := k.keyGenerator.CreateKey(userKeyBits)
	if err != nil {
		return nil, err
	}
	defer userKey.Zero()

	wrappedUserKey, err := k.WrapKey(ctx, userKey, masterKey)
	if err != nil {
		return nil, err
	}

	publicKey, privateKey, err := k.rsa.GenerateKeyPair(cryptoService.DefaultRSABits)
	if err != nil {
		return nil, err
	}
	defer cryptoDomain.Zero(privateKey)

	wrappedPrivateKey, err := k.encryptService.Encrypt(privateKey, userKey)
	if err != nil {
		return nil, err
	}

	localHash, err := k.keyGenerator.HashMasterKey(input.Password, masterKey, cryptoDomain.LocalAuthorization)
	if err != nil {
		return nil, err
	}
	verifier, err := k.verifier.Hash(localHash)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	keys := &cryptoDomain.AccountKeys{
		UserID:                   input.UserID,
		Email:                    email,
		Kdf:                      input.Kdf,
		PublicKey:                publicKey,
		MasterKeyWrappedUserKey:  wrappedUserKey,
		UserKeyWrappedPrivateKey: wrappedPrivateKey,
		LocalPasswordVerifier:    verifier,
		CreatedAt:                now,
		UpdatedAt:                now,
	}
	if err := k.repo.Create(ctx, keys); err != nil {
		return nil, err
	}
	return keys, nil
}

// CreateOrganizationKey creates and persists an organization key for the unlocked user.
func (k *keyHierarchyUseCase) CreateOrganizationKey(
	ctx context.Context,
	session *cryptoDomain.Session,
	userID, orgID uuid.UUID,
) (*cryptoDomain.OrganizationKey, error) {
	gen, err := sessionGeneration(session, userID)
	if err != nil {
		return nil, err
	}

	keys, err := k.repo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	orgKey, err := k.keyGenerator.CreateKey(orgKeyBits)
	if err != nil {
		return nil, err
	}
	defer orgKey.Zero()

	wrapped, err := k.WrapKey(ctx, orgKey, keys.PublicKey)
	if err != nil {
		return nil, err
	}

	record := &cryptoDomain.OrganizationKey{
		UserID:         userID,
		OrganizationID: orgID,
		WrappedKey:     wrapped,
		CreatedAt:      time.Now().UTC(),
	}

	// The insert is rolled back if the session was locked meanwhile.
	err = k.txManager.WithTx(ctx, func(ctx context.Context) error {
		if err := k.repo.CreateOrganizationKey(ctx, record); err != nil {
			return err
		}
		return session.AddOrgKey(gen, orgID, orgKey)
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// MakeSendKey creates Send key material and wraps the material with parent.
func (k *keyHierarchyUseCase) MakeSendKey(
	ctx context.Context,
	parent *cryptoDomain.SymmetricCryptoKey,
) (*cryptoDomain.SendKey, error) {
	material, sendKey, err := k.keyGenerator.CreateMaterialAndKey(sendMaterialBits, sendKeySalt, sendKeyPurpose)
	if err != nil {
		return nil, err
	}

	wrapped, err := k.wrapBytes(material, parent)
	if err != nil {
		cryptoDomain.Zero(material)
		sendKey.Zero()
		return nil, err
	}

	return &cryptoDomain.SendKey{
		Material:        material,
		Key:             sendKey,
		WrappedMaterial: wrapped,
	}, nil
}

// MakeAttachmentKey creates an attachment key wrapped with parent.
func (k *keyHierarchyUseCase) MakeAttachmentKey(
	ctx context.Context,
	parent *cryptoDomain.SymmetricCryptoKey,
) (*cryptoDomain.SymmetricCryptoKey, cryptoDomain.EncString, error) {
	attachmentKey, err := k.keyGenerator.CreateKey(attachmentKeyBits)
	if err != nil {
		return nil, cryptoDomain.EncString{}, err
	}

	wrapped, err := k.WrapKey(ctx, attachmentKey, parent)
	if err != nil {
		attachmentKey.Zero()
		return nil, cryptoDomain.EncString{}, err
	}
	return attachmentKey, wrapped, nil
}

// Lock zeroes every cached key.
func (k *keyHierarchyUseCase) Lock(ctx context.Context, session *cryptoDomain.Session) {
	session.Lock()
}

// NewKeyHierarchyUseCase creates a new KeyHierarchyUseCase. deviceKeeper may be
// nil, in which case device enrollment and unlock are unavailable.
func NewKeyHierarchyUseCase(
	txManager database.TxManager,
	repo AccountKeysRepository,
	keyGenerator cryptoService.KeyGenerator,
	encryptService cryptoService.EncryptService,
	rsa cryptoService.AsymmetricCipher,
	verifier cryptoService.PasswordVerifier,
	deviceKeeper cryptoService.KMSKeeper,
) KeyHierarchyUseCase {
	return &keyHierarchyUseCase{
		txManager:      txManager,
		repo:           repo,
		keyGenerator:   keyGenerator,
		encryptService: encryptService,
		rsa:            rsa,
		verifier:       verifier,
		deviceKeeper:   deviceKeeper,
	}
}
