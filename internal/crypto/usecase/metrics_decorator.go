package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	cryptoDomain "github.com/allisson/vaultkeys/internal/crypto/domain"
	"github.com/allisson/vaultkeys/internal/metrics"
)

// keyHierarchyUseCaseWithMetrics decorates KeyHierarchyUseCase with metrics instrumentation.
type keyHierarchyUseCaseWithMetrics struct {
	next    KeyHierarchyUseCase
	metrics metrics.BusinessMetrics
}

// NewKeyHierarchyUseCaseWithMetrics wraps a KeyHierarchyUseCase with metrics recording.
func NewKeyHierarchyUseCaseWithMetrics(useCase KeyHierarchyUseCase, m metrics.BusinessMetrics) KeyHierarchyUseCase {
	return &keyHierarchyUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (k *keyHierarchyUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	metrics.Observe(ctx, k.metrics, metrics.DomainCrypto, operation, start, err)
}

// UnwrapUserKey records metrics for user key unwrapping.
func (k *keyHierarchyUseCaseWithMetrics) UnwrapUserKey(
	ctx context.Context,
	wrapped cryptoDomain.EncString,
	masterKey *cryptoDomain.SymmetricCryptoKey,
) (*cryptoDomain.SymmetricCryptoKey, error) {
	start := time.Now()
	key, err := k.next.UnwrapUserKey(ctx, wrapped, masterKey)
	k.record(ctx, "user_key_unwrap", start, err)
	return key, err
}

// UnwrapOrgKey records metrics for organization key unwrapping.
func (k *keyHierarchyUseCaseWithMetrics) UnwrapOrgKey(
	ctx context.Context,
	wrapped cryptoDomain.EncString,
	privateKey []byte,
) (*cryptoDomain.SymmetricCryptoKey, error) {
	start := time.Now()
	key, err := k.next.UnwrapOrgKey(ctx, wrapped, privateKey)
	k.record(ctx, "org_key_unwrap", start, err)
	return key, err
}

// WrapKey records metrics for key wrapping.
func (k *keyHierarchyUseCaseWithMetrics) WrapKey(
	ctx context.Context,
	child *cryptoDomain.SymmetricCryptoKey,
	parent cryptoDomain.WrappingKey,
) (cryptoDomain.EncString, error) {
	start := time.Now()
	enc, err := k.next.WrapKey(ctx, child, parent)
	k.record(ctx, "key_wrap", start, err)
	return enc, err
}

// UnlockWithPassword records metrics for password unlocks.
func (k *keyHierarchyUseCaseWithMetrics) UnlockWithPassword(
	ctx context.Context,
	session *cryptoDomain.Session,
	userID uuid.UUID,
	password string,
) error {
	start := time.Now()
	err := k.next.UnlockWithPassword(ctx, session, userID, password)
	k.record(ctx, "unlock_password", start, err)
	return err
}

// LoginWithPassword records metrics for password logins.
func (k *keyHierarchyUseCaseWithMetrics) LoginWithPassword(
	ctx context.Context,
	session *cryptoDomain.Session,
	userID uuid.UUID,
	password string,
) (string, error) {
	start := time.Now()
	hash, err := k.next.LoginWithPassword(ctx, session, userID, password)
	k.record(ctx, "login_password", start, err)
	return hash, err
}

// UnlockWithUserKey records metrics for unlocks with an externally obtained user key.
func (k *keyHierarchyUseCaseWithMetrics) UnlockWithUserKey(
	ctx context.Context,
	session *cryptoDomain.Session,
	gen cryptoDomain.Generation,
	userID uuid.UUID,
	userKey *cryptoDomain.SymmetricCryptoKey,
	grant *cryptoDomain.MasterKeyGrant,
) error {
	start := time.Now()
	err := k.next.UnlockWithUserKey(ctx, session, gen, userID, userKey, grant)
	k.record(ctx, "unlock_user_key", start, err)
	return err
}

// UnlockWithDevice records metrics for device unlocks.
func (k *keyHierarchyUseCaseWithMetrics) UnlockWithDevice(
	ctx context.Context,
	session *cryptoDomain.Session,
	userID uuid.UUID,
) error {
	start := time.Now()
	err := k.next.UnlockWithDevice(ctx, session, userID)
	k.record(ctx, "unlock_device", start, err)
	return err
}

// EnrollDevice records metrics for device enrollment.
func (k *keyHierarchyUseCaseWithMetrics) EnrollDevice(
	ctx context.Context,
	session *cryptoDomain.Session,
	userID uuid.UUID,
) error {
	start := time.Now()
	err := k.next.EnrollDevice(ctx, session, userID)
	k.record(ctx, "device_enroll", start, err)
	return err
}

// VerifyMasterPassword records metrics for offline password checks. A
// mismatch is a successful operation.
func (k *keyHierarchyUseCaseWithMetrics) VerifyMasterPassword(
	ctx context.Context,
	userID uuid.UUID,
	password string,
) (bool, error) {
	start := time.Now()
	ok, err := k.next.VerifyMasterPassword(ctx, userID, password)
	k.record(ctx, "password_verify", start, err)
	return ok, err
}

// Register records metrics for account registration.
func (k *keyHierarchyUseCaseWithMetrics) Register(
	ctx context.Context,
	input *cryptoDomain.RegisterInput,
) (*cryptoDomain.AccountKeys, error) {
	start := time.Now()
	keys, err := k.next.Register(ctx, input)
	k.record(ctx, "account_register", start, err)
	return keys, err
}

// CreateOrganizationKey records metrics for organization key creation.
func (k *keyHierarchyUseCaseWithMetrics) CreateOrganizationKey(
	ctx context.Context,
	session *cryptoDomain.Session,
	userID, orgID uuid.UUID,
) (*cryptoDomain.OrganizationKey, error) {
	start := time.Now()
	orgKey, err := k.next.CreateOrganizationKey(ctx, session, userID, orgID)
	k.record(ctx, "org_key_create", start, err)
	return orgKey, err
}

// MakeSendKey records metrics for Send key creation.
func (k *keyHierarchyUseCaseWithMetrics) MakeSendKey(
	ctx context.Context,
	parent *cryptoDomain.SymmetricCryptoKey,
) (*cryptoDomain.SendKey, error) {
	start := time.Now()
	sendKey, err := k.next.MakeSendKey(ctx, parent)
	k.record(ctx, "send_key_create", start, err)
	return sendKey, err
}

// MakeAttachmentKey records metrics for attachment key creation.
func (k *keyHierarchyUseCaseWithMetrics) MakeAttachmentKey(
	ctx context.Context,
	parent *cryptoDomain.SymmetricCryptoKey,
) (*cryptoDomain.SymmetricCryptoKey, cryptoDomain.EncString, error) {
	start := time.Now()
	key, wrapped, err := k.next.MakeAttachmentKey(ctx, parent)
	k.record(ctx, "attachment_key_create", start, err)
	return key, wrapped, err
}

// Lock records metrics for session locks.
func (k *keyHierarchyUseCaseWithMetrics) Lock(ctx context.Context, session *cryptoDomain.Session) {
	start := time.Now()
	k.next.Lock(ctx, session)
	k.record(ctx, "session_lock", start, nil)
}
