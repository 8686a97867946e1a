package service

import (
	"context"
	"fmt"
	"net/url"
	"slices"

	"gocloud.dev/gcerrors"
	"gocloud.dev/secrets"
	_ "gocloud.dev/secrets/awskms"
	_ "gocloud.dev/secrets/azurekeyvault"
	_ "gocloud.dev/secrets/gcpkms"
	_ "gocloud.dev/secrets/hashivault"
	_ "gocloud.dev/secrets/localsecrets"

	cryptoDomain "github.com/allisson/vaultkeys/internal/crypto/domain"
	apperrors "github.com/allisson/vaultkeys/internal/errors"
)

// KMSSchemes are the key URI schemes OpenKeeper accepts.
var KMSSchemes = []string{"gcpkms", "awskms", "azurekeyvault", "hashivault", "base64key"}

type kmsService struct{}

// NewKMSService creates a new KMS service instance.
func NewKMSService() KMSService {
	return &kmsService{}
}

// OpenKeeper opens the keeper that seals device keys, so a copy of the
// database alone cannot unlock a vault.
func (k *kmsService) OpenKeeper(ctx context.Context, keyURI string) (KMSKeeper, error) {
	u, err := url.Parse(keyURI)
	if err != nil || keyURI == "" {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "failed to open KMS keeper: invalid key uri")
	}
	if !slices.Contains(KMSSchemes, u.Scheme) {
		return nil, apperrors.Wrapf(apperrors.ErrUnsupported, "failed to open KMS keeper: scheme %q", u.Scheme)
	}

	keeper, err := secrets.OpenKeeper(ctx, keyURI)
	if err != nil {
		return nil, fmt.Errorf("failed to open KMS keeper: %w", err)
	}
	return &deviceKeeper{keeper: keeper}, nil
}

// deviceKeeper reports a sealed key the KMS refuses to open as
// ErrWrongKey. Transient KMS failures keep their own error.
type deviceKeeper struct {
	keeper *secrets.Keeper
}

func (d *deviceKeeper) Encrypt(ctx context.Context, plaintext []byte) ([]byte, error) {
	sealed, err := d.keeper.Encrypt(ctx, plaintext)
	if err != nil {
		return nil, fmt.Errorf("kms encrypt: %w", err)
	}
	return sealed, nil
}

func (d *deviceKeeper) Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error) {
	plaintext, err := d.keeper.Decrypt(ctx, ciphertext)
	if err == nil {
		return plaintext, nil
	}
	switch gcerrors.Code(err) {
	case gcerrors.Canceled, gcerrors.DeadlineExceeded, gcerrors.ResourceExhausted, gcerrors.Internal:
		return nil, fmt.Errorf("kms decrypt: %w", err)
	case gcerrors.PermissionDenied:
		return nil, apperrors.Wrapf(apperrors.ErrForbidden, "kms decrypt: %v", err)
	default:
		return nil, fmt.Errorf("%w: %v", cryptoDomain.ErrWrongKey, err)
	}
}

func (d *deviceKeeper) Close() error {
	return d.keeper.Close()
}
