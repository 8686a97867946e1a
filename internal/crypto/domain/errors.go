package domain

import (
	"github.com/allisson/vaultkeys/internal/errors"
)

// Cryptographic error definitions.
//
// Each error wraps one of the standard errors from internal/errors so the HTTP
// and CLI layers can translate them without knowing about cryptography.
var (
	// ErrMalformedEncString indicates a string that is not a well-formed EncString:
	// unknown or non-canonical type tag, wrong segment count, or invalid base64.
	ErrMalformedEncString = errors.Wrap(errors.ErrInvalidInput, "malformed encrypted string")

	// ErrInvalidKeySize indicates key material that is neither 32 nor 64 bytes,
	// or a requested bit length the generator does not support.
	ErrInvalidKeySize = errors.Wrap(errors.ErrInvalidInput, "invalid key size")

	// ErrInvalidKdfConfig indicates KDF parameters outside the accepted ranges.
	// It is returned before any derivation work starts.
	ErrInvalidKdfConfig = errors.Wrap(errors.ErrInvalidInput, "invalid kdf configuration")

	// ErrIntegrityCheckFailed indicates the MAC over iv||ciphertext did not verify.
	// No decryption is attempted when this error is returned.
	ErrIntegrityCheckFailed = errors.Wrap(errors.ErrIntegrity, "mac verification failed")

	// ErrDecryptionFailed indicates the payload authenticated (or carries no MAC)
	// but could not be decrypted: bad padding, bad block length, or RSA failure.
	ErrDecryptionFailed = errors.Wrap(errors.ErrInvalidInput, "decryption failed")

	// ErrKeyTypeMismatch indicates the key cannot open the EncString type, for
	// example a MAC-bearing payload offered to a key without a MAC half.
	ErrKeyTypeMismatch = errors.Wrap(errors.ErrInvalidInput, "key does not match encryption type")

	// ErrWrongKey is the single error surfaced when unwrapping a key fails.
	// It deliberately hides whether the MAC, the padding or the RSA step failed.
	ErrWrongKey = errors.Wrap(errors.ErrUnauthorized, "incorrect password or unlock method")

	// ErrInvalidPublicKey indicates bytes that do not parse as an SPKI RSA public key.
	ErrInvalidPublicKey = errors.Wrap(errors.ErrInvalidInput, "invalid public key")

	// ErrInvalidPrivateKey indicates bytes that do not parse as a PKCS#8 RSA private key.
	ErrInvalidPrivateKey = errors.Wrap(errors.ErrInvalidInput, "invalid private key")

	// ErrSessionLocked indicates the session has no unlocked keys, or that a
	// write was attempted for a session generation that has since been locked.
	ErrSessionLocked = errors.Wrap(errors.ErrForbidden, "session is locked")

	// ErrOrgKeyNotFound indicates the session holds no key for the organization.
	ErrOrgKeyNotFound = errors.Wrap(errors.ErrNotFound, "organization key not found")

	// ErrMasterKeyNotAvailable indicates the session was not granted a master key.
	ErrMasterKeyNotAvailable = errors.Wrap(errors.ErrNotFound, "master key not available")

	// ErrAccountKeysNotFound indicates no wrapped keys are stored for the user.
	ErrAccountKeysNotFound = errors.Wrap(errors.ErrNotFound, "account keys not found")

	// ErrAccountKeysAlreadyExist indicates the user already has wrapped keys stored.
	ErrAccountKeysAlreadyExist = errors.Wrap(errors.ErrConflict, "account keys already exist")

	// ErrSessionAccountMismatch indicates a session unlocked for a different account.
	ErrSessionAccountMismatch = errors.Wrap(errors.ErrForbidden, "session belongs to another account")

	// ErrDeviceUnlockNotConfigured indicates no KMS keeper is available to seal device keys.
	ErrDeviceUnlockNotConfigured = errors.Wrap(errors.ErrUnsupported, "device unlock is not configured")

	// ErrDeviceNotEnrolled indicates no device key has been sealed for the user.
	ErrDeviceNotEnrolled = errors.Wrap(errors.ErrNotFound, "device not enrolled")
)
