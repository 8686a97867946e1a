// Package domain defines the key hierarchy of a vault account.
//
// A password (plus the account email as salt) derives the Master Key. The Master Key
// unwraps the User Key, the User Key unwraps the account's RSA private key, and the
// private key unwraps one Organization Key per membership. Only wrapped keys are
// ever persisted; unwrapped keys live in a Session until it is locked.
package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	customValidation "github.com/allisson/vaultkeys/internal/validation"
)

// MinMasterPasswordLength is the shortest master password accepted at registration.
const MinMasterPasswordLength = 12

// AccountKeys is the persisted, fully wrapped key material of one account.
type AccountKeys struct {
	UserID    uuid.UUID
	Email     string
	Kdf       KdfConfig
	PublicKey PublicKey // SPKI DER, stored in the clear

	MasterKeyWrappedUserKey  EncString  // User Key under the stretched Master Key
	UserKeyWrappedPrivateKey EncString  // PKCS#8 private key under the User Key
	DeviceWrappedUserKey     *EncString // User Key under the device key, if enrolled
	SealedDeviceKey          []byte     // device key sealed by the KMS keeper

	// LocalPasswordVerifier is a pwdhash of the local authorization master key hash.
	LocalPasswordVerifier string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// DeviceEnrolled reports whether a device key has been sealed for the account.
func (a *AccountKeys) DeviceEnrolled() bool {
	return a.DeviceWrappedUserKey != nil && len(a.SealedDeviceKey) > 0
}

// OrganizationKey is an organization's symmetric key wrapped by a member's public key.
type OrganizationKey struct {
	UserID         uuid.UUID
	OrganizationID uuid.UUID
	WrappedKey     EncString
	CreatedAt      time.Time
}

// NormalizeEmail returns the form of the email used as the KDF salt.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// RegisterInput holds the parameters for creating the key hierarchy of a new account.
type RegisterInput struct {
	UserID   uuid.UUID
	Email    string
	Password string
	Kdf      KdfConfig
}

// Validate checks the input fields. KDF parameters are checked separately by Kdf.Validate.
func (r *RegisterInput) Validate() error {
	err := validation.ValidateStruct(r,
		validation.Field(&r.UserID, customValidation.NotNilUUID),
		validation.Field(&r.Email, validation.Required, customValidation.Email),
		validation.Field(
			&r.Password,
			validation.Required,
			customValidation.PasswordStrength{MinLength: MinMasterPasswordLength},
		),
	)
	return customValidation.WrapValidationError(err)
}

// SendKey is the key material of a Send. Material is what gets shared with
// recipients; Key is derived from it.
type SendKey struct {
	Material        []byte
	Key             *SymmetricCryptoKey
	WrappedMaterial EncString
}

// Zero wipes the material and the derived key.
func (s *SendKey) Zero() {
	if s == nil {
		return
	}
	Zero(s.Material)
	s.Key.Zero()
}
