package domain

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	cryptoDomain "github.com/allisson/vaultkeys/internal/crypto/domain"
	"github.com/allisson/vaultkeys/internal/errors"
	customValidation "github.com/allisson/vaultkeys/internal/validation"
)

// AccessCodeLength is the number of characters in an access code.
const AccessCodeLength = 25

// MaxPublicKeySize bounds the DER public key a requesting device submits.
// An RSA-4096 SubjectPublicKeyInfo is 550 bytes.
const MaxPublicKeySize = 1024

// Status is the lifecycle state of an auth request.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusDenied   Status = "denied"
	StatusExpired  Status = "expired"
)

// AuthRequest is a login request from a device that has no key material yet.
type AuthRequest struct {
	ID                      uuid.UUID
	Email                   string
	RequestDeviceIdentifier string
	PublicKey               string // base64 SPKI DER
	AccessCodeHash          string
	Status                  Status

	// Response fields, set once the request leaves pending.
	Key                      *cryptoDomain.EncString
	MasterPasswordHash       *cryptoDomain.EncString
	ResponseDeviceIdentifier string
	ResponseAt               *time.Time

	CreatedAt time.Time
	ExpiresAt time.Time
}

// HashAccessCode returns the stored form of an access code.
func HashAccessCode(accessCode string) string {
	sum := sha256.Sum256([]byte(accessCode))
	return hex.EncodeToString(sum[:])
}

// MatchesAccessCode compares accessCode with the stored hash in constant time.
func (a *AuthRequest) MatchesAccessCode(accessCode string) bool {
	got := HashAccessCode(accessCode)
	return subtle.ConstantTimeCompare([]byte(got), []byte(a.AccessCodeHash)) == 1
}

// IsExpired reports whether now is past the request expiry.
func (a *AuthRequest) IsExpired(now time.Time) bool {
	return now.After(a.ExpiresAt)
}

// Expire moves a pending request past its expiry to StatusExpired and reports
// whether it changed.
func (a *AuthRequest) Expire(now time.Time) bool {
	if a.Status != StatusPending || !a.IsExpired(now) {
		return false
	}
	a.Status = StatusExpired
	return true
}

// Respond applies an approval or denial. Only pending, unexpired requests
// accept a response, and an approval must carry a key.
func (a *AuthRequest) Respond(resp *PasswordlessAuthRequest, now time.Time) error {
	if a.Status != StatusPending {
		return ErrInvalidTransition
	}
	if a.IsExpired(now) {
		return ErrAuthRequestExpired
	}
	if err := resp.Validate(); err != nil {
		return err
	}

	if resp.RequestApproved {
		a.Status = StatusApproved
		a.Key = resp.Key
		a.MasterPasswordHash = resp.MasterPasswordHash
	} else {
		a.Status = StatusDenied
	}
	a.ResponseDeviceIdentifier = resp.DeviceIdentifier
	a.ResponseAt = &now
	return nil
}

// CreateAuthRequestInput is what a requesting device submits.
type CreateAuthRequestInput struct {
	Email            string
	DeviceIdentifier string
	PublicKey        string
	AccessCode       string
}

// Validate checks the input and wraps violations in ErrInvalidRequest.
func (c *CreateAuthRequestInput) Validate() error {
	err := validation.ValidateStruct(c,
		validation.Field(&c.Email, validation.Required, customValidation.Email),
		validation.Field(&c.DeviceIdentifier, validation.Required, customValidation.NotBlank),
		validation.Field(&c.PublicKey,
			validation.Required,
			customValidation.Base64Bytes{Max: MaxPublicKeySize},
		),
		validation.Field(&c.AccessCode, validation.Required, validation.Length(AccessCodeLength, AccessCodeLength)),
	)
	if err != nil {
		return wrapInvalid(err)
	}
	return nil
}

// PasswordlessAuthRequest is the response an approving device submits.
type PasswordlessAuthRequest struct {
	Key                *cryptoDomain.EncString
	MasterPasswordHash *cryptoDomain.EncString
	DeviceIdentifier   string
	RequestApproved    bool
}

// Validate checks that an approval carries a key and that every response
// names the approving device.
func (p *PasswordlessAuthRequest) Validate() error {
	if p == nil {
		return ErrInvalidRequest
	}
	if p.DeviceIdentifier == "" {
		return wrapInvalid(validation.Errors{"deviceIdentifier": validation.ErrRequired})
	}
	if p.RequestApproved && p.Key == nil {
		return wrapInvalid(validation.Errors{"key": validation.ErrRequired})
	}
	return nil
}

func wrapInvalid(err error) error {
	return errors.Wrap(ErrInvalidRequest, err.Error())
}
