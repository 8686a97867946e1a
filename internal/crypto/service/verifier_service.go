package service

import (
	"github.com/allisson/go-pwdhash"

	apperrors "github.com/allisson/vaultkeys/internal/errors"
)

// PasswordVerifier hashes and checks master key hashes kept for offline
// password verification.
type PasswordVerifier interface {
	Hash(secret string) (string, error)
	Verify(secret, hashed string) bool
}

// verifierService implements PasswordVerifier using Argon2id PHC strings.
type verifierService struct {
	hasher *pwdhash.PasswordHasher
}

// NewPasswordVerifier creates a PasswordVerifier using the Moderate policy.
func NewPasswordVerifier() PasswordVerifier {
	hasher, err := pwdhash.New(
		pwdhash.WithPolicy(pwdhash.PolicyModerate),
	)
	if err != nil {
		// This should never happen with valid policy
		panic(err)
	}

	return &verifierService{hasher: hasher}
}

// Hash returns a PHC formatted Argon2id hash of secret.
func (v *verifierService) Hash(secret string) (string, error) {
	hashed, err := v.hasher.Hash([]byte(secret))
	if err != nil {
		return "", apperrors.Wrap(err, "failed to hash verifier")
	}
	return hashed, nil
}

// Verify performs a constant-time comparison between secret and its hash.
// A malformed hash verifies as false.
func (v *verifierService) Verify(secret, hashed string) bool {
	ok, err := v.hasher.Verify([]byte(secret), hashed)
	if err != nil {
		return false
	}
	return ok
}
