package domain

import (
	validation "github.com/jellydator/validation"

	"github.com/allisson/vaultkeys/internal/errors"
)

// KdfType selects the password based key derivation function.
type KdfType int

const (
	// PBKDF2SHA256 is PBKDF2 with HMAC-SHA256.
	PBKDF2SHA256 KdfType = 0
	// Argon2id is the memory-hard Argon2id function.
	Argon2id KdfType = 1
)

func (t KdfType) String() string {
	switch t {
	case PBKDF2SHA256:
		return "pbkdf2"
	case Argon2id:
		return "argon2id"
	default:
		return "unknown"
	}
}

// Accepted parameter ranges. They mirror what the server allows in a prelogin response.
const (
	PBKDF2MinIterations     = 5000
	PBKDF2MaxIterations     = 2_000_000
	PBKDF2DefaultIterations = 600_000

	Argon2MinIterations      = 2
	Argon2MaxIterations      = 10
	Argon2DefaultIterations  = 3
	Argon2MinMemoryMiB       = 16
	Argon2MaxMemoryMiB       = 1024
	Argon2DefaultMemoryMiB   = 64
	Argon2MinParallelism     = 1
	Argon2MaxParallelism     = 16
	Argon2DefaultParallelism = 4
)

// KdfConfig carries the KDF parameters issued by the server. Memory is in MiB.
// Memory and Parallelism are ignored for PBKDF2.
type KdfConfig struct {
	Type        KdfType `json:"kdf"`
	Iterations  int     `json:"kdfIterations"`
	Memory      int     `json:"kdfMemory,omitempty"`
	Parallelism int     `json:"kdfParallelism,omitempty"`
}

// DefaultPBKDF2Config returns the default PBKDF2 parameters.
func DefaultPBKDF2Config() KdfConfig {
	return KdfConfig{Type: PBKDF2SHA256, Iterations: PBKDF2DefaultIterations}
}

// DefaultArgon2idConfig returns the default Argon2id parameters.
func DefaultArgon2idConfig() KdfConfig {
	return KdfConfig{
		Type:        Argon2id,
		Iterations:  Argon2DefaultIterations,
		Memory:      Argon2DefaultMemoryMiB,
		Parallelism: Argon2DefaultParallelism,
	}
}

// Validate checks the parameters for the selected KDF type and wraps any
// violation in ErrInvalidKdfConfig.
func (c KdfConfig) Validate() error {
	var err error
	switch c.Type {
	case PBKDF2SHA256:
		err = validation.ValidateStruct(&c,
			validation.Field(
				&c.Iterations,
				validation.Required,
				validation.Min(PBKDF2MinIterations),
				validation.Max(PBKDF2MaxIterations),
			),
		)
	case Argon2id:
		// Min skips zero values, so Required keeps zero parameters out of argon2.IDKey.
		err = validation.ValidateStruct(&c,
			validation.Field(
				&c.Iterations,
				validation.Required,
				validation.Min(Argon2MinIterations),
				validation.Max(Argon2MaxIterations),
			),
			validation.Field(
				&c.Memory,
				validation.Required,
				validation.Min(Argon2MinMemoryMiB),
				validation.Max(Argon2MaxMemoryMiB),
			),
			validation.Field(
				&c.Parallelism,
				validation.Required,
				validation.Min(Argon2MinParallelism),
				validation.Max(Argon2MaxParallelism),
			),
		)
	default:
		return errors.Wrapf(ErrInvalidKdfConfig, "unknown kdf type %d", int(c.Type))
	}

	if err != nil {
		return errors.Wrap(ErrInvalidKdfConfig, err.Error())
	}
	return nil
}

// HashPurpose selects the iteration count used when hashing a master key.
type HashPurpose int

const (
	// ServerAuthorization is the hash sent to the server at login.
	ServerAuthorization HashPurpose = 1
	// LocalAuthorization is the hash kept on the device for offline verification.
	LocalAuthorization HashPurpose = 2
)
