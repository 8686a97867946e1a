package service

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"io"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/pbkdf2"

	cryptoDomain "github.com/allisson/vaultkeys/internal/crypto/domain"
	"github.com/allisson/vaultkeys/internal/errors"
)

// Output sizes of the derivation functions.
const (
	passwordKeySize = 32
	derivedKeySize  = 64
)

// KeyGenerationService implements KeyGenerator.
//
// Every derivation here must agree bit for bit with the server and the other
// clients; changing a parameter locks users out of their vaults.
type KeyGenerationService struct {
	rand io.Reader
}

// NewKeyGenerator creates a KeyGenerationService reading from crypto/rand.
func NewKeyGenerator() *KeyGenerationService {
	return &KeyGenerationService{rand: rand.Reader}
}

// CreateKey returns a random key of 256 or 512 bits.
func (g *KeyGenerationService) CreateKey(bitLength int) (*cryptoDomain.SymmetricCryptoKey, error) {
	if bitLength != 256 && bitLength != 512 {
		return nil, errors.Wrapf(cryptoDomain.ErrInvalidKeySize, "unsupported key length %d", bitLength)
	}

	b := make([]byte, bitLength/8)
	defer cryptoDomain.Zero(b)

	if _, err := io.ReadFull(g.rand, b); err != nil {
		return nil, errors.Wrap(err, "failed to read random key material")
	}
	return cryptoDomain.NewSymmetricCryptoKey(b)
}

// CreateMaterialAndKey returns bitLength random bits of material together with
// the 64-byte key derived from it. Callers persist or share the material and
// re-derive the key with DeriveKeyFromMaterial.
func (g *KeyGenerationService) CreateMaterialAndKey(
	bitLength int,
	salt, purpose string,
) ([]byte, *cryptoDomain.SymmetricCryptoKey, error) {
	switch bitLength {
	case 128, 192, 256, 512:
	default:
		return nil, nil, errors.Wrapf(cryptoDomain.ErrInvalidKeySize, "unsupported material length %d", bitLength)
	}

	material := make([]byte, bitLength/8)
	if _, err := io.ReadFull(g.rand, material); err != nil {
		return nil, nil, errors.Wrap(err, "failed to read random key material")
	}

	key, err := g.DeriveKeyFromMaterial(material, salt, purpose)
	if err != nil {
		cryptoDomain.Zero(material)
		return nil, nil, err
	}
	return material, key, nil
}

// DeriveKeyFromMaterial runs HKDF-SHA256 (salt for extract, purpose for expand)
// over material and returns a 64-byte key.
func (g *KeyGenerationService) DeriveKeyFromMaterial(
	material []byte,
	salt, purpose string,
) (*cryptoDomain.SymmetricCryptoKey, error) {
	if len(material) == 0 {
		return nil, errors.Wrap(cryptoDomain.ErrInvalidKeySize, "empty key material")
	}

	out := make([]byte, derivedKeySize)
	defer cryptoDomain.Zero(out)

	r := hkdf.New(sha256.New, material, []byte(salt), []byte(purpose))
	if _, err := io.ReadFull(r, out); err != nil {
		return nil, errors.Wrap(err, "failed to expand key material")
	}
	return cryptoDomain.NewSymmetricCryptoKey(out)
}

// DeriveKeyFromPassword derives a 32-byte master key. The config is validated
// before any work is done.
//
// PBKDF2: PBKDF2-HMAC-SHA256(password, salt, iterations).
// Argon2id: Argon2id(password, SHA-256(salt), iterations, memory MiB, parallelism).
func (g *KeyGenerationService) DeriveKeyFromPassword(
	password, salt string,
	kdf cryptoDomain.KdfConfig,
) (*cryptoDomain.SymmetricCryptoKey, error) {
	if err := kdf.Validate(); err != nil {
		return nil, err
	}

	var out []byte
	switch kdf.Type {
	case cryptoDomain.PBKDF2SHA256:
		out = pbkdf2.Key([]byte(password), []byte(salt), kdf.Iterations, passwordKeySize, sha256.New)
	case cryptoDomain.Argon2id:
		saltHash := sha256.Sum256([]byte(salt))
		out = argon2.IDKey(
			[]byte(password),
			saltHash[:],
			uint32(kdf.Iterations),
			uint32(kdf.Memory)*1024,
			uint8(kdf.Parallelism),
			passwordKeySize,
		)
	}
	defer cryptoDomain.Zero(out)

	return cryptoDomain.NewSymmetricCryptoKey(out)
}

// StretchKey expands a 32-byte key into enc and mac halves with HKDF-Expand
// using the infos "enc" and "mac". A 64-byte key is returned unchanged.
func (g *KeyGenerationService) StretchKey(
	key *cryptoDomain.SymmetricCryptoKey,
) (*cryptoDomain.SymmetricCryptoKey, error) {
	if key == nil {
		return nil, cryptoDomain.ErrInvalidKeySize
	}
	if key.HasMAC() {
		return key, nil
	}

	prk := key.Key()
	defer cryptoDomain.Zero(prk)

	out := make([]byte, derivedKeySize)
	defer cryptoDomain.Zero(out)

	if _, err := io.ReadFull(hkdf.Expand(sha256.New, prk, []byte("enc")), out[:cryptoDomain.EncKeySize]); err != nil {
		return nil, errors.Wrap(err, "failed to stretch enc key")
	}
	if _, err := io.ReadFull(hkdf.Expand(sha256.New, prk, []byte("mac")), out[cryptoDomain.EncKeySize:]); err != nil {
		return nil, errors.Wrap(err, "failed to stretch mac key")
	}
	return cryptoDomain.NewSymmetricCryptoKey(out)
}

// HashMasterKey returns base64(PBKDF2-SHA256(masterKey, password, n, 32)) with
// n = 1 for ServerAuthorization and n = 2 for LocalAuthorization.
func (g *KeyGenerationService) HashMasterKey(
	password string,
	masterKey *cryptoDomain.SymmetricCryptoKey,
	purpose cryptoDomain.HashPurpose,
) (string, error) {
	if masterKey == nil {
		return "", cryptoDomain.ErrInvalidKeySize
	}
	if purpose != cryptoDomain.ServerAuthorization && purpose != cryptoDomain.LocalAuthorization {
		return "", errors.Wrapf(errors.ErrInvalidInput, "unknown hash purpose %d", int(purpose))
	}

	key := masterKey.Key()
	defer cryptoDomain.Zero(key)

	hash := pbkdf2.Key(key, []byte(password), int(purpose), passwordKeySize, sha256.New)
	return base64.StdEncoding.EncodeToString(hash), nil
}
