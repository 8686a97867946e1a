package domain

import (
	"crypto/subtle"
	"encoding/base64"
)

// Key lengths accepted by NewSymmetricCryptoKey.
const (
	EncKeySize       = 32
	MacKeySize       = 32
	StretchedKeySize = EncKeySize + MacKeySize
)

// SymmetricCryptoKey holds 32 or 64 bytes of key material.
//
// A 64-byte key splits into an AES-256 encryption half and an HMAC-SHA256 half and
// produces AesCbc256HmacSha256B64 payloads. A 32-byte key has only the encryption
// half and produces AesCbc256B64 payloads. Accessors return copies; Zero is the
// only operation that changes the key after construction.
type SymmetricCryptoKey struct {
	key     []byte
	encType EncryptionType
}

// NewSymmetricCryptoKey copies b into a new key. Lengths other than 32 and 64
// fail with ErrInvalidKeySize.
func NewSymmetricCryptoKey(b []byte) (*SymmetricCryptoKey, error) {
	var encType EncryptionType
	switch len(b) {
	case EncKeySize:
		encType = AesCbc256B64
	case StretchedKeySize:
		encType = AesCbc256HmacSha256B64
	default:
		return nil, ErrInvalidKeySize
	}

	key := make([]byte, len(b))
	copy(key, b)
	return &SymmetricCryptoKey{key: key, encType: encType}, nil
}

// Key returns a copy of the full key material.
func (k *SymmetricCryptoKey) Key() []byte {
	return clone(k.key)
}

// EncKey returns a copy of the encryption half.
func (k *SymmetricCryptoKey) EncKey() []byte {
	return clone(k.key[:EncKeySize])
}

// MacKey returns a copy of the MAC half, or nil for a 32-byte key.
func (k *SymmetricCryptoKey) MacKey() []byte {
	if len(k.key) < StretchedKeySize {
		return nil
	}
	return clone(k.key[EncKeySize:])
}

// EncType is the EncString type this key produces when used as a wrapping key.
func (k *SymmetricCryptoKey) EncType() EncryptionType {
	return k.encType
}

// Len is the size of the key material in bytes.
func (k *SymmetricCryptoKey) Len() int {
	return len(k.key)
}

// HasMAC reports whether the key carries a MAC half.
func (k *SymmetricCryptoKey) HasMAC() bool {
	return len(k.key) == StretchedKeySize
}

// Base64 returns the key material as standard base64.
func (k *SymmetricCryptoKey) Base64() string {
	return base64.StdEncoding.EncodeToString(k.key)
}

// Equal compares two keys in constant time.
func (k *SymmetricCryptoKey) Equal(other *SymmetricCryptoKey) bool {
	if k == nil || other == nil {
		return k == other
	}
	return subtle.ConstantTimeCompare(k.key, other.key) == 1
}

// Zero wipes the key material. The key must not be used afterwards.
func (k *SymmetricCryptoKey) Zero() {
	if k == nil {
		return
	}
	Zero(k.key)
}

func (k *SymmetricCryptoKey) wrappingKey() {}

// PublicKey is a DER encoded SPKI RSA public key.
type PublicKey []byte

func (PublicKey) wrappingKey() {}

// WrappingKey is a parent key able to wrap a child key: either a
// *SymmetricCryptoKey or a PublicKey.
type WrappingKey interface {
	wrappingKey()
}

func clone(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
