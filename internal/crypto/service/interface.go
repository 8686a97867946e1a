// Package service provides the cryptographic primitives behind the key hierarchy:
// key generation and derivation, AES-256-CBC with HMAC-SHA256, RSA-OAEP and
// KMS keepers used to seal device keys.
package service

import (
	"context"

	cryptoDomain "github.com/allisson/vaultkeys/internal/crypto/domain"
)

// Cipher encrypts and decrypts EncStrings under a single symmetric key.
type Cipher interface {
	// Encrypt encrypts plaintext with a fresh random IV.
	Encrypt(plaintext []byte) (cryptoDomain.EncString, error)

	// Decrypt verifies the MAC (when the type carries one) and then decrypts.
	Decrypt(enc cryptoDomain.EncString) ([]byte, error)
}

// CipherManager creates Cipher instances for symmetric keys.
type CipherManager interface {
	CreateCipher(key *cryptoDomain.SymmetricCryptoKey) (Cipher, error)
}

// KeyGenerator creates and derives symmetric keys.
type KeyGenerator interface {
	// CreateKey returns a random 256 or 512 bit key.
	CreateKey(bitLength int) (*cryptoDomain.SymmetricCryptoKey, error)

	// CreateMaterialAndKey returns random material and the 64-byte key HKDF derives from it.
	CreateMaterialAndKey(bitLength int, salt, purpose string) ([]byte, *cryptoDomain.SymmetricCryptoKey, error)

	// DeriveKeyFromMaterial deterministically expands material into a 64-byte key.
	DeriveKeyFromMaterial(material []byte, salt, purpose string) (*cryptoDomain.SymmetricCryptoKey, error)

	// DeriveKeyFromPassword runs the configured KDF and returns a 32-byte key.
	DeriveKeyFromPassword(
		password, salt string,
		kdf cryptoDomain.KdfConfig,
	) (*cryptoDomain.SymmetricCryptoKey, error)

	// StretchKey expands a 32-byte key into a 64-byte enc+mac key.
	StretchKey(key *cryptoDomain.SymmetricCryptoKey) (*cryptoDomain.SymmetricCryptoKey, error)

	// HashMasterKey returns the base64 master password hash for the given purpose.
	HashMasterKey(
		password string,
		masterKey *cryptoDomain.SymmetricCryptoKey,
		purpose cryptoDomain.HashPurpose,
	) (string, error)
}

// AsymmetricCipher wraps data for an RSA public key.
type AsymmetricCipher interface {
	// GenerateKeyPair returns an SPKI public key and a PKCS#8 private key.
	GenerateKeyPair(bits int) (cryptoDomain.PublicKey, []byte, error)

	// PublicKeyFromPrivate derives the SPKI public key of a PKCS#8 private key.
	PublicKeyFromPrivate(privateKey []byte) (cryptoDomain.PublicKey, error)

	// Encrypt produces an Rsa2048OaepSha1B64 EncString.
	Encrypt(plaintext []byte, publicKey cryptoDomain.PublicKey) (cryptoDomain.EncString, error)

	// Decrypt opens Rsa2048OaepSha1B64 and Rsa2048OaepSha256B64 EncStrings.
	Decrypt(enc cryptoDomain.EncString, privateKey []byte) ([]byte, error)
}

// EncryptService is the entry point used by use cases to encrypt and decrypt values.
type EncryptService interface {
	Encrypt(plaintext []byte, key *cryptoDomain.SymmetricCryptoKey) (cryptoDomain.EncString, error)
	EncryptString(plaintext string, key *cryptoDomain.SymmetricCryptoKey) (cryptoDomain.EncString, error)
	Decrypt(enc cryptoDomain.EncString, key *cryptoDomain.SymmetricCryptoKey) ([]byte, error)
	DecryptString(enc cryptoDomain.EncString, key *cryptoDomain.SymmetricCryptoKey) (string, error)
	RSAEncrypt(plaintext []byte, publicKey cryptoDomain.PublicKey) (cryptoDomain.EncString, error)
	RSADecrypt(enc cryptoDomain.EncString, privateKey []byte) ([]byte, error)
}

// KMSKeeper seals and unseals small secrets with a key held by a KMS.
// The KMSService keeper wraps a gocloud.dev/secrets keeper.
type KMSKeeper interface {
	Encrypt(ctx context.Context, plaintext []byte) ([]byte, error)
	Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error)
	Close() error
}

// KMSService opens keepers for KMS key URIs.
type KMSService interface {
	OpenKeeper(ctx context.Context, keyURI string) (KMSKeeper, error)
}
