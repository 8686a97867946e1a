package service

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha1" //nolint:gosec // RSA-OAEP with SHA-1 is part of the wire format
	"crypto/sha256"
	"crypto/x509"
	"hash"
	"io"

	cryptoDomain "github.com/allisson/vaultkeys/internal/crypto/domain"
)

// DefaultRSABits is the modulus size of account and auth request keypairs.
const DefaultRSABits = 2048

// RSAService implements AsymmetricCipher with RSA-OAEP. Public keys are SPKI
// DER and private keys PKCS#8 DER.
type RSAService struct {
	rand io.Reader
}

// NewRSAService creates a new RSAService.
func NewRSAService() *RSAService {
	return &RSAService{rand: rand.Reader}
}

// GenerateKeyPair generates a new RSA keypair.
func (r *RSAService) GenerateKeyPair(bits int) (cryptoDomain.PublicKey, []byte, error) {
	priv, err := rsa.GenerateKey(r.rand, bits)
	if err != nil {
		return nil, nil, err
	}

	pub, err := x509.MarshalPKIXPublicKey(&priv.PublicKey)
	if err != nil {
		return nil, nil, err
	}

	der, err := x509.MarshalPKCS8PrivateKey(priv)
	if err != nil {
		return nil, nil, err
	}

	return cryptoDomain.PublicKey(pub), der, nil
}

// PublicKeyFromPrivate derives the SPKI public key for a PKCS#8 private key.
func (r *RSAService) PublicKeyFromPrivate(privateKey []byte) (cryptoDomain.PublicKey, error) {
	priv, err := parsePrivateKey(privateKey)
	if err != nil {
		return nil, err
	}

	pub, err := x509.MarshalPKIXPublicKey(&priv.PublicKey)
	if err != nil {
		return nil, cryptoDomain.ErrInvalidPrivateKey
	}
	return cryptoDomain.PublicKey(pub), nil
}

// Encrypt wraps plaintext for publicKey with RSA-OAEP SHA-1.
func (r *RSAService) Encrypt(plaintext []byte, publicKey cryptoDomain.PublicKey) (cryptoDomain.EncString, error) {
	pub, err := parsePublicKey(publicKey)
	if err != nil {
		return cryptoDomain.EncString{}, err
	}

	ciphertext, err := rsa.EncryptOAEP(sha1.New(), r.rand, pub, plaintext, nil)
	if err != nil {
		return cryptoDomain.EncString{}, err
	}

	return cryptoDomain.NewEncString(cryptoDomain.Rsa2048OaepSha1B64, nil, ciphertext, nil)
}

// Decrypt opens an RSA EncString with a PKCS#8 private key. A key that does not
// match the wrapping public key fails with ErrDecryptionFailed.
func (r *RSAService) Decrypt(enc cryptoDomain.EncString, privateKey []byte) ([]byte, error) {
	var h hash.Hash
	switch enc.Type {
	case cryptoDomain.Rsa2048OaepSha1B64:
		h = sha1.New()
	case cryptoDomain.Rsa2048OaepSha256B64:
		h = sha256.New()
	default:
		return nil, cryptoDomain.ErrKeyTypeMismatch
	}

	priv, err := parsePrivateKey(privateKey)
	if err != nil {
		return nil, err
	}

	plaintext, err := rsa.DecryptOAEP(h, r.rand, priv, enc.Data, nil)
	if err != nil {
		return nil, cryptoDomain.ErrDecryptionFailed
	}
	return plaintext, nil
}

func parsePublicKey(der cryptoDomain.PublicKey) (*rsa.PublicKey, error) {
	key, err := x509.ParsePKIXPublicKey(der)
	if err != nil {
		return nil, cryptoDomain.ErrInvalidPublicKey
	}
	pub, ok := key.(*rsa.PublicKey)
	if !ok {
		return nil, cryptoDomain.ErrInvalidPublicKey
	}
	return pub, nil
}

func parsePrivateKey(der []byte) (*rsa.PrivateKey, error) {
	key, err := x509.ParsePKCS8PrivateKey(der)
	if err != nil {
		return nil, cryptoDomain.ErrInvalidPrivateKey
	}
	priv, ok := key.(*rsa.PrivateKey)
	if !ok {
		return nil, cryptoDomain.ErrInvalidPrivateKey
	}
	return priv, nil
}
