package service

import (
	cryptoDomain "github.com/allisson/vaultkeys/internal/crypto/domain"
)

// encryptService implements EncryptService on top of a CipherManager and an
// AsymmetricCipher.
type encryptService struct {
	cipherManager CipherManager
	rsa           AsymmetricCipher
}

// NewEncryptService creates a new EncryptService.
func NewEncryptService(cipherManager CipherManager, rsa AsymmetricCipher) EncryptService {
	return &encryptService{cipherManager: cipherManager, rsa: rsa}
}

// Encrypt encrypts plaintext under key.
func (e *encryptService) Encrypt(
	plaintext []byte,
	key *cryptoDomain.SymmetricCryptoKey,
) (cryptoDomain.EncString, error) {
	c, err := e.cipherManager.CreateCipher(key)
	if err != nil {
		return cryptoDomain.EncString{}, err
	}
	return c.Encrypt(plaintext)
}

// EncryptString encrypts the UTF-8 bytes of plaintext under key.
func (e *encryptService) EncryptString(
	plaintext string,
	key *cryptoDomain.SymmetricCryptoKey,
) (cryptoDomain.EncString, error) {
	return e.Encrypt([]byte(plaintext), key)
}

// Decrypt decrypts enc under key. RSA payloads are rejected with ErrKeyTypeMismatch.
func (e *encryptService) Decrypt(
	enc cryptoDomain.EncString,
	key *cryptoDomain.SymmetricCryptoKey,
) ([]byte, error) {
	if enc.Type.IsAsymmetric() {
		return nil, cryptoDomain.ErrKeyTypeMismatch
	}
	c, err := e.cipherManager.CreateCipher(key)
	if err != nil {
		return nil, err
	}
	return c.Decrypt(enc)
}

// DecryptString decrypts enc under key and returns the plaintext as a string.
func (e *encryptService) DecryptString(
	enc cryptoDomain.EncString,
	key *cryptoDomain.SymmetricCryptoKey,
) (string, error) {
	b, err := e.Decrypt(enc, key)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// RSAEncrypt wraps plaintext for publicKey.
func (e *encryptService) RSAEncrypt(
	plaintext []byte,
	publicKey cryptoDomain.PublicKey,
) (cryptoDomain.EncString, error) {
	return e.rsa.Encrypt(plaintext, publicKey)
}

// RSADecrypt opens an RSA EncString with privateKey.
func (e *encryptService) RSADecrypt(enc cryptoDomain.EncString, privateKey []byte) ([]byte, error) {
	return e.rsa.Decrypt(enc, privateKey)
}
