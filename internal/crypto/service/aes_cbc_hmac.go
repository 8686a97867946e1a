package service

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"io"

	cryptoDomain "github.com/allisson/vaultkeys/internal/crypto/domain"
)

// AESCBCHMAC implements Cipher with AES-256-CBC and PKCS#7 padding. Keys with a
// MAC half authenticate iv||ciphertext with HMAC-SHA256 (encrypt-then-MAC) and
// produce AesCbc256HmacSha256B64; 32-byte keys produce AesCbc256B64.
type AESCBCHMAC struct {
	block   cipher.Block
	macKey  []byte
	encType cryptoDomain.EncryptionType
	rand    io.Reader
}

// NewAESCBCHMAC creates a cipher for key.
func NewAESCBCHMAC(key *cryptoDomain.SymmetricCryptoKey) (*AESCBCHMAC, error) {
	if key == nil {
		return nil, cryptoDomain.ErrInvalidKeySize
	}

	encKey := key.EncKey()
	defer cryptoDomain.Zero(encKey)

	block, err := aes.NewCipher(encKey)
	if err != nil {
		return nil, err
	}

	return &AESCBCHMAC{
		block:   block,
		macKey:  key.MacKey(),
		encType: key.EncType(),
		rand:    rand.Reader,
	}, nil
}

// Encrypt encrypts plaintext under a fresh random IV.
func (a *AESCBCHMAC) Encrypt(plaintext []byte) (cryptoDomain.EncString, error) {
	iv := make([]byte, aes.BlockSize)
	if _, err := io.ReadFull(a.rand, iv); err != nil {
		return cryptoDomain.EncString{}, err
	}

	padded := pkcs7Pad(plaintext, aes.BlockSize)
	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(a.block, iv).CryptBlocks(ciphertext, padded)
	cryptoDomain.Zero(padded)

	var mac []byte
	if a.macKey != nil {
		mac = a.computeMAC(iv, ciphertext)
	}

	return cryptoDomain.NewEncString(a.encType, iv, ciphertext, mac)
}

// Decrypt checks the MAC before touching the ciphertext. A MAC mismatch returns
// ErrIntegrityCheckFailed and no plaintext.
func (a *AESCBCHMAC) Decrypt(enc cryptoDomain.EncString) ([]byte, error) {
	if enc.Type != a.encType {
		return nil, cryptoDomain.ErrKeyTypeMismatch
	}

	if enc.Type.HasMAC() {
		expected := a.computeMAC(enc.IV, enc.Data)
		if !hmac.Equal(expected, enc.MAC) {
			return nil, cryptoDomain.ErrIntegrityCheckFailed
		}
	}

	if len(enc.IV) != aes.BlockSize || len(enc.Data) == 0 || len(enc.Data)%aes.BlockSize != 0 {
		return nil, cryptoDomain.ErrDecryptionFailed
	}

	plaintext := make([]byte, len(enc.Data))
	cipher.NewCBCDecrypter(a.block, enc.IV).CryptBlocks(plaintext, enc.Data)

	unpadded, err := pkcs7Unpad(plaintext, aes.BlockSize)
	if err != nil {
		cryptoDomain.Zero(plaintext)
		return nil, cryptoDomain.ErrDecryptionFailed
	}
	return unpadded, nil
}

func (a *AESCBCHMAC) computeMAC(iv, ciphertext []byte) []byte {
	h := hmac.New(sha256.New, a.macKey)
	h.Write(iv)
	h.Write(ciphertext)
	return h.Sum(nil)
}

func pkcs7Pad(b []byte, blockSize int) []byte {
	n := blockSize - len(b)%blockSize
	out := make([]byte, len(b)+n)
	copy(out, b)
	for i := len(b); i < len(out); i++ {
		out[i] = byte(n)
	}
	return out
}

func pkcs7Unpad(b []byte, blockSize int) ([]byte, error) {
	if len(b) == 0 {
		return nil, cryptoDomain.ErrDecryptionFailed
	}
	n := int(b[len(b)-1])
	if n == 0 || n > blockSize || n > len(b) {
		return nil, cryptoDomain.ErrDecryptionFailed
	}
	for _, p := range b[len(b)-n:] {
		if int(p) != n {
			return nil, cryptoDomain.ErrDecryptionFailed
		}
	}
	return b[:len(b)-n], nil
}

// CipherManagerService implements CipherManager.
type CipherManagerService struct{}

// NewCipherManager creates a new CipherManagerService.
func NewCipherManager() *CipherManagerService {
	return &CipherManagerService{}
}

// CreateCipher returns the Cipher matching the key's encryption type.
func (cm *CipherManagerService) CreateCipher(key *cryptoDomain.SymmetricCryptoKey) (Cipher, error) {
	c, err := NewAESCBCHMAC(key)
	if err != nil {
		return nil, err
	}
	return c, nil
}
