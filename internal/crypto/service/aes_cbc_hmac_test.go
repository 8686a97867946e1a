package service

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/vaultkeys/internal/crypto/domain"
)

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("entropy exhausted")
}

func mustKey(t *testing.T, size int, fill byte) *cryptoDomain.SymmetricCryptoKey {
	t.Helper()
	key, err := cryptoDomain.NewSymmetricCryptoKey(bytes.Repeat([]byte{fill}, size))
	require.NoError(t, err)
	return key
}

func TestAESCBCHMAC_RoundTrip(t *testing.T) {
	tests := []struct {
		name      string
		keySize   int
		wantType  cryptoDomain.EncryptionType
		plaintext []byte
	}{
		{name: "mac key", keySize: 64, wantType: cryptoDomain.AesCbc256HmacSha256B64, plaintext: []byte("hunter2")},
		{name: "mac key empty plaintext", keySize: 64, wantType: cryptoDomain.AesCbc256HmacSha256B64, plaintext: []byte{}},
		{
			name:      "mac key block aligned",
			keySize:   64,
			wantType:  cryptoDomain.AesCbc256HmacSha256B64,
			plaintext: bytes.Repeat([]byte("a"), 32),
		},
		{name: "legacy key", keySize: 32, wantType: cryptoDomain.AesCbc256B64, plaintext: []byte("legacy data")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewAESCBCHMAC(mustKey(t, tt.keySize, 0x11))
			require.NoError(t, err)

			enc, err := c.Encrypt(tt.plaintext)
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, enc.Type)
			assert.Len(t, enc.IV, 16)
			assert.Zero(t, len(enc.Data)%16)
			if tt.wantType.HasMAC() {
				assert.Len(t, enc.MAC, 32)
			} else {
				assert.Nil(t, enc.MAC)
			}

			parsed, err := cryptoDomain.ParseEncString(enc.String())
			require.NoError(t, err)

			plaintext, err := c.Decrypt(parsed)
			require.NoError(t, err)
			assert.Equal(t, tt.plaintext, plaintext)
		})
	}
}

func TestAESCBCHMAC_FreshIV(t *testing.T) {
	c, err := NewAESCBCHMAC(mustKey(t, 64, 0x11))
	require.NoError(t, err)

	a, err := c.Encrypt([]byte("same"))
	require.NoError(t, err)
	b, err := c.Encrypt([]byte("same"))
	require.NoError(t, err)

	assert.NotEqual(t, a.IV, b.IV)
	assert.NotEqual(t, a.String(), b.String())
}

func TestAESCBCHMAC_VerifyBeforeDecrypt(t *testing.T) {
	c, err := NewAESCBCHMAC(mustKey(t, 64, 0x22))
	require.NoError(t, err)

	enc, err := c.Encrypt([]byte("top secret"))
	require.NoError(t, err)

	tamper := func(mutate func(e *cryptoDomain.EncString)) cryptoDomain.EncString {
		e := cryptoDomain.EncString{
			Type: enc.Type,
			IV:   bytes.Clone(enc.IV),
			Data: bytes.Clone(enc.Data),
			MAC:  bytes.Clone(enc.MAC),
		}
		mutate(&e)
		return e
	}

	tests := []struct {
		name string
		enc  cryptoDomain.EncString
	}{
		{name: "corrupted mac byte", enc: tamper(func(e *cryptoDomain.EncString) { e.MAC[0] ^= 0x01 })},
		{name: "corrupted ciphertext", enc: tamper(func(e *cryptoDomain.EncString) { e.Data[0] ^= 0x01 })},
		{name: "corrupted iv", enc: tamper(func(e *cryptoDomain.EncString) { e.IV[15] ^= 0x80 })},
		{name: "truncated mac", enc: tamper(func(e *cryptoDomain.EncString) { e.MAC = e.MAC[:31] })},
		{name: "truncated iv", enc: tamper(func(e *cryptoDomain.EncString) { e.IV = e.IV[:8] })},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plaintext, err := c.Decrypt(tt.enc)
			assert.ErrorIs(t, err, cryptoDomain.ErrIntegrityCheckFailed)
			assert.NotErrorIs(t, err, cryptoDomain.ErrDecryptionFailed)
			assert.Nil(t, plaintext)
		})
	}
}

func TestAESCBCHMAC_WrongKey(t *testing.T) {
	c, err := NewAESCBCHMAC(mustKey(t, 64, 0x01))
	require.NoError(t, err)
	other, err := NewAESCBCHMAC(mustKey(t, 64, 0x02))
	require.NoError(t, err)

	enc, err := c.Encrypt([]byte("data"))
	require.NoError(t, err)

	plaintext, err := other.Decrypt(enc)
	assert.ErrorIs(t, err, cryptoDomain.ErrIntegrityCheckFailed)
	assert.Nil(t, plaintext)
}

func TestAESCBCHMAC_DecryptionFailure(t *testing.T) {
	c, err := NewAESCBCHMAC(mustKey(t, 32, 0x33))
	require.NoError(t, err)

	t.Run("ciphertext not block aligned", func(t *testing.T) {
		enc, err := cryptoDomain.NewEncString(cryptoDomain.AesCbc256B64, make([]byte, 16), []byte("short"), nil)
		require.NoError(t, err)

		_, err = c.Decrypt(enc)
		assert.ErrorIs(t, err, cryptoDomain.ErrDecryptionFailed)
	})

	t.Run("empty ciphertext", func(t *testing.T) {
		enc, err := cryptoDomain.NewEncString(cryptoDomain.AesCbc256B64, make([]byte, 16), nil, nil)
		require.NoError(t, err)

		_, err = c.Decrypt(enc)
		assert.ErrorIs(t, err, cryptoDomain.ErrDecryptionFailed)
	})

	t.Run("wrong iv length", func(t *testing.T) {
		enc, err := cryptoDomain.NewEncString(cryptoDomain.AesCbc256B64, make([]byte, 8), make([]byte, 16), nil)
		require.NoError(t, err)

		_, err = c.Decrypt(enc)
		assert.ErrorIs(t, err, cryptoDomain.ErrDecryptionFailed)
	})
}

func TestAESCBCHMAC_KeyTypeMismatch(t *testing.T) {
	macCipher, err := NewAESCBCHMAC(mustKey(t, 64, 0x01))
	require.NoError(t, err)
	legacyCipher, err := NewAESCBCHMAC(mustKey(t, 32, 0x01))
	require.NoError(t, err)

	withMAC, err := macCipher.Encrypt([]byte("data"))
	require.NoError(t, err)
	withoutMAC, err := legacyCipher.Encrypt([]byte("data"))
	require.NoError(t, err)

	_, err = legacyCipher.Decrypt(withMAC)
	assert.ErrorIs(t, err, cryptoDomain.ErrKeyTypeMismatch)

	_, err = macCipher.Decrypt(withoutMAC)
	assert.ErrorIs(t, err, cryptoDomain.ErrKeyTypeMismatch)
}

func TestAESCBCHMAC_RandomFailure(t *testing.T) {
	c, err := NewAESCBCHMAC(mustKey(t, 64, 0x01))
	require.NoError(t, err)
	c.rand = failingReader{}

	_, err = c.Encrypt([]byte("data"))
	assert.Error(t, err)
}

func TestPKCS7(t *testing.T) {
	for size := 0; size <= 33; size++ {
		in := bytes.Repeat([]byte{0x42}, size)
		padded := pkcs7Pad(in, 16)
		assert.Zero(t, len(padded)%16)
		assert.Greater(t, len(padded), size)

		out, err := pkcs7Unpad(padded, 16)
		require.NoError(t, err)
		assert.Equal(t, in, out)
	}

	bad := [][]byte{
		{},
		append(bytes.Repeat([]byte{0x01}, 15), 0x00),
		append(bytes.Repeat([]byte{0x01}, 15), 0x11),
		append(bytes.Repeat([]byte{0x01}, 14), 0x03, 0x02),
	}
	for _, b := range bad {
		_, err := pkcs7Unpad(b, 16)
		assert.ErrorIs(t, err, cryptoDomain.ErrDecryptionFailed)
	}
}

func TestCipherManager_CreateCipher(t *testing.T) {
	cm := NewCipherManager()

	c, err := cm.CreateCipher(mustKey(t, 64, 0x01))
	require.NoError(t, err)
	assert.IsType(t, &AESCBCHMAC{}, c)

	_, err = cm.CreateCipher(nil)
	assert.ErrorIs(t, err, cryptoDomain.ErrInvalidKeySize)
}
