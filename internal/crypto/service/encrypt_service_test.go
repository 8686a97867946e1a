package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/vaultkeys/internal/crypto/domain"
)

func TestEncryptService_Symmetric(t *testing.T) {
	svc := NewEncryptService(NewCipherManager(), NewRSAService())
	key := mustKey(t, 64, 0x44)

	enc, err := svc.EncryptString("my login name", key)
	require.NoError(t, err)
	assert.Equal(t, cryptoDomain.AesCbc256HmacSha256B64, enc.Type)

	plaintext, err := svc.DecryptString(enc, key)
	require.NoError(t, err)
	assert.Equal(t, "my login name", plaintext)

	_, err = svc.DecryptString(enc, mustKey(t, 64, 0x45))
	assert.ErrorIs(t, err, cryptoDomain.ErrIntegrityCheckFailed)
}

func TestEncryptService_Asymmetric(t *testing.T) {
	svc := NewEncryptService(NewCipherManager(), NewRSAService())
	kp, _ := testKeyPairs(t)

	enc, err := svc.RSAEncrypt([]byte("org key bytes"), kp.public)
	require.NoError(t, err)

	plaintext, err := svc.RSADecrypt(enc, kp.private)
	require.NoError(t, err)
	assert.Equal(t, []byte("org key bytes"), plaintext)

	_, err = svc.Decrypt(enc, mustKey(t, 64, 0x01))
	assert.ErrorIs(t, err, cryptoDomain.ErrKeyTypeMismatch)
}
