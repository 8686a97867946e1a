package service

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/vaultkeys/internal/crypto/domain"
)

type testKeyPair struct {
	public  cryptoDomain.PublicKey
	private []byte
}

var (
	keyPairsOnce sync.Once
	keyPairs     [2]testKeyPair
)

// testKeyPairs generates two RSA keypairs once per test binary.
func testKeyPairs(t *testing.T) (testKeyPair, testKeyPair) {
	t.Helper()
	keyPairsOnce.Do(func() {
		svc := NewRSAService()
		for i := range keyPairs {
			pub, priv, err := svc.GenerateKeyPair(DefaultRSABits)
			if err != nil {
				panic(err)
			}
			keyPairs[i] = testKeyPair{public: pub, private: priv}
		}
	})
	return keyPairs[0], keyPairs[1]
}

func TestRSAService_RoundTrip(t *testing.T) {
	svc := NewRSAService()
	kp, _ := testKeyPairs(t)
	userKey := mustKey(t, 64, 0x5a)

	enc, err := svc.Encrypt(userKey.Key(), kp.public)
	require.NoError(t, err)
	assert.Equal(t, cryptoDomain.Rsa2048OaepSha1B64, enc.Type)
	assert.Nil(t, enc.IV)
	assert.Nil(t, enc.MAC)
	assert.Len(t, enc.Data, 256)

	parsed, err := cryptoDomain.ParseEncString(enc.String())
	require.NoError(t, err)

	plaintext, err := svc.Decrypt(parsed, kp.private)
	require.NoError(t, err)
	assert.Equal(t, userKey.Key(), plaintext)
}

func TestRSAService_DecryptSHA256(t *testing.T) {
	svc := NewRSAService()
	kp, _ := testKeyPairs(t)

	pub, err := parsePublicKey(kp.public)
	require.NoError(t, err)

	ciphertext, err := rsa.EncryptOAEP(sha256.New(), rand.Reader, pub, []byte("org key"), nil)
	require.NoError(t, err)

	enc, err := cryptoDomain.NewEncString(cryptoDomain.Rsa2048OaepSha256B64, nil, ciphertext, nil)
	require.NoError(t, err)

	plaintext, err := svc.Decrypt(enc, kp.private)
	require.NoError(t, err)
	assert.Equal(t, []byte("org key"), plaintext)
}

func TestRSAService_WrongPrivateKey(t *testing.T) {
	svc := NewRSAService()
	kp, other := testKeyPairs(t)

	enc, err := svc.Encrypt([]byte("secret"), kp.public)
	require.NoError(t, err)

	plaintext, err := svc.Decrypt(enc, other.private)
	assert.ErrorIs(t, err, cryptoDomain.ErrDecryptionFailed)
	assert.Nil(t, plaintext)
}

func TestRSAService_InvalidInput(t *testing.T) {
	svc := NewRSAService()
	kp, _ := testKeyPairs(t)

	_, err := svc.Encrypt([]byte("secret"), cryptoDomain.PublicKey("not a key"))
	assert.ErrorIs(t, err, cryptoDomain.ErrInvalidPublicKey)

	enc, err := svc.Encrypt([]byte("secret"), kp.public)
	require.NoError(t, err)

	_, err = svc.Decrypt(enc, []byte("not a key"))
	assert.ErrorIs(t, err, cryptoDomain.ErrInvalidPrivateKey)

	symmetric, err := cryptoDomain.NewEncString(cryptoDomain.AesCbc256B64, make([]byte, 16), make([]byte, 16), nil)
	require.NoError(t, err)
	_, err = svc.Decrypt(symmetric, kp.private)
	assert.ErrorIs(t, err, cryptoDomain.ErrKeyTypeMismatch)
}

func TestRSAService_PublicKeyFromPrivate(t *testing.T) {
	svc := NewRSAService()
	kp, _ := testKeyPairs(t)

	pub, err := svc.PublicKeyFromPrivate(kp.private)
	require.NoError(t, err)
	assert.Equal(t, kp.public, pub)

	_, err = svc.PublicKeyFromPrivate([]byte("garbage"))
	assert.ErrorIs(t, err, cryptoDomain.ErrInvalidPrivateKey)
}
