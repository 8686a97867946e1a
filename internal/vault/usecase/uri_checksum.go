package usecase

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"

	cryptoDomain "github.com/allisson/vaultkeys/internal/crypto/domain"
	cryptoService "github.com/allisson/vaultkeys/internal/crypto/service"
)

// uriChecksum is the base64 SHA-256 of a login URI plaintext.
func uriChecksum(uri string) string {
	sum := sha256.Sum256([]byte(uri))
	return base64.StdEncoding.EncodeToString(sum[:])
}

func checksumMatches(uri, checksum string) bool {
	return subtle.ConstantTimeCompare([]byte(uriChecksum(uri)), []byte(checksum)) == 1
}

// encryptURIChecksum decrypts an encrypted URI and returns its checksum
// encrypted under the same key.
func encryptURIChecksum(
	encryptService cryptoService.EncryptService,
	uri cryptoDomain.EncString,
	key *cryptoDomain.SymmetricCryptoKey,
) (cryptoDomain.EncString, error) {
	plaintext, err := encryptService.DecryptString(uri, key)
	if err != nil {
		return cryptoDomain.EncString{}, err
	}
	return encryptService.EncryptString(uriChecksum(plaintext), key)
}
