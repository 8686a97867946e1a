package usecase

import (
	"crypto/rand"
	"io"
	"math/big"

	authRequestDomain "github.com/allisson/vaultkeys/internal/authrequest/domain"
	apperrors "github.com/allisson/vaultkeys/internal/errors"
)

// accessCodeAlphabet leaves out characters that are easy to misread.
const accessCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz23456789"

// newAccessCode returns a uniformly random access code read from r.
func newAccessCode(r io.Reader) (string, error) {
	if r == nil {
		r = rand.Reader
	}
	max := big.NewInt(int64(len(accessCodeAlphabet)))

	code := make([]byte, authRequestDomain.AccessCodeLength)
	for i := range code {
		n, err := rand.Int(r, max)
		if err != nil {
			return "", apperrors.Wrap(err, "failed to generate access code")
		}
		code[i] = accessCodeAlphabet[n.Int64()]
	}
	return string(code), nil
}
