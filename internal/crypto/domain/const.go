package domain

import "strconv"

// EncryptionType is the wire tag that prefixes every EncString.
//
// The tag decides how many "|" separated segments follow the "." and which
// parent key can open the payload.
type EncryptionType int

const (
	// AesCbc256HmacSha256B64 is AES-256-CBC with an HMAC-SHA256 over iv||ciphertext.
	// Wire shape: "0.iv|ciphertext|mac".
	AesCbc256HmacSha256B64 EncryptionType = 0

	// AesCbc256B64 is AES-256-CBC without a MAC. Only legacy 32-byte keys produce it.
	// Wire shape: "1.iv|ciphertext".
	AesCbc256B64 EncryptionType = 1

	// Rsa2048OaepSha256B64 is RSA-OAEP with SHA-256. Wire shape: "2.ciphertext".
	Rsa2048OaepSha256B64 EncryptionType = 2

	// Rsa2048OaepSha1B64 is RSA-OAEP with SHA-1, the type produced when wrapping
	// keys for another party's public key. Wire shape: "3.ciphertext".
	Rsa2048OaepSha1B64 EncryptionType = 3
)

// segmentCount returns the number of "|" separated parts the type carries.
func (t EncryptionType) segmentCount() int {
	switch t {
	case AesCbc256HmacSha256B64:
		return 3
	case AesCbc256B64:
		return 2
	case Rsa2048OaepSha256B64, Rsa2048OaepSha1B64:
		return 1
	default:
		return 0
	}
}

// IsValid reports whether the tag is one this package understands.
func (t EncryptionType) IsValid() bool {
	return t.segmentCount() > 0
}

// HasMAC reports whether payloads of this type carry an HMAC segment.
func (t EncryptionType) HasMAC() bool {
	return t == AesCbc256HmacSha256B64
}

// IsAsymmetric reports whether the type is opened with an RSA private key.
func (t EncryptionType) IsAsymmetric() bool {
	return t == Rsa2048OaepSha256B64 || t == Rsa2048OaepSha1B64
}

func (t EncryptionType) String() string {
	switch t {
	case AesCbc256HmacSha256B64:
		return "AesCbc256_HmacSha256_B64"
	case AesCbc256B64:
		return "AesCbc256_B64"
	case Rsa2048OaepSha256B64:
		return "Rsa2048_OaepSha256_B64"
	case Rsa2048OaepSha1B64:
		return "Rsa2048_OaepSha1_B64"
	default:
		return "Unknown(" + strconv.Itoa(int(t)) + ")"
	}
}
