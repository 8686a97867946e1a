package domain

import (
	"encoding/base64"
	"strconv"
	"strings"

	validation "github.com/jellydator/validation"

	"github.com/allisson/vaultkeys/internal/errors"
)

// b64 rejects non-canonical padding bits so that every accepted segment
// re-encodes to exactly the text it was parsed from.
var b64 = base64.StdEncoding.Strict()

// EncString is an encrypted value in its persisted form:
//
//	"<type>.<b64 iv>|<b64 ciphertext>|<b64 mac>"
//
// Segments a type does not use are omitted, so RSA payloads are "<type>.<b64 ciphertext>".
// Any EncString returned by ParseEncString serializes back to the identical string.
type EncString struct {
	Type EncryptionType
	IV   []byte
	Data []byte
	MAC  []byte
}

// NewEncString builds an EncString and checks the parts against the type.
// Unused parts must be empty; used parts that are nil are normalized to empty slices.
func NewEncString(encType EncryptionType, iv, data, mac []byte) (EncString, error) {
	if !encType.IsValid() {
		return EncString{}, errors.Wrapf(ErrMalformedEncString, "unknown type %d", int(encType))
	}

	e := EncString{Type: encType, Data: nonNil(data)}

	switch {
	case encType.IsAsymmetric():
		if len(iv) > 0 || len(mac) > 0 {
			return EncString{}, errors.Wrapf(ErrMalformedEncString, "%s carries no iv or mac", encType)
		}
	case encType.HasMAC():
		e.IV = nonNil(iv)
		e.MAC = nonNil(mac)
	default:
		if len(mac) > 0 {
			return EncString{}, errors.Wrapf(ErrMalformedEncString, "%s carries no mac", encType)
		}
		e.IV = nonNil(iv)
	}

	return e, nil
}

// ParseEncString parses the wire form. It fails with ErrMalformedEncString on
// a missing or non-canonical type tag, an unknown type, a segment count that
// does not match the type, or a segment that is not strict standard base64.
func ParseEncString(s string) (EncString, error) {
	tag, payload, ok := strings.Cut(s, ".")
	if !ok {
		return EncString{}, errors.Wrap(ErrMalformedEncString, "missing type separator")
	}

	n, err := strconv.Atoi(tag)
	if err != nil || strconv.Itoa(n) != tag {
		return EncString{}, errors.Wrapf(ErrMalformedEncString, "invalid type tag %q", tag)
	}

	encType := EncryptionType(n)
	if !encType.IsValid() {
		return EncString{}, errors.Wrapf(ErrMalformedEncString, "unknown type %d", n)
	}

	parts := strings.Split(payload, "|")
	if len(parts) != encType.segmentCount() {
		return EncString{}, errors.Wrapf(
			ErrMalformedEncString,
			"%s expects %d segments, got %d",
			encType,
			encType.segmentCount(),
			len(parts),
		)
	}

	decoded := make([][]byte, len(parts))
	for i, part := range parts {
		b, err := decodeSegment(part)
		if err != nil {
			return EncString{}, errors.Wrapf(ErrMalformedEncString, "segment %d is not valid base64", i)
		}
		decoded[i] = b
	}

	switch len(decoded) {
	case 1:
		return EncString{Type: encType, Data: decoded[0]}, nil
	case 2:
		return EncString{Type: encType, IV: decoded[0], Data: decoded[1]}, nil
	default:
		return EncString{Type: encType, IV: decoded[0], Data: decoded[1], MAC: decoded[2]}, nil
	}
}

// String serializes the EncString to its wire form.
func (e EncString) String() string {
	var parts []string
	switch e.Type.segmentCount() {
	case 1:
		parts = []string{b64.EncodeToString(e.Data)}
	case 2:
		parts = []string{b64.EncodeToString(e.IV), b64.EncodeToString(e.Data)}
	default:
		parts = []string{b64.EncodeToString(e.IV), b64.EncodeToString(e.Data), b64.EncodeToString(e.MAC)}
	}
	return strconv.Itoa(int(e.Type)) + "." + strings.Join(parts, "|")
}

// MarshalText implements encoding.TextMarshaler so EncStrings travel as JSON strings.
func (e EncString) MarshalText() ([]byte, error) {
	if !e.Type.IsValid() {
		return nil, errors.Wrapf(ErrMalformedEncString, "unknown type %d", int(e.Type))
	}
	return []byte(e.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (e *EncString) UnmarshalText(text []byte) error {
	parsed, err := ParseEncString(string(text))
	if err != nil {
		return err
	}
	*e = parsed
	return nil
}

func decodeSegment(s string) ([]byte, error) {
	// The decoder skips CR and LF, which would break the round trip.
	if strings.ContainsAny(s, "\r\n") {
		return nil, ErrMalformedEncString
	}
	return b64.DecodeString(s)
}

func nonNil(b []byte) []byte {
	if b == nil {
		return []byte{}
	}
	return b
}

// EncStringRule validates that a string parses as an EncString. Empty strings
// are left to validation.Required.
var EncStringRule = validation.NewStringRuleWithError(
	func(s string) bool {
		_, err := ParseEncString(s)
		return err == nil
	},
	validation.NewError("validation_enc_string", "must be a valid encrypted string"),
)
