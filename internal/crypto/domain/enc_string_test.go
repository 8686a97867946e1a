package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEncString_Scenario(t *testing.T) {
	s := "0.AAAA|BBBB|CCCC"

	enc, err := ParseEncString(s)
	require.NoError(t, err)

	assert.Equal(t, AesCbc256HmacSha256B64, enc.Type)
	assert.Equal(t, []byte{0x00, 0x00, 0x00}, enc.IV)
	assert.Equal(t, []byte{0x04, 0x10, 0x41}, enc.Data)
	assert.Equal(t, []byte{0x08, 0x20, 0x82}, enc.MAC)
	assert.Equal(t, s, enc.String())
}

func TestParseEncString_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		s    string
		typ  EncryptionType
	}{
		{name: "aes cbc hmac", s: "0.q83vEjRWeJCrze8SNFZ4kA==|Zm9vYmFy|c2lnbmF0dXJlLWJ5dGVz", typ: AesCbc256HmacSha256B64},
		{name: "aes cbc without mac", s: "1.q83vEjRWeJCrze8SNFZ4kA==|Zm9vYmFyYmF6", typ: AesCbc256B64},
		{name: "rsa oaep sha256", s: "2.cnNhLWNpcGhlcnRleHQ=", typ: Rsa2048OaepSha256B64},
		{name: "rsa oaep sha1", s: "3.cnNhLWNpcGhlcnRleHQ=", typ: Rsa2048OaepSha1B64},
		{name: "empty ciphertext segment", s: "1.AAAA|", typ: AesCbc256B64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enc, err := ParseEncString(tt.s)
			require.NoError(t, err)
			assert.Equal(t, tt.typ, enc.Type)
			assert.Equal(t, tt.s, enc.String())

			again, err := ParseEncString(enc.String())
			require.NoError(t, err)
			assert.Equal(t, enc, again)
		})
	}
}

func TestNewEncString_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		typ  EncryptionType
		iv   []byte
		data []byte
		mac  []byte
	}{
		{name: "mac type", typ: AesCbc256HmacSha256B64, iv: []byte("0123456789abcdef"), data: []byte("ct"), mac: []byte("mac")},
		{name: "non mac type", typ: AesCbc256B64, iv: []byte("0123456789abcdef"), data: []byte("ct")},
		{name: "rsa type", typ: Rsa2048OaepSha1B64, data: []byte("rsa")},
		{name: "nil parts normalized", typ: AesCbc256HmacSha256B64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enc, err := NewEncString(tt.typ, tt.iv, tt.data, tt.mac)
			require.NoError(t, err)

			parsed, err := ParseEncString(enc.String())
			require.NoError(t, err)
			assert.Equal(t, enc, parsed)
		})
	}
}

func TestNewEncString_Invalid(t *testing.T) {
	tests := []struct {
		name string
		typ  EncryptionType
		iv   []byte
		mac  []byte
	}{
		{name: "unknown type", typ: EncryptionType(9)},
		{name: "rsa with iv", typ: Rsa2048OaepSha256B64, iv: []byte("iv")},
		{name: "rsa with mac", typ: Rsa2048OaepSha1B64, mac: []byte("mac")},
		{name: "non mac type with mac", typ: AesCbc256B64, iv: []byte("iv"), mac: []byte("mac")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewEncString(tt.typ, tt.iv, []byte("data"), tt.mac)
			assert.ErrorIs(t, err, ErrMalformedEncString)
		})
	}
}

func TestParseEncString_Rejects(t *testing.T) {
	tests := []struct {
		name string
		s    string
	}{
		{name: "empty", s: ""},
		{name: "no type separator", s: "AAAA|BBBB|CCCC"},
		{name: "unknown type", s: "7.AAAA|BBBB|CCCC"},
		{name: "negative type", s: "-1.AAAA|BBBB"},
		{name: "non canonical type", s: "00.AAAA|BBBB|CCCC"},
		{name: "signed type", s: "+0.AAAA|BBBB|CCCC"},
		{name: "non numeric type", s: "x.AAAA|BBBB|CCCC"},
		{name: "mac type with two segments", s: "0.AAAA|BBBB"},
		{name: "mac type with four segments", s: "0.AAAA|BBBB|CCCC|DDDD"},
		{name: "non mac type with three segments", s: "1.AAAA|BBBB|CCCC"},
		{name: "non mac type with one segment", s: "1.AAAA"},
		{name: "rsa type with two segments", s: "3.AAAA|BBBB"},
		{name: "invalid base64", s: "0.AAAA|B!BB|CCCC"},
		{name: "bad padding", s: "0.AAA|BBBB|CCCC"},
		{name: "non canonical padding bits", s: "0.AAB=|BBBB|CCCC"},
		{name: "embedded newline", s: "0.AA\nAA|BBBB|CCCC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseEncString(tt.s)
			assert.ErrorIs(t, err, ErrMalformedEncString)
		})
	}
}

func TestEncString_JSON(t *testing.T) {
	type payload struct {
		Key  EncString  `json:"key"`
		Hash *EncString `json:"hash,omitempty"`
	}

	enc, err := ParseEncString("3.cnNhLWNpcGhlcnRleHQ=")
	require.NoError(t, err)

	b, err := json.Marshal(payload{Key: enc})
	require.NoError(t, err)
	assert.JSONEq(t, `{"key":"3.cnNhLWNpcGhlcnRleHQ="}`, string(b))

	var decoded payload
	require.NoError(t, json.Unmarshal(b, &decoded))
	assert.Equal(t, enc, decoded.Key)
	assert.Nil(t, decoded.Hash)

	err = json.Unmarshal([]byte(`{"key":"9.AAAA"}`), &decoded)
	assert.Error(t, err)
}
