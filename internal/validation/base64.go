package validation

import (
	"encoding/base64"
	"strconv"
	"strings"

	validation "github.com/jellydator/validation"
)

// Base64Bytes checks a canonical, padded standard base64 string and, when
// Min or Max are set, the size of the decoded bytes. An empty string passes;
// pair it with Required.
type Base64Bytes struct {
	Min int
	Max int
}

// Validate implements validation.Rule.
func (b Base64Bytes) Validate(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_base64_type", "must be a string")
	}
	if s == "" {
		return nil
	}

	// StdEncoding skips newlines while decoding; they are not canonical here.
	invalid := validation.NewError("validation_base64", "must be valid base64-encoded data")
	if strings.ContainsAny(s, "\r\n") {
		return invalid
	}
	decoded, err := base64.StdEncoding.Strict().DecodeString(s)
	if err != nil {
		return invalid
	}

	switch n := len(decoded); {
	case b.Min > 0 && n < b.Min:
		return validation.NewError("validation_base64_min", "must decode to at least "+strconv.Itoa(b.Min)+" bytes")
	case b.Max > 0 && n > b.Max:
		return validation.NewError("validation_base64_max", "must decode to at most "+strconv.Itoa(b.Max)+" bytes")
	}
	return nil
}

// Base64 is Base64Bytes without size bounds.
var Base64 = Base64Bytes{}
