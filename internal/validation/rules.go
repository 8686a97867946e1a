// Package validation provides the jellydator/validation rules shared by the
// domain packages.
package validation

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	apperrors "github.com/allisson/vaultkeys/internal/errors"
)

// MaxEmailLength bounds account emails; they are stored in an indexed column.
const MaxEmailLength = 256

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// WrapValidationError wraps validation errors as ErrInvalidInput.
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// PasswordStrength checks a master password. Length is counted in runes, so
// a passphrase in any script gets the same minimum.
type PasswordStrength struct {
	MinLength      int
	RequireUpper   bool
	RequireLower   bool
	RequireNumber  bool
	RequireSpecial bool
}

type charClass struct {
	required bool
	code     string
	message  string
	match    func(rune) bool
}

// Validate implements validation.Rule.
func (p PasswordStrength) Validate(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_password_strength", "password must be a string")
	}

	if utf8.RuneCountInString(s) < p.MinLength {
		return validation.NewError(
			"validation_password_min_length",
			"password must be at least "+strconv.Itoa(p.MinLength)+" characters",
		)
	}

	classes := []charClass{
		{p.RequireUpper, "validation_password_uppercase", "an uppercase letter", unicode.IsUpper},
		{p.RequireLower, "validation_password_lowercase", "a lowercase letter", unicode.IsLower},
		{p.RequireNumber, "validation_password_number", "a number", unicode.IsNumber},
		{p.RequireSpecial, "validation_password_special", "a special character", func(r rune) bool {
			return unicode.IsPunct(r) || unicode.IsSymbol(r)
		}},
	}
	for _, class := range classes {
		if class.required && strings.IndexFunc(s, class.match) < 0 {
			return validation.NewError(class.code, "password must contain at least one "+class.message)
		}
	}
	return nil
}

// Email validates the shape and length of an account email.
var Email = validation.NewStringRuleWithError(
	func(s string) bool {
		return len(s) <= MaxEmailLength && emailRegex.MatchString(s)
	},
	validation.NewError("validation_email_format", "must be a valid email address"),
)

// NotBlank validates that a string is not empty after trimming whitespace.
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.TrimSpace(s) != ""
	},
	validation.NewError("validation_not_blank", "must not be blank"),
)

// NotNilUUID rejects uuid.Nil. A nil *uuid.UUID passes; add Required when
// the pointer must be set.
var NotNilUUID = validation.By(func(value interface{}) error {
	var id uuid.UUID
	switch v := value.(type) {
	case uuid.UUID:
		id = v
	case *uuid.UUID:
		if v == nil {
			return nil
		}
		id = *v
	default:
		return validation.NewError("validation_uuid_type", "must be a UUID")
	}
	if id == uuid.Nil {
		return validation.NewError("validation_uuid_nil", "must not be nil")
	}
	return nil
})
