package domain

// LatestVersion is the cipher data version every migration ends at.
const LatestVersion = 2

// CipherType identifies the kind of vault item.
type CipherType int

const (
	CipherTypeLogin      CipherType = 1
	CipherTypeSecureNote CipherType = 2
	CipherTypeCard       CipherType = 3
	CipherTypeIdentity   CipherType = 4
)

func (t CipherType) String() string {
	switch t {
	case CipherTypeLogin:
		return "login"
	case CipherTypeSecureNote:
		return "secure_note"
	case CipherTypeCard:
		return "card"
	case CipherTypeIdentity:
		return "identity"
	default:
		return "unknown"
	}
}

// FieldType is the kind of a custom field.
type FieldType int

const (
	FieldTypeText    FieldType = 0
	FieldTypeHidden  FieldType = 1
	FieldTypeBoolean FieldType = 2
	FieldTypeLinked  FieldType = 3
)

// UriMatchType selects how a login URI is compared against a page.
type UriMatchType int

const (
	UriMatchDomain            UriMatchType = 0
	UriMatchHost              UriMatchType = 1
	UriMatchStartsWith        UriMatchType = 2
	UriMatchExact             UriMatchType = 3
	UriMatchRegularExpression UriMatchType = 4
	UriMatchNever             UriMatchType = 5
)

// RepromptType controls whether the master password is asked again before use.
type RepromptType int

const (
	RepromptNone     RepromptType = 0
	RepromptPassword RepromptType = 1
)

// SecureNoteType is the sub-kind of a secure note. Only generic exists.
type SecureNoteType int

const SecureNoteGeneric SecureNoteType = 0
