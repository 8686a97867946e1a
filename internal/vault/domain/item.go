package domain

import (
	"time"

	cryptoDomain "github.com/allisson/vaultkeys/internal/crypto/domain"
	"github.com/allisson/vaultkeys/internal/errors"
)

// Item is the encrypted, kind-specific part of a cipher. It is one of
// *LoginItem, *SecureNoteItem, *CardItem or *IdentityItem.
type Item interface {
	Type() CipherType
	isItem()
}

// LoginURI is an encrypted login URI. URIChecksum is an EncString of the
// base64 SHA-256 of the URI plaintext.
type LoginURI struct {
	URI         *cryptoDomain.EncString `json:"uri,omitempty"`
	Match       *UriMatchType           `json:"match,omitempty"`
	URIChecksum *cryptoDomain.EncString `json:"uriChecksum,omitempty"`
}

// LoginItem holds encrypted login credentials.
type LoginItem struct {
	Username             *cryptoDomain.EncString `json:"username,omitempty"`
	Password             *cryptoDomain.EncString `json:"password,omitempty"`
	Totp                 *cryptoDomain.EncString `json:"totp,omitempty"`
	PasswordRevisionDate *time.Time              `json:"passwordRevisionDate,omitempty"`
	URIs                 []LoginURI              `json:"uris,omitempty"`
}

// SecureNoteItem carries no encrypted fields of its own; the note text lives in Notes.
type SecureNoteItem struct {
	NoteType SecureNoteType `json:"type"`
}

// CardItem holds encrypted payment card details.
type CardItem struct {
	CardholderName *cryptoDomain.EncString `json:"cardholderName,omitempty"`
	Brand          *cryptoDomain.EncString `json:"brand,omitempty"`
	Number         *cryptoDomain.EncString `json:"number,omitempty"`
	ExpMonth       *cryptoDomain.EncString `json:"expMonth,omitempty"`
	ExpYear        *cryptoDomain.EncString `json:"expYear,omitempty"`
	Code           *cryptoDomain.EncString `json:"code,omitempty"`
}

// IdentityItem holds encrypted personal details.
type IdentityItem struct {
	Title          *cryptoDomain.EncString `json:"title,omitempty"`
	FirstName      *cryptoDomain.EncString `json:"firstName,omitempty"`
	MiddleName     *cryptoDomain.EncString `json:"middleName,omitempty"`
	LastName       *cryptoDomain.EncString `json:"lastName,omitempty"`
	Address1       *cryptoDomain.EncString `json:"address1,omitempty"`
	Address2       *cryptoDomain.EncString `json:"address2,omitempty"`
	Address3       *cryptoDomain.EncString `json:"address3,omitempty"`
	City           *cryptoDomain.EncString `json:"city,omitempty"`
	State          *cryptoDomain.EncString `json:"state,omitempty"`
	PostalCode     *cryptoDomain.EncString `json:"postalCode,omitempty"`
	Country        *cryptoDomain.EncString `json:"country,omitempty"`
	Company        *cryptoDomain.EncString `json:"company,omitempty"`
	Email          *cryptoDomain.EncString `json:"email,omitempty"`
	Phone          *cryptoDomain.EncString `json:"phone,omitempty"`
	SSN            *cryptoDomain.EncString `json:"ssn,omitempty"`
	Username       *cryptoDomain.EncString `json:"username,omitempty"`
	PassportNumber *cryptoDomain.EncString `json:"passportNumber,omitempty"`
	LicenseNumber  *cryptoDomain.EncString `json:"licenseNumber,omitempty"`
}

func (*LoginItem) Type() CipherType      { return CipherTypeLogin }
func (*SecureNoteItem) Type() CipherType { return CipherTypeSecureNote }
func (*CardItem) Type() CipherType       { return CipherTypeCard }
func (*IdentityItem) Type() CipherType   { return CipherTypeIdentity }

func (*LoginItem) isItem()      {}
func (*SecureNoteItem) isItem() {}
func (*CardItem) isItem()       {}
func (*IdentityItem) isItem()   {}

// FieldData is an encrypted custom field. LinkedID is set only for linked fields.
type FieldData struct {
	Type     FieldType               `json:"type"`
	Name     *cryptoDomain.EncString `json:"name,omitempty"`
	Value    *cryptoDomain.EncString `json:"value,omitempty"`
	LinkedID *LinkedID               `json:"linkedId,omitempty"`
}

// itemFields is the wire shape of an Item: a type tag plus one populated member.
type itemFields struct {
	Type       CipherType      `json:"type"`
	Login      *LoginItem      `json:"login,omitempty"`
	SecureNote *SecureNoteItem `json:"secureNote,omitempty"`
	Card       *CardItem       `json:"card,omitempty"`
	Identity   *IdentityItem   `json:"identity,omitempty"`
}

func fieldsOf(item Item) itemFields {
	switch v := item.(type) {
	case *LoginItem:
		return itemFields{Type: CipherTypeLogin, Login: v}
	case *SecureNoteItem:
		return itemFields{Type: CipherTypeSecureNote, SecureNote: v}
	case *CardItem:
		return itemFields{Type: CipherTypeCard, Card: v}
	case *IdentityItem:
		return itemFields{Type: CipherTypeIdentity, Identity: v}
	default:
		return itemFields{}
	}
}

func (f itemFields) item() (Item, error) {
	if err := checkKind(f.Type, f.Login != nil, f.SecureNote != nil, f.Card != nil, f.Identity != nil); err != nil {
		return nil, err
	}
	switch f.Type {
	case CipherTypeLogin:
		return f.Login, nil
	case CipherTypeSecureNote:
		return f.SecureNote, nil
	case CipherTypeCard:
		return f.Card, nil
	default:
		return f.Identity, nil
	}
}

// checkKind requires exactly one populated member, and that it matches the tag.
func checkKind(t CipherType, login, note, card, identity bool) error {
	populated := 0
	for _, set := range []bool{login, note, card, identity} {
		if set {
			populated++
		}
	}
	if populated != 1 {
		return errors.Wrapf(ErrMalformedCipherData, "expected one item, found %d", populated)
	}

	var ok bool
	switch t {
	case CipherTypeLogin:
		ok = login
	case CipherTypeSecureNote:
		ok = note
	case CipherTypeCard:
		ok = card
	case CipherTypeIdentity:
		ok = identity
	}
	if !ok {
		return errors.Wrapf(ErrMalformedCipherData, "type %d does not match the populated item", int(t))
	}
	return nil
}
