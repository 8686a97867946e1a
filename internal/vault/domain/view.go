package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	customValidation "github.com/allisson/vaultkeys/internal/validation"
)

// ItemView is the decrypted counterpart of Item. It is one of *LoginView,
// *SecureNoteView, *CardView or *IdentityView.
type ItemView interface {
	Type() CipherType
	isItemView()
}

// LoginURIView is a decrypted login URI.
type LoginURIView struct {
	URI   string
	Match *UriMatchType
}

// LoginView is a decrypted login.
type LoginView struct {
	Username             string
	Password             string
	Totp                 string
	PasswordRevisionDate *time.Time
	URIs                 []LoginURIView
}

// SecureNoteView is a decrypted secure note.
type SecureNoteView struct {
	NoteType SecureNoteType
}

// CardView is a decrypted payment card.
type CardView struct {
	CardholderName string
	Brand          string
	Number         string
	ExpMonth       string
	ExpYear        string
	Code           string
}

// IdentityView is a decrypted identity.
type IdentityView struct {
	Title          string
	FirstName      string
	MiddleName     string
	LastName       string
	Address1       string
	Address2       string
	Address3       string
	City           string
	State          string
	PostalCode     string
	Country        string
	Company        string
	Email          string
	Phone          string
	SSN            string
	Username       string
	PassportNumber string
	LicenseNumber  string
}

// FullName joins the non-empty name parts.
func (v *IdentityView) FullName() string {
	var parts []string
	for _, p := range []string{v.Title, v.FirstName, v.MiddleName, v.LastName} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

func (*LoginView) Type() CipherType      { return CipherTypeLogin }
func (*SecureNoteView) Type() CipherType { return CipherTypeSecureNote }
func (*CardView) Type() CipherType       { return CipherTypeCard }
func (*IdentityView) Type() CipherType   { return CipherTypeIdentity }

func (*LoginView) isItemView()      {}
func (*SecureNoteView) isItemView() {}
func (*CardView) isItemView()       {}
func (*IdentityView) isItemView()   {}

// FieldView is a decrypted custom field.
type FieldView struct {
	Type     FieldType
	Name     string
	Value    string
	LinkedID *LinkedID
}

// CipherView is a decrypted cipher.
type CipherView struct {
	ID             uuid.UUID
	OrganizationID *uuid.UUID
	FolderID       *uuid.UUID
	Favorite       bool
	Reprompt       RepromptType
	Name           string
	Notes          string
	Fields         []FieldView
	CollectionIDs  []uuid.UUID
	CreationDate   time.Time
	RevisionDate   time.Time
	DeletedDate    *time.Time
	Item           ItemView
}

// Validate checks the view can be encrypted: a name, an item, and linked
// fields that point at the item's kind.
func (c *CipherView) Validate() error {
	err := validation.ValidateStruct(c,
		validation.Field(&c.Name, validation.Required, customValidation.NotBlank),
		// An empty secure note or card is a valid item; only a missing one is not.
		validation.Field(&c.Item, validation.NotNil),
		validation.Field(&c.Fields, validation.By(func(value interface{}) error {
			if c.Item == nil {
				return nil
			}
			for _, f := range c.Fields {
				if f.Type != FieldTypeLinked {
					continue
				}
				if f.LinkedID == nil {
					return validation.NewError("validation_linked_id", "linked field needs a linked id")
				}
				if field, ok := LookupLinkedField(*f.LinkedID); !ok || field.Kind != c.Item.Type() {
					return validation.NewError("validation_linked_id", "linked id does not belong to the item type")
				}
			}
			return nil
		})),
	)
	return customValidation.WrapValidationError(err)
}

// FieldValue returns the value of a custom field. Linked fields read through
// to the item property they point at.
func (c *CipherView) FieldValue(f FieldView) (string, error) {
	if f.Type != FieldTypeLinked {
		return f.Value, nil
	}
	if f.LinkedID == nil {
		return "", ErrUnknownLinkedField
	}
	return LinkedValue(c.Item, *f.LinkedID)
}
