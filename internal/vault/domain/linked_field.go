package domain

import (
	"slices"

	"github.com/allisson/vaultkeys/internal/errors"
)

// LinkedID names the item property a linked custom field reads. The values
// are persisted in FieldData and must never be renumbered.
type LinkedID int

const (
	LinkedLoginUsername LinkedID = 100
	LinkedLoginPassword LinkedID = 101

	LinkedCardCardholderName LinkedID = 300
	LinkedCardExpMonth       LinkedID = 301
	LinkedCardExpYear        LinkedID = 302
	LinkedCardCode           LinkedID = 303
	LinkedCardBrand          LinkedID = 304
	LinkedCardNumber         LinkedID = 305

	LinkedIdentityTitle          LinkedID = 400
	LinkedIdentityMiddleName     LinkedID = 401
	LinkedIdentityAddress1       LinkedID = 402
	LinkedIdentityAddress2       LinkedID = 403
	LinkedIdentityAddress3       LinkedID = 404
	LinkedIdentityCity           LinkedID = 405
	LinkedIdentityState          LinkedID = 406
	LinkedIdentityPostalCode     LinkedID = 407
	LinkedIdentityCountry        LinkedID = 408
	LinkedIdentityCompany        LinkedID = 409
	LinkedIdentityEmail          LinkedID = 410
	LinkedIdentityPhone          LinkedID = 411
	LinkedIdentitySSN            LinkedID = 412
	LinkedIdentityUsername       LinkedID = 413
	LinkedIdentityPassportNumber LinkedID = 414
	LinkedIdentityLicenseNumber  LinkedID = 415
	LinkedIdentityFirstName      LinkedID = 416
	LinkedIdentityLastName       LinkedID = 417
	LinkedIdentityFullName       LinkedID = 418
)

// LinkedField describes one property a linked custom field can point at.
type LinkedField struct {
	ID   LinkedID
	Kind CipherType
	Name string

	value func(ItemView) (string, bool)
}

// Value reads the property from item. The item must be of the field's kind.
func (f LinkedField) Value(item ItemView) (string, error) {
	v, ok := f.value(item)
	if !ok {
		return "", errors.Wrapf(ErrUnknownLinkedField, "%d is not a %s field", int(f.ID), kindOf(item))
	}
	return v, nil
}

func kindOf(item ItemView) CipherType {
	if item == nil {
		return 0
	}
	return item.Type()
}

func linked[T ItemView](id LinkedID, kind CipherType, name string, get func(T) string) LinkedField {
	return LinkedField{
		ID:   id,
		Kind: kind,
		Name: name,
		value: func(item ItemView) (string, bool) {
			v, ok := item.(T)
			if !ok {
				return "", false
			}
			return get(v), true
		},
	}
}

func loginField(id LinkedID, name string, get func(*LoginView) string) LinkedField {
	return linked(id, CipherTypeLogin, name, get)
}

func cardField(id LinkedID, name string, get func(*CardView) string) LinkedField {
	return linked(id, CipherTypeCard, name, get)
}

func identityField(id LinkedID, name string, get func(*IdentityView) string) LinkedField {
	return linked(id, CipherTypeIdentity, name, get)
}

var (
	linkedFields = indexLinkedFields(
		loginField(LinkedLoginUsername, "username", func(v *LoginView) string { return v.Username }),
		loginField(LinkedLoginPassword, "password", func(v *LoginView) string { return v.Password }),

		cardField(LinkedCardCardholderName, "cardholderName", func(v *CardView) string { return v.CardholderName }),
		cardField(LinkedCardExpMonth, "expirationMonth", func(v *CardView) string { return v.ExpMonth }),
		cardField(LinkedCardExpYear, "expirationYear", func(v *CardView) string { return v.ExpYear }),
		cardField(LinkedCardCode, "securityCode", func(v *CardView) string { return v.Code }),
		cardField(LinkedCardBrand, "brand", func(v *CardView) string { return v.Brand }),
		cardField(LinkedCardNumber, "number", func(v *CardView) string { return v.Number }),

		identityField(LinkedIdentityTitle, "title", func(v *IdentityView) string { return v.Title }),
		identityField(LinkedIdentityMiddleName, "middleName", func(v *IdentityView) string { return v.MiddleName }),
		identityField(LinkedIdentityAddress1, "address1", func(v *IdentityView) string { return v.Address1 }),
		identityField(LinkedIdentityAddress2, "address2", func(v *IdentityView) string { return v.Address2 }),
		identityField(LinkedIdentityAddress3, "address3", func(v *IdentityView) string { return v.Address3 }),
		identityField(LinkedIdentityCity, "cityTown", func(v *IdentityView) string { return v.City }),
		identityField(LinkedIdentityState, "stateProvince", func(v *IdentityView) string { return v.State }),
		identityField(LinkedIdentityPostalCode, "zipPostalCode", func(v *IdentityView) string { return v.PostalCode }),
		identityField(LinkedIdentityCountry, "country", func(v *IdentityView) string { return v.Country }),
		identityField(LinkedIdentityCompany, "company", func(v *IdentityView) string { return v.Company }),
		identityField(LinkedIdentityEmail, "email", func(v *IdentityView) string { return v.Email }),
		identityField(LinkedIdentityPhone, "phone", func(v *IdentityView) string { return v.Phone }),
		identityField(LinkedIdentitySSN, "ssn", func(v *IdentityView) string { return v.SSN }),
		identityField(LinkedIdentityUsername, "username", func(v *IdentityView) string { return v.Username }),
		identityField(LinkedIdentityPassportNumber, "passportNumber", func(v *IdentityView) string { return v.PassportNumber }),
		identityField(LinkedIdentityLicenseNumber, "licenseNumber", func(v *IdentityView) string { return v.LicenseNumber }),
		identityField(LinkedIdentityFirstName, "firstName", func(v *IdentityView) string { return v.FirstName }),
		identityField(LinkedIdentityLastName, "lastName", func(v *IdentityView) string { return v.LastName }),
		identityField(LinkedIdentityFullName, "fullName", (*IdentityView).FullName),
	)

	linkedFieldsByKind = groupLinkedFields(linkedFields)
)

func indexLinkedFields(fields ...LinkedField) map[LinkedID]LinkedField {
	index := make(map[LinkedID]LinkedField, len(fields))
	for _, f := range fields {
		if _, dup := index[f.ID]; dup {
			panic("duplicate linked field id")
		}
		index[f.ID] = f
	}
	return index
}

func groupLinkedFields(index map[LinkedID]LinkedField) map[CipherType][]LinkedField {
	byKind := make(map[CipherType][]LinkedField)
	for _, f := range index {
		byKind[f.Kind] = append(byKind[f.Kind], f)
	}
	for _, fields := range byKind {
		slices.SortFunc(fields, func(a, b LinkedField) int { return int(a.ID) - int(b.ID) })
	}
	return byKind
}

// LookupLinkedField returns the table entry for id.
func LookupLinkedField(id LinkedID) (LinkedField, bool) {
	f, ok := linkedFields[id]
	return f, ok
}

// LinkedFieldsFor lists the linked field options of a cipher kind, ordered by id.
func LinkedFieldsFor(kind CipherType) []LinkedField {
	return slices.Clone(linkedFieldsByKind[kind])
}

// LinkedValue resolves a linked field id against a decrypted item.
func LinkedValue(item ItemView, id LinkedID) (string, error) {
	f, ok := linkedFields[id]
	if !ok {
		return "", errors.Wrapf(ErrUnknownLinkedField, "id %d", int(id))
	}
	return f.Value(item)
}
