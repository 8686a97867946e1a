package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	cryptoDomain "github.com/allisson/vaultkeys/internal/crypto/domain"
	cryptoService "github.com/allisson/vaultkeys/internal/crypto/service"
	apperrors "github.com/allisson/vaultkeys/internal/errors"
	vaultDomain "github.com/allisson/vaultkeys/internal/vault/domain"
)

// cipherEncryptor implements CipherEncryptor.
type cipherEncryptor struct {
	encryptService cryptoService.EncryptService
	now            func() time.Time
}

// fieldCipher encrypts and decrypts optional string fields with one key. The
// first failure sticks and every later call is a no-op.
type fieldCipher struct {
	encryptService cryptoService.EncryptService
	key            *cryptoDomain.SymmetricCryptoKey
	err            error
}

func (f *fieldCipher) encrypt(plaintext string) *cryptoDomain.EncString {
	if f.err != nil || plaintext == "" {
		return nil
	}
	enc, err := f.encryptService.EncryptString(plaintext, f.key)
	if err != nil {
		f.err = err
		return nil
	}
	return &enc
}

func (f *fieldCipher) decrypt(enc *cryptoDomain.EncString) string {
	if f.err != nil || enc == nil {
		return ""
	}
	plaintext, err := f.encryptService.DecryptString(*enc, f.key)
	if err != nil {
		f.err = err
		return ""
	}
	return plaintext
}

// Encrypt builds latest cipher data from a view. A missing id is generated and
// missing dates are set to now.
func (c *cipherEncryptor) Encrypt(
	_ context.Context,
	view *vaultDomain.CipherView,
	key *cryptoDomain.SymmetricCryptoKey,
) (*vaultDomain.CipherDataLatest, error) {
	if view == nil {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "cipher view is required")
	}
	if err := view.Validate(); err != nil {
		return nil, err
	}

	id := view.ID
	if id == uuid.Nil {
		var err error
		if id, err = uuid.NewV7(); err != nil {
			return nil, apperrors.Wrap(err, "failed to generate cipher id")
		}
	}
	now := c.now()
	created, revised := view.CreationDate, view.RevisionDate
	if created.IsZero() {
		created = now
	}
	if revised.IsZero() {
		revised = now
	}

	f := &fieldCipher{encryptService: c.encryptService, key: key}
	name := f.encrypt(view.Name)
	data := &vaultDomain.CipherDataLatest{
		CipherMeta: vaultDomain.CipherMeta{
			ID:             id,
			OrganizationID: view.OrganizationID,
			FolderID:       view.FolderID,
			Favorite:       view.Favorite,
			Reprompt:       view.Reprompt,
			Notes:          f.encrypt(view.Notes),
			CollectionIDs:  view.CollectionIDs,
			CreationDate:   created,
			RevisionDate:   revised,
			DeletedDate:    view.DeletedDate,
		},
	}
	for _, field := range view.Fields {
		data.Fields = append(data.Fields, vaultDomain.FieldData{
			Type:     field.Type,
			Name:     f.encrypt(field.Name),
			Value:    f.encrypt(field.Value),
			LinkedID: field.LinkedID,
		})
	}
	if data.Item = encryptItem(f, view.Item); data.Item == nil {
		return nil, apperrors.Wrap(vaultDomain.ErrMalformedCipherData, "unknown item")
	}
	if f.err != nil {
		return nil, f.err
	}
	data.Name = *name
	return data, nil
}

func encryptItem(f *fieldCipher, item vaultDomain.ItemView) vaultDomain.Item {
	switch v := item.(type) {
	case *vaultDomain.LoginView:
		login := &vaultDomain.LoginItem{
			Username:             f.encrypt(v.Username),
			Password:             f.encrypt(v.Password),
			Totp:                 f.encrypt(v.Totp),
			PasswordRevisionDate: v.PasswordRevisionDate,
		}
		for _, u := range v.URIs {
			login.URIs = append(login.URIs, vaultDomain.LoginURI{
				URI:         f.encrypt(u.URI),
				Match:       u.Match,
				URIChecksum: f.encrypt(checksumFor(u.URI)),
			})
		}
		return login
	case *vaultDomain.SecureNoteView:
		return &vaultDomain.SecureNoteItem{NoteType: v.NoteType}
	case *vaultDomain.CardView:
		return &vaultDomain.CardItem{
			CardholderName: f.encrypt(v.CardholderName),
			Brand:          f.encrypt(v.Brand),
			Number:         f.encrypt(v.Number),
			ExpMonth:       f.encrypt(v.ExpMonth),
			ExpYear:        f.encrypt(v.ExpYear),
			Code:           f.encrypt(v.Code),
		}
	case *vaultDomain.IdentityView:
		return &vaultDomain.IdentityItem{
			Title:          f.encrypt(v.Title),
			FirstName:      f.encrypt(v.FirstName),
			MiddleName:     f.encrypt(v.MiddleName),
			LastName:       f.encrypt(v.LastName),
			Address1:       f.encrypt(v.Address1),
			Address2:       f.encrypt(v.Address2),
			Address3:       f.encrypt(v.Address3),
			City:           f.encrypt(v.City),
			State:          f.encrypt(v.State),
			PostalCode:     f.encrypt(v.PostalCode),
			Country:        f.encrypt(v.Country),
			Company:        f.encrypt(v.Company),
			Email:          f.encrypt(v.Email),
			Phone:          f.encrypt(v.Phone),
			SSN:            f.encrypt(v.SSN),
			Username:       f.encrypt(v.Username),
			PassportNumber: f.encrypt(v.PassportNumber),
			LicenseNumber:  f.encrypt(v.LicenseNumber),
		}
	default:
		return nil
	}
}

// checksumFor leaves empty URIs without a checksum.
func checksumFor(uri string) string {
	if uri == "" {
		return ""
	}
	return uriChecksum(uri)
}

// Decrypt opens latest cipher data into a view.
func (c *cipherEncryptor) Decrypt(
	_ context.Context,
	data *vaultDomain.CipherDataLatest,
	key *cryptoDomain.SymmetricCryptoKey,
) (*vaultDomain.CipherView, error) {
	if data == nil || data.Item == nil {
		return nil, apperrors.Wrap(vaultDomain.ErrMalformedCipherData, "cipher has no item")
	}

	f := &fieldCipher{encryptService: c.encryptService, key: key}
	view := &vaultDomain.CipherView{
		ID:             data.ID,
		OrganizationID: data.OrganizationID,
		FolderID:       data.FolderID,
		Favorite:       data.Favorite,
		Reprompt:       data.Reprompt,
		Name:           f.decrypt(&data.Name),
		Notes:          f.decrypt(data.Notes),
		CollectionIDs:  data.CollectionIDs,
		CreationDate:   data.CreationDate,
		RevisionDate:   data.RevisionDate,
		DeletedDate:    data.DeletedDate,
	}
	for _, field := range data.Fields {
		view.Fields = append(view.Fields, vaultDomain.FieldView{
			Type:     field.Type,
			Name:     f.decrypt(field.Name),
			Value:    f.decrypt(field.Value),
			LinkedID: field.LinkedID,
		})
	}

	item, err := decryptItem(f, data.Item)
	if err != nil {
		return nil, err
	}
	if f.err != nil {
		return nil, f.err
	}
	view.Item = item
	return view, nil
}

func decryptItem(f *fieldCipher, item vaultDomain.Item) (vaultDomain.ItemView, error) {
	switch v := item.(type) {
	case *vaultDomain.LoginItem:
		login := &vaultDomain.LoginView{
			Username:             f.decrypt(v.Username),
			Password:             f.decrypt(v.Password),
			Totp:                 f.decrypt(v.Totp),
			PasswordRevisionDate: v.PasswordRevisionDate,
		}
		for i, u := range v.URIs {
			uri := f.decrypt(u.URI)
			if u.URIChecksum != nil {
				checksum := f.decrypt(u.URIChecksum)
				if f.err == nil && !checksumMatches(uri, checksum) {
					return nil, apperrors.Wrapf(vaultDomain.ErrURIChecksumMismatch, "uri %d", i)
				}
			}
			login.URIs = append(login.URIs, vaultDomain.LoginURIView{URI: uri, Match: u.Match})
		}
		return login, nil
	case *vaultDomain.SecureNoteItem:
		return &vaultDomain.SecureNoteView{NoteType: v.NoteType}, nil
	case *vaultDomain.CardItem:
		return &vaultDomain.CardView{
			CardholderName: f.decrypt(v.CardholderName),
			Brand:          f.decrypt(v.Brand),
			Number:         f.decrypt(v.Number),
			ExpMonth:       f.decrypt(v.ExpMonth),
			ExpYear:        f.decrypt(v.ExpYear),
			Code:           f.decrypt(v.Code),
		}, nil
	case *vaultDomain.IdentityItem:
		return &vaultDomain.IdentityView{
			Title:          f.decrypt(v.Title),
			FirstName:      f.decrypt(v.FirstName),
			MiddleName:     f.decrypt(v.MiddleName),
			LastName:       f.decrypt(v.LastName),
			Address1:       f.decrypt(v.Address1),
			Address2:       f.decrypt(v.Address2),
			Address3:       f.decrypt(v.Address3),
			City:           f.decrypt(v.City),
			State:          f.decrypt(v.State),
			PostalCode:     f.decrypt(v.PostalCode),
			Country:        f.decrypt(v.Country),
			Company:        f.decrypt(v.Company),
			Email:          f.decrypt(v.Email),
			Phone:          f.decrypt(v.Phone),
			SSN:            f.decrypt(v.SSN),
			Username:       f.decrypt(v.Username),
			PassportNumber: f.decrypt(v.PassportNumber),
			LicenseNumber:  f.decrypt(v.LicenseNumber),
		}, nil
	default:
		return nil, apperrors.Wrap(vaultDomain.ErrMalformedCipherData, "unknown item")
	}
}

// NewCipherEncryptor creates a new CipherEncryptor.
func NewCipherEncryptor(encryptService cryptoService.EncryptService) CipherEncryptor {
	return &cipherEncryptor{
		encryptService: encryptService,
		now:            func() time.Time { return time.Now().UTC() },
	}
}
