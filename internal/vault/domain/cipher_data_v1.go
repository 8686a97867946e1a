package domain

import (
	"encoding/json"
	"time"

	cryptoDomain "github.com/allisson/vaultkeys/internal/crypto/domain"
	"github.com/allisson/vaultkeys/internal/errors"
)

// LoginURIV1 is a login URI before checksums existed.
type LoginURIV1 struct {
	URI   *cryptoDomain.EncString `json:"uri,omitempty"`
	Match *UriMatchType           `json:"match,omitempty"`
}

// LoginItemV1 still carries the legacy single URI next to the list.
type LoginItemV1 struct {
	Username             *cryptoDomain.EncString `json:"username,omitempty"`
	Password             *cryptoDomain.EncString `json:"password,omitempty"`
	Totp                 *cryptoDomain.EncString `json:"totp,omitempty"`
	PasswordRevisionDate *time.Time              `json:"passwordRevisionDate,omitempty"`
	URI                  *cryptoDomain.EncString `json:"uri,omitempty"`
	URIs                 []LoginURIV1            `json:"uris,omitempty"`
}

// CipherDataV1 selects its item with a type tag and four optional members.
type CipherDataV1 struct {
	CipherMeta
	Type       CipherType      `json:"type"`
	Login      *LoginItemV1    `json:"login,omitempty"`
	SecureNote *SecureNoteItem `json:"secureNote,omitempty"`
	Card       *CardItem       `json:"card,omitempty"`
	Identity   *IdentityItem   `json:"identity,omitempty"`
}

func (*CipherDataV1) Version() int { return 1 }
func (*CipherDataV1) isCipherData() {}

type cipherDataV1Fields CipherDataV1

type cipherDataV1JSON struct {
	Version int `json:"version"`
	*cipherDataV1Fields
}

// MarshalJSON writes the versioned envelope.
func (d *CipherDataV1) MarshalJSON() ([]byte, error) {
	return json.Marshal(cipherDataV1JSON{Version: 1, cipherDataV1Fields: (*cipherDataV1Fields)(d)})
}

// UnmarshalJSON reads a version 1 envelope.
func (d *CipherDataV1) UnmarshalJSON(data []byte) error {
	wire := cipherDataV1JSON{cipherDataV1Fields: (*cipherDataV1Fields)(d)}
	if err := json.Unmarshal(data, &wire); err != nil {
		return errors.Wrap(ErrMalformedCipherData, err.Error())
	}
	if wire.Version != 1 {
		return errors.Wrapf(ErrMalformedCipherData, "version %d is not 1", wire.Version)
	}
	return nil
}

// URIChecksumFunc returns the encrypted checksum of an encrypted login URI.
type URIChecksumFunc func(uri cryptoDomain.EncString) (cryptoDomain.EncString, error)

// MigrateToV2 builds the version 2 form. The legacy URI becomes the first list
// entry when the list is empty, and every URI gains a checksum from checksum.
// A type tag that does not match the populated member is rejected before
// checksum is called.
func (d *CipherDataV1) MigrateToV2(checksum URIChecksumFunc) (*CipherDataV2, error) {
	if err := checkKind(d.Type, d.Login != nil, d.SecureNote != nil, d.Card != nil, d.Identity != nil); err != nil {
		return nil, err
	}

	var item Item
	switch d.Type {
	case CipherTypeLogin:
		login, err := d.Login.migrate(checksum)
		if err != nil {
			return nil, err
		}
		item = login
	case CipherTypeSecureNote:
		note := *d.SecureNote
		item = &note
	case CipherTypeCard:
		card := *d.Card
		item = &card
	default:
		identity := *d.Identity
		item = &identity
	}

	return &CipherDataV2{CipherMeta: d.CipherMeta, Item: item}, nil
}

func (l *LoginItemV1) migrate(checksum URIChecksumFunc) (*LoginItem, error) {
	uris := l.URIs
	if len(uris) == 0 && l.URI != nil {
		uris = []LoginURIV1{{URI: l.URI}}
	}

	login := &LoginItem{
		Username:             l.Username,
		Password:             l.Password,
		Totp:                 l.Totp,
		PasswordRevisionDate: l.PasswordRevisionDate,
	}
	for i, u := range uris {
		migrated := LoginURI{URI: u.URI, Match: u.Match}
		if u.URI != nil {
			sum, err := checksum(*u.URI)
			if err != nil {
				return nil, errors.Wrapf(err, "uri %d checksum", i)
			}
			migrated.URIChecksum = &sum
		}
		login.URIs = append(login.URIs, migrated)
	}
	return login, nil
}
