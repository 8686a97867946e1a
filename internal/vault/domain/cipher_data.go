package domain

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	cryptoDomain "github.com/allisson/vaultkeys/internal/crypto/domain"
	"github.com/allisson/vaultkeys/internal/errors"
)

// CipherData is a persisted cipher in one of its schema versions. It is one of
// *CipherDataV1, *CipherDataV2 or *CipherDataUnknownVersion.
type CipherData interface {
	Version() int
	isCipherData()
}

// CipherDataLatest is the version consumers read after migration.
type CipherDataLatest = CipherDataV2

// CipherMeta holds the fields every known version shares.
type CipherMeta struct {
	ID             uuid.UUID               `json:"id"`
	OrganizationID *uuid.UUID              `json:"organizationId,omitempty"`
	FolderID       *uuid.UUID              `json:"folderId,omitempty"`
	Favorite       bool                    `json:"favorite"`
	Reprompt       RepromptType            `json:"reprompt"`
	Name           cryptoDomain.EncString  `json:"name"`
	Notes          *cryptoDomain.EncString `json:"notes,omitempty"`
	Fields         []FieldData             `json:"fields,omitempty"`
	CollectionIDs  []uuid.UUID             `json:"collectionIds,omitempty"`
	CreationDate   time.Time               `json:"creationDate"`
	RevisionDate   time.Time               `json:"revisionDate"`
	DeletedDate    *time.Time              `json:"deletedDate,omitempty"`
}

// CipherDataV2 is the latest version. Its item is a sum type and every login
// URI carries a checksum.
type CipherDataV2 struct {
	CipherMeta
	Item Item
}

func (*CipherDataV2) Version() int { return 2 }
func (*CipherDataV2) isCipherData() {}

type cipherDataV2JSON struct {
	Version int `json:"version"`
	CipherMeta
	itemFields
}

// MarshalJSON writes the versioned envelope.
func (d *CipherDataV2) MarshalJSON() ([]byte, error) {
	if d.Item == nil {
		return nil, errors.Wrap(ErrMalformedCipherData, "cipher has no item")
	}
	return json.Marshal(cipherDataV2JSON{Version: 2, CipherMeta: d.CipherMeta, itemFields: fieldsOf(d.Item)})
}

// UnmarshalJSON reads a version 2 envelope.
func (d *CipherDataV2) UnmarshalJSON(data []byte) error {
	var wire cipherDataV2JSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return errors.Wrap(ErrMalformedCipherData, err.Error())
	}
	if wire.Version != 2 {
		return errors.Wrapf(ErrMalformedCipherData, "version %d is not 2", wire.Version)
	}
	item, err := wire.item()
	if err != nil {
		return err
	}
	d.CipherMeta = wire.CipherMeta
	d.Item = item
	return nil
}

// CipherDataUnknownVersion preserves data this build does not understand.
// It is never migrated and is written back byte for byte.
type CipherDataUnknownVersion struct {
	version int
	raw     []byte
}

// NewCipherDataUnknownVersion wraps raw data with the version it declared.
func NewCipherDataUnknownVersion(version int, raw []byte) *CipherDataUnknownVersion {
	return &CipherDataUnknownVersion{version: version, raw: bytes.Clone(raw)}
}

func (d *CipherDataUnknownVersion) Version() int { return d.version }
func (*CipherDataUnknownVersion) isCipherData()  {}

// Raw returns a copy of the preserved bytes.
func (d *CipherDataUnknownVersion) Raw() []byte {
	return bytes.Clone(d.raw)
}

// ParseCipherData decodes a versioned envelope. Versions 1 and 2 decode into
// their types; any other version, including a missing or non-integer one,
// yields CipherDataUnknownVersion holding the input verbatim.
func ParseCipherData(data []byte) (CipherData, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, errors.Wrap(ErrMalformedCipherData, "expected a json object")
	}

	var probe struct {
		Version json.RawMessage `json:"version"`
	}
	if err := json.Unmarshal(trimmed, &probe); err != nil {
		return nil, errors.Wrap(ErrMalformedCipherData, err.Error())
	}

	var version int
	if len(probe.Version) == 0 || json.Unmarshal(probe.Version, &version) != nil {
		version = 0
	}

	switch version {
	case 1:
		v1 := &CipherDataV1{}
		if err := json.Unmarshal(trimmed, v1); err != nil {
			return nil, err
		}
		return v1, nil
	case 2:
		v2 := &CipherDataV2{}
		if err := json.Unmarshal(trimmed, v2); err != nil {
			return nil, err
		}
		return v2, nil
	default:
		return NewCipherDataUnknownVersion(version, data), nil
	}
}

// MarshalCipherData encodes data with its version tag. Unknown versions are
// returned exactly as they were parsed.
func MarshalCipherData(data CipherData) ([]byte, error) {
	switch d := data.(type) {
	case *CipherDataUnknownVersion:
		return d.Raw(), nil
	case *CipherDataV1, *CipherDataV2:
		return json.Marshal(d)
	default:
		return nil, errors.Wrap(ErrMalformedCipherData, "no cipher data")
	}
}
