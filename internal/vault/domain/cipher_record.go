package domain

import (
	"time"

	"github.com/google/uuid"
)

// CipherRecord is a stored cipher: the versioned JSON blob plus the columns
// needed to choose its key without decoding it.
type CipherRecord struct {
	ID             uuid.UUID
	UserID         uuid.UUID
	OrganizationID *uuid.UUID
	Version        int
	Data           []byte
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Parse decodes the stored blob.
func (r *CipherRecord) Parse() (CipherData, error) {
	return ParseCipherData(r.Data)
}

// NewCipherRecord encodes data for storage under userID.
func NewCipherRecord(userID uuid.UUID, data *CipherDataLatest, now time.Time) (*CipherRecord, error) {
	raw, err := MarshalCipherData(data)
	if err != nil {
		return nil, err
	}
	return &CipherRecord{
		ID:             data.ID,
		UserID:         userID,
		OrganizationID: data.OrganizationID,
		Version:        data.Version(),
		Data:           raw,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// MigrationReport summarizes a stored cipher migration.
type MigrationReport struct {
	Total    int
	Migrated int
	UpToDate int
}
