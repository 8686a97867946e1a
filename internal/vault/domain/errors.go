// Package domain defines versioned cipher data, the plaintext views it
// decrypts into, and the linked custom field table.
package domain

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/allisson/vaultkeys/internal/errors"
)

// Vault error definitions.
var (
	// ErrUnsupportedVersion indicates cipher data whose version this build cannot migrate.
	// The data is preserved untouched.
	ErrUnsupportedVersion = errors.Wrap(errors.ErrUnsupported, "unsupported cipher data version")

	// ErrVersionRegression indicates a migration step that did not advance the version.
	ErrVersionRegression = errors.Wrap(errors.ErrIntegrity, "cipher data migration did not advance the version")

	// ErrMalformedCipherData indicates cipher data that is not valid JSON, or whose
	// type tag does not match the populated item.
	ErrMalformedCipherData = errors.Wrap(errors.ErrInvalidInput, "malformed cipher data")

	// ErrURIChecksumMismatch indicates a login URI whose checksum does not match its plaintext.
	ErrURIChecksumMismatch = errors.Wrap(errors.ErrIntegrity, "login uri checksum mismatch")

	// ErrUnknownLinkedField indicates a linked custom field id that is not in the table,
	// or that belongs to another cipher type.
	ErrUnknownLinkedField = errors.Wrap(errors.ErrInvalidInput, "unknown linked field")

	// ErrCipherNotFound indicates no stored cipher exists with the given id.
	ErrCipherNotFound = errors.Wrap(errors.ErrNotFound, "cipher not found")

	// ErrCipherAlreadyExists indicates a stored cipher with the same id.
	ErrCipherAlreadyExists = errors.Wrap(errors.ErrConflict, "cipher already exists")
)

// RecordError identifies the record that aborted a bulk operation.
type RecordError struct {
	Index int
	ID    uuid.UUID
	Err   error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("cipher %d (%s): %v", e.Index, e.ID, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}
