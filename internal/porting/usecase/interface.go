// Package usecase encrypts Secrets Manager imports and decrypts exports with
// an organization key held by an unlocked session.
package usecase

import (
	"context"

	"github.com/google/uuid"

	cryptoDomain "github.com/allisson/vaultkeys/internal/crypto/domain"
	portingDomain "github.com/allisson/vaultkeys/internal/porting/domain"
)

// PortingUseCase converts between plaintext exports and their encrypted forms.
//
// Records are processed in parallel. The first failing record aborts the batch
// with a *portingDomain.RecordError, and no partial result is returned.
type PortingUseCase interface {
	// EncryptImport encrypts export under the key of organization orgID.
	EncryptImport(
		ctx context.Context,
		session *cryptoDomain.Session,
		orgID uuid.UUID,
		export *portingDomain.Export,
	) (*portingDomain.ImportRequest, error)

	// DecryptExport decrypts response with the key of organization orgID.
	DecryptExport(
		ctx context.Context,
		session *cryptoDomain.Session,
		orgID uuid.UUID,
		response *portingDomain.ExportResponse,
	) (*portingDomain.Export, error)
}
