// Package domain defines the Secrets Manager import and export documents.
//
// An Export is the plaintext document a user edits or archives. An
// ImportRequest and an ExportResponse are its encrypted forms, with every
// project name and every secret key, value and note wrapped under the
// organization key.
package domain

import (
	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	cryptoDomain "github.com/allisson/vaultkeys/internal/crypto/domain"
	customValidation "github.com/allisson/vaultkeys/internal/validation"
)

// ExportProject is a plaintext project.
type ExportProject struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// Validate checks the project has an id and a name.
func (p *ExportProject) Validate() error {
	err := validation.ValidateStruct(p,
		validation.Field(&p.ID, customValidation.NotNilUUID),
		validation.Field(&p.Name, validation.Required, customValidation.NotBlank),
	)
	return customValidation.WrapValidationError(err)
}

// ExportSecret is a plaintext secret.
type ExportSecret struct {
	ID             uuid.UUID   `json:"id"`
	OrganizationID uuid.UUID   `json:"organizationId"`
	ProjectIDs     []uuid.UUID `json:"projectIds"`
	Key            string      `json:"key"`
	Value          string      `json:"value"`
	Note           string      `json:"note"`
}

// Validate checks the secret has an id and a key. Value and note may be empty.
func (s *ExportSecret) Validate() error {
	err := validation.ValidateStruct(s,
		validation.Field(&s.ID, customValidation.NotNilUUID),
		validation.Field(&s.Key, validation.Required, customValidation.NotBlank),
	)
	return customValidation.WrapValidationError(err)
}

// Export is the plaintext document.
type Export struct {
	Projects []ExportProject `json:"projects"`
	Secrets  []ExportSecret  `json:"secrets"`
}

// ImportedProject is a project as sent to the server.
type ImportedProject struct {
	ID   uuid.UUID              `json:"id"`
	Name cryptoDomain.EncString `json:"name"`
}

// ImportedSecret is a secret as sent to the server.
type ImportedSecret struct {
	ID         uuid.UUID              `json:"id"`
	ProjectIDs []uuid.UUID            `json:"projectIds"`
	Key        cryptoDomain.EncString `json:"key"`
	Value      cryptoDomain.EncString `json:"value"`
	Note       cryptoDomain.EncString `json:"note"`
}

// ImportRequest is the encrypted import payload.
type ImportRequest struct {
	Projects []ImportedProject `json:"projects"`
	Secrets  []ImportedSecret  `json:"secrets"`
}

// ExportedProject is a project as returned by the server.
type ExportedProject struct {
	ID   uuid.UUID              `json:"id"`
	Name cryptoDomain.EncString `json:"name"`
}

// ExportedSecret is a secret as returned by the server.
type ExportedSecret struct {
	ID             uuid.UUID              `json:"id"`
	OrganizationID uuid.UUID              `json:"organizationId"`
	ProjectIDs     []uuid.UUID            `json:"projectIds"`
	Key            cryptoDomain.EncString `json:"key"`
	Value          cryptoDomain.EncString `json:"value"`
	Note           cryptoDomain.EncString `json:"note"`
}

// ExportResponse is the encrypted export payload.
type ExportResponse struct {
	Projects []ExportedProject `json:"projects"`
	Secrets  []ExportedSecret  `json:"secrets"`
}
