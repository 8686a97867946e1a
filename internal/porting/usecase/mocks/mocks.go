// Package mocks provides testify mocks for the porting use case.
package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	cryptoDomain "github.com/allisson/vaultkeys/internal/crypto/domain"
	portingDomain "github.com/allisson/vaultkeys/internal/porting/domain"
)

// MockPortingUseCase is a mock implementation of usecase.PortingUseCase.
type MockPortingUseCase struct {
	mock.Mock
}

func (m *MockPortingUseCase) EncryptImport(
	ctx context.Context,
	session *cryptoDomain.Session,
	orgID uuid.UUID,
	export *portingDomain.Export,
) (*portingDomain.ImportRequest, error) {
	args := m.Called(ctx, session, orgID, export)
	req, _ := args.Get(0).(*portingDomain.ImportRequest)
	return req, args.Error(1)
}

func (m *MockPortingUseCase) DecryptExport(
	ctx context.Context,
	session *cryptoDomain.Session,
	orgID uuid.UUID,
	response *portingDomain.ExportResponse,
) (*portingDomain.Export, error) {
	args := m.Called(ctx, session, orgID, response)
	export, _ := args.Get(0).(*portingDomain.Export)
	return export, args.Error(1)
}
