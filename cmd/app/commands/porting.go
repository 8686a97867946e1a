package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	cryptoUseCase "github.com/allisson/vaultkeys/internal/crypto/usecase"
	portingDomain "github.com/allisson/vaultkeys/internal/porting/domain"
	portingUseCase "github.com/allisson/vaultkeys/internal/porting/usecase"
)

// RunSMImport reads a plaintext Secrets Manager export from path and writes
// the import request encrypted with the organization key.
func RunSMImport(
	ctx context.Context,
	keyHierarchy cryptoUseCase.KeyHierarchyUseCase,
	porting portingUseCase.PortingUseCase,
	logger *slog.Logger,
	r io.Reader,
	w io.Writer,
	userID, orgID uuid.UUID,
	path string,
) error {
	var export portingDomain.Export
	if err := readJSONFile(path, &export); err != nil {
		return err
	}

	session, err := unlockSession(ctx, keyHierarchy, r, userID)
	if err != nil {
		return err
	}
	defer keyHierarchy.Lock(ctx, session)

	request, err := porting.EncryptImport(ctx, session, orgID, &export)
	if err != nil {
		return fmt.Errorf("failed to encrypt import: %w", err)
	}

	logger.Info("secrets manager import encrypted",
		slog.String("organization_id", orgID.String()),
		slog.Int("projects", len(request.Projects)),
		slog.Int("secrets", len(request.Secrets)),
	)
	return writeJSON(w, request)
}

// RunSMExport reads an encrypted Secrets Manager export response from path and
// writes it decrypted.
func RunSMExport(
	ctx context.Context,
	keyHierarchy cryptoUseCase.KeyHierarchyUseCase,
	porting portingUseCase.PortingUseCase,
	logger *slog.Logger,
	r io.Reader,
	w io.Writer,
	userID, orgID uuid.UUID,
	path string,
) error {
	var response portingDomain.ExportResponse
	if err := readJSONFile(path, &response); err != nil {
		return err
	}

	session, err := unlockSession(ctx, keyHierarchy, r, userID)
	if err != nil {
		return err
	}
	defer keyHierarchy.Lock(ctx, session)

	export, err := porting.DecryptExport(ctx, session, orgID, &response)
	if err != nil {
		return fmt.Errorf("failed to decrypt export: %w", err)
	}

	logger.Info("secrets manager export decrypted",
		slog.String("organization_id", orgID.String()),
		slog.Int("projects", len(export.Projects)),
		slog.Int("secrets", len(export.Secrets)),
	)
	return writeJSON(w, export)
}
