package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	cryptoDomain "github.com/allisson/vaultkeys/internal/crypto/domain"
	cryptoUseCase "github.com/allisson/vaultkeys/internal/crypto/usecase"
	apperrors "github.com/allisson/vaultkeys/internal/errors"
)

// RunRegister creates the key hierarchy of a new account. The master password
// is read from r.
func RunRegister(
	ctx context.Context,
	keyHierarchy cryptoUseCase.KeyHierarchyUseCase,
	logger *slog.Logger,
	r io.Reader,
	w io.Writer,
	userID uuid.UUID,
	email string,
	kdf cryptoDomain.KdfConfig,
	format string,
) error {
	password, err := readSecret(r)
	if err != nil {
		return err
	}

	keys, err := keyHierarchy.Register(ctx, &cryptoDomain.RegisterInput{
		UserID:   userID,
		Email:    email,
		Password: password,
		Kdf:      kdf,
	})
	if err != nil {
		return fmt.Errorf("failed to register account: %w", err)
	}

	logger.Info("account registered",
		slog.String("user_id", keys.UserID.String()),
		slog.String("kdf", keys.Kdf.Type.String()),
	)

	if format == "json" {
		return writeJSON(w, map[string]any{
			"user_id":    keys.UserID.String(),
			"email":      keys.Email,
			"kdf":        keys.Kdf,
			"created_at": keys.CreatedAt,
		})
	}
	fmt.Fprintf(w, "User ID: %s\n", keys.UserID)
	fmt.Fprintf(w, "Email: %s\n", keys.Email)
	fmt.Fprintf(w, "KDF: %s (%d iterations)\n", keys.Kdf.Type, keys.Kdf.Iterations)
	return nil
}

// RunVerifyPassword checks the master password read from r against the local
// verifier. A mismatch is reported and returned as an error.
func RunVerifyPassword(
	ctx context.Context,
	keyHierarchy cryptoUseCase.KeyHierarchyUseCase,
	r io.Reader,
	w io.Writer,
	userID uuid.UUID,
	format string,
) error {
	password, err := readSecret(r)
	if err != nil {
		return err
	}

	valid, err := keyHierarchy.VerifyMasterPassword(ctx, userID, password)
	if err != nil {
		return fmt.Errorf("failed to verify master password: %w", err)
	}

	if format == "json" {
		if err := writeJSON(w, map[string]any{"user_id": userID.String(), "valid": valid}); err != nil {
			return err
		}
	} else if valid {
		fmt.Fprintln(w, "Master password is valid")
	} else {
		fmt.Fprintln(w, "Master password is NOT valid")
	}

	if !valid {
		return apperrors.Wrap(apperrors.ErrUnauthorized, "master password does not match")
	}
	return nil
}

// RunEnrollDevice unlocks the account and seals a fresh device key with the
// configured KMS keeper.
func RunEnrollDevice(
	ctx context.Context,
	keyHierarchy cryptoUseCase.KeyHierarchyUseCase,
	logger *slog.Logger,
	r io.Reader,
	w io.Writer,
	userID uuid.UUID,
) error {
	session, err := unlockSession(ctx, keyHierarchy, r, userID)
	if err != nil {
		return err
	}
	defer keyHierarchy.Lock(ctx, session)

	if err := keyHierarchy.EnrollDevice(ctx, session, userID); err != nil {
		return fmt.Errorf("failed to enroll device: %w", err)
	}

	logger.Info("device enrolled", slog.String("user_id", userID.String()))
	fmt.Fprintln(w, "Device enrolled")
	return nil
}

// RunCreateOrganizationKey unlocks the account and creates the key of a new
// organization, wrapped with the user's public key.
func RunCreateOrganizationKey(
	ctx context.Context,
	keyHierarchy cryptoUseCase.KeyHierarchyUseCase,
	logger *slog.Logger,
	r io.Reader,
	w io.Writer,
	userID, orgID uuid.UUID,
	format string,
) error {
	session, err := unlockSession(ctx, keyHierarchy, r, userID)
	if err != nil {
		return err
	}
	defer keyHierarchy.Lock(ctx, session)

	orgKey, err := keyHierarchy.CreateOrganizationKey(ctx, session, userID, orgID)
	if err != nil {
		return fmt.Errorf("failed to create organization key: %w", err)
	}

	logger.Info("organization key created",
		slog.String("user_id", userID.String()),
		slog.String("organization_id", orgID.String()),
	)

	if format == "json" {
		return writeJSON(w, map[string]any{
			"organization_id": orgKey.OrganizationID.String(),
			"user_id":         orgKey.UserID.String(),
			"wrapped_key":     orgKey.WrappedKey.String(),
		})
	}
	fmt.Fprintf(w, "Organization ID: %s\n", orgKey.OrganizationID)
	fmt.Fprintf(w, "Wrapped key: %s\n", orgKey.WrappedKey)
	return nil
}
