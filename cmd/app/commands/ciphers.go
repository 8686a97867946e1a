package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	cryptoDomain "github.com/allisson/vaultkeys/internal/crypto/domain"
	cryptoUseCase "github.com/allisson/vaultkeys/internal/crypto/usecase"
	vaultDomain "github.com/allisson/vaultkeys/internal/vault/domain"
	vaultUseCase "github.com/allisson/vaultkeys/internal/vault/usecase"
)

// LoginInput holds the plaintext fields of a login added from the CLI.
type LoginInput struct {
	OrganizationID *uuid.UUID
	Name           string
	Notes          string
	Username       string
	URIs           []string
}

// RunMigrateCiphers unlocks the account and upgrades every stored cipher to
// the latest data version.
func RunMigrateCiphers(
	ctx context.Context,
	keyHierarchy cryptoUseCase.KeyHierarchyUseCase,
	migrator vaultUseCase.CipherMigrator,
	logger *slog.Logger,
	r io.Reader,
	w io.Writer,
	userID uuid.UUID,
	format string,
) error {
	session, err := unlockSession(ctx, keyHierarchy, r, userID)
	if err != nil {
		return err
	}
	defer keyHierarchy.Lock(ctx, session)

	report, err := migrator.MigrateStored(ctx, session, userID)
	if err != nil {
		return fmt.Errorf("failed to migrate ciphers: %w", err)
	}

	logger.Info("ciphers migrated",
		slog.String("user_id", userID.String()),
		slog.Int("total", report.Total),
		slog.Int("migrated", report.Migrated),
		slog.Int("up_to_date", report.UpToDate),
	)

	if format == "json" {
		return writeJSON(w, map[string]any{
			"total":          report.Total,
			"migrated":       report.Migrated,
			"up_to_date":     report.UpToDate,
			"latest_version": (&vaultDomain.CipherDataLatest{}).Version(),
		})
	}
	fmt.Fprintf(w, "Ciphers: %d total, %d migrated, %d already up to date\n",
		report.Total, report.Migrated, report.UpToDate)
	return nil
}

// RunAddLogin encrypts and stores a new login. r carries two lines: the
// master password, then the login password.
func RunAddLogin(
	ctx context.Context,
	keyHierarchy cryptoUseCase.KeyHierarchyUseCase,
	encryptor vaultUseCase.CipherEncryptor,
	repo vaultUseCase.CipherRepository,
	logger *slog.Logger,
	r io.Reader,
	w io.Writer,
	userID uuid.UUID,
	input LoginInput,
	format string,
) error {
	br := bufio.NewReader(r)
	session, err := unlockSession(ctx, keyHierarchy, br, userID)
	if err != nil {
		return err
	}
	defer keyHierarchy.Lock(ctx, session)

	password, err := readSecret(br)
	if err != nil {
		return fmt.Errorf("failed to read login password: %w", err)
	}

	login := &vaultDomain.LoginView{Username: input.Username, Password: password}
	for _, uri := range input.URIs {
		login.URIs = append(login.URIs, vaultDomain.LoginURIView{URI: uri})
	}
	view := &vaultDomain.CipherView{
		OrganizationID: input.OrganizationID,
		Name:           input.Name,
		Notes:          input.Notes,
		Item:           login,
	}

	key, err := cipherKey(session, input.OrganizationID)
	if err != nil {
		return err
	}
	defer key.Zero()

	data, err := encryptor.Encrypt(ctx, view, key)
	if err != nil {
		return fmt.Errorf("failed to encrypt login: %w", err)
	}
	record, err := vaultDomain.NewCipherRecord(userID, data, time.Now().UTC())
	if err != nil {
		return err
	}
	if err := repo.Create(ctx, record); err != nil {
		return fmt.Errorf("failed to store login: %w", err)
	}

	logger.Info("login stored",
		slog.String("cipher_id", record.ID.String()),
		slog.String("user_id", userID.String()),
	)

	if format == "json" {
		return writeJSON(w, map[string]any{
			"id":      record.ID.String(),
			"version": record.Version,
		})
	}
	fmt.Fprintf(w, "Cipher ID: %s\n", record.ID)
	return nil
}

// RunShowCipher loads a stored cipher, migrates it in memory when it is behind
// and prints the decrypted view. Secrets are only printed in json format.
func RunShowCipher(
	ctx context.Context,
	keyHierarchy cryptoUseCase.KeyHierarchyUseCase,
	migrator vaultUseCase.CipherMigrator,
	encryptor vaultUseCase.CipherEncryptor,
	repo vaultUseCase.CipherRepository,
	r io.Reader,
	w io.Writer,
	userID, cipherID uuid.UUID,
	format string,
) error {
	record, err := repo.Get(ctx, cipherID)
	if err != nil {
		return err
	}
	if record.UserID != userID {
		return vaultDomain.ErrCipherNotFound
	}
	data, err := record.Parse()
	if err != nil {
		return err
	}

	session, err := unlockSession(ctx, keyHierarchy, r, userID)
	if err != nil {
		return err
	}
	defer keyHierarchy.Lock(ctx, session)

	key, err := cipherKey(session, record.OrganizationID)
	if err != nil {
		return err
	}
	defer key.Zero()

	latest, err := migrator.ToLatestVersion(ctx, data, key)
	if err != nil {
		return fmt.Errorf("failed to migrate cipher: %w", err)
	}
	view, err := encryptor.Decrypt(ctx, latest, key)
	if err != nil {
		return fmt.Errorf("failed to decrypt cipher: %w", err)
	}

	if format == "json" {
		return writeJSON(w, view)
	}
	fmt.Fprintf(w, "ID: %s\n", view.ID)
	fmt.Fprintf(w, "Type: %s\n", view.Item.Type())
	fmt.Fprintf(w, "Name: %s\n", view.Name)
	fmt.Fprintf(w, "Stored version: %d\n", record.Version)
	if login, ok := view.Item.(*vaultDomain.LoginView); ok {
		fmt.Fprintf(w, "Username: %s\n", login.Username)
		for _, uri := range login.URIs {
			fmt.Fprintf(w, "URI: %s\n", uri.URI)
		}
	}
	return nil
}

// cipherKey returns the key a cipher is encrypted with: its organization key,
// or the user key for personal ciphers.
func cipherKey(session *cryptoDomain.Session, orgID *uuid.UUID) (*cryptoDomain.SymmetricCryptoKey, error) {
	if orgID != nil {
		return session.OrgKey(*orgID)
	}
	return session.UserKey()
}
