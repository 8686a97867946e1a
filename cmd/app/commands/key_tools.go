package commands

import (
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"

	cryptoDomain "github.com/allisson/vaultkeys/internal/crypto/domain"
	cryptoService "github.com/allisson/vaultkeys/internal/crypto/service"
)

// RunCreateKey prints a random 256 or 512 bit symmetric key as base64. The key
// is zeroed after encoding.
func RunCreateKey(keyGenerator cryptoService.KeyGenerator, logger *slog.Logger, w io.Writer, bits int, format string) error {
	key, err := keyGenerator.CreateKey(bits)
	if err != nil {
		return fmt.Errorf("failed to create key: %w", err)
	}
	defer key.Zero()

	logger.Info("key created", slog.Int("bits", bits), slog.String("enc_type", key.EncType().String()))

	if format == "json" {
		return writeJSON(w, map[string]any{
			"bits":     bits,
			"enc_type": key.EncType().String(),
			"key":      key.Base64(),
		})
	}
	_, err = fmt.Fprintf(w, "KEY=\"%s\"\n", key.Base64())
	return err
}

// RunDeriveMasterKey derives the master key of email and the password read from
// r, then prints both authorization hashes. The master key itself is only
// printed when showKey is set.
func RunDeriveMasterKey(
	keyGenerator cryptoService.KeyGenerator,
	r io.Reader,
	w io.Writer,
	email string,
	kdf cryptoDomain.KdfConfig,
	showKey bool,
	format string,
) error {
	if err := kdf.Validate(); err != nil {
		return err
	}
	password, err := readSecret(r)
	if err != nil {
		return err
	}

	masterKey, err := keyGenerator.DeriveKeyFromPassword(password, cryptoDomain.NormalizeEmail(email), kdf)
	if err != nil {
		return fmt.Errorf("failed to derive master key: %w", err)
	}
	defer masterKey.Zero()

	serverHash, err := keyGenerator.HashMasterKey(password, masterKey, cryptoDomain.ServerAuthorization)
	if err != nil {
		return fmt.Errorf("failed to hash master key: %w", err)
	}
	localHash, err := keyGenerator.HashMasterKey(password, masterKey, cryptoDomain.LocalAuthorization)
	if err != nil {
		return fmt.Errorf("failed to hash master key: %w", err)
	}

	result := map[string]any{
		"kdf":              kdf.Type.String(),
		"server_auth_hash": serverHash,
		"local_auth_hash":  localHash,
	}
	if showKey {
		result["master_key"] = masterKey.Base64()
	}

	if format == "json" {
		return writeJSON(w, result)
	}
	fmt.Fprintf(w, "KDF: %s\n", kdf.Type)
	fmt.Fprintf(w, "Server authorization hash: %s\n", serverHash)
	fmt.Fprintf(w, "Local authorization hash: %s\n", localHash)
	if showKey {
		fmt.Fprintf(w, "Master key: %s\n", masterKey.Base64())
	}
	return nil
}

// RunInspectEncString parses an EncString and prints its type and segment
// sizes. With a base64 key it also decrypts the value.
func RunInspectEncString(
	encryptService cryptoService.EncryptService,
	w io.Writer,
	encoded, keyB64 string,
	format string,
) error {
	enc, err := cryptoDomain.ParseEncString(encoded)
	if err != nil {
		return err
	}

	result := map[string]any{
		"type":      int(enc.Type),
		"type_name": enc.Type.String(),
		"iv_len":    len(enc.IV),
		"data_len":  len(enc.Data),
		"mac_len":   len(enc.MAC),
	}

	if keyB64 != "" {
		key, err := decodeKey(keyB64)
		if err != nil {
			return err
		}
		defer key.Zero()

		plaintext, err := encryptService.DecryptString(enc, key)
		if err != nil {
			return fmt.Errorf("failed to decrypt: %w", err)
		}
		result["plaintext"] = plaintext
	}

	if format == "json" {
		return writeJSON(w, result)
	}
	fmt.Fprintf(w, "Type: %d (%s)\n", enc.Type, enc.Type)
	fmt.Fprintf(w, "IV: %d bytes\n", len(enc.IV))
	fmt.Fprintf(w, "Data: %d bytes\n", len(enc.Data))
	fmt.Fprintf(w, "MAC: %d bytes\n", len(enc.MAC))
	if plaintext, ok := result["plaintext"]; ok {
		fmt.Fprintf(w, "Plaintext: %s\n", plaintext)
	}
	return nil
}

// decodeKey parses a base64 symmetric key. The decoded bytes are zeroed once
// copied into the key.
func decodeKey(keyB64 string) (*cryptoDomain.SymmetricCryptoKey, error) {
	raw, err := base64.StdEncoding.DecodeString(keyB64)
	if err != nil {
		return nil, fmt.Errorf("invalid key: %w", err)
	}
	defer clear(raw)
	return cryptoDomain.NewSymmetricCryptoKey(raw)
}
