package commands

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/vaultkeys/internal/crypto/domain"
	cryptoMocks "github.com/allisson/vaultkeys/internal/crypto/usecase/mocks"
	apperrors "github.com/allisson/vaultkeys/internal/errors"
)

func TestRunRegister(t *testing.T) {
	ctx := t.Context()
	userID := uuid.Must(uuid.NewV7())
	kdf := cryptoDomain.DefaultPBKDF2Config()

	t.Run("success", func(t *testing.T) {
		keyHierarchy := &cryptoMocks.MockKeyHierarchyUseCase{}
		keyHierarchy.On("Register", mock.Anything, &cryptoDomain.RegisterInput{
			UserID:   userID,
			Email:    "ada@example.com",
			Password: "hunter2",
			Kdf:      kdf,
		}).Return(&cryptoDomain.AccountKeys{
			UserID:    userID,
			Email:     "ada@example.com",
			Kdf:       kdf,
			CreatedAt: time.Now().UTC(),
		}, nil).Once()

		var out bytes.Buffer
		err := RunRegister(ctx, keyHierarchy, discardLogger(), strings.NewReader("hunter2\n"), &out,
			userID, "ada@example.com", kdf, "json")
		require.NoError(t, err)

		var result map[string]any
		require.NoError(t, json.Unmarshal(out.Bytes(), &result))
		assert.Equal(t, userID.String(), result["user_id"])
		assert.Equal(t, "ada@example.com", result["email"])
		keyHierarchy.AssertExpectations(t)
	})

	t.Run("conflict", func(t *testing.T) {
		keyHierarchy := &cryptoMocks.MockKeyHierarchyUseCase{}
		keyHierarchy.On("Register", mock.Anything, mock.Anything).
			Return(nil, cryptoDomain.ErrAccountKeysAlreadyExist).
			Once()

		err := RunRegister(ctx, keyHierarchy, discardLogger(), strings.NewReader("hunter2\n"), &bytes.Buffer{},
			userID, "ada@example.com", kdf, "text")
		assert.ErrorIs(t, err, cryptoDomain.ErrAccountKeysAlreadyExist)
	})

	t.Run("empty-password", func(t *testing.T) {
		keyHierarchy := &cryptoMocks.MockKeyHierarchyUseCase{}
		err := RunRegister(ctx, keyHierarchy, discardLogger(), strings.NewReader("\n"), &bytes.Buffer{},
			userID, "ada@example.com", kdf, "text")
		assert.Error(t, err)
		keyHierarchy.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
	})
}

func TestRunVerifyPassword(t *testing.T) {
	ctx := t.Context()
	userID := uuid.Must(uuid.NewV7())

	t.Run("valid", func(t *testing.T) {
		keyHierarchy := &cryptoMocks.MockKeyHierarchyUseCase{}
		keyHierarchy.On("VerifyMasterPassword", mock.Anything, userID, "hunter2").Return(true, nil).Once()

		var out bytes.Buffer
		require.NoError(t, RunVerifyPassword(ctx, keyHierarchy, strings.NewReader("hunter2\n"), &out, userID, "text"))
		assert.Contains(t, out.String(), "Master password is valid")
	})

	t.Run("invalid", func(t *testing.T) {
		keyHierarchy := &cryptoMocks.MockKeyHierarchyUseCase{}
		keyHierarchy.On("VerifyMasterPassword", mock.Anything, userID, "nope").Return(false, nil).Once()

		var out bytes.Buffer
		err := RunVerifyPassword(ctx, keyHierarchy, strings.NewReader("nope\n"), &out, userID, "json")
		require.ErrorIs(t, err, apperrors.ErrUnauthorized)
		assert.JSONEq(t, `{"user_id":"`+userID.String()+`","valid":false}`, out.String())
	})

	t.Run("repository-error", func(t *testing.T) {
		keyHierarchy := &cryptoMocks.MockKeyHierarchyUseCase{}
		keyHierarchy.On("VerifyMasterPassword", mock.Anything, userID, "hunter2").
			Return(false, cryptoDomain.ErrAccountKeysNotFound).
			Once()

		err := RunVerifyPassword(ctx, keyHierarchy, strings.NewReader("hunter2\n"), &bytes.Buffer{}, userID, "text")
		assert.ErrorIs(t, err, cryptoDomain.ErrAccountKeysNotFound)
	})
}

func TestRunEnrollDevice(t *testing.T) {
	ctx := t.Context()

	t.Run("success", func(t *testing.T) {
		account := newTestAccount(t)
		keyHierarchy := &cryptoMocks.MockKeyHierarchyUseCase{}
		account.expectUnlock(keyHierarchy)
		keyHierarchy.On("EnrollDevice", mock.Anything, mock.AnythingOfType("*domain.Session"), account.userID).
			Return(nil).
			Once()

		var out bytes.Buffer
		err := RunEnrollDevice(ctx, keyHierarchy, discardLogger(), strings.NewReader(account.password+"\n"), &out,
			account.userID)
		require.NoError(t, err)
		assert.Contains(t, out.String(), "Device enrolled")
		keyHierarchy.AssertExpectations(t)
	})

	t.Run("no-keeper", func(t *testing.T) {
		account := newTestAccount(t)
		keyHierarchy := &cryptoMocks.MockKeyHierarchyUseCase{}
		account.expectUnlock(keyHierarchy)
		keyHierarchy.On("EnrollDevice", mock.Anything, mock.Anything, account.userID).
			Return(cryptoDomain.ErrDeviceUnlockNotConfigured).
			Once()

		err := RunEnrollDevice(ctx, keyHierarchy, discardLogger(), strings.NewReader(account.password+"\n"),
			&bytes.Buffer{}, account.userID)
		assert.ErrorIs(t, err, cryptoDomain.ErrDeviceUnlockNotConfigured)
		keyHierarchy.AssertExpectations(t)
	})
}

func TestRunCreateOrganizationKey(t *testing.T) {
	ctx := t.Context()
	account := newTestAccount(t)
	orgID := uuid.Must(uuid.NewV7())

	keyHierarchy := &cryptoMocks.MockKeyHierarchyUseCase{}
	account.expectUnlock(keyHierarchy)
	wrapped, err := cryptoDomain.NewEncString(cryptoDomain.Rsa2048OaepSha256B64, nil, []byte{1, 2, 3}, nil)
	require.NoError(t, err)
	keyHierarchy.On("CreateOrganizationKey", mock.Anything, mock.Anything, account.userID, orgID).
		Return(&cryptoDomain.OrganizationKey{
			UserID:         account.userID,
			OrganizationID: orgID,
			WrappedKey:     wrapped,
		}, nil).
		Once()

	var out bytes.Buffer
	err = RunCreateOrganizationKey(ctx, keyHierarchy, discardLogger(), strings.NewReader(account.password+"\n"),
		&out, account.userID, orgID, "text")
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Organization ID: "+orgID.String())
	keyHierarchy.AssertExpectations(t)
}
