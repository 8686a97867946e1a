package commands

import (
	"bufio"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/vaultkeys/internal/crypto/domain"
	cryptoService "github.com/allisson/vaultkeys/internal/crypto/service"
	cryptoMocks "github.com/allisson/vaultkeys/internal/crypto/usecase/mocks"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testAccount is an account whose unlock is served by a mocked key hierarchy.
type testAccount struct {
	userID   uuid.UUID
	password string
	userKey  *cryptoDomain.SymmetricCryptoKey
	orgKeys  map[uuid.UUID]*cryptoDomain.SymmetricCryptoKey
}

func newTestAccount(t *testing.T, orgIDs ...uuid.UUID) *testAccount {
	t.Helper()
	keyGen := cryptoService.NewKeyGenerator()
	userKey, err := keyGen.CreateKey(512)
	require.NoError(t, err)

	a := &testAccount{
		userID:   uuid.Must(uuid.NewV7()),
		password: "correct horse battery staple",
		userKey:  userKey,
		orgKeys:  make(map[uuid.UUID]*cryptoDomain.SymmetricCryptoKey),
	}
	for _, orgID := range orgIDs {
		orgKey, err := keyGen.CreateKey(512)
		require.NoError(t, err)
		a.orgKeys[orgID] = orgKey
	}
	return a
}

// expectUnlock makes keyHierarchy unlock any session with the account keys
// and lock it again.
func (a *testAccount) expectUnlock(keyHierarchy *cryptoMocks.MockKeyHierarchyUseCase) {
	keyHierarchy.On("UnlockWithPassword", mock.Anything, mock.AnythingOfType("*domain.Session"), a.userID, a.password).
		Run(func(args mock.Arguments) {
			session := args.Get(1).(*cryptoDomain.Session)
			_ = session.Commit(session.Generation(), cryptoDomain.SessionKeys{
				UserID:  a.userID,
				UserKey: a.userKey,
				OrgKeys: a.orgKeys,
			})
		}).
		Return(nil).
		Once()
	keyHierarchy.On("Lock", mock.Anything, mock.AnythingOfType("*domain.Session")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*cryptoDomain.Session).Lock()
		}).
		Return().
		Once()
}

func TestReadSecret(t *testing.T) {
	t.Run("strips-line-ending", func(t *testing.T) {
		secret, err := readSecret(strings.NewReader("s3cret\r\nnext\n"))
		require.NoError(t, err)
		assert.Equal(t, "s3cret", secret)
	})

	t.Run("without-newline", func(t *testing.T) {
		secret, err := readSecret(strings.NewReader("s3cret"))
		require.NoError(t, err)
		assert.Equal(t, "s3cret", secret)
	})

	t.Run("successive-lines-from-one-reader", func(t *testing.T) {
		br := bufio.NewReader(strings.NewReader("first\nsecond\n"))
		first, err := readSecret(br)
		require.NoError(t, err)
		second, err := readSecret(br)
		require.NoError(t, err)
		assert.Equal(t, "first", first)
		assert.Equal(t, "second", second)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := readSecret(strings.NewReader(""))
		assert.Error(t, err)
	})
}

func TestUnlockSession(t *testing.T) {
	ctx := t.Context()

	t.Run("success", func(t *testing.T) {
		account := newTestAccount(t)
		keyHierarchy := &cryptoMocks.MockKeyHierarchyUseCase{}
		account.expectUnlock(keyHierarchy)

		session, err := unlockSession(ctx, keyHierarchy, strings.NewReader(account.password+"\n"), account.userID)
		require.NoError(t, err)
		assert.True(t, session.IsUnlocked())
		keyHierarchy.Lock(ctx, session)
		assert.False(t, session.IsUnlocked())
		keyHierarchy.AssertExpectations(t)
	})

	t.Run("wrong-password", func(t *testing.T) {
		userID := uuid.Must(uuid.NewV7())
		keyHierarchy := &cryptoMocks.MockKeyHierarchyUseCase{}
		keyHierarchy.On("UnlockWithPassword", mock.Anything, mock.Anything, userID, "nope").
			Return(cryptoDomain.ErrWrongKey).
			Once()

		_, err := unlockSession(ctx, keyHierarchy, strings.NewReader("nope\n"), userID)
		assert.ErrorIs(t, err, cryptoDomain.ErrWrongKey)
		keyHierarchy.AssertExpectations(t)
	})
}

func TestReadJSONFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("decodes", func(t *testing.T) {
		path := filepath.Join(dir, "ok.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"name":"vault"}`), 0o600))

		var v struct{ Name string }
		require.NoError(t, readJSONFile(path, &v))
		assert.Equal(t, "vault", v.Name)
	})

	t.Run("missing-file", func(t *testing.T) {
		var v map[string]any
		err := readJSONFile(filepath.Join(dir, "missing.json"), &v)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to open")
	})

	t.Run("invalid-json", func(t *testing.T) {
		path := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(path, []byte(`{`), 0o600))

		var v map[string]any
		err := readJSONFile(path, &v)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to decode")
	})
}
