package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	cryptoDomain "github.com/allisson/vaultkeys/internal/crypto/domain"
	cryptoService "github.com/allisson/vaultkeys/internal/crypto/service"
	apperrors "github.com/allisson/vaultkeys/internal/errors"
	portingDomain "github.com/allisson/vaultkeys/internal/porting/domain"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type testOrg struct {
	encrypt cryptoService.EncryptService
	session *cryptoDomain.Session
	orgID   uuid.UUID
	orgKey  *cryptoDomain.SymmetricCryptoKey
}

func newTestOrg(t *testing.T) *testOrg {
	t.Helper()
	keyGen := cryptoService.NewKeyGenerator()
	userKey, err := keyGen.CreateKey(512)
	require.NoError(t, err)
	orgKey, err := keyGen.CreateKey(512)
	require.NoError(t, err)

	o := &testOrg{
		encrypt: cryptoService.NewEncryptService(cryptoService.NewCipherManager(), cryptoService.NewRSAService()),
		session: cryptoDomain.NewSession(),
		orgID:   uuid.Must(uuid.NewV7()),
		orgKey:  orgKey,
	}
	require.NoError(t, o.session.Commit(o.session.Generation(), cryptoDomain.SessionKeys{
		UserID:  uuid.Must(uuid.NewV7()),
		UserKey: userKey,
		OrgKeys: map[uuid.UUID]*cryptoDomain.SymmetricCryptoKey{o.orgID: orgKey},
	}))
	return o
}

func (o *testOrg) export() *portingDomain.Export {
	projectID := uuid.Must(uuid.NewV7())
	return &portingDomain.Export{
		Projects: []portingDomain.ExportProject{
			{ID: projectID, Name: "backend"},
			{ID: uuid.Must(uuid.NewV7()), Name: "frontend"},
		},
		Secrets: []portingDomain.ExportSecret{
			{
				ID:             uuid.Must(uuid.NewV7()),
				OrganizationID: o.orgID,
				ProjectIDs:     []uuid.UUID{projectID},
				Key:            "DB_PASSWORD",
				Value:          "s3cret",
				Note:           "rotated monthly",
			},
			{ID: uuid.Must(uuid.NewV7()), OrganizationID: o.orgID, Key: "API_TOKEN", Value: "abc"},
		},
	}
}

// toResponse turns an import request into the export response a server would
// return for it.
func (o *testOrg) toResponse(req *portingDomain.ImportRequest) *portingDomain.ExportResponse {
	resp := &portingDomain.ExportResponse{
		Projects: make([]portingDomain.ExportedProject, len(req.Projects)),
		Secrets:  make([]portingDomain.ExportedSecret, len(req.Secrets)),
	}
	for i, p := range req.Projects {
		resp.Projects[i] = portingDomain.ExportedProject{ID: p.ID, Name: p.Name}
	}
	for i, s := range req.Secrets {
		resp.Secrets[i] = portingDomain.ExportedSecret{
			ID:             s.ID,
			OrganizationID: o.orgID,
			ProjectIDs:     s.ProjectIDs,
			Key:            s.Key,
			Value:          s.Value,
			Note:           s.Note,
		}
	}
	return resp
}

func TestPortingUseCase_RoundTrip(t *testing.T) {
	ctx := context.Background()
	o := newTestOrg(t)
	uc := NewPortingUseCase(o.encrypt, 2)
	export := o.export()

	req, err := uc.EncryptImport(ctx, o.session, o.orgID, export)
	require.NoError(t, err)
	require.Len(t, req.Projects, 2)
	require.Len(t, req.Secrets, 2)

	name, err := o.encrypt.DecryptString(req.Projects[0].Name, o.orgKey)
	require.NoError(t, err)
	assert.Equal(t, "backend", name)
	assert.Equal(t, cryptoDomain.AesCbc256HmacSha256B64, req.Secrets[1].Note.Type)

	got, err := uc.DecryptExport(ctx, o.session, o.orgID, o.toResponse(req))
	require.NoError(t, err)
	assert.Equal(t, export.Projects, got.Projects)
	require.Len(t, got.Secrets, 2)
	assert.Equal(t, export.Secrets[0], got.Secrets[0])
	assert.Equal(t, "", got.Secrets[1].Note)
	assert.Empty(t, got.Secrets[1].ProjectIDs)
}

func TestPortingUseCase_EncryptImport(t *testing.T) {
	ctx := context.Background()

	t.Run("Empty", func(t *testing.T) {
		o := newTestOrg(t)
		req, err := NewPortingUseCase(o.encrypt, 4).EncryptImport(ctx, o.session, o.orgID, &portingDomain.Export{})
		require.NoError(t, err)
		assert.Empty(t, req.Projects)
		assert.Empty(t, req.Secrets)
	})

	t.Run("Error_NilExport", func(t *testing.T) {
		o := newTestOrg(t)
		_, err := NewPortingUseCase(o.encrypt, 1).EncryptImport(ctx, o.session, o.orgID, nil)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})

	t.Run("Error_OrgKeyNotFound", func(t *testing.T) {
		o := newTestOrg(t)
		_, err := NewPortingUseCase(o.encrypt, 1).EncryptImport(ctx, o.session, uuid.New(), o.export())
		assert.ErrorIs(t, err, cryptoDomain.ErrOrgKeyNotFound)

		var recordErr *portingDomain.RecordError
		assert.False(t, errors.As(err, &recordErr))
	})

	t.Run("Error_SessionLocked", func(t *testing.T) {
		o := newTestOrg(t)
		o.session.Lock()
		_, err := NewPortingUseCase(o.encrypt, 1).EncryptImport(ctx, o.session, o.orgID, o.export())
		assert.ErrorIs(t, err, cryptoDomain.ErrSessionLocked)
	})

	t.Run("Error_BlankSecretKey", func(t *testing.T) {
		o := newTestOrg(t)
		export := o.export()
		export.Secrets[1].Key = "  "

		_, err := NewPortingUseCase(o.encrypt, 3).EncryptImport(ctx, o.session, o.orgID, export)
		var recordErr *portingDomain.RecordError
		require.ErrorAs(t, err, &recordErr)
		assert.Equal(t, portingDomain.KindSecret, recordErr.Kind)
		assert.Equal(t, 1, recordErr.Index)
		assert.Equal(t, export.Secrets[1].ID, recordErr.ID)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})

	t.Run("Error_MissingProjectName", func(t *testing.T) {
		o := newTestOrg(t)
		export := o.export()
		export.Projects[0].Name = ""

		_, err := NewPortingUseCase(o.encrypt, 1).EncryptImport(ctx, o.session, o.orgID, export)
		var recordErr *portingDomain.RecordError
		require.ErrorAs(t, err, &recordErr)
		assert.Equal(t, portingDomain.KindProject, recordErr.Kind)
		assert.Equal(t, 0, recordErr.Index)
	})

	t.Run("Error_CanceledContext", func(t *testing.T) {
		o := newTestOrg(t)
		canceled, cancel := context.WithCancel(ctx)
		cancel()

		_, err := NewPortingUseCase(o.encrypt, 2).EncryptImport(canceled, o.session, o.orgID, o.export())
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestPortingUseCase_DecryptExport(t *testing.T) {
	ctx := context.Background()

	t.Run("Error_WrongKey", func(t *testing.T) {
		o := newTestOrg(t)
		uc := NewPortingUseCase(o.encrypt, 2)
		req, err := uc.EncryptImport(ctx, o.session, o.orgID, o.export())
		require.NoError(t, err)

		otherKey, err := cryptoService.NewKeyGenerator().CreateKey(512)
		require.NoError(t, err)
		forged, err := o.encrypt.EncryptString("value", otherKey)
		require.NoError(t, err)
		resp := o.toResponse(req)
		resp.Secrets[0].Value = forged

		_, err = uc.DecryptExport(ctx, o.session, o.orgID, resp)
		var recordErr *portingDomain.RecordError
		require.ErrorAs(t, err, &recordErr)
		assert.Equal(t, portingDomain.KindSecret, recordErr.Kind)
		assert.Equal(t, 0, recordErr.Index)
		assert.Equal(t, resp.Secrets[0].ID, recordErr.ID)
	})

	t.Run("Error_NilResponse", func(t *testing.T) {
		o := newTestOrg(t)
		_, err := NewPortingUseCase(o.encrypt, 1).DecryptExport(ctx, o.session, o.orgID, nil)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})

	t.Run("Error_OrgKeyNotFound", func(t *testing.T) {
		o := newTestOrg(t)
		_, err := NewPortingUseCase(o.encrypt, 1).
			DecryptExport(ctx, o.session, uuid.New(), &portingDomain.ExportResponse{})
		assert.ErrorIs(t, err, cryptoDomain.ErrOrgKeyNotFound)
	})
}

func TestNewPortingUseCase_ClampsWorkers(t *testing.T) {
	uc := NewPortingUseCase(nil, 0).(*portingUseCase)
	assert.Equal(t, 1, uc.workers)
}
