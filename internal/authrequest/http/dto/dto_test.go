package dto

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authRequestDomain "github.com/allisson/vaultkeys/internal/authrequest/domain"
	cryptoDomain "github.com/allisson/vaultkeys/internal/crypto/domain"
)

func TestCreateAuthRequestRequest_Validate(t *testing.T) {
	valid := func() CreateAuthRequestRequest {
		return CreateAuthRequestRequest{
			Email:            "user@example.com",
			DeviceIdentifier: "laptop",
			PublicKey:        "AAAA",
			AccessCode:       "ABCDEFGHJKLMNPQRSTUVWXYZa",
		}
	}

	tests := []struct {
		name    string
		mutate  func(r *CreateAuthRequestRequest)
		wantErr bool
	}{
		{name: "valid", mutate: func(*CreateAuthRequestRequest) {}},
		{name: "bad email", mutate: func(r *CreateAuthRequestRequest) { r.Email = "nope" }, wantErr: true},
		{name: "blank device", mutate: func(r *CreateAuthRequestRequest) { r.DeviceIdentifier = "   " }, wantErr: true},
		{name: "public key not base64", mutate: func(r *CreateAuthRequestRequest) { r.PublicKey = "%%" }, wantErr: true},
		{name: "short access code", mutate: func(r *CreateAuthRequestRequest) { r.AccessCode = "abc" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := valid()
			tt.mutate(&r)
			if tt.wantErr {
				assert.Error(t, r.Validate())
			} else {
				assert.NoError(t, r.Validate())
			}
		})
	}
}

func TestUpdateAuthRequestRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     UpdateAuthRequestRequest
		wantErr bool
	}{
		{name: "approval", req: UpdateAuthRequestRequest{Key: "3.AAAA", DeviceIdentifier: "phone", RequestApproved: true}},
		{name: "denial without key", req: UpdateAuthRequestRequest{DeviceIdentifier: "phone"}},
		{name: "approval without key", req: UpdateAuthRequestRequest{DeviceIdentifier: "phone", RequestApproved: true}, wantErr: true},
		{name: "malformed key", req: UpdateAuthRequestRequest{Key: "3.AA|BB", DeviceIdentifier: "phone", RequestApproved: true}, wantErr: true},
		{name: "malformed hash", req: UpdateAuthRequestRequest{Key: "3.AAAA", MasterPasswordHash: "x", DeviceIdentifier: "phone", RequestApproved: true}, wantErr: true},
		{name: "missing device", req: UpdateAuthRequestRequest{Key: "3.AAAA", RequestApproved: true}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.wantErr {
				assert.Error(t, tt.req.Validate())
			} else {
				assert.NoError(t, tt.req.Validate())
			}
		})
	}
}

func TestUpdateAuthRequestRequest_ToDomain(t *testing.T) {
	req := UpdateAuthRequestRequest{Key: "3.AAAA", MasterPasswordHash: "3.BBBB", DeviceIdentifier: "phone", RequestApproved: true}

	resp, err := req.ToDomain()
	require.NoError(t, err)
	require.NotNil(t, resp.Key)
	assert.Equal(t, "3.AAAA", resp.Key.String())
	assert.Equal(t, "3.BBBB", resp.MasterPasswordHash.String())
	assert.Equal(t, req, MapPasswordlessToRequest(resp))
}

func TestAuthRequestResponse_RoundTrip(t *testing.T) {
	key, err := cryptoDomain.ParseEncString("3.AAAA")
	require.NoError(t, err)
	now := time.Now().UTC().Truncate(time.Second)
	req := &authRequestDomain.AuthRequest{
		ID:                       uuid.New(),
		Email:                    "user@example.com",
		RequestDeviceIdentifier:  "laptop",
		PublicKey:                "AAAA",
		AccessCodeHash:           "secret-hash",
		Status:                   authRequestDomain.StatusApproved,
		Key:                      &key,
		ResponseDeviceIdentifier: "phone",
		ResponseAt:               &now,
		CreatedAt:                now,
		ExpiresAt:                now.Add(time.Minute),
	}

	resp := MapAuthRequestToResponse(req)
	assert.Empty(t, resp.MasterPasswordHash)

	got, err := resp.ToDomain()
	require.NoError(t, err)
	assert.Empty(t, got.AccessCodeHash)
	got.AccessCodeHash = req.AccessCodeHash
	assert.Equal(t, req, got)

	resp.ID = "not-a-uuid"
	_, err = resp.ToDomain()
	assert.ErrorIs(t, err, authRequestDomain.ErrInvalidRequest)
}
