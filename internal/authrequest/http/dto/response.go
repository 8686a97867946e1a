package dto

import (
	"time"

	"github.com/google/uuid"

	authRequestDomain "github.com/allisson/vaultkeys/internal/authrequest/domain"
	apperrors "github.com/allisson/vaultkeys/internal/errors"
)

// AuthRequestResponse represents an auth request in API responses. The
// access code hash never leaves the server.
type AuthRequestResponse struct {
	ID                       string     `json:"id"`
	Email                    string     `json:"email"`
	RequestDeviceIdentifier  string     `json:"requestDeviceIdentifier"`
	PublicKey                string     `json:"publicKey"`
	Status                   string     `json:"status"`
	Key                      string     `json:"key,omitempty"`
	MasterPasswordHash       string     `json:"masterPasswordHash,omitempty"`
	ResponseDeviceIdentifier string     `json:"responseDeviceIdentifier,omitempty"`
	ResponseDate             *time.Time `json:"responseDate,omitempty"`
	CreationDate             time.Time  `json:"creationDate"`
	ExpirationDate           time.Time  `json:"expirationDate"`
}

// MapAuthRequestToResponse converts a domain auth request to an API response.
func MapAuthRequestToResponse(req *authRequestDomain.AuthRequest) AuthRequestResponse {
	return AuthRequestResponse{
		ID:                       req.ID.String(),
		Email:                    req.Email,
		RequestDeviceIdentifier:  req.RequestDeviceIdentifier,
		PublicKey:                req.PublicKey,
		Status:                   string(req.Status),
		Key:                      formatOptional(req.Key),
		MasterPasswordHash:       formatOptional(req.MasterPasswordHash),
		ResponseDeviceIdentifier: req.ResponseDeviceIdentifier,
		ResponseDate:             req.ResponseAt,
		CreationDate:             req.CreatedAt,
		ExpirationDate:           req.ExpiresAt,
	}
}

// ToDomain converts an API response back to a domain auth request.
func (r *AuthRequestResponse) ToDomain() (*authRequestDomain.AuthRequest, error) {
	id, err := uuid.Parse(r.ID)
	if err != nil {
		return nil, apperrors.Wrap(authRequestDomain.ErrInvalidRequest, "invalid auth request id")
	}

	req := &authRequestDomain.AuthRequest{
		ID:                       id,
		Email:                    r.Email,
		RequestDeviceIdentifier:  r.RequestDeviceIdentifier,
		PublicKey:                r.PublicKey,
		Status:                   authRequestDomain.Status(r.Status),
		ResponseDeviceIdentifier: r.ResponseDeviceIdentifier,
		ResponseAt:               r.ResponseDate,
		CreatedAt:                r.CreationDate,
		ExpiresAt:                r.ExpirationDate,
	}
	if req.Key, err = parseOptional(r.Key); err != nil {
		return nil, err
	}
	if req.MasterPasswordHash, err = parseOptional(r.MasterPasswordHash); err != nil {
		return nil, err
	}
	return req, nil
}

// ListAuthRequestsResponse represents a list of auth requests in API responses.
type ListAuthRequestsResponse struct {
	Data []AuthRequestResponse `json:"data"`
}

// MapAuthRequestsToListResponse converts domain auth requests to a list API response.
func MapAuthRequestsToListResponse(reqs []*authRequestDomain.AuthRequest) ListAuthRequestsResponse {
	data := make([]AuthRequestResponse, 0, len(reqs))
	for _, req := range reqs {
		data = append(data, MapAuthRequestToResponse(req))
	}
	return ListAuthRequestsResponse{Data: data}
}
