// Package dto provides data transfer objects for the auth request relay API.
//
// Field names follow the passwordless login payload used by the clients, so
// they are camelCase rather than snake_case.
package dto

import (
	validation "github.com/jellydator/validation"

	authRequestDomain "github.com/allisson/vaultkeys/internal/authrequest/domain"
	cryptoDomain "github.com/allisson/vaultkeys/internal/crypto/domain"
	customValidation "github.com/allisson/vaultkeys/internal/validation"
)

// AccessCodeHeader carries the access code on GET requests so it stays out
// of URLs and access logs.
const AccessCodeHeader = "X-Access-Code"

// CreateAuthRequestRequest is the body of POST /v1/auth-requests.
type CreateAuthRequestRequest struct {
	Email            string `json:"email"`
	DeviceIdentifier string `json:"deviceIdentifier"`
	PublicKey        string `json:"publicKey"`
	AccessCode       string `json:"accessCode"`
}

// Validate checks if the create request is valid.
func (r *CreateAuthRequestRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Email, validation.Required, customValidation.Email),
		validation.Field(&r.DeviceIdentifier, validation.Required, customValidation.NotBlank),
		validation.Field(&r.PublicKey,
			validation.Required,
			customValidation.Base64Bytes{Max: authRequestDomain.MaxPublicKeySize},
		),
		validation.Field(&r.AccessCode,
			validation.Required,
			validation.Length(authRequestDomain.AccessCodeLength, authRequestDomain.AccessCodeLength),
		),
	)
}

// ToInput converts the request to the domain input.
func (r *CreateAuthRequestRequest) ToInput() *authRequestDomain.CreateAuthRequestInput {
	return &authRequestDomain.CreateAuthRequestInput{
		Email:            r.Email,
		DeviceIdentifier: r.DeviceIdentifier,
		PublicKey:        r.PublicKey,
		AccessCode:       r.AccessCode,
	}
}

// UpdateAuthRequestRequest is the body of PUT /v1/auth-requests/:id.
type UpdateAuthRequestRequest struct {
	Key                string `json:"key,omitempty"`
	MasterPasswordHash string `json:"masterPasswordHash,omitempty"`
	DeviceIdentifier   string `json:"deviceIdentifier"`
	RequestApproved    bool   `json:"requestApproved"`
}

// Validate checks if the update request is valid. An approval must carry a key.
func (r *UpdateAuthRequestRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Key,
			validation.When(r.RequestApproved, validation.Required),
			cryptoDomain.EncStringRule,
		),
		validation.Field(&r.MasterPasswordHash, cryptoDomain.EncStringRule),
		validation.Field(&r.DeviceIdentifier, validation.Required, customValidation.NotBlank),
	)
}

// ToDomain converts the request to the domain response. Call Validate first.
func (r *UpdateAuthRequestRequest) ToDomain() (*authRequestDomain.PasswordlessAuthRequest, error) {
	resp := &authRequestDomain.PasswordlessAuthRequest{
		DeviceIdentifier: r.DeviceIdentifier,
		RequestApproved:  r.RequestApproved,
	}

	var err error
	if resp.Key, err = parseOptional(r.Key); err != nil {
		return nil, err
	}
	if resp.MasterPasswordHash, err = parseOptional(r.MasterPasswordHash); err != nil {
		return nil, err
	}
	return resp, nil
}

// MapPasswordlessToRequest converts a domain response to the wire body.
func MapPasswordlessToRequest(resp *authRequestDomain.PasswordlessAuthRequest) UpdateAuthRequestRequest {
	return UpdateAuthRequestRequest{
		Key:                formatOptional(resp.Key),
		MasterPasswordHash: formatOptional(resp.MasterPasswordHash),
		DeviceIdentifier:   resp.DeviceIdentifier,
		RequestApproved:    resp.RequestApproved,
	}
}

func parseOptional(s string) (*cryptoDomain.EncString, error) {
	if s == "" {
		return nil, nil
	}
	enc, err := cryptoDomain.ParseEncString(s)
	if err != nil {
		return nil, err
	}
	return &enc, nil
}

func formatOptional(enc *cryptoDomain.EncString) string {
	if enc == nil {
		return ""
	}
	return enc.String()
}
