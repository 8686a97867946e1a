// Package client talks to an auth request relay server over HTTP.
package client

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	authRequestDomain "github.com/allisson/vaultkeys/internal/authrequest/domain"
	"github.com/allisson/vaultkeys/internal/authrequest/http/dto"
	apperrors "github.com/allisson/vaultkeys/internal/errors"
)

const basePath = "/v1/auth-requests"

// Config holds the relay client settings.
type Config struct {
	BaseURL string
	Timeout time.Duration
	// ResponderToken is sent as a bearer token when the relay guards its
	// list and respond endpoints.
	ResponderToken string
}

// RelayClient implements the auth request relay protocol with resty.
type RelayClient struct {
	client *resty.Client
}

// NewRelayClient creates a new RelayClient.
func NewRelayClient(cfg Config) *RelayClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:8080"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}

	cli := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json")
	if cfg.ResponderToken != "" {
		cli.SetAuthToken(cfg.ResponderToken)
	}

	return &RelayClient{client: cli}
}

// Create submits a new auth request.
func (r *RelayClient) Create(
	ctx context.Context,
	input *authRequestDomain.CreateAuthRequestInput,
) (*authRequestDomain.AuthRequest, error) {
	var out dto.AuthRequestResponse
	resp, err := r.client.R().
		SetContext(ctx).
		SetBody(dto.CreateAuthRequestRequest{
			Email:            input.Email,
			DeviceIdentifier: input.DeviceIdentifier,
			PublicKey:        input.PublicKey,
			AccessCode:       input.AccessCode,
		}).
		SetResult(&out).
		Post(basePath)
	if err != nil {
		return nil, apperrors.Wrap(err, "create auth request")
	}
	if err := mapHTTPError(resp); err != nil {
		return nil, err
	}
	return out.ToDomain()
}

// Get fetches an auth request. accessCode may be empty.
func (r *RelayClient) Get(
	ctx context.Context,
	id uuid.UUID,
	accessCode string,
) (*authRequestDomain.AuthRequest, error) {
	var out dto.AuthRequestResponse
	req := r.client.R().
		SetContext(ctx).
		SetPathParam("id", id.String()).
		SetResult(&out)
	if accessCode != "" {
		req.SetHeader(dto.AccessCodeHeader, accessCode)
	}

	resp, err := req.Get(basePath + "/{id}")
	if err != nil {
		return nil, apperrors.Wrap(err, "get auth request")
	}
	if err := mapHTTPError(resp); err != nil {
		return nil, err
	}
	return out.ToDomain()
}

// ListPending lists the pending requests of an account.
func (r *RelayClient) ListPending(ctx context.Context, email string) ([]*authRequestDomain.AuthRequest, error) {
	var out dto.ListAuthRequestsResponse
	resp, err := r.client.R().
		SetContext(ctx).
		SetQueryParam("email", email).
		SetResult(&out).
		Get(basePath)
	if err != nil {
		return nil, apperrors.Wrap(err, "list auth requests")
	}
	if err := mapHTTPError(resp); err != nil {
		return nil, err
	}

	reqs := make([]*authRequestDomain.AuthRequest, 0, len(out.Data))
	for i := range out.Data {
		req, err := out.Data[i].ToDomain()
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, req)
	}
	return reqs, nil
}

// Respond submits an approval or denial.
func (r *RelayClient) Respond(
	ctx context.Context,
	id uuid.UUID,
	answer *authRequestDomain.PasswordlessAuthRequest,
) (*authRequestDomain.AuthRequest, error) {
	var out dto.AuthRequestResponse
	resp, err := r.client.R().
		SetContext(ctx).
		SetPathParam("id", id.String()).
		SetBody(dto.MapPasswordlessToRequest(answer)).
		SetResult(&out).
		Put(basePath + "/{id}")
	if err != nil {
		return nil, apperrors.Wrap(err, "respond to auth request")
	}
	if err := mapHTTPError(resp); err != nil {
		return nil, err
	}
	return out.ToDomain()
}

// mapHTTPError turns a relay error status back into the domain error the
// server mapped from.
func mapHTTPError(resp *resty.Response) error {
	if resp.IsSuccess() {
		return nil
	}

	body := strings.TrimSpace(string(resp.Body()))

	switch resp.StatusCode() {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return apperrors.Wrap(authRequestDomain.ErrInvalidRequest, body)
	case http.StatusUnauthorized:
		return apperrors.Wrap(authRequestDomain.ErrInvalidAccessCode, body)
	case http.StatusNotFound:
		return apperrors.Wrap(authRequestDomain.ErrAuthRequestNotFound, body)
	case http.StatusConflict:
		if strings.Contains(body, "expired") {
			return apperrors.Wrap(authRequestDomain.ErrAuthRequestExpired, body)
		}
		return apperrors.Wrap(authRequestDomain.ErrInvalidTransition, body)
	case http.StatusTooManyRequests:
		return apperrors.Wrapf(
			apperrors.ErrRateLimited,
			"relay rate limit exceeded, retry after %ss",
			resp.Header().Get("Retry-After"),
		)
	case http.StatusForbidden:
		return apperrors.Wrap(apperrors.ErrForbidden, body)
	default:
		if body == "" {
			body = http.StatusText(resp.StatusCode())
		}
		return apperrors.Wrapf(apperrors.New(body), "relay returned %d", resp.StatusCode())
	}
}
