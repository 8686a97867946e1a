package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	authRequestDomain "github.com/allisson/vaultkeys/internal/authrequest/domain"
	cryptoDomain "github.com/allisson/vaultkeys/internal/crypto/domain"
	"github.com/allisson/vaultkeys/internal/database"
	apperrors "github.com/allisson/vaultkeys/internal/errors"
)

// relayUseCase implements RelayUseCase.
type relayUseCase struct {
	txManager database.TxManager
	repo      AuthRequestRepository
	ttl       time.Duration
	now       func() time.Time
}

// Create validates input and stores a new pending request.
func (r *relayUseCase) Create(
	ctx context.Context,
	input *authRequestDomain.CreateAuthRequestInput,
) (*authRequestDomain.AuthRequest, error) {
	normalized := *input
	normalized.Email = cryptoDomain.NormalizeEmail(input.Email)
	input = &normalized
	if err := input.Validate(); err != nil {
		return nil, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to generate auth request id")
	}

	now := r.now()
	req := &authRequestDomain.AuthRequest{
		ID:                      id,
		Email:                   input.Email,
		RequestDeviceIdentifier: input.DeviceIdentifier,
		PublicKey:               input.PublicKey,
		AccessCodeHash:          authRequestDomain.HashAccessCode(input.AccessCode),
		Status:                  authRequestDomain.StatusPending,
		CreatedAt:               now,
		ExpiresAt:               now.Add(r.ttl),
	}
	if err := r.repo.Create(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

// Get returns the request, expiring it first when its time has passed.
func (r *relayUseCase) Get(
	ctx context.Context,
	id uuid.UUID,
	accessCode string,
) (*authRequestDomain.AuthRequest, error) {
	req, err := r.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Expire(r.now()) {
		err := r.repo.Update(ctx, req)
		if errors.Is(err, authRequestDomain.ErrInvalidTransition) {
			// Answered after we read it; the stored answer wins.
			req, err = r.repo.Get(ctx, id)
		}
		if err != nil {
			return nil, err
		}
	}

	if accessCode == "" {
		req.Key = nil
		req.MasterPasswordHash = nil
		return req, nil
	}
	if !req.MatchesAccessCode(accessCode) {
		return nil, authRequestDomain.ErrInvalidAccessCode
	}
	return req, nil
}

// ListPending returns the unexpired pending requests for email.
func (r *relayUseCase) ListPending(ctx context.Context, email string) ([]*authRequestDomain.AuthRequest, error) {
	email = cryptoDomain.NormalizeEmail(email)
	if email == "" {
		return nil, apperrors.Wrap(authRequestDomain.ErrInvalidRequest, "email is required")
	}
	return r.repo.ListPendingByEmail(ctx, email, r.now())
}

// Respond records an approval or denial.
func (r *relayUseCase) Respond(
	ctx context.Context,
	id uuid.UUID,
	resp *authRequestDomain.PasswordlessAuthRequest,
) (*authRequestDomain.AuthRequest, error) {
	if err := resp.Validate(); err != nil {
		return nil, err
	}

	var req *authRequestDomain.AuthRequest
	err := r.txManager.WithTx(ctx, func(ctx context.Context) error {
		var err error
		req, err = r.repo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := req.Respond(resp, r.now()); err != nil {
			return err
		}
		return r.repo.Update(ctx, req)
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}

// PurgeExpired deletes requests that expired more than olderThan ago.
func (r *relayUseCase) PurgeExpired(ctx context.Context, olderThan time.Duration) (int64, error) {
	if olderThan < 0 {
		return 0, apperrors.Wrap(apperrors.ErrInvalidInput, "olderThan must not be negative")
	}
	return r.repo.DeleteExpiredBefore(ctx, r.now().Add(-olderThan))
}

// NewRelayUseCase creates a new RelayUseCase. Requests expire ttl after creation.
func NewRelayUseCase(txManager database.TxManager, repo AuthRequestRepository, ttl time.Duration) RelayUseCase {
	return &relayUseCase{
		txManager: txManager,
		repo:      repo,
		ttl:       ttl,
		now:       func() time.Time { return time.Now().UTC() },
	}
}
