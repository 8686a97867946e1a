package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	authRequestDomain "github.com/allisson/vaultkeys/internal/authrequest/domain"
	"github.com/allisson/vaultkeys/internal/metrics"
)

// relayUseCaseWithMetrics decorates RelayUseCase with metrics instrumentation.
type relayUseCaseWithMetrics struct {
	next    RelayUseCase
	metrics metrics.BusinessMetrics
}

// NewRelayUseCaseWithMetrics wraps a RelayUseCase with metrics recording.
func NewRelayUseCaseWithMetrics(useCase RelayUseCase, m metrics.BusinessMetrics) RelayUseCase {
	return &relayUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (r *relayUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	metrics.Observe(ctx, r.metrics, metrics.DomainAuthRequest, operation, start, err)
}

// Create records metrics for auth request creation.
func (r *relayUseCaseWithMetrics) Create(
	ctx context.Context,
	input *authRequestDomain.CreateAuthRequestInput,
) (*authRequestDomain.AuthRequest, error) {
	start := time.Now()
	req, err := r.next.Create(ctx, input)
	r.record(ctx, "auth_request_create", start, err)
	return req, err
}

// Get records metrics for auth request retrieval.
func (r *relayUseCaseWithMetrics) Get(
	ctx context.Context,
	id uuid.UUID,
	accessCode string,
) (*authRequestDomain.AuthRequest, error) {
	start := time.Now()
	req, err := r.next.Get(ctx, id, accessCode)
	r.record(ctx, "auth_request_get", start, err)
	return req, err
}

// ListPending records metrics for pending request listing.
func (r *relayUseCaseWithMetrics) ListPending(
	ctx context.Context,
	email string,
) ([]*authRequestDomain.AuthRequest, error) {
	start := time.Now()
	reqs, err := r.next.ListPending(ctx, email)
	r.record(ctx, "auth_request_list_pending", start, err)
	return reqs, err
}

// Respond records metrics for approvals and denials.
func (r *relayUseCaseWithMetrics) Respond(
	ctx context.Context,
	id uuid.UUID,
	resp *authRequestDomain.PasswordlessAuthRequest,
) (*authRequestDomain.AuthRequest, error) {
	start := time.Now()
	req, err := r.next.Respond(ctx, id, resp)
	r.record(ctx, "auth_request_respond", start, err)
	return req, err
}

// PurgeExpired records metrics for expired request cleanup.
func (r *relayUseCaseWithMetrics) PurgeExpired(ctx context.Context, olderThan time.Duration) (int64, error) {
	start := time.Now()
	n, err := r.next.PurgeExpired(ctx, olderThan)
	r.record(ctx, "auth_request_purge", start, err)
	return n, err
}
