package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	authRequestDomain "github.com/allisson/vaultkeys/internal/authrequest/domain"
	"github.com/allisson/vaultkeys/internal/authrequest/usecase/mocks"
)

type mockBusinessMetrics struct {
	mock.Mock
}

func (m *mockBusinessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {
	m.Called(ctx, domain, operation, status)
}

func (m *mockBusinessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
	m.Called(ctx, domain, operation, duration, status)
}

func expectMetrics(m *mockBusinessMetrics, ctx context.Context, operation, status string) {
	m.On("RecordOperation", ctx, "auth_request", operation, status).Return().Once()
	m.On("RecordDuration", ctx, "auth_request", operation, mock.AnythingOfType("time.Duration"), status).
		Return().
		Once()
}

func TestRelayMetricsDecorator(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()
	req := &authRequestDomain.AuthRequest{ID: id}

	t.Run("Create_Success", func(t *testing.T) {
		next := &mocks.MockRelayUseCase{}
		m := &mockBusinessMetrics{}
		input := &authRequestDomain.CreateAuthRequestInput{Email: testEmail}
		next.On("Create", ctx, input).Return(req, nil).Once()
		expectMetrics(m, ctx, "auth_request_create", "success")

		got, err := NewRelayUseCaseWithMetrics(next, m).Create(ctx, input)
		require.NoError(t, err)
		assert.Equal(t, req, got)
		next.AssertExpectations(t)
		m.AssertExpectations(t)
	})

	t.Run("Get_Error", func(t *testing.T) {
		next := &mocks.MockRelayUseCase{}
		m := &mockBusinessMetrics{}
		next.On("Get", ctx, id, "code").Return(nil, authRequestDomain.ErrInvalidAccessCode).Once()
		expectMetrics(m, ctx, "auth_request_get", "error")

		_, err := NewRelayUseCaseWithMetrics(next, m).Get(ctx, id, "code")
		assert.ErrorIs(t, err, authRequestDomain.ErrInvalidAccessCode)
		m.AssertExpectations(t)
	})

	t.Run("ListPending_Success", func(t *testing.T) {
		next := &mocks.MockRelayUseCase{}
		m := &mockBusinessMetrics{}
		next.On("ListPending", ctx, testEmail).Return([]*authRequestDomain.AuthRequest{req}, nil).Once()
		expectMetrics(m, ctx, "auth_request_list_pending", "success")

		got, err := NewRelayUseCaseWithMetrics(next, m).ListPending(ctx, testEmail)
		require.NoError(t, err)
		assert.Len(t, got, 1)
		m.AssertExpectations(t)
	})

	t.Run("Respond_Error", func(t *testing.T) {
		next := &mocks.MockRelayUseCase{}
		m := &mockBusinessMetrics{}
		resp := &authRequestDomain.PasswordlessAuthRequest{DeviceIdentifier: "approver"}
		next.On("Respond", ctx, id, resp).Return(nil, authRequestDomain.ErrInvalidTransition).Once()
		expectMetrics(m, ctx, "auth_request_respond", "error")

		_, err := NewRelayUseCaseWithMetrics(next, m).Respond(ctx, id, resp)
		assert.ErrorIs(t, err, authRequestDomain.ErrInvalidTransition)
		m.AssertExpectations(t)
	})

	t.Run("PurgeExpired", func(t *testing.T) {
		next := &mocks.MockRelayUseCase{}
		m := &mockBusinessMetrics{}
		next.On("PurgeExpired", ctx, time.Hour).Return(int64(0), errors.New("db down")).Once()
		expectMetrics(m, ctx, "auth_request_purge", "error")

		_, err := NewRelayUseCaseWithMetrics(next, m).PurgeExpired(ctx, time.Hour)
		assert.Error(t, err)
		m.AssertExpectations(t)
	})
}
