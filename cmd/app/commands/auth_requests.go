package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	authRequestDomain "github.com/allisson/vaultkeys/internal/authrequest/domain"
	authRequestUseCase "github.com/allisson/vaultkeys/internal/authrequest/usecase"
	cryptoDomain "github.com/allisson/vaultkeys/internal/crypto/domain"
	cryptoUseCase "github.com/allisson/vaultkeys/internal/crypto/usecase"
)

// RunCleanAuthRequests deletes auth requests that expired more than olderThan ago.
func RunCleanAuthRequests(
	ctx context.Context,
	relay authRequestUseCase.RelayUseCase,
	logger *slog.Logger,
	w io.Writer,
	olderThan time.Duration,
	format string,
) error {
	logger.Info("cleaning expired auth requests", slog.Duration("older_than", olderThan))

	count, err := relay.PurgeExpired(ctx, olderThan)
	if err != nil {
		return fmt.Errorf("failed to clean auth requests: %w", err)
	}

	logger.Info("auth requests cleaned", slog.Int64("deleted", count))

	if format == "json" {
		return writeJSON(w, map[string]any{
			"deleted":    count,
			"older_than": olderThan.String(),
		})
	}
	fmt.Fprintf(w, "Deleted %d expired auth request(s)\n", count)
	return nil
}

// RunListAuthRequests prints the pending auth requests of email held by the relay.
func RunListAuthRequests(
	ctx context.Context,
	relayClient authRequestUseCase.RelayClient,
	w io.Writer,
	email string,
	format string,
) error {
	requests, err := relayClient.ListPending(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to list auth requests: %w", err)
	}

	if format == "json" {
		items := make([]map[string]any, 0, len(requests))
		for _, req := range requests {
			items = append(items, map[string]any{
				"id":                req.ID.String(),
				"device_identifier": req.RequestDeviceIdentifier,
				"created_at":        req.CreatedAt,
				"expires_at":        req.ExpiresAt,
			})
		}
		return writeJSON(w, items)
	}
	if len(requests) == 0 {
		fmt.Fprintln(w, "No pending auth requests")
		return nil
	}
	for _, req := range requests {
		fmt.Fprintf(w, "%s  %s  expires %s\n",
			req.ID, req.RequestDeviceIdentifier, req.ExpiresAt.Format(time.RFC3339))
	}
	return nil
}

// RunApproveAuthRequest unlocks the account and answers a pending auth request.
func RunApproveAuthRequest(
	ctx context.Context,
	keyHierarchy cryptoUseCase.KeyHierarchyUseCase,
	service authRequestUseCase.AuthRequestService,
	relayClient authRequestUseCase.RelayClient,
	logger *slog.Logger,
	r io.Reader,
	w io.Writer,
	userID, requestID uuid.UUID,
	approve bool,
	format string,
) error {
	request, err := relayClient.Get(ctx, requestID, "")
	if err != nil {
		return fmt.Errorf("failed to fetch auth request: %w", err)
	}
	if request.Status != authRequestDomain.StatusPending {
		return fmt.Errorf("auth request is %s: %w", request.Status, authRequestDomain.ErrInvalidTransition)
	}

	session, err := unlockSession(ctx, keyHierarchy, r, userID)
	if err != nil {
		return err
	}
	defer keyHierarchy.Lock(ctx, session)

	answered, err := service.ApproveOrDenyAuthRequest(ctx, session, approve, request)
	if err != nil {
		return fmt.Errorf("failed to answer auth request: %w", err)
	}

	logger.Info("auth request answered",
		slog.String("auth_request_id", answered.ID.String()),
		slog.String("status", string(answered.Status)),
	)

	if format == "json" {
		return writeJSON(w, map[string]any{
			"id":     answered.ID.String(),
			"status": answered.Status,
		})
	}
	fmt.Fprintf(w, "Auth request %s %s\n", answered.ID, answered.Status)
	return nil
}

// RunLoginWithDevice starts a login on this device and polls the relay until
// another device answers it or timeout passes. On approval the session is
// unlocked with the shared keys, then locked again before returning.
func RunLoginWithDevice(
	ctx context.Context,
	service authRequestUseCase.AuthRequestService,
	logger *slog.Logger,
	w io.Writer,
	userID uuid.UUID,
	email, deviceIdentifier string,
	pollInterval, timeout time.Duration,
) error {
	pending, err := service.CreateAuthRequest(ctx, email, deviceIdentifier)
	if err != nil {
		return fmt.Errorf("failed to create auth request: %w", err)
	}
	defer pending.Discard()

	fmt.Fprintf(w, "Auth request %s created, approve it from an unlocked device\n", pending.RequestID)

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	session := cryptoDomain.NewSession()
	defer session.Lock()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		err := service.CompleteLogin(ctx, session, userID, pending)
		switch {
		case err == nil:
			logger.Info("login approved",
				slog.String("auth_request_id", pending.RequestID.String()),
				slog.String("user_id", userID.String()),
			)
			fmt.Fprintln(w, "Login approved, vault unlocked")
			return nil
		case !errors.Is(err, authRequestDomain.ErrAuthRequestPending):
			return fmt.Errorf("login failed: %w", err)
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("login not approved in time: %w", ctx.Err())
		case <-ticker.C:
		}
	}
}
