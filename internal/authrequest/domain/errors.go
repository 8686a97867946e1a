// Package domain defines the auth request model used to log in on a new device
// with keys shared by an already unlocked one.
package domain

import (
	"github.com/allisson/vaultkeys/internal/errors"
)

// Auth request error definitions.
var (
	// ErrInvalidRequest indicates an auth request or response that is missing
	// required fields. It is returned before any cryptographic work.
	ErrInvalidRequest = errors.Wrap(errors.ErrInvalidInput, "invalid auth request")

	// ErrAuthRequestNotFound indicates no auth request exists with the given id.
	ErrAuthRequestNotFound = errors.Wrap(errors.ErrNotFound, "auth request not found")

	// ErrInvalidTransition indicates a response to a request that is no longer pending.
	ErrInvalidTransition = errors.Wrap(errors.ErrConflict, "auth request is not pending")

	// ErrAuthRequestExpired indicates a response to a request past its expiry.
	ErrAuthRequestExpired = errors.Wrap(errors.ErrConflict, "auth request expired")

	// ErrAuthRequestDenied indicates the approving device denied the request.
	ErrAuthRequestDenied = errors.Wrap(errors.ErrForbidden, "auth request denied")

	// ErrAuthRequestPending indicates the request has not been answered yet.
	ErrAuthRequestPending = errors.Wrap(errors.ErrConflict, "auth request still pending")

	// ErrInvalidAccessCode indicates the access code does not match the request.
	ErrInvalidAccessCode = errors.Wrap(errors.ErrUnauthorized, "invalid access code")

	// ErrAlreadyConsumed indicates a pending login whose private key was already used.
	ErrAlreadyConsumed = errors.Wrap(errors.ErrConflict, "pending login already consumed")
)
