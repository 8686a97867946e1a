// Package errors holds the sentinels every domain error wraps. The relay maps
// them to HTTP statuses and the CLI to exit codes.
package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates a conflict with existing data or state.
	ErrConflict = errors.New("conflict")

	// ErrInvalidInput indicates the input data is invalid or fails validation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized indicates the caller does not hold the key or credential required.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates the operation is not permitted in the current state.
	ErrForbidden = errors.New("forbidden")

	// ErrIntegrity indicates stored or transmitted data failed an integrity check.
	ErrIntegrity = errors.New("integrity check failed")

	// ErrUnsupported indicates data produced by a newer or unknown format revision.
	ErrUnsupported = errors.New("unsupported")

	// ErrRateLimited indicates the caller should retry later.
	ErrRateLimited = errors.New("rate limited")
)

// New creates a new error with the given message.
func New(message string) error {
	return errors.New(message)
}

// Wrap wraps an error with additional context while preserving the error chain.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf is Wrap with a formatted message.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's tree matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's tree that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}

var kinds = []struct {
	target error
	name   string
}{
	{ErrNotFound, "not_found"},
	{ErrConflict, "conflict"},
	{ErrInvalidInput, "invalid_input"},
	{ErrIntegrity, "integrity"},
	{ErrUnsupported, "unsupported"},
	{ErrUnauthorized, "unauthorized"},
	{ErrForbidden, "forbidden"},
	{ErrRateLimited, "rate_limited"},
}

// Kind names the first sentinel found in err's tree, "internal" when there
// is none and "" for a nil err.
func Kind(err error) string {
	if err == nil {
		return ""
	}
	for _, k := range kinds {
		if errors.Is(err, k.target) {
			return k.name
		}
	}
	return "internal"
}
