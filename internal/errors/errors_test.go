package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type customError struct {
	Msg string
}

func (e customError) Error() string { return e.Msg }

func TestNew(t *testing.T) {
	err := New("test error")
	require.Error(t, err)
	assert.Equal(t, "test error", err.Error())
}

func TestWrap(t *testing.T) {
	baseErr := errors.New("base error")

	t.Run("wrap non-nil error", func(t *testing.T) {
		wrapped := Wrap(baseErr, "wrapped")
		require.Error(t, wrapped)
		assert.Equal(t, "wrapped: base error", wrapped.Error())
		assert.ErrorIs(t, wrapped, baseErr)
	})

	t.Run("wrap nil error", func(t *testing.T) {
		assert.NoError(t, Wrap(nil, "wrapped"))
	})
}

func TestWrapf(t *testing.T) {
	baseErr := errors.New("base error")

	t.Run("wrapf non-nil error", func(t *testing.T) {
		wrapped := Wrapf(baseErr, "record %d", 3)
		require.Error(t, wrapped)
		assert.Equal(t, "record 3: base error", wrapped.Error())
		assert.ErrorIs(t, wrapped, baseErr)
	})

	t.Run("wrapf nil error", func(t *testing.T) {
		assert.NoError(t, Wrapf(nil, "record %d", 3))
	})
}

func TestIs(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
		want   bool
	}{
		{name: "direct sentinel", err: ErrNotFound, target: ErrNotFound, want: true},
		{name: "wrapped sentinel", err: Wrap(ErrIntegrity, "mac mismatch"), target: ErrIntegrity, want: true},
		{name: "different sentinel", err: ErrConflict, target: ErrNotFound, want: false},
		{name: "unsupported chain", err: Wrap(Wrap(ErrUnsupported, "v9"), "migrate"), target: ErrUnsupported, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Is(tt.err, tt.target))
		})
	}
}

func TestAs(t *testing.T) {
	err := Wrap(customError{Msg: "custom"}, "outer")

	var target customError
	require.True(t, As(err, &target))
	assert.Equal(t, "custom", target.Msg)

	var other *customError
	assert.False(t, As(ErrNotFound, &other))
}

func TestKind(t *testing.T) {
	assert.Equal(t, "", Kind(nil))
	assert.Equal(t, "internal", Kind(errors.New("disk full")))
	assert.Equal(t, "not_found", Kind(Wrap(ErrNotFound, "account keys not found")))
	assert.Equal(t, "unauthorized", Kind(Wrap(Wrap(ErrUnauthorized, "wrong key"), "unlock")))
	assert.Equal(t, "integrity", Kind(ErrIntegrity))
	assert.Equal(t, "unsupported", Kind(Wrapf(ErrUnsupported, "cipher version %d", 9)))
	assert.Equal(t, "forbidden", Kind(ErrForbidden))
	assert.Equal(t, "invalid_input", Kind(ErrInvalidInput))
	assert.Equal(t, "conflict", Kind(errors.Join(errors.New("tx"), ErrConflict)))
	assert.Equal(t, "rate_limited", Kind(Wrap(ErrRateLimited, "relay rate limit exceeded")))
}
