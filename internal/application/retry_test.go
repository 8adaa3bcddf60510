package application

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestIsTransientWriteError(t *testing.T) {
	assert.False(t, isTransientWriteError(nil))
	assert.True(t, isTransientWriteError(errors.New("database is locked")))
	assert.True(t, isTransientWriteError(errors.New("WriteConflict error: write conflict during plan execution")))
	assert.True(t, isTransientWriteError(errors.New("read tcp: connection reset by peer")))
	assert.False(t, isTransientWriteError(errors.New("document too large")))
}

func TestRetryWriteReturnsHardErrorImmediately(t *testing.T) {
	hard := errors.New("document too large")
	calls := 0

	err := retryWrite(context.Background(), zerolog.Nop(), "test", func(context.Context) error {
		calls++
		return hard
	})

	assert.ErrorIs(t, err, hard)
	assert.Equal(t, 1, calls, "non-transient errors are not retried")
}

func TestRetryWriteExhaustsAttempts(t *testing.T) {
	locked := errors.New("database is locked")
	calls := 0

	err := retryWrite(context.Background(), zerolog.Nop(), "test", func(context.Context) error {
		calls++
		return locked
	})

	assert.ErrorIs(t, err, locked)
	assert.Equal(t, maxWriteAttempts, calls)
}
