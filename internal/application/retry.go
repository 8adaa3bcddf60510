package application

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	maxWriteAttempts = 3
	writeRetryDelay  = 500 * time.Millisecond
)

// isTransientWriteError reports whether a storage write failed on
// contention that is worth retrying. Network fetch errors never come
// through here; those are reported immediately.
func isTransientWriteError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "locked") ||
		strings.Contains(msg, "write conflict") ||
		strings.Contains(msg, "connection reset")
}

// retryWrite runs a bookkeeping write with a bounded retry on transient
// contention: three attempts with a linearly increasing delay. Exhausted
// retries surface the last error as a hard failure.
func retryWrite(ctx context.Context, logger zerolog.Logger, op string, fn func(context.Context) error) error {
	var err error
	for attempt := 1; attempt <= maxWriteAttempts; attempt++ {
		err = fn(ctx)
		if err == nil {
			return nil
		}
		if !isTransientWriteError(err) || attempt == maxWriteAttempts {
			return err
		}
		logger.Warn().Err(err).
			Str("op", op).
			Int("attempt", attempt).
			Msg("Transient storage contention, retrying write")
		select {
		case <-time.After(time.Duration(attempt) * writeRetryDelay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}
