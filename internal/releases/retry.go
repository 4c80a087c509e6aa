package releases

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/fivetwenty-io/ghclient/internal/constants"
)

// Retry calls fn up to attempts times, waiting with doubling backoff between
// attempts. Only errors for which catch returns true are retried; a nil catch
// retries connection errors.
func Retry(ctx context.Context, attempts int, fn func(ctx context.Context) error, catch func(error) bool) error {
	return RetryWithBackoff(ctx, attempts, constants.DefaultRetryWaitMin, constants.DefaultRetryWaitMax, fn, catch)
}

// RetryWithBackoff is Retry with explicit wait bounds.
func RetryWithBackoff(ctx context.Context, attempts int, waitMin, waitMax time.Duration, fn func(ctx context.Context) error, catch func(error) bool) error {
	if attempts < 1 {
		attempts = 1
	}

	if catch == nil {
		catch = IsConnectionError
	}

	wait := waitMin

	var err error

	for attempt := 1; attempt <= attempts; attempt++ {
		err = fn(ctx)
		if err == nil || !catch(err) || attempt == attempts {
			break
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("retry aborted after %d attempt(s): %w", attempt, ctx.Err())
		case <-time.After(wait):
		}

		wait *= 2
		if wait > waitMax {
			wait = waitMax
		}
	}

	return err
}

// IsConnectionError reports whether err was caused by the network rather
// than by the server's answer.
func IsConnectionError(err error) bool {
	var netErr net.Error

	return errors.As(err, &netErr)
}
