package wallet

import (
	"context"
	"time"
)

// defaultAttempts is the number of tries before a queued operation's last
// error is surfaced.
const defaultAttempts = 3

// defaultBaseDelay is the base delay for exponential backoff between tries.
const defaultBaseDelay = 1 * time.Second

// RetryQueue runs an operation with bounded attempts and exponential backoff.
// Construct one per funding call; queues are not reused across calls.
type RetryQueue struct {
	Attempts  int
	BaseDelay time.Duration
}

// NewRetryQueue creates a queue with the given bounds. Zero values select
// the defaults.
func NewRetryQueue(attempts int, baseDelay time.Duration) *RetryQueue {
	return &RetryQueue{Attempts: attempts, BaseDelay: baseDelay}
}

// Do runs fn until it succeeds or the attempt budget is spent. A nil result
// with a nil error is the no-result sentinel: the operation reported itself
// structurally unfulfillable and no further attempt is made. Backoff waits
// respect context cancellation.
func Do[T any](ctx context.Context, q *RetryQueue, fn func(context.Context) (*T, error)) (*T, error) {
	attempts := q.Attempts
	if attempts <= 0 {
		attempts = defaultAttempts
	}
	base := q.BaseDelay
	if base <= 0 {
		base = defaultBaseDelay
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if attempt < attempts-1 {
			delay := base * time.Duration(1<<uint(attempt))
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}
	return nil, lastErr
}
