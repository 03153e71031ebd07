// Package retry provides an explicit retry combinator for transient failures.
package retry

import (
	"context"
	"time"
)

// Do runs op up to maxAttempts times, sleeping backoff between attempts.
// It returns the first nil error, or the last error once attempts are
// exhausted. Context cancellation cuts the wait short and returns ctx.Err().
func Do(ctx context.Context, maxAttempts int, backoff time.Duration, op func(ctx context.Context) error) error {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var err error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}
		if err = op(ctx); err == nil {
			return nil
		}
	}
	return err
}
