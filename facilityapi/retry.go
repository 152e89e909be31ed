package facilityapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// There is no cap on the delay between attempts other than the number of attempts.
const maxRetryInterval = time.Hour * 24

var errConditionNotMet = errors.New("condition not met")

// Retry calls op until it succeeds, at most maxRetries+1 times in all. The delay before retry
// number n (counting from 0) is baseDelay * 2^n. If every attempt fails, the error from the last
// attempt is returned. Cancelling ctx stops the retries and returns the context's error.
func Retry[T any](ctx context.Context, op func() (T, error), maxRetries int, baseDelay time.Duration) (T, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = baseDelay
	b.RandomizationFactor = 0
	b.Multiplier = 2
	b.MaxInterval = maxRetryInterval
	b.MaxElapsedTime = 0
	if maxRetries < 0 {
		maxRetries = 0
	}

	attempt := 0
	notify := func(err error, delay time.Duration) {
		attempt++
		slog.InfoContext(ctx, "retrying call", "attempt", attempt, "delay", delay, "err", err)
	}
	return backoff.RetryNotifyWithData[T](
		op,
		backoff.WithContext(backoff.WithMaxRetries(b, uint64(maxRetries)), ctx),
		notify,
	)
}

// AwaitCondition polls cond every interval until it returns true. It returns an error if that
// does not happen within timeout.
func AwaitCondition(ctx context.Context, cond func() bool, timeout, interval time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	err := backoff.Retry(
		func() error {
			if cond() {
				return nil
			}
			return errConditionNotMet
		},
		backoff.WithContext(backoff.NewConstantBackOff(interval), ctx),
	)
	if err != nil {
		return fmt.Errorf("condition not met within %s: %w", timeout, err)
	}
	return nil
}
