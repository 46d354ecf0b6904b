package collector

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog"
)

// RetryFetcher retries transient failures of the wrapped Fetcher with
// exponential backoff. Client errors and empty answers are not retried.
type RetryFetcher struct {
	Next            Fetcher
	MaxTries        uint
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Log             zerolog.Logger
}

// NewRetryFetcher wraps next with the default policy.
func NewRetryFetcher(next Fetcher, maxTries uint, log zerolog.Logger) *RetryFetcher {
	if maxTries == 0 {
		maxTries = 3
	}
	return &RetryFetcher{
		Next:            next,
		MaxTries:        maxTries,
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     5 * time.Second,
		Log:             log,
	}
}

func (f *RetryFetcher) Name() string { return f.Next.Name() }

func (f *RetryFetcher) FetchCurrentPrice(ctx context.Context, symbol string) (float64, error) {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = f.InitialInterval
	policy.MaxInterval = f.MaxInterval

	operation := func() (float64, error) {
		price, err := f.Next.FetchCurrentPrice(ctx, symbol)
		if err != nil && !retryable(err) {
			return 0, backoff.Permanent(err)
		}
		return price, err
	}
	notify := func(err error, d time.Duration) {
		f.Log.Warn().Err(err).Str("symbol", symbol).Dur("retry_in", d).Msg("price fetch failed, retrying")
	}

	return backoff.Retry(ctx, operation,
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(f.MaxTries),
		backoff.WithNotify(notify))
}

func retryable(err error) bool {
	if errors.Is(err, ErrNoPrice) || errors.Is(err, context.Canceled) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Temporary()
	}
	return true
}
