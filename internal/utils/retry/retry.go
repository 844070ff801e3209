// Package retry wraps fallible operations with bounded exponential-backoff
// retry. Only errors classified as transient (apperrors.ErrTransient) are
// retried; everything else propagates on first occurrence.
package retry

import (
	"context"
	"time"

	"github.com/clearvest/payout_engine/internal/apperrors"
	"github.com/sethvargo/go-retry"
)

// Policy parameterizes a retry strategy.
type Policy struct {
	MaxAttempts  int           // total attempts, including the first
	InitialDelay time.Duration // delay before the second attempt
	MaxDelay     time.Duration // cap on the backoff delay; 0 means uncapped
	Multiplier   float64       // backoff growth factor; defaults to 2
}

// BankFetchPolicy is the policy applied to bank transaction fetches.
var BankFetchPolicy = Policy{
	MaxAttempts:  3,
	InitialDelay: time.Second,
	MaxDelay:     10 * time.Second,
	Multiplier:   2,
}

// Result reports what a retried operation actually did, for observability.
type Result struct {
	Attempts int
	LastErr  error
}

// backoff builds the exponential backoff described by the policy.
func (p Policy) backoff() retry.Backoff {
	next := p.InitialDelay
	multiplier := p.Multiplier
	if multiplier < 1 {
		multiplier = 2
	}
	b := retry.BackoffFunc(func() (time.Duration, bool) {
		delay := next
		if p.MaxDelay > 0 && delay > p.MaxDelay {
			delay = p.MaxDelay
		}
		next = time.Duration(float64(next) * multiplier)
		return delay, false
	})
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	return retry.WithMaxRetries(uint64(attempts-1), b)
}

// Do runs op under the policy. Transient errors are retried with backoff up to
// MaxAttempts; non-transient errors fail immediately. The Result is valid on
// both success and failure.
func Do(ctx context.Context, p Policy, op func(ctx context.Context) error) (Result, error) {
	var res Result
	err := retry.Do(ctx, p.backoff(), func(ctx context.Context) error {
		res.Attempts++
		err := op(ctx)
		if err == nil {
			res.LastErr = nil
			return nil
		}
		res.LastErr = err
		if apperrors.IsTransient(err) {
			return retry.RetryableError(err)
		}
		return err
	})
	return res, err
}
