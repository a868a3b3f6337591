package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/lib/pq"
)

// Postgres error codes that mark a transaction as safe to rerun: the failed
// attempt left no visible side effects.
const (
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
)

// IsRetryableTxError reports whether err is a transient transaction conflict.
func IsRetryableTxError(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == codeSerializationFailure ||
			string(pqErr.Code) == codeDeadlockDetected
	}
	return false
}

// WithTxRetry runs fn inside a transaction, retrying the whole transaction on
// serialization conflicts and deadlocks. Any other error is returned as-is on
// the first attempt. maxRetries bounds the reruns, not the total attempts.
func WithTxRetry(ctx context.Context, client IClient, maxRetries uint64, fn func(ctx context.Context) error) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 20 * time.Millisecond
	policy.MaxInterval = 250 * time.Millisecond

	return backoff.Retry(func() error {
		err := client.WithTx(ctx, fn)
		if err == nil {
			return nil
		}
		if IsRetryableTxError(err) {
			return err
		}
		return backoff.Permanent(err)
	}, backoff.WithContext(backoff.WithMaxRetries(policy, maxRetries), ctx))
}
