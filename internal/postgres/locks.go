package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/reelkit/reelkit/internal/types"
)

// pgLockNotAvailable is raised when lock_timeout expires while waiting.
const pgLockNotAvailable = "55P03"

// LockWithWait takes a transaction-scoped advisory lock, waiting up to the
// request timeout. The lock is released automatically on commit or rollback.
// A zero or negative timeout fails fast instead of waiting. Must be called
// inside WithTx.
func (c *Client) LockWithWait(ctx context.Context, req types.LockRequest) error {
	tx := c.TxFromContext(ctx)
	if tx == nil {
		return fmt.Errorf("LockWithWait must be called inside a transaction")
	}

	timeout := req.GetTimeout()
	if timeout <= 0 {
		ok, err := c.tryLock(ctx, req.Key)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("lock %q already held", req.Key)
		}
		return nil
	}

	// SET LOCAL scopes the timeout to this transaction.
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("SET LOCAL lock_timeout = %d", timeout.Milliseconds())); err != nil {
		return fmt.Errorf("failed to set lock timeout: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "SELECT pg_advisory_xact_lock(hashtext($1))", req.Key); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pgLockNotAvailable {
			return fmt.Errorf("failed to acquire lock %q within %v: %w", req.Key, timeout, err)
		}
		return fmt.Errorf("failed to acquire lock %q: %w", req.Key, err)
	}
	return nil
}

func (c *Client) tryLock(ctx context.Context, key string) (bool, error) {
	tx := c.TxFromContext(ctx)

	var ok bool
	row := tx.QueryRowContext(ctx, "SELECT pg_try_advisory_xact_lock(hashtext($1))", key)
	if err := row.Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}
