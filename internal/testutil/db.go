package testutil

import (
	"context"
	"sync"

	"github.com/reelkit/reelkit/internal/postgres"
	"github.com/reelkit/reelkit/internal/types"
)

type txKey struct{}

// MockPostgresClient satisfies postgres.IClient for service tests. WithTx
// serializes all transactions through one mutex, which reproduces the
// serialization the real database provides via advisory locks well enough for
// balance race tests. There is no rollback: test flows fail before their
// first write or not at all.
type MockPostgresClient struct {
	txMu sync.Mutex
}

func NewMockPostgresClient() *MockPostgresClient {
	return &MockPostgresClient{}
}

func (c *MockPostgresClient) Querier(ctx context.Context) postgres.Querier {
	return nil
}

func (c *MockPostgresClient) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}

	c.txMu.Lock()
	defer c.txMu.Unlock()
	return fn(context.WithValue(ctx, txKey{}, struct{}{}))
}

func (c *MockPostgresClient) LockWithWait(ctx context.Context, req types.LockRequest) error {
	return nil
}

func (c *MockPostgresClient) Close() error {
	return nil
}
