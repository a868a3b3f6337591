package videorequest

import (
	"context"

	"github.com/reelkit/reelkit/internal/types"
)

// Repository persists batches and video requests.
type Repository interface {
	// CreateBatch inserts a batch row.
	CreateBatch(ctx context.Context, batch *Batch) error

	// CreateRequests inserts all requests in one statement; all-or-nothing.
	CreateRequests(ctx context.Context, requests []*VideoRequest) error

	// GetBatch returns a batch by id.
	GetBatch(ctx context.Context, id string) (*Batch, error)

	// ListByBatch returns all requests in a batch, oldest first.
	ListByBatch(ctx context.Context, batchID string) ([]*VideoRequest, error)

	// ListByAccount returns an account's requests, newest first.
	ListByAccount(ctx context.Context, accountID string, limit int) ([]*VideoRequest, error)

	// UpdateStatus advances a request's status. Illegal transitions are
	// rejected with ErrInvalidOperation.
	UpdateStatus(ctx context.Context, id string, status types.VideoRequestStatus) error
}
