package idempotency

import "context"

// Repository persists idempotency key records.
type Repository interface {
	// Get returns the record for (scope, key), or (nil, nil) when none exists.
	Get(ctx context.Context, scope, key string) (*KeyRecord, error)

	// Create inserts a record. A concurrent duplicate insert fails with
	// ErrAlreadyExists via the store's uniqueness constraint; callers map that
	// to "already being processed".
	Create(ctx context.Context, record *KeyRecord) error
}
