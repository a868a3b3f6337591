package testutil

import (
	"context"

	"github.com/reelkit/reelkit/internal/domain/idempotency"
	ierr "github.com/reelkit/reelkit/internal/errors"
)

// InMemoryIdempotencyStore implements idempotency.Repository
type InMemoryIdempotencyStore struct {
	*InMemoryStore[*idempotency.KeyRecord]
}

func NewInMemoryIdempotencyStore() *InMemoryIdempotencyStore {
	return &InMemoryIdempotencyStore{
		InMemoryStore: NewInMemoryStore[*idempotency.KeyRecord](),
	}
}

func idempotencyStoreKey(scope, key string) string {
	return scope + "/" + key
}

func (s *InMemoryIdempotencyStore) Get(ctx context.Context, scope, key string) (*idempotency.KeyRecord, error) {
	record, err := s.InMemoryStore.Get(ctx, idempotencyStoreKey(scope, key))
	if err != nil {
		if ierr.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	copied := *record
	return &copied, nil
}

func (s *InMemoryIdempotencyStore) Create(ctx context.Context, record *idempotency.KeyRecord) error {
	if record == nil {
		return ierr.NewError("idempotency record cannot be nil").
			Mark(ierr.ErrValidation)
	}
	if err := record.Validate(); err != nil {
		return err
	}

	copied := *record
	if err := s.InMemoryStore.Create(ctx, idempotencyStoreKey(record.Scope, record.Key), &copied); err != nil {
		if ierr.IsAlreadyExists(err) {
			return ierr.WithError(err).
				WithHint("This idempotency key is already recorded").
				Mark(ierr.ErrAlreadyExists)
		}
		return err
	}
	return nil
}
