package testutil

import (
	"context"

	"github.com/reelkit/reelkit/internal/domain/webhooklog"
	ierr "github.com/reelkit/reelkit/internal/errors"
	"github.com/reelkit/reelkit/internal/types"
)

// InMemoryWebhookLogStore implements webhooklog.Repository
type InMemoryWebhookLogStore struct {
	*InMemoryStore[*webhooklog.Log]
}

func NewInMemoryWebhookLogStore() *InMemoryWebhookLogStore {
	return &InMemoryWebhookLogStore{
		InMemoryStore: NewInMemoryStore[*webhooklog.Log](),
	}
}

func (s *InMemoryWebhookLogStore) Create(ctx context.Context, log *webhooklog.Log) error {
	if log == nil {
		return ierr.NewError("webhook log cannot be nil").
			Mark(ierr.ErrValidation)
	}
	copied := *log
	return s.InMemoryStore.Create(ctx, log.ID, &copied)
}

func (s *InMemoryWebhookLogStore) ListRecent(ctx context.Context, limit int) ([]*webhooklog.Log, error) {
	logs := s.InMemoryStore.List(ctx, nil, func(a, b *webhooklog.Log) bool {
		return a.CreatedAt.After(b.CreatedAt)
	})

	if limit > 0 && len(logs) > limit {
		logs = logs[:limit]
	}
	return logs, nil
}

// ListByDirection is a test helper for asserting on audit trail contents.
func (s *InMemoryWebhookLogStore) ListByDirection(direction types.WebhookDirection) []*webhooklog.Log {
	return s.InMemoryStore.List(context.Background(), func(l *webhooklog.Log) bool {
		return l.Direction == direction
	}, func(a, b *webhooklog.Log) bool {
		return a.CreatedAt.Before(b.CreatedAt)
	})
}
