package testutil

import (
	"context"

	"github.com/reelkit/reelkit/internal/domain/brief"
)

// InMemoryBriefStore implements brief.Repository
type InMemoryBriefStore struct {
	*InMemoryStore[*brief.Brief]
}

func NewInMemoryBriefStore() *InMemoryBriefStore {
	return &InMemoryBriefStore{
		InMemoryStore: NewInMemoryStore[*brief.Brief](),
	}
}

// AddBrief seeds a brief for a test.
func (s *InMemoryBriefStore) AddBrief(b *brief.Brief) error {
	copied := *b
	return s.InMemoryStore.Create(context.Background(), b.ID, &copied)
}

func (s *InMemoryBriefStore) GetLatestCompletedByAccount(ctx context.Context, accountID string) (*brief.Brief, error) {
	briefs := s.InMemoryStore.List(ctx, func(b *brief.Brief) bool {
		return b.AccountID == accountID && b.Completed
	}, func(a, b *brief.Brief) bool {
		return a.CreatedAt.After(b.CreatedAt)
	})

	if len(briefs) == 0 {
		return nil, nil
	}
	copied := *briefs[0]
	return &copied, nil
}
