package testutil

import (
	"context"

	"github.com/reelkit/reelkit/internal/domain/ledger"
	ierr "github.com/reelkit/reelkit/internal/errors"
)

// InMemoryLedgerStore implements ledger.Repository
type InMemoryLedgerStore struct {
	*InMemoryStore[*ledger.Entry]
}

func NewInMemoryLedgerStore() *InMemoryLedgerStore {
	return &InMemoryLedgerStore{
		InMemoryStore: NewInMemoryStore[*ledger.Entry](),
	}
}

func copyLedgerEntry(e *ledger.Entry) *ledger.Entry {
	if e == nil {
		return nil
	}
	copied := *e
	return &copied
}

func (s *InMemoryLedgerStore) Create(ctx context.Context, entry *ledger.Entry) error {
	if entry == nil {
		return ierr.NewError("ledger entry cannot be nil").
			Mark(ierr.ErrValidation)
	}
	if err := entry.Validate(); err != nil {
		return err
	}

	// Same secondary defense the schema's partial unique index provides.
	if entry.Source.IsGrant() && entry.EventID != nil {
		exists, err := s.ExistsGrantForEvent(ctx, *entry.EventID)
		if err != nil {
			return err
		}
		if exists {
			return ierr.NewErrorf("grant already exists for event %s", *entry.EventID).
				Mark(ierr.ErrAlreadyExists)
		}
	}

	return s.InMemoryStore.Create(ctx, entry.ID, copyLedgerEntry(entry))
}

func (s *InMemoryLedgerStore) Balance(ctx context.Context, accountID string) (int64, error) {
	entries := s.InMemoryStore.List(ctx, func(e *ledger.Entry) bool {
		return e.AccountID == accountID
	}, nil)

	var sum int64
	for _, e := range entries {
		sum += e.Amount
	}
	return sum, nil
}

func (s *InMemoryLedgerStore) ExistsGrantForEvent(ctx context.Context, eventID string) (bool, error) {
	entries := s.InMemoryStore.List(ctx, func(e *ledger.Entry) bool {
		return e.Source.IsGrant() && e.EventID != nil && *e.EventID == eventID
	}, nil)
	return len(entries) > 0, nil
}

func (s *InMemoryLedgerStore) ListByAccount(ctx context.Context, accountID string, limit int) ([]*ledger.Entry, error) {
	entries := s.InMemoryStore.List(ctx, func(e *ledger.Entry) bool {
		return e.AccountID == accountID
	}, func(a, b *ledger.Entry) bool {
		return a.CreatedAt.After(b.CreatedAt)
	})

	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}

	result := make([]*ledger.Entry, 0, len(entries))
	for _, e := range entries {
		result = append(result, copyLedgerEntry(e))
	}
	return result, nil
}
