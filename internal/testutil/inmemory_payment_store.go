package testutil

import (
	"context"
	"sync"

	"github.com/reelkit/reelkit/internal/domain/payment"
	ierr "github.com/reelkit/reelkit/internal/errors"
	"github.com/reelkit/reelkit/internal/types"
)

// InMemoryPaymentStore implements payment.Repository
type InMemoryPaymentStore struct {
	*InMemoryStore[*payment.Payment]

	mu       sync.Mutex
	byEvents map[string]string
}

func NewInMemoryPaymentStore() *InMemoryPaymentStore {
	return &InMemoryPaymentStore{
		InMemoryStore: NewInMemoryStore[*payment.Payment](),
		byEvents:      make(map[string]string),
	}
}

func copyPayment(p *payment.Payment) *payment.Payment {
	if p == nil {
		return nil
	}
	copied := *p
	return &copied
}

func (s *InMemoryPaymentStore) Create(ctx context.Context, p *payment.Payment) error {
	if p == nil {
		return ierr.NewError("payment cannot be nil").
			Mark(ierr.ErrValidation)
	}
	if err := p.Validate(); err != nil {
		return err
	}

	// provider_event_id uniqueness, same as the table constraint.
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byEvents[p.ProviderEventID]; exists {
		return ierr.NewErrorf("payment already exists for event %s", p.ProviderEventID).
			Mark(ierr.ErrAlreadyExists)
	}

	if err := s.InMemoryStore.Create(ctx, p.ID, copyPayment(p)); err != nil {
		return err
	}
	s.byEvents[p.ProviderEventID] = p.ID
	return nil
}

func (s *InMemoryPaymentStore) GetByProviderEventID(ctx context.Context, eventID string) (*payment.Payment, error) {
	payments := s.InMemoryStore.List(ctx, func(p *payment.Payment) bool {
		return p.ProviderEventID == eventID
	}, nil)

	if len(payments) == 0 {
		return nil, nil
	}
	return copyPayment(payments[0]), nil
}

func (s *InMemoryPaymentStore) GetLatestPurchaseByAccount(ctx context.Context, accountID string) (*payment.Payment, error) {
	payments := s.InMemoryStore.List(ctx, func(p *payment.Payment) bool {
		return p.AccountID != nil && *p.AccountID == accountID &&
			p.Kind == types.PaymentKindOneOff && p.Status == types.PaymentStatusPaid
	}, func(a, b *payment.Payment) bool {
		return a.CreatedAt.After(b.CreatedAt)
	})

	if len(payments) == 0 {
		return nil, nil
	}
	return copyPayment(payments[0]), nil
}

func (s *InMemoryPaymentStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.InMemoryStore.Clear()
	s.byEvents = make(map[string]string)
}
