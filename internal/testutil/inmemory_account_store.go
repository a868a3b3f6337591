package testutil

import (
	"context"
	"strings"
	"sync"

	"github.com/reelkit/reelkit/internal/domain/account"
	ierr "github.com/reelkit/reelkit/internal/errors"
)

// InMemoryAccountStore implements account.Repository
type InMemoryAccountStore struct {
	*InMemoryStore[*account.Account]

	mu                sync.Mutex
	providerCustomers map[string]string
}

func NewInMemoryAccountStore() *InMemoryAccountStore {
	return &InMemoryAccountStore{
		InMemoryStore:     NewInMemoryStore[*account.Account](),
		providerCustomers: make(map[string]string),
	}
}

func copyAccount(a *account.Account) *account.Account {
	if a == nil {
		return nil
	}
	copied := *a
	return &copied
}

// AddAccount seeds an account for a test.
func (s *InMemoryAccountStore) AddAccount(a *account.Account) error {
	return s.InMemoryStore.Create(context.Background(), a.ID, copyAccount(a))
}

// MapProviderCustomer seeds the provider customer mapping.
func (s *InMemoryAccountStore) MapProviderCustomer(providerCustomerID, accountID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.providerCustomers[providerCustomerID] = accountID
}

func (s *InMemoryAccountStore) Get(ctx context.Context, id string) (*account.Account, error) {
	a, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.NewError("account not found").
			WithHint("No account exists with the given id").
			WithReportableDetails(map[string]interface{}{
				"account_id": id,
			}).
			Mark(ierr.ErrNotFound)
	}
	return copyAccount(a), nil
}

func (s *InMemoryAccountStore) GetByEmail(ctx context.Context, email string) (*account.Account, error) {
	accounts := s.InMemoryStore.List(ctx, func(a *account.Account) bool {
		return strings.EqualFold(a.Email, email)
	}, nil)

	if len(accounts) == 0 {
		return nil, nil
	}
	return copyAccount(accounts[0]), nil
}

func (s *InMemoryAccountStore) GetAccountIDByProviderCustomer(ctx context.Context, providerCustomerID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.providerCustomers[providerCustomerID], nil
}

func (s *InMemoryAccountStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.InMemoryStore.Clear()
	s.providerCustomers = make(map[string]string)
}
