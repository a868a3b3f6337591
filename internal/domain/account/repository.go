package account

import "context"

// Repository reads accounts and the provider-customer mapping. This engine
// never creates accounts; identity provisioning happens upstream.
type Repository interface {
	// Get returns an account by id.
	Get(ctx context.Context, id string) (*Account, error)

	// GetByEmail returns the account whose email matches case-insensitively,
	// or (nil, nil) when none matches.
	GetByEmail(ctx context.Context, email string) (*Account, error)

	// GetAccountIDByProviderCustomer resolves a payment-provider customer id
	// to an account id via the mapping table, or "" when unmapped.
	GetAccountIDByProviderCustomer(ctx context.Context, providerCustomerID string) (string, error)
}
