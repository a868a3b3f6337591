package payment

import "context"

// Repository persists payment records.
type Repository interface {
	// Create inserts a payment. A unique violation on provider_event_id is
	// surfaced as ErrAlreadyExists.
	Create(ctx context.Context, payment *Payment) error

	// GetByProviderEventID returns the payment for a provider event id, or
	// (nil, nil) when none exists.
	GetByProviderEventID(ctx context.Context, eventID string) (*Payment, error)

	// GetLatestPurchaseByAccount returns the most recent one_off purchase for
	// an account, or (nil, nil) when the account has none.
	GetLatestPurchaseByAccount(ctx context.Context, accountID string) (*Payment, error)
}
