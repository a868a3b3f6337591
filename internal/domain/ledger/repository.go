package ledger

import "context"

// Repository persists ledger entries. Entries are append-only: there is no
// update or delete, corrections are new entries.
type Repository interface {
	// Create appends one entry.
	Create(ctx context.Context, entry *Entry) error

	// Balance returns the sum of all entry amounts for an account.
	Balance(ctx context.Context, accountID string) (int64, error)

	// ExistsGrantForEvent reports whether a grant-kind entry already exists
	// for the given provider event id.
	ExistsGrantForEvent(ctx context.Context, eventID string) (bool, error)

	// ListByAccount returns entries for an account, newest first.
	ListByAccount(ctx context.Context, accountID string, limit int) ([]*Entry, error)
}
