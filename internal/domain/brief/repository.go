package brief

import "context"

// Repository reads UGC briefs.
type Repository interface {
	// GetLatestCompletedByAccount returns the account's newest completed
	// brief, or (nil, nil) when none exists.
	GetLatestCompletedByAccount(ctx context.Context, accountID string) (*Brief, error)
}
