package asset

import "context"

// Repository reads branding assets.
type Repository interface {
	// ListByAccount returns all branding assets for an account.
	ListByAccount(ctx context.Context, accountID string) ([]*BrandingAsset, error)
}
