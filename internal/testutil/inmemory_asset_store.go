package testutil

import (
	"context"

	"github.com/reelkit/reelkit/internal/domain/asset"
)

// InMemoryAssetStore implements asset.Repository
type InMemoryAssetStore struct {
	*InMemoryStore[*asset.BrandingAsset]
}

func NewInMemoryAssetStore() *InMemoryAssetStore {
	return &InMemoryAssetStore{
		InMemoryStore: NewInMemoryStore[*asset.BrandingAsset](),
	}
}

// AddAsset seeds a branding asset for a test.
func (s *InMemoryAssetStore) AddAsset(a *asset.BrandingAsset) error {
	copied := *a
	return s.InMemoryStore.Create(context.Background(), a.ID, &copied)
}

func (s *InMemoryAssetStore) ListByAccount(ctx context.Context, accountID string) ([]*asset.BrandingAsset, error) {
	assets := s.InMemoryStore.List(ctx, func(a *asset.BrandingAsset) bool {
		return a.AccountID == accountID
	}, func(a, b *asset.BrandingAsset) bool {
		return a.CreatedAt.Before(b.CreatedAt)
	})

	result := make([]*asset.BrandingAsset, 0, len(assets))
	for _, a := range assets {
		copied := *a
		result = append(result, &copied)
	}
	return result, nil
}
