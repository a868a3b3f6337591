package postgres

import (
	"context"

	"github.com/reelkit/reelkit/internal/domain/asset"
	ierr "github.com/reelkit/reelkit/internal/errors"
	"github.com/reelkit/reelkit/internal/logger"
	"github.com/reelkit/reelkit/internal/postgres"
)

type assetRepository struct {
	client postgres.IClient
	logger *logger.Logger
}

// NewAssetRepository creates a new branding asset repository
func NewAssetRepository(client postgres.IClient, logger *logger.Logger) asset.Repository {
	return &assetRepository{
		client: client,
		logger: logger,
	}
}

func (r *assetRepository) ListByAccount(ctx context.Context, accountID string) ([]*asset.BrandingAsset, error) {
	q := r.client.Querier(ctx)
	rows, err := q.QueryContext(ctx, `
		SELECT id, account_id, asset_type, storage_path, metadata, created_at
		FROM branding_assets
		WHERE account_id = $1
		ORDER BY created_at
	`, accountID)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list branding assets").
			WithReportableDetails(map[string]interface{}{
				"account_id": accountID,
			}).
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	assets := make([]*asset.BrandingAsset, 0)
	for rows.Next() {
		var a asset.BrandingAsset
		var metadata []byte
		if err := rows.Scan(&a.ID, &a.AccountID, &a.Type, &a.StoragePath, &metadata, &a.CreatedAt); err != nil {
			return nil, ierr.WithError(err).
				WithHint("Failed to scan branding asset").
				Mark(ierr.ErrDatabase)
		}
		a.Metadata = metadata
		assets = append(assets, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, ierr.WithError(err).Mark(ierr.ErrDatabase)
	}

	return assets, nil
}
