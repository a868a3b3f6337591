package postgres

import (
	"context"
	"database/sql"

	"github.com/lib/pq"
	"github.com/reelkit/reelkit/internal/domain/brief"
	ierr "github.com/reelkit/reelkit/internal/errors"
	"github.com/reelkit/reelkit/internal/logger"
	"github.com/reelkit/reelkit/internal/postgres"
)

type briefRepository struct {
	client postgres.IClient
	logger *logger.Logger
}

// NewBriefRepository creates a new UGC brief repository
func NewBriefRepository(client postgres.IClient, logger *logger.Logger) brief.Repository {
	return &briefRepository{
		client: client,
		logger: logger,
	}
}

func (r *briefRepository) GetLatestCompletedByAccount(ctx context.Context, accountID string) (*brief.Brief, error) {
	q := r.client.Querier(ctx)
	row := q.QueryRowContext(ctx, `
		SELECT id, account_id, client_name, video_duration, recording_formats, payload, completed, created_at, updated_at
		FROM ugc_briefs
		WHERE account_id = $1 AND completed = TRUE
		ORDER BY created_at DESC
		LIMIT 1
	`, accountID)

	var b brief.Brief
	var formats pq.StringArray
	err := row.Scan(
		&b.ID, &b.AccountID, &b.ClientName, &b.VideoDuration,
		&formats, &b.Payload, &b.Completed, &b.CreatedAt, &b.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to fetch latest brief").
			WithReportableDetails(map[string]interface{}{
				"account_id": accountID,
			}).
			Mark(ierr.ErrDatabase)
	}
	b.RecordingFormats = formats

	return &b, nil
}
