package postgres

import (
	"context"
	"database/sql"

	"github.com/reelkit/reelkit/internal/domain/idempotency"
	ierr "github.com/reelkit/reelkit/internal/errors"
	"github.com/reelkit/reelkit/internal/logger"
	"github.com/reelkit/reelkit/internal/postgres"
)

type idempotencyRepository struct {
	client postgres.IClient
	logger *logger.Logger
}

// NewIdempotencyRepository creates a new idempotency key repository
func NewIdempotencyRepository(client postgres.IClient, logger *logger.Logger) idempotency.Repository {
	return &idempotencyRepository{
		client: client,
		logger: logger,
	}
}

func (r *idempotencyRepository) Get(ctx context.Context, scope, key string) (*idempotency.KeyRecord, error) {
	q := r.client.Querier(ctx)
	var record idempotency.KeyRecord
	err := q.QueryRowContext(ctx, `
		SELECT key, scope, result_ref, created_at
		FROM idempotency_keys
		WHERE scope = $1 AND key = $2
	`, scope, key).Scan(&record.Key, &record.Scope, &record.ResultRef, &record.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to look up idempotency key").
			WithReportableDetails(map[string]interface{}{
				"scope": scope,
			}).
			Mark(ierr.ErrDatabase)
	}

	return &record, nil
}

func (r *idempotencyRepository) Create(ctx context.Context, record *idempotency.KeyRecord) error {
	if err := record.Validate(); err != nil {
		return err
	}

	r.logger.Debugw("recording idempotency key", "scope", record.Scope, "result_ref", record.ResultRef)

	q := r.client.Querier(ctx)
	_, err := q.ExecContext(ctx, `
		INSERT INTO idempotency_keys (scope, key, result_ref, created_at)
		VALUES ($1, $2, $3, $4)
	`, record.Scope, record.Key, record.ResultRef, record.CreatedAt)

	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return ierr.WithError(err).
				WithHint("This idempotency key is already recorded").
				WithReportableDetails(map[string]interface{}{
					"scope": record.Scope,
				}).
				Mark(ierr.ErrAlreadyExists)
		}
		return ierr.WithError(err).
			WithHint("Failed to record idempotency key").
			Mark(ierr.ErrDatabase)
	}

	return nil
}
