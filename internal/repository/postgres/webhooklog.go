package postgres

import (
	"context"
	"database/sql"

	ierr "github.com/reelkit/reelkit/internal/errors"
	"github.com/reelkit/reelkit/internal/domain/webhooklog"
	"github.com/reelkit/reelkit/internal/logger"
	"github.com/reelkit/reelkit/internal/postgres"
)

type webhookLogRepository struct {
	client postgres.IClient
	logger *logger.Logger
}

// NewWebhookLogRepository creates a new webhook log repository
func NewWebhookLogRepository(client postgres.IClient, logger *logger.Logger) webhooklog.Repository {
	return &webhookLogRepository{
		client: client,
		logger: logger,
	}
}

func (r *webhookLogRepository) Create(ctx context.Context, log *webhooklog.Log) error {
	q := r.client.Querier(ctx)
	_, err := q.ExecContext(ctx, `
		INSERT INTO webhook_logs (id, direction, provider, event_type, idempotency_key, status, payload, response, error, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, log.ID, log.Direction, log.Provider, log.EventType, log.IdempotencyKey, log.Status,
		nullableJSON(log.Payload), nullableJSON(log.Response), log.Error, log.CreatedAt)

	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to write webhook log").
			WithReportableDetails(map[string]interface{}{
				"direction":  log.Direction,
				"event_type": log.EventType,
			}).
			Mark(ierr.ErrDatabase)
	}

	return nil
}

func (r *webhookLogRepository) ListRecent(ctx context.Context, limit int) ([]*webhooklog.Log, error) {
	if limit <= 0 {
		limit = 50
	}

	q := r.client.Querier(ctx)
	rows, err := q.QueryContext(ctx, `
		SELECT id, direction, provider, event_type, idempotency_key, status, payload, response, error, created_at
		FROM webhook_logs
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list webhook logs").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	logs := make([]*webhooklog.Log, 0)
	for rows.Next() {
		var l webhooklog.Log
		var provider, eventType, idempotencyKey, logError sql.NullString
		var status sql.NullInt64
		var payload, response []byte
		if err := rows.Scan(&l.ID, &l.Direction, &provider, &eventType, &idempotencyKey, &status, &payload, &response, &logError, &l.CreatedAt); err != nil {
			return nil, ierr.WithError(err).
				WithHint("Failed to scan webhook log").
				Mark(ierr.ErrDatabase)
		}
		l.Provider = provider.String
		l.EventType = eventType.String
		l.IdempotencyKey = idempotencyKey.String
		l.Status = int(status.Int64)
		l.Payload = payload
		l.Response = response
		l.Error = logError.String
		logs = append(logs, &l)
	}
	if err := rows.Err(); err != nil {
		return nil, ierr.WithError(err).Mark(ierr.ErrDatabase)
	}

	return logs, nil
}
