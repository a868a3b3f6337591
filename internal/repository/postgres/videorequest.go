package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"
	"github.com/reelkit/reelkit/internal/domain/videorequest"
	ierr "github.com/reelkit/reelkit/internal/errors"
	"github.com/reelkit/reelkit/internal/logger"
	"github.com/reelkit/reelkit/internal/postgres"
	"github.com/reelkit/reelkit/internal/types"
)

type videoRequestRepository struct {
	client postgres.IClient
	logger *logger.Logger
}

// NewVideoRequestRepository creates a new video request repository
func NewVideoRequestRepository(client postgres.IClient, logger *logger.Logger) videorequest.Repository {
	return &videoRequestRepository{
		client: client,
		logger: logger,
	}
}

func (r *videoRequestRepository) CreateBatch(ctx context.Context, batch *videorequest.Batch) error {
	q := r.client.Querier(ctx)
	_, err := q.ExecContext(ctx, `
		INSERT INTO video_request_batches (id, account_id, created_at)
		VALUES ($1, $2, $3)
	`, batch.ID, batch.AccountID, batch.CreatedAt)

	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create video request batch").
			WithReportableDetails(map[string]interface{}{
				"batch_id":   batch.ID,
				"account_id": batch.AccountID,
			}).
			Mark(ierr.ErrDatabase)
	}

	return nil
}

func (r *videoRequestRepository) CreateRequests(ctx context.Context, requests []*videorequest.VideoRequest) error {
	if len(requests) == 0 {
		return nil
	}

	// Single multi-row insert so request creation is all-or-nothing even
	// outside an explicit transaction.
	ids := make([]string, len(requests))
	accountIDs := make([]string, len(requests))
	batchIDs := make([]string, len(requests))
	statuses := make([]string, len(requests))
	createdAts := make([]time.Time, len(requests))
	for i, req := range requests {
		ids[i] = req.ID
		accountIDs[i] = req.AccountID
		batchIDs[i] = req.BatchID
		statuses[i] = string(req.Status)
		createdAts[i] = req.CreatedAt
	}

	q := r.client.Querier(ctx)
	_, err := q.ExecContext(ctx, `
		INSERT INTO video_requests (id, account_id, batch_id, status, created_at, updated_at)
		SELECT unnest($1::text[]), unnest($2::text[]), unnest($3::text[]),
			unnest($4::text[]), unnest($5::timestamptz[]), unnest($5::timestamptz[])
	`, pq.Array(ids), pq.Array(accountIDs), pq.Array(batchIDs), pq.Array(statuses), pq.Array(createdAts))

	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create video requests").
			WithReportableDetails(map[string]interface{}{
				"batch_id": requests[0].BatchID,
				"count":    len(requests),
			}).
			Mark(ierr.ErrDatabase)
	}

	return nil
}

func (r *videoRequestRepository) GetBatch(ctx context.Context, id string) (*videorequest.Batch, error) {
	q := r.client.Querier(ctx)
	var batch videorequest.Batch
	err := q.QueryRowContext(ctx, `
		SELECT id, account_id, created_at FROM video_request_batches WHERE id = $1
	`, id).Scan(&batch.ID, &batch.AccountID, &batch.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ierr.NewError("batch not found").
				WithHint("No video request batch exists with this id").
				WithReportableDetails(map[string]interface{}{
					"batch_id": id,
				}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get batch").
			Mark(ierr.ErrDatabase)
	}

	return &batch, nil
}

func (r *videoRequestRepository) ListByBatch(ctx context.Context, batchID string) ([]*videorequest.VideoRequest, error) {
	q := r.client.Querier(ctx)
	rows, err := q.QueryContext(ctx, `
		SELECT id, account_id, batch_id, status, created_at, updated_at
		FROM video_requests
		WHERE batch_id = $1
		ORDER BY created_at ASC, id ASC
	`, batchID)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list video requests").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	return collectVideoRequests(rows)
}

func (r *videoRequestRepository) ListByAccount(ctx context.Context, accountID string, limit int) ([]*videorequest.VideoRequest, error) {
	if limit <= 0 {
		limit = 100
	}

	q := r.client.Querier(ctx)
	rows, err := q.QueryContext(ctx, `
		SELECT id, account_id, batch_id, status, created_at, updated_at
		FROM video_requests
		WHERE account_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, accountID, limit)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list video requests").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	return collectVideoRequests(rows)
}

func (r *videoRequestRepository) UpdateStatus(ctx context.Context, id string, status types.VideoRequestStatus) error {
	return r.client.WithTx(ctx, func(ctx context.Context) error {
		q := r.client.Querier(ctx)

		var current types.VideoRequestStatus
		err := q.QueryRowContext(ctx, `
			SELECT status FROM video_requests WHERE id = $1 FOR UPDATE
		`, id).Scan(&current)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ierr.NewError("video request not found").
					WithReportableDetails(map[string]interface{}{
						"request_id": id,
					}).
					Mark(ierr.ErrNotFound)
			}
			return ierr.WithError(err).Mark(ierr.ErrDatabase)
		}

		if !current.CanTransitionTo(status) {
			return ierr.NewErrorf("illegal status transition %s -> %s", current, status).
				WithHint("Video request statuses only move forward through the pipeline").
				WithReportableDetails(map[string]interface{}{
					"request_id": id,
					"from":       current,
					"to":         status,
				}).
				Mark(ierr.ErrInvalidOperation)
		}

		_, err = q.ExecContext(ctx, `
			UPDATE video_requests SET status = $2, updated_at = now() WHERE id = $1
		`, id, status)
		if err != nil {
			return ierr.WithError(err).
				WithHint("Failed to update video request status").
				Mark(ierr.ErrDatabase)
		}

		return nil
	})
}

func collectVideoRequests(rows *sql.Rows) ([]*videorequest.VideoRequest, error) {
	requests := make([]*videorequest.VideoRequest, 0)
	for rows.Next() {
		var req videorequest.VideoRequest
		if err := rows.Scan(&req.ID, &req.AccountID, &req.BatchID, &req.Status, &req.CreatedAt, &req.UpdatedAt); err != nil {
			return nil, ierr.WithError(err).
				WithHint("Failed to scan video request").
				Mark(ierr.ErrDatabase)
		}
		requests = append(requests, &req)
	}
	if err := rows.Err(); err != nil {
		return nil, ierr.WithError(err).Mark(ierr.ErrDatabase)
	}
	return requests, nil
}
