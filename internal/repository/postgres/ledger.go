package postgres

import (
	"context"
	"database/sql"

	"github.com/reelkit/reelkit/internal/domain/ledger"
	ierr "github.com/reelkit/reelkit/internal/errors"
	"github.com/reelkit/reelkit/internal/logger"
	"github.com/reelkit/reelkit/internal/postgres"
)

type ledgerRepository struct {
	client postgres.IClient
	logger *logger.Logger
}

// NewLedgerRepository creates a new credit ledger repository
func NewLedgerRepository(client postgres.IClient, logger *logger.Logger) ledger.Repository {
	return &ledgerRepository{
		client: client,
		logger: logger,
	}
}

func (r *ledgerRepository) Create(ctx context.Context, entry *ledger.Entry) error {
	if err := entry.Validate(); err != nil {
		return err
	}

	r.logger.Debugw("creating ledger entry",
		"account_id", entry.AccountID,
		"amount", entry.Amount,
		"source", entry.Source,
	)

	q := r.client.Querier(ctx)
	_, err := q.ExecContext(ctx, `
		INSERT INTO credits_ledger (id, account_id, amount, source, payment_id, event_id, note, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, entry.ID, entry.AccountID, entry.Amount, entry.Source, entry.PaymentID, entry.EventID, entry.Note, entry.CreatedAt)

	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return ierr.WithError(err).
				WithHint("A ledger entry for this event already exists").
				WithReportableDetails(map[string]interface{}{
					"account_id": entry.AccountID,
					"source":     entry.Source,
				}).
				Mark(ierr.ErrAlreadyExists)
		}
		return ierr.WithError(err).
			WithHint("Failed to create ledger entry").
			WithReportableDetails(map[string]interface{}{
				"account_id": entry.AccountID,
			}).
			Mark(ierr.ErrDatabase)
	}

	return nil
}

func (r *ledgerRepository) Balance(ctx context.Context, accountID string) (int64, error) {
	q := r.client.Querier(ctx)

	var balance int64
	err := q.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(amount), 0) FROM credits_ledger WHERE account_id = $1
	`, accountID).Scan(&balance)

	if err != nil {
		return 0, ierr.WithError(err).
			WithHint("Failed to compute credit balance").
			WithReportableDetails(map[string]interface{}{
				"account_id": accountID,
			}).
			Mark(ierr.ErrDatabase)
	}

	return balance, nil
}

func (r *ledgerRepository) ExistsGrantForEvent(ctx context.Context, eventID string) (bool, error) {
	q := r.client.Querier(ctx)

	var exists bool
	err := q.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM credits_ledger
			WHERE event_id = $1 AND source IN ('subscription_grant', 'topup_purchase')
		)
	`, eventID).Scan(&exists)

	if err != nil {
		return false, ierr.WithError(err).
			WithHint("Failed to check ledger for event").
			Mark(ierr.ErrDatabase)
	}

	return exists, nil
}

func (r *ledgerRepository) ListByAccount(ctx context.Context, accountID string, limit int) ([]*ledger.Entry, error) {
	if limit <= 0 {
		limit = 100
	}

	q := r.client.Querier(ctx)
	rows, err := q.QueryContext(ctx, `
		SELECT id, account_id, amount, source, payment_id, event_id, note, created_at
		FROM credits_ledger
		WHERE account_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, accountID, limit)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list ledger entries").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	entries := make([]*ledger.Entry, 0)
	for rows.Next() {
		e, err := scanLedgerEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, ierr.WithError(err).Mark(ierr.ErrDatabase)
	}

	return entries, nil
}

func scanLedgerEntry(rows *sql.Rows) (*ledger.Entry, error) {
	var e ledger.Entry
	var paymentID, eventID, note sql.NullString
	if err := rows.Scan(&e.ID, &e.AccountID, &e.Amount, &e.Source, &paymentID, &eventID, &note, &e.CreatedAt); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to scan ledger entry").
			Mark(ierr.ErrDatabase)
	}
	if paymentID.Valid {
		e.PaymentID = &paymentID.String
	}
	if eventID.Valid {
		e.EventID = &eventID.String
	}
	e.Note = note.String
	return &e, nil
}
