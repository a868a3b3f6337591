package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/reelkit/reelkit/internal/domain/payment"
	ierr "github.com/reelkit/reelkit/internal/errors"
	"github.com/reelkit/reelkit/internal/logger"
	"github.com/reelkit/reelkit/internal/postgres"
)

type paymentRepository struct {
	client postgres.IClient
	logger *logger.Logger
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(client postgres.IClient, logger *logger.Logger) payment.Repository {
	return &paymentRepository{
		client: client,
		logger: logger,
	}
}

func (r *paymentRepository) Create(ctx context.Context, p *payment.Payment) error {
	if err := p.Validate(); err != nil {
		return err
	}

	r.logger.Debugw("creating payment",
		"provider_event_id", p.ProviderEventID,
		"payment_kind", p.Kind,
		"amount_cents", p.AmountCents,
	)

	q := r.client.Querier(ctx)
	_, err := q.ExecContext(ctx, `
		INSERT INTO payments (
			id, provider_event_id, provider_object, provider_customer_id, account_id,
			payment_kind, amount_cents, currency, status, credits_granted, metadata, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, p.ID, p.ProviderEventID, p.ProviderObject, p.ProviderCustomerID, p.AccountID,
		p.Kind, p.AmountCents, p.Currency, p.Status, p.CreditsGranted, nullableJSON(p.Metadata), p.CreatedAt)

	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return ierr.WithError(err).
				WithHint("A payment for this provider event already exists").
				WithReportableDetails(map[string]interface{}{
					"provider_event_id": p.ProviderEventID,
				}).
				Mark(ierr.ErrAlreadyExists)
		}
		return ierr.WithError(err).
			WithHint("Failed to create payment").
			WithReportableDetails(map[string]interface{}{
				"provider_event_id": p.ProviderEventID,
			}).
			Mark(ierr.ErrDatabase)
	}

	return nil
}

func (r *paymentRepository) GetByProviderEventID(ctx context.Context, eventID string) (*payment.Payment, error) {
	q := r.client.Querier(ctx)
	row := q.QueryRowContext(ctx, `
		SELECT id, provider_event_id, provider_object, provider_customer_id, account_id,
			payment_kind, amount_cents, currency, status, credits_granted, metadata, created_at
		FROM payments
		WHERE provider_event_id = $1
	`, eventID)

	p, err := scanPayment(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // no payment for this event is not an error here
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get payment by provider event id").
			Mark(ierr.ErrDatabase)
	}

	return p, nil
}

func (r *paymentRepository) GetLatestPurchaseByAccount(ctx context.Context, accountID string) (*payment.Payment, error) {
	q := r.client.Querier(ctx)
	row := q.QueryRowContext(ctx, `
		SELECT id, provider_event_id, provider_object, provider_customer_id, account_id,
			payment_kind, amount_cents, currency, status, credits_granted, metadata, created_at
		FROM payments
		WHERE account_id = $1 AND payment_kind = 'one_off' AND status = 'paid'
		ORDER BY created_at DESC
		LIMIT 1
	`, accountID)

	p, err := scanPayment(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get latest purchase").
			WithReportableDetails(map[string]interface{}{
				"account_id": accountID,
			}).
			Mark(ierr.ErrDatabase)
	}

	return p, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPayment(row rowScanner) (*payment.Payment, error) {
	var p payment.Payment
	var providerCustomerID, accountID sql.NullString
	var metadata []byte
	if err := row.Scan(
		&p.ID, &p.ProviderEventID, &p.ProviderObject, &providerCustomerID, &accountID,
		&p.Kind, &p.AmountCents, &p.Currency, &p.Status, &p.CreditsGranted, &metadata, &p.CreatedAt,
	); err != nil {
		return nil, err
	}
	if providerCustomerID.Valid {
		p.ProviderCustomerID = &providerCustomerID.String
	}
	if accountID.Valid {
		p.AccountID = &accountID.String
	}
	p.Metadata = metadata
	return &p, nil
}

func nullableJSON(raw []byte) interface{} {
	if len(raw) == 0 {
		return nil
	}
	return raw
}
