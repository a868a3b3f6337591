package postgres

import (
	"context"
	"database/sql"

	"github.com/reelkit/reelkit/internal/domain/account"
	ierr "github.com/reelkit/reelkit/internal/errors"
	"github.com/reelkit/reelkit/internal/logger"
	"github.com/reelkit/reelkit/internal/postgres"
)

type accountRepository struct {
	client postgres.IClient
	logger *logger.Logger
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(client postgres.IClient, logger *logger.Logger) account.Repository {
	return &accountRepository{
		client: client,
		logger: logger,
	}
}

const accountColumns = `id, email, display_name, intake_completed, status, created_at, updated_at`

func (r *accountRepository) Get(ctx context.Context, id string) (*account.Account, error) {
	q := r.client.Querier(ctx)
	row := q.QueryRowContext(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE id = $1
	`, id)

	acc, err := scanAccount(row)
	if err == sql.ErrNoRows {
		return nil, ierr.NewError("account not found").
			WithHint("No account exists with the given id").
			WithReportableDetails(map[string]interface{}{
				"account_id": id,
			}).
			Mark(ierr.ErrNotFound)
	}
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to fetch account").
			Mark(ierr.ErrDatabase)
	}

	return acc, nil
}

func (r *accountRepository) GetByEmail(ctx context.Context, email string) (*account.Account, error) {
	q := r.client.Querier(ctx)
	row := q.QueryRowContext(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE lower(email) = lower($1)
	`, email)

	acc, err := scanAccount(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to fetch account by email").
			Mark(ierr.ErrDatabase)
	}

	return acc, nil
}

func (r *accountRepository) GetAccountIDByProviderCustomer(ctx context.Context, providerCustomerID string) (string, error) {
	q := r.client.Querier(ctx)
	var accountID string
	err := q.QueryRowContext(ctx, `
		SELECT account_id
		FROM provider_customers
		WHERE provider_customer_id = $1
	`, providerCustomerID).Scan(&accountID)

	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", ierr.WithError(err).
			WithHint("Failed to resolve provider customer").
			WithReportableDetails(map[string]interface{}{
				"provider_customer_id": providerCustomerID,
			}).
			Mark(ierr.ErrDatabase)
	}

	return accountID, nil
}

func scanAccount(row *sql.Row) (*account.Account, error) {
	var acc account.Account
	var displayName sql.NullString
	err := row.Scan(
		&acc.ID, &acc.Email, &displayName, &acc.IntakeCompleted,
		&acc.Status, &acc.CreatedAt, &acc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	acc.DisplayName = displayName.String
	return &acc, nil
}
