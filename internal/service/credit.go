package service

import (
	"context"
	"time"

	"github.com/samber/lo"

	"github.com/reelkit/reelkit/internal/api/dto"
	domainidempotency "github.com/reelkit/reelkit/internal/domain/idempotency"
	"github.com/reelkit/reelkit/internal/domain/ledger"
	ierr "github.com/reelkit/reelkit/internal/errors"
	"github.com/reelkit/reelkit/internal/idempotency"
	"github.com/reelkit/reelkit/internal/types"
)

// CreditService exposes the account's derived credit balance and the manual
// grant path. The balance is always summed from the ledger at read time.
type CreditService interface {
	GetBalance(ctx context.Context, accountID string) (*dto.BalanceResponse, error)
	ListEntries(ctx context.Context, accountID string, limit int) ([]*dto.LedgerEntryResponse, error)
	AdminGrant(ctx context.Context, req *dto.AdminGrantRequest) (*dto.AdminGrantResponse, error)
}

type creditService struct {
	ServiceParams
	idempGen *idempotency.Generator
}

func NewCreditService(params ServiceParams) CreditService {
	return &creditService{
		ServiceParams: params,
		idempGen:      idempotency.NewGenerator(),
	}
}

func (s *creditService) GetBalance(ctx context.Context, accountID string) (*dto.BalanceResponse, error) {
	if accountID == "" {
		return nil, ierr.NewError("account id is required").
			Mark(ierr.ErrValidation)
	}

	balance, err := s.LedgerRepo.Balance(ctx, accountID)
	if err != nil {
		return nil, err
	}

	return &dto.BalanceResponse{
		AccountID: accountID,
		Balance:   balance,
	}, nil
}

func (s *creditService) ListEntries(ctx context.Context, accountID string, limit int) ([]*dto.LedgerEntryResponse, error) {
	if accountID == "" {
		return nil, ierr.NewError("account id is required").
			Mark(ierr.ErrValidation)
	}

	entries, err := s.LedgerRepo.ListByAccount(ctx, accountID, limit)
	if err != nil {
		return nil, err
	}

	responses := make([]*dto.LedgerEntryResponse, 0, len(entries))
	for _, e := range entries {
		responses = append(responses, &dto.LedgerEntryResponse{
			ID:        e.ID,
			Amount:    e.Amount,
			Source:    string(e.Source),
			Note:      e.Note,
			CreatedAt: e.CreatedAt,
		})
	}
	return responses, nil
}

func (s *creditService) AdminGrant(ctx context.Context, req *dto.AdminGrantRequest) (*dto.AdminGrantResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.AccountRepo.Get(ctx, req.AccountID); err != nil {
		return nil, err
	}

	key := s.idempGen.GenerateKey(idempotency.ScopeAdminGrant, map[string]interface{}{
		"key":        req.IdempotencyKey,
		"account_id": req.AccountID,
	})

	existing, err := s.IdempotencyRepo.Get(ctx, string(idempotency.ScopeAdminGrant), key)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		balance, err := s.LedgerRepo.Balance(ctx, req.AccountID)
		if err != nil {
			return nil, err
		}
		return &dto.AdminGrantResponse{
			Success:  true,
			EntryID:  existing.ResultRef,
			Balance:  balance,
			Replayed: true,
		}, nil
	}

	// The operator key lands on the ledger row itself, so the dedup boundary
	// is visible when auditing grants.
	entry := &ledger.Entry{
		ID:        types.GenerateUUIDWithPrefix(types.UUID_PREFIX_LEDGER_ENTRY),
		AccountID: req.AccountID,
		EventID:   lo.ToPtr(req.IdempotencyKey),
		Amount:    req.Credits,
		Source:    types.CreditSourceAdminGrant,
		Note:      req.Note,
		CreatedAt: time.Now().UTC(),
	}

	err = s.DB.WithTx(ctx, func(ctx context.Context) error {
		if err := s.LedgerRepo.Create(ctx, entry); err != nil {
			return err
		}
		return s.IdempotencyRepo.Create(ctx, &domainidempotency.KeyRecord{
			Key:       key,
			Scope:     string(idempotency.ScopeAdminGrant),
			ResultRef: entry.ID,
			CreatedAt: time.Now().UTC(),
		})
	})
	if err != nil {
		if ierr.IsAlreadyExists(err) {
			return nil, ierr.WithError(err).
				WithHint("This grant is already being processed").
				Mark(ierr.ErrAlreadyExists)
		}
		return nil, err
	}

	s.Logger.Infow("admin credit grant applied",
		"account_id", req.AccountID,
		"credits", req.Credits,
		"entry_id", entry.ID)

	balance, err := s.LedgerRepo.Balance(ctx, req.AccountID)
	if err != nil {
		return nil, err
	}

	return &dto.AdminGrantResponse{
		Success: true,
		EntryID: entry.ID,
		Balance: balance,
	}, nil
}
