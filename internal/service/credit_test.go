package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/reelkit/reelkit/internal/api/dto"
	"github.com/reelkit/reelkit/internal/domain/account"
	"github.com/reelkit/reelkit/internal/domain/ledger"
	ierr "github.com/reelkit/reelkit/internal/errors"
	"github.com/reelkit/reelkit/internal/testutil"
	"github.com/reelkit/reelkit/internal/types"
)

type CreditServiceSuite struct {
	testutil.BaseServiceTestSuite
	service CreditService
}

func TestCreditService(t *testing.T) {
	suite.Run(t, new(CreditServiceSuite))
}

func (s *CreditServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	stores := s.GetStores()
	s.service = NewCreditService(ServiceParams{
		Logger:          s.GetLogger(),
		Config:          s.GetConfig(),
		DB:              s.GetDB(),
		LedgerRepo:      stores.Ledger,
		PaymentRepo:     stores.Payment,
		WebhookLogRepo:  stores.WebhookLog,
		IdempotencyRepo: stores.Idempotency,
		AccountRepo:     stores.Account,
	})

	s.NoError(stores.Account.AddAccount(&account.Account{
		ID:    "acc_1",
		Email: "owner@example.com",
	}))
}

func (s *CreditServiceSuite) addEntry(amount int64, source types.CreditSource) {
	s.NoError(s.GetStores().Ledger.Create(s.GetContext(), &ledger.Entry{
		ID:        types.GenerateUUIDWithPrefix(types.UUID_PREFIX_LEDGER_ENTRY),
		AccountID: "acc_1",
		Amount:    amount,
		Source:    source,
		CreatedAt: time.Now().UTC(),
	}))
}

func (s *CreditServiceSuite) TestBalanceIsSumOfEntries() {
	s.addEntry(10, types.CreditSourceAdminGrant)
	s.addEntry(-4, types.CreditSourceConsumption)
	s.addEntry(-2, types.CreditSourceRefund)

	resp, err := s.service.GetBalance(s.GetContext(), "acc_1")
	s.NoError(err)
	s.Equal(int64(4), resp.Balance)
	s.Equal("acc_1", resp.AccountID)
}

func (s *CreditServiceSuite) TestBalanceOfUnknownAccountIsZero() {
	resp, err := s.service.GetBalance(s.GetContext(), "acc_empty")
	s.NoError(err)
	s.Equal(int64(0), resp.Balance)
}

func (s *CreditServiceSuite) TestListEntriesNewestFirstWithLimit() {
	s.addEntry(10, types.CreditSourceAdminGrant)
	s.addEntry(-1, types.CreditSourceConsumption)
	s.addEntry(-1, types.CreditSourceConsumption)

	all, err := s.service.ListEntries(s.GetContext(), "acc_1", 0)
	s.NoError(err)
	s.Len(all, 3)

	limited, err := s.service.ListEntries(s.GetContext(), "acc_1", 2)
	s.NoError(err)
	s.Len(limited, 2)
}

func (s *CreditServiceSuite) TestAdminGrantAppliesOnce() {
	resp, err := s.service.AdminGrant(s.GetContext(), &dto.AdminGrantRequest{
		AccountID:      "acc_1",
		Credits:        25,
		Note:           "goodwill",
		IdempotencyKey: "grant-1",
	})
	s.NoError(err)
	s.True(resp.Success)
	s.False(resp.Replayed)
	s.Equal(int64(25), resp.Balance)
	s.NotEmpty(resp.EntryID)

	replay, err := s.service.AdminGrant(s.GetContext(), &dto.AdminGrantRequest{
		AccountID:      "acc_1",
		Credits:        25,
		Note:           "goodwill",
		IdempotencyKey: "grant-1",
	})
	s.NoError(err)
	s.True(replay.Replayed)
	s.Equal(resp.EntryID, replay.EntryID)
	s.Equal(int64(25), replay.Balance)

	entries, err := s.GetStores().Ledger.ListByAccount(s.GetContext(), "acc_1", 0)
	s.NoError(err)
	s.Require().Len(entries, 1)

	// The operator key is stamped on the ledger row itself.
	s.Require().NotNil(entries[0].EventID)
	s.Equal("grant-1", *entries[0].EventID)
	s.Equal(types.CreditSourceAdminGrant, entries[0].Source)
}

func (s *CreditServiceSuite) TestAdminGrantDistinctKeysStack() {
	for _, key := range []string{"grant-a", "grant-b"} {
		_, err := s.service.AdminGrant(s.GetContext(), &dto.AdminGrantRequest{
			AccountID:      "acc_1",
			Credits:        5,
			IdempotencyKey: key,
		})
		s.NoError(err)
	}

	resp, err := s.service.GetBalance(s.GetContext(), "acc_1")
	s.NoError(err)
	s.Equal(int64(10), resp.Balance)
}

func (s *CreditServiceSuite) TestAdminGrantValidation() {
	_, err := s.service.AdminGrant(s.GetContext(), &dto.AdminGrantRequest{
		AccountID:      "acc_1",
		Credits:        0,
		IdempotencyKey: "grant-zero",
	})
	s.Error(err)
	s.True(ierr.IsValidation(err))

	_, err = s.service.AdminGrant(s.GetContext(), &dto.AdminGrantRequest{
		AccountID:      "acc_1",
		Credits:        5,
		IdempotencyKey: "",
	})
	s.Error(err)
	s.True(ierr.IsValidation(err))

	_, err = s.service.AdminGrant(s.GetContext(), &dto.AdminGrantRequest{
		AccountID:      "acc_missing",
		Credits:        5,
		IdempotencyKey: "grant-missing",
	})
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}
