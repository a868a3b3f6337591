package service

import (
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/reelkit/reelkit/internal/api/dto"
	"github.com/reelkit/reelkit/internal/domain/account"
	"github.com/reelkit/reelkit/internal/domain/asset"
	"github.com/reelkit/reelkit/internal/domain/brief"
	"github.com/reelkit/reelkit/internal/domain/ledger"
	ierr "github.com/reelkit/reelkit/internal/errors"
	"github.com/reelkit/reelkit/internal/testutil"
	"github.com/reelkit/reelkit/internal/types"
)

type BatchServiceSuite struct {
	testutil.BaseServiceTestSuite
	service    BatchService
	automation *testutil.MockAutomationClient
}

func TestBatchService(t *testing.T) {
	suite.Run(t, new(BatchServiceSuite))
}

func (s *BatchServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	stores := s.GetStores()
	s.automation = testutil.NewMockAutomationClient()
	s.service = NewBatchService(ServiceParams{
		Logger:           s.GetLogger(),
		Config:           s.GetConfig(),
		DB:               s.GetDB(),
		LedgerRepo:       stores.Ledger,
		PaymentRepo:      stores.Payment,
		VideoRequestRepo: stores.VideoRequest,
		WebhookLogRepo:   stores.WebhookLog,
		IdempotencyRepo:  stores.Idempotency,
		AccountRepo:      stores.Account,
		BriefRepo:        stores.Brief,
		AssetRepo:        stores.Asset,
		AutomationClient: s.automation,
		SignedURLs:       testutil.NewMockSignedURLProvider(),
	})
}

// seedReadyAccount creates an account with a completed brief, branding assets
// and the given credit balance.
func (s *BatchServiceSuite) seedReadyAccount(accountID string, credits int64) {
	stores := s.GetStores()
	s.NoError(stores.Account.AddAccount(&account.Account{
		ID:    accountID,
		Email: accountID + "@example.com",
	}))
	s.NoError(stores.Brief.AddBrief(&brief.Brief{
		ID:               types.GenerateUUIDWithPrefix(types.UUID_PREFIX_BRIEF),
		AccountID:        accountID,
		ClientName:       "Acme",
		VideoDuration:    "30s",
		RecordingFormats: []string{"Vertical (9:16)"},
		Payload:          json.RawMessage(`{"product":"widget"}`),
		Completed:        true,
		CreatedAt:        time.Now().UTC(),
	}))
	s.NoError(stores.Asset.AddAsset(&asset.BrandingAsset{
		ID:          types.GenerateUUIDWithPrefix(types.UUID_PREFIX_ASSET),
		AccountID:   accountID,
		Type:        asset.TypeLogo,
		StoragePath: "logos/" + accountID + ".png",
		Metadata:    json.RawMessage(`{"palette":["#112233","#445566"]}`),
		CreatedAt:   time.Now().UTC(),
	}))
	s.NoError(stores.Asset.AddAsset(&asset.BrandingAsset{
		ID:          types.GenerateUUIDWithPrefix(types.UUID_PREFIX_ASSET),
		AccountID:   accountID,
		Type:        asset.TypeBroll,
		StoragePath: "brolls/" + accountID + ".mp4",
		CreatedAt:   time.Now().UTC(),
	}))
	if credits > 0 {
		s.NoError(stores.Ledger.Create(s.GetContext(), &ledger.Entry{
			ID:        types.GenerateUUIDWithPrefix(types.UUID_PREFIX_LEDGER_ENTRY),
			AccountID: accountID,
			Amount:    credits,
			Source:    types.CreditSourceAdminGrant,
			Note:      "test seed",
			CreatedAt: time.Now().UTC(),
		}))
	}
}

func (s *BatchServiceSuite) balance(accountID string) int64 {
	balance, err := s.GetStores().Ledger.Balance(s.GetContext(), accountID)
	s.NoError(err)
	return balance
}

func (s *BatchServiceSuite) TestCreateBatchConsumesCreditsAndDispatches() {
	s.seedReadyAccount("acc_1", 5)
	ctx := s.GetAuthContext("acc_1")

	resp, err := s.service.CreateBatch(ctx, &dto.CreateBatchRequest{
		VideoCount:     3,
		IdempotencyKey: "key-1",
	})
	s.NoError(err)
	s.True(resp.Success)
	s.False(resp.Replayed)
	s.NotEmpty(resp.BatchID)
	s.Len(resp.RequestIDs, 3)

	s.Equal(int64(2), s.balance("acc_1"))

	requests, err := s.GetStores().VideoRequest.ListByBatch(s.GetContext(), resp.BatchID)
	s.NoError(err)
	s.Require().Len(requests, 3)
	for _, r := range requests {
		s.Equal(types.VideoRequestStatusQueued, r.Status)
		s.Equal("acc_1", r.AccountID)
	}

	s.Require().True(s.automation.WaitForDispatch(2 * time.Second))
	dispatches := s.automation.Dispatches()
	s.Require().Len(dispatches, 1)
	payload := dispatches[0]
	s.Equal("key-1", payload.IdempotencyKey)
	s.Equal(resp.BatchID, payload.RequestID)
	s.Equal("acc_1", payload.UserID)
	s.Equal(3, payload.VideoGeneration.VideoCount)
	s.Equal(resp.BatchID, payload.VideoGeneration.BatchID)
	s.Len(payload.VideoRequestIDs, 3)
	s.Equal(30, payload.Constraints.DurationSec)
	s.Equal("9:16", payload.Constraints.Ratio)
	s.Contains(payload.Branding.LogoURL, "https://signed.test/logos/acc_1.png")
	s.Equal([]string{"#112233", "#445566"}, payload.Branding.Palette)
	s.Require().Len(payload.Brolls, 1)
	s.Contains(payload.Brolls[0].URL, "https://signed.test/brolls/acc_1.mp4")
	s.False(payload.CreatedAt.IsZero())

	// The serialized body is what the workflow engine sees, so pin down the
	// contract field names rather than just the struct fields.
	body, err := json.Marshal(payload)
	s.Require().NoError(err)
	var wire map[string]any
	s.Require().NoError(json.Unmarshal(body, &wire))
	for _, field := range []string{"idempotency_key", "request_id", "user_id", "branding", "ugc_brief", "video_generation", "constraints", "created_at"} {
		s.Contains(wire, field)
	}
	gen, ok := wire["video_generation"].(map[string]any)
	s.Require().True(ok)
	s.Contains(gen, "video_count")
	s.Contains(gen, "batch_id")

	// The outbound audit row lands after the dispatch call returns.
	s.Require().Eventually(func() bool {
		return len(s.GetStores().WebhookLog.ListByDirection(types.WebhookDirectionOutbound)) == 1
	}, 2*time.Second, 10*time.Millisecond)
	logs := s.GetStores().WebhookLog.ListByDirection(types.WebhookDirectionOutbound)
	s.Equal(200, logs[0].Status)
	s.Empty(logs[0].Error)
}

func (s *BatchServiceSuite) TestInsufficientCreditsLeavesNoTrace() {
	s.seedReadyAccount("acc_1", 3)
	ctx := s.GetAuthContext("acc_1")

	_, err := s.service.CreateBatch(ctx, &dto.CreateBatchRequest{
		VideoCount:     5,
		IdempotencyKey: "key-short",
	})
	s.Error(err)
	s.True(ierr.IsInsufficientCredits(err))

	s.Equal(int64(3), s.balance("acc_1"))

	videos, err := s.GetStores().VideoRequest.ListByAccount(s.GetContext(), "acc_1", 0)
	s.NoError(err)
	s.Empty(videos)
	s.False(s.automation.WaitForDispatch(100 * time.Millisecond))

	// The key was never recorded, so a retry after topping up succeeds.
	s.NoError(s.GetStores().Ledger.Create(s.GetContext(), &ledger.Entry{
		ID:        types.GenerateUUIDWithPrefix(types.UUID_PREFIX_LEDGER_ENTRY),
		AccountID: "acc_1",
		Amount:    2,
		Source:    types.CreditSourceAdminGrant,
		Note:      "topup",
		CreatedAt: time.Now().UTC(),
	}))

	resp, err := s.service.CreateBatch(ctx, &dto.CreateBatchRequest{
		VideoCount:     5,
		IdempotencyKey: "key-short",
	})
	s.NoError(err)
	s.True(resp.Success)
	s.False(resp.Replayed)
	s.Equal(int64(0), s.balance("acc_1"))
}

func (s *BatchServiceSuite) TestDispatchFailureKeepsBatchAndDebit() {
	s.seedReadyAccount("acc_1", 5)
	s.automation.FailWithNetworkError()
	ctx := s.GetAuthContext("acc_1")

	resp, err := s.service.CreateBatch(ctx, &dto.CreateBatchRequest{
		VideoCount:     5,
		IdempotencyKey: "key-fail",
	})
	s.NoError(err)
	s.True(resp.Success)

	s.Equal(int64(0), s.balance("acc_1"))

	requests, err := s.GetStores().VideoRequest.ListByBatch(s.GetContext(), resp.BatchID)
	s.NoError(err)
	s.Len(requests, 5)

	s.Require().True(s.automation.WaitForDispatch(2 * time.Second))
	s.Require().Eventually(func() bool {
		return len(s.GetStores().WebhookLog.ListByDirection(types.WebhookDirectionOutbound)) == 1
	}, 2*time.Second, 10*time.Millisecond)
	logs := s.GetStores().WebhookLog.ListByDirection(types.WebhookDirectionOutbound)
	s.NotEmpty(logs[0].Error)
}

func (s *BatchServiceSuite) TestDuplicateKeyReplaysSameBatch() {
	s.seedReadyAccount("acc_1", 10)
	ctx := s.GetAuthContext("acc_1")

	first, err := s.service.CreateBatch(ctx, &dto.CreateBatchRequest{
		VideoCount:     4,
		IdempotencyKey: "key-replay",
	})
	s.NoError(err)
	s.Require().True(s.automation.WaitForDispatch(2 * time.Second))

	second, err := s.service.CreateBatch(ctx, &dto.CreateBatchRequest{
		VideoCount:     4,
		IdempotencyKey: "key-replay",
	})
	s.NoError(err)
	s.True(second.Replayed)
	s.Equal(first.BatchID, second.BatchID)
	s.ElementsMatch(first.RequestIDs, second.RequestIDs)

	// Debited once.
	s.Equal(int64(6), s.balance("acc_1"))

	// No second dispatch.
	s.False(s.automation.WaitForDispatch(100 * time.Millisecond))
}

func (s *BatchServiceSuite) TestSameKeyDifferentAccountsAreIndependent() {
	s.seedReadyAccount("acc_1", 5)
	s.seedReadyAccount("acc_2", 5)

	first, err := s.service.CreateBatch(s.GetAuthContext("acc_1"), &dto.CreateBatchRequest{
		VideoCount:     2,
		IdempotencyKey: "shared-key",
	})
	s.NoError(err)

	second, err := s.service.CreateBatch(s.GetAuthContext("acc_2"), &dto.CreateBatchRequest{
		VideoCount:     2,
		IdempotencyKey: "shared-key",
	})
	s.NoError(err)
	s.False(second.Replayed)
	s.NotEqual(first.BatchID, second.BatchID)
}

func (s *BatchServiceSuite) TestMissingBriefRejected() {
	stores := s.GetStores()
	s.NoError(stores.Account.AddAccount(&account.Account{ID: "acc_nobrief", Email: "x@example.com"}))
	s.NoError(stores.Ledger.Create(s.GetContext(), &ledger.Entry{
		ID:        types.GenerateUUIDWithPrefix(types.UUID_PREFIX_LEDGER_ENTRY),
		AccountID: "acc_nobrief",
		Amount:    5,
		Source:    types.CreditSourceAdminGrant,
		CreatedAt: time.Now().UTC(),
	}))

	_, err := s.service.CreateBatch(s.GetAuthContext("acc_nobrief"), &dto.CreateBatchRequest{
		VideoCount:     1,
		IdempotencyKey: "key-nobrief",
	})
	s.Error(err)
	s.True(ierr.IsValidation(err))
	s.Equal(int64(5), s.balance("acc_nobrief"))
}

func (s *BatchServiceSuite) TestMissingAssetsRejected() {
	stores := s.GetStores()
	s.NoError(stores.Account.AddAccount(&account.Account{ID: "acc_noassets", Email: "y@example.com"}))
	s.NoError(stores.Brief.AddBrief(&brief.Brief{
		ID:        types.GenerateUUIDWithPrefix(types.UUID_PREFIX_BRIEF),
		AccountID: "acc_noassets",
		Payload:   json.RawMessage(`{}`),
		Completed: true,
		CreatedAt: time.Now().UTC(),
	}))

	_, err := s.service.CreateBatch(s.GetAuthContext("acc_noassets"), &dto.CreateBatchRequest{
		VideoCount:     1,
		IdempotencyKey: "key-noassets",
	})
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *BatchServiceSuite) TestCreateBatchRequiresAuthenticatedAccount() {
	_, err := s.service.CreateBatch(s.GetContext(), &dto.CreateBatchRequest{
		VideoCount:     1,
		IdempotencyKey: "key-anon",
	})
	s.Error(err)
	s.True(ierr.IsPermissionDenied(err))
}

func (s *BatchServiceSuite) TestVideoCountBoundsEnforced() {
	s.seedReadyAccount("acc_1", 100)
	ctx := s.GetAuthContext("acc_1")

	_, err := s.service.CreateBatch(ctx, &dto.CreateBatchRequest{
		VideoCount:     0,
		IdempotencyKey: "key-zero",
	})
	s.Error(err)
	s.True(ierr.IsValidation(err))

	_, err = s.service.CreateBatch(ctx, &dto.CreateBatchRequest{
		VideoCount:     21,
		IdempotencyKey: "key-over",
	})
	s.Error(err)
	s.True(ierr.IsValidation(err))

	s.Equal(int64(100), s.balance("acc_1"))
}

func (s *BatchServiceSuite) TestConcurrentSubmissionsNeverOverspend() {
	s.seedReadyAccount("acc_1", 3)
	ctx := s.GetAuthContext("acc_1")

	const attempts = 6
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.service.CreateBatch(ctx, &dto.CreateBatchRequest{
				VideoCount:     1,
				IdempotencyKey: fmt.Sprintf("race-key-%d", i),
			})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			s.True(ierr.IsInsufficientCredits(err))
		}
	}
	s.Equal(3, succeeded)
	s.Equal(int64(0), s.balance("acc_1"))
}

func (s *BatchServiceSuite) TestGetBatchScopedToOwner() {
	s.seedReadyAccount("acc_1", 5)
	resp, err := s.service.CreateBatch(s.GetAuthContext("acc_1"), &dto.CreateBatchRequest{
		VideoCount:     2,
		IdempotencyKey: "key-own",
	})
	s.NoError(err)

	detail, err := s.service.GetBatch(s.GetContext(), "acc_1", resp.BatchID)
	s.NoError(err)
	s.Equal(resp.BatchID, detail.BatchID)
	s.Len(detail.Requests, 2)

	_, err = s.service.GetBatch(s.GetContext(), "acc_other", resp.BatchID)
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *BatchServiceSuite) TestListVideosNewestFirst() {
	s.seedReadyAccount("acc_1", 10)
	ctx := s.GetAuthContext("acc_1")

	_, err := s.service.CreateBatch(ctx, &dto.CreateBatchRequest{VideoCount: 2, IdempotencyKey: "k1"})
	s.NoError(err)
	_, err = s.service.CreateBatch(ctx, &dto.CreateBatchRequest{VideoCount: 3, IdempotencyKey: "k2"})
	s.NoError(err)

	list, err := s.service.ListVideos(s.GetContext(), "acc_1", 0)
	s.NoError(err)
	s.Equal(5, list.Count)

	limited, err := s.service.ListVideos(s.GetContext(), "acc_1", 2)
	s.NoError(err)
	s.Equal(2, limited.Count)
}
