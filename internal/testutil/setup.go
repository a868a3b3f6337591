package testutil

import (
	"context"

	"github.com/stretchr/testify/suite"

	"github.com/reelkit/reelkit/internal/config"
	"github.com/reelkit/reelkit/internal/logger"
	"github.com/reelkit/reelkit/internal/types"
)

// Stores groups the in-memory repositories behind one test fixture.
type Stores struct {
	Ledger       *InMemoryLedgerStore
	Payment      *InMemoryPaymentStore
	VideoRequest *InMemoryVideoRequestStore
	WebhookLog   *InMemoryWebhookLogStore
	Idempotency  *InMemoryIdempotencyStore
	Account      *InMemoryAccountStore
	Brief        *InMemoryBriefStore
	Asset        *InMemoryAssetStore
}

// BaseServiceTestSuite provides fresh stores, a mock database client and a
// logger for every test.
type BaseServiceTestSuite struct {
	suite.Suite

	stores Stores
	db     *MockPostgresClient
	logger *logger.Logger
	config *config.Configuration
	ctx    context.Context
}

func (s *BaseServiceTestSuite) SetupTest() {
	s.stores = Stores{
		Ledger:       NewInMemoryLedgerStore(),
		Payment:      NewInMemoryPaymentStore(),
		VideoRequest: NewInMemoryVideoRequestStore(),
		WebhookLog:   NewInMemoryWebhookLogStore(),
		Idempotency:  NewInMemoryIdempotencyStore(),
		Account:      NewInMemoryAccountStore(),
		Brief:        NewInMemoryBriefStore(),
		Asset:        NewInMemoryAssetStore(),
	}
	s.db = NewMockPostgresClient()
	s.logger = logger.GetLogger()
	s.config = config.GetDefaultConfig()
	s.ctx = context.Background()
}

func (s *BaseServiceTestSuite) TearDownTest() {
	s.stores.Ledger.Clear()
	s.stores.Payment.Clear()
	s.stores.VideoRequest.Clear()
	s.stores.WebhookLog.Clear()
	s.stores.Idempotency.Clear()
	s.stores.Account.Clear()
	s.stores.Brief.Clear()
	s.stores.Asset.Clear()
}

func (s *BaseServiceTestSuite) GetStores() Stores {
	return s.stores
}

func (s *BaseServiceTestSuite) GetDB() *MockPostgresClient {
	return s.db
}

func (s *BaseServiceTestSuite) GetLogger() *logger.Logger {
	return s.logger
}

func (s *BaseServiceTestSuite) GetConfig() *config.Configuration {
	return s.config
}

// GetContext returns a background context.
func (s *BaseServiceTestSuite) GetContext() context.Context {
	return s.ctx
}

// GetAuthContext returns a context carrying an authenticated account id.
func (s *BaseServiceTestSuite) GetAuthContext(accountID string) context.Context {
	return types.SetUserID(s.ctx, accountID)
}
