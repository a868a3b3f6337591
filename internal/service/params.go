package service

import (
	"github.com/reelkit/reelkit/internal/config"
	"github.com/reelkit/reelkit/internal/domain/account"
	"github.com/reelkit/reelkit/internal/domain/asset"
	"github.com/reelkit/reelkit/internal/domain/brief"
	"github.com/reelkit/reelkit/internal/domain/idempotency"
	"github.com/reelkit/reelkit/internal/domain/ledger"
	"github.com/reelkit/reelkit/internal/domain/payment"
	"github.com/reelkit/reelkit/internal/domain/videorequest"
	"github.com/reelkit/reelkit/internal/domain/webhooklog"
	"github.com/reelkit/reelkit/internal/integration/automation"
	"github.com/reelkit/reelkit/internal/logger"
	"github.com/reelkit/reelkit/internal/postgres"
	"github.com/reelkit/reelkit/internal/storage"
)

// ServiceParams bundles the dependencies shared by all services. Services
// embed it and pick what they need.
type ServiceParams struct {
	Logger *logger.Logger
	Config *config.Configuration
	DB     postgres.IClient

	LedgerRepo       ledger.Repository
	PaymentRepo      payment.Repository
	VideoRequestRepo videorequest.Repository
	WebhookLogRepo   webhooklog.Repository
	IdempotencyRepo  idempotency.Repository
	AccountRepo      account.Repository
	BriefRepo        brief.Repository
	AssetRepo        asset.Repository

	AutomationClient automation.Client
	SignedURLs       storage.SignedURLProvider
}
