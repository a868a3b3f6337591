package main

import (
	"context"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	v1 "github.com/reelkit/reelkit/internal/api/v1"
	"github.com/reelkit/reelkit/internal/auth"
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
	repo "github.com/reelkit/reelkit/internal/repository/postgres"
	"github.com/reelkit/reelkit/internal/rest"
	"github.com/reelkit/reelkit/internal/service"
	"github.com/reelkit/reelkit/internal/storage"
)

func main() {
	app := fx.New(
		fx.Provide(
			config.NewConfig,
			logger.NewLogger,
			newPostgresClient,
			newSignedURLProvider,
			automation.NewClient,
			auth.NewValidator,

			repo.NewLedgerRepository,
			repo.NewPaymentRepository,
			repo.NewVideoRequestRepository,
			repo.NewWebhookLogRepository,
			repo.NewIdempotencyRepository,
			repo.NewAccountRepository,
			repo.NewBriefRepository,
			repo.NewAssetRepository,

			newServiceParams,
			service.NewWebhookService,
			service.NewBatchService,
			service.NewCreditService,

			v1.NewWebhookHandler,
			v1.NewBatchHandler,
			v1.NewCreditHandler,
			newRouter,
		),
		fx.Invoke(initSentry),
		fx.Invoke(startServer),
	)

	app.Run()
}

func newPostgresClient(lc fx.Lifecycle, cfg *config.Configuration, log *logger.Logger) (postgres.IClient, error) {
	client, err := postgres.NewClient(cfg, log)
	if err != nil {
		return nil, err
	}

	if cfg.Postgres.AutoMigrate {
		if err := client.Migrate(); err != nil {
			return nil, err
		}
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})

	return client, nil
}

func newSignedURLProvider(cfg *config.Configuration, log *logger.Logger) (storage.SignedURLProvider, error) {
	return storage.NewS3Provider(context.Background(), cfg, log)
}

func newServiceParams(
	cfg *config.Configuration,
	log *logger.Logger,
	db postgres.IClient,
	ledgerRepo ledger.Repository,
	paymentRepo payment.Repository,
	videoRequestRepo videorequest.Repository,
	webhookLogRepo webhooklog.Repository,
	idempotencyRepo idempotency.Repository,
	accountRepo account.Repository,
	briefRepo brief.Repository,
	assetRepo asset.Repository,
	automationClient automation.Client,
	signedURLs storage.SignedURLProvider,
) service.ServiceParams {
	return service.ServiceParams{
		Logger:           log,
		Config:           cfg,
		DB:               db,
		LedgerRepo:       ledgerRepo,
		PaymentRepo:      paymentRepo,
		VideoRequestRepo: videoRequestRepo,
		WebhookLogRepo:   webhookLogRepo,
		IdempotencyRepo:  idempotencyRepo,
		AccountRepo:      accountRepo,
		BriefRepo:        briefRepo,
		AssetRepo:        assetRepo,
		AutomationClient: automationClient,
		SignedURLs:       signedURLs,
	}
}

func newRouter(
	webhookHandler *v1.WebhookHandler,
	batchHandler *v1.BatchHandler,
	creditHandler *v1.CreditHandler,
	cfg *config.Configuration,
	log *logger.Logger,
	validator auth.Validator,
) *gin.Engine {
	if cfg.Deployment.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	return rest.NewRouter(rest.Handlers{
		Webhook: webhookHandler,
		Batch:   batchHandler,
		Credit:  creditHandler,
	}, cfg, log, validator)
}

func initSentry(cfg *config.Configuration, log *logger.Logger) {
	if !cfg.Sentry.Enabled {
		return
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.Sentry.DSN,
		Environment:      cfg.Sentry.Environment,
		TracesSampleRate: cfg.Sentry.SampleRate,
	})
	if err != nil {
		log.Errorw("failed to initialize sentry", "error", err)
	}
}

func startServer(lc fx.Lifecycle, router *gin.Engine, cfg *config.Configuration, log *logger.Logger) {
	srv := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("starting server", "addr", srv.Addr)
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatalf("server failed: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Infow("stopping server")
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			if cfg.Sentry.Enabled {
				sentry.Flush(2 * time.Second)
			}
			return srv.Shutdown(shutdownCtx)
		},
	})
}
