package rest

import (
	"github.com/gin-gonic/gin"

	v1 "github.com/reelkit/reelkit/internal/api/v1"
	"github.com/reelkit/reelkit/internal/auth"
	"github.com/reelkit/reelkit/internal/config"
	"github.com/reelkit/reelkit/internal/logger"
	"github.com/reelkit/reelkit/internal/rest/middleware"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Webhook *v1.WebhookHandler
	Batch   *v1.BatchHandler
	Credit  *v1.CreditHandler
}

// NewRouter wires middleware and routes. The webhook endpoint is public by
// design; the provider authenticates with its signature, not a bearer token.
func NewRouter(handlers Handlers, cfg *config.Configuration, log *logger.Logger, validator auth.Validator) *gin.Engine {
	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestIDMiddleware,
		middleware.SentryMiddleware(cfg),
		middleware.LoggingMiddleware(log),
		middleware.ErrorHandler,
	)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	public := router.Group("/v1")
	public.POST("/webhooks/stripe", handlers.Webhook.HandleStripeEvent)

	private := router.Group("/v1")
	private.Use(
		middleware.AuthMiddleware(validator, log),
		middleware.SentryAccountContextMiddleware,
	)

	private.POST("/videos/batches", handlers.Batch.CreateBatch)
	private.GET("/videos/batches/:id", handlers.Batch.GetBatch)
	private.GET("/videos", handlers.Batch.ListVideos)

	private.GET("/credits/balance", handlers.Credit.GetBalance)
	private.GET("/credits/ledger", handlers.Credit.ListEntries)

	private.POST("/admin/credits/grant", handlers.Credit.AdminGrant)

	return router
}
