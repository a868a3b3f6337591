package v1

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	ierr "github.com/reelkit/reelkit/internal/errors"
	"github.com/reelkit/reelkit/internal/logger"
	"github.com/reelkit/reelkit/internal/service"
	"github.com/reelkit/reelkit/internal/types"
)

const maxWebhookBodyBytes = 1 << 20

// WebhookHandler receives payment provider events.
type WebhookHandler struct {
	webhookService service.WebhookService
	log            *logger.Logger
}

func NewWebhookHandler(webhookService service.WebhookService, log *logger.Logger) *WebhookHandler {
	return &WebhookHandler{
		webhookService: webhookService,
		log:            log,
	}
}

// @Summary Ingest a payment provider webhook event
// @Description Processes billing events and reconciles the credit ledger. Retried deliveries are acknowledged without reprocessing.
// @Tags Webhooks
// @Accept json
// @Produce json
// @Success 200 {object} dto.WebhookResult
// @Failure 400 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /webhooks/stripe [post]
func (h *WebhookHandler) HandleStripeEvent(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBodyBytes))
	if err != nil {
		h.log.Errorw("failed to read webhook body", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "unreadable request body"})
		return
	}

	result, err := h.webhookService.ProcessEvent(c.Request.Context(), payload, c.GetHeader(types.HeaderStripeSignature))
	if err != nil {
		h.log.Errorw("failed to process webhook event", "error", err)
		status := http.StatusInternalServerError
		if ierr.IsValidation(err) || ierr.IsPermissionDenied(err) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"ok": false, "error": ierr.Hint(err)})
		return
	}

	c.JSON(http.StatusOK, result)
}
