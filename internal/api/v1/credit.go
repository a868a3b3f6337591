package v1

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/reelkit/reelkit/internal/api/dto"
	ierr "github.com/reelkit/reelkit/internal/errors"
	"github.com/reelkit/reelkit/internal/logger"
	"github.com/reelkit/reelkit/internal/service"
	"github.com/reelkit/reelkit/internal/types"
)

// CreditHandler serves balance reads and the admin grant endpoint.
type CreditHandler struct {
	creditService service.CreditService
	log           *logger.Logger
}

func NewCreditHandler(creditService service.CreditService, log *logger.Logger) *CreditHandler {
	return &CreditHandler{
		creditService: creditService,
		log:           log,
	}
}

// @Summary Get the caller's credit balance
// @Description Balance is the sum of the account's ledger entries, computed at read time.
// @Tags Credits
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} dto.BalanceResponse
// @Router /credits/balance [get]
func (h *CreditHandler) GetBalance(c *gin.Context) {
	resp, err := h.creditService.GetBalance(c.Request.Context(), types.GetUserID(c.Request.Context()))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary List the caller's ledger entries
// @Tags Credits
// @Produce json
// @Security ApiKeyAuth
// @Param limit query int false "Maximum rows to return"
// @Success 200 {array} dto.LedgerEntryResponse
// @Router /credits/ledger [get]
func (h *CreditHandler) ListEntries(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	resp, err := h.creditService.ListEntries(c.Request.Context(), types.GetUserID(c.Request.Context()), limit)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Grant credits to an account
// @Description Manual credit grant for support and promotions. Retries with the same Idempotency-Key grant once.
// @Tags Credits
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param Idempotency-Key header string true "Admin-generated grant key"
// @Param grant body dto.AdminGrantRequest true "Grant details"
// @Success 201 {object} dto.AdminGrantResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Router /admin/credits/grant [post]
func (h *CreditHandler) AdminGrant(c *gin.Context) {
	var req dto.AdminGrantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Errorw("failed to bind request body", "error", err)
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}
	req.IdempotencyKey = c.GetHeader(types.HeaderIdempotencyKey)

	resp, err := h.creditService.AdminGrant(c.Request.Context(), &req)
	if err != nil {
		h.log.Errorw("failed to apply admin grant", "error", err)
		c.Error(err)
		return
	}

	status := http.StatusCreated
	if resp.Replayed {
		status = http.StatusOK
	}
	c.JSON(status, resp)
}
