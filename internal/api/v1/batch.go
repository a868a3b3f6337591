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

// BatchHandler serves video batch creation and read endpoints.
type BatchHandler struct {
	batchService service.BatchService
	log          *logger.Logger
}

func NewBatchHandler(batchService service.BatchService, log *logger.Logger) *BatchHandler {
	return &BatchHandler{
		batchService: batchService,
		log:          log,
	}
}

// @Summary Create a video generation batch
// @Description Atomically debits credits and queues N video requests. Retries with the same Idempotency-Key replay the original batch.
// @Tags Videos
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param Idempotency-Key header string true "Client-generated submission key"
// @Param batch body dto.CreateBatchRequest true "Batch configuration"
// @Success 201 {object} dto.CreateBatchResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 402 {object} ierr.ErrorResponse
// @Failure 409 {object} ierr.ErrorResponse
// @Router /videos/batches [post]
func (h *BatchHandler) CreateBatch(c *gin.Context) {
	var req dto.CreateBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Errorw("failed to bind request body", "error", err)
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}
	req.IdempotencyKey = c.GetHeader(types.HeaderIdempotencyKey)

	resp, err := h.batchService.CreateBatch(c.Request.Context(), &req)
	if err != nil {
		h.log.Errorw("failed to create batch", "error", err)
		c.Error(err)
		return
	}

	status := http.StatusCreated
	if resp.Replayed {
		status = http.StatusOK
	}
	c.JSON(status, resp)
}

// @Summary Get a batch with its requests
// @Tags Videos
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Batch ID"
// @Success 200 {object} dto.BatchDetailResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Router /videos/batches/{id} [get]
func (h *BatchHandler) GetBatch(c *gin.Context) {
	resp, err := h.batchService.GetBatch(c.Request.Context(), types.GetUserID(c.Request.Context()), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary List the caller's video requests
// @Tags Videos
// @Produce json
// @Security ApiKeyAuth
// @Param limit query int false "Maximum rows to return"
// @Success 200 {object} dto.ListVideosResponse
// @Router /videos [get]
func (h *BatchHandler) ListVideos(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	resp, err := h.batchService.ListVideos(c.Request.Context(), types.GetUserID(c.Request.Context()), limit)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
