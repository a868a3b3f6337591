package automation

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/reelkit/reelkit/internal/config"
	ierr "github.com/reelkit/reelkit/internal/errors"
	"github.com/reelkit/reelkit/internal/logger"
	"github.com/reelkit/reelkit/internal/types"
)

const contractVersion = "1"

// DispatchResult captures the outcome of one outbound call for the audit log.
type DispatchResult struct {
	StatusCode int
	Response   json.RawMessage
}

// Client posts batch dispatch payloads to the automation webhook.
type Client interface {
	Dispatch(ctx context.Context, idempotencyKey string, payload *DispatchPayload) (*DispatchResult, error)
}

type client struct {
	webhookURL string
	httpClient *retryablehttp.Client
	logger     *logger.Logger
}

// NewClient builds the automation webhook client. Retries use exponential
// backoff up to the configured attempt count; the overall call is bounded by
// the configured timeout so a slow automation service never holds a request
// handler open.
func NewClient(cfg *config.Configuration, log *logger.Logger) Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = cfg.Automation.MaxRetries
	rc.RetryWaitMin = 500 * time.Millisecond
	rc.RetryWaitMax = 5 * time.Second
	rc.HTTPClient.Timeout = cfg.Automation.Timeout
	rc.Logger = log.GetRetryableHTTPLogger()

	return &client{
		webhookURL: cfg.Automation.WebhookURL,
		httpClient: rc,
		logger:     log,
	}
}

func (c *client) Dispatch(ctx context.Context, idempotencyKey string, payload *DispatchPayload) (*DispatchResult, error) {
	if c.webhookURL == "" {
		return nil, ierr.NewError("automation webhook url is not configured").
			WithHint("Set the automation webhook URL to enable dispatch").
			Mark(ierr.ErrSystem)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to encode dispatch payload").
			Mark(ierr.ErrInternal)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(body))
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to build dispatch request").
			Mark(ierr.ErrInternal)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Contract-Version", contractVersion)
	req.Header.Set(types.HeaderIdempotencyKey, idempotencyKey)

	c.logger.Infow("dispatching batch to automation webhook",
		"batch_id", payload.VideoGeneration.BatchID,
		"video_count", payload.VideoGeneration.VideoCount)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Automation webhook is unreachable").
			WithReportableDetails(map[string]interface{}{
				"batch_id": payload.VideoGeneration.BatchID,
			}).
			Mark(ierr.ErrHTTPClient)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		respBody = nil
	}

	result := &DispatchResult{
		StatusCode: resp.StatusCode,
		Response:   respBody,
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return result, ierr.NewErrorf("automation webhook returned status %d", resp.StatusCode).
			WithHint("Automation service rejected the dispatch").
			WithReportableDetails(map[string]interface{}{
				"batch_id":    payload.VideoGeneration.BatchID,
				"status_code": resp.StatusCode,
			}).
			Mark(ierr.ErrHTTPClient)
	}

	return result, nil
}
