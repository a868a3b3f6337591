package dto

import (
	ierr "github.com/reelkit/reelkit/internal/errors"
)

const maxVideosPerBatch = 20

// CreateBatchRequest is the authenticated client's batch submission. The
// idempotency key arrives in a header and is attached by the handler, not the
// JSON body.
type CreateBatchRequest struct {
	VideoCount         int      `json:"video_count"`
	CustomInstructions string   `json:"custom_instructions,omitempty"`
	BrandingAssetRefs  []string `json:"branding_asset_refs,omitempty"`

	IdempotencyKey string `json:"-"`
}

func (r *CreateBatchRequest) Validate() error {
	if r.VideoCount <= 0 {
		return ierr.NewError("video_count must be a positive integer").
			WithHint("Request at least one video").
			Mark(ierr.ErrValidation)
	}
	if r.VideoCount > maxVideosPerBatch {
		return ierr.NewError("video_count exceeds the per-batch limit").
			WithHint("Split large orders into multiple batches").
			WithReportableDetails(map[string]interface{}{
				"video_count": r.VideoCount,
				"max":         maxVideosPerBatch,
			}).
			Mark(ierr.ErrValidation)
	}
	if r.IdempotencyKey == "" {
		return ierr.NewError("idempotency key is required").
			WithHint("Send a client-generated key in the Idempotency-Key header").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// CreateBatchResponse is returned for both fresh batches and idempotent
// replays; a replay carries the original batch's ids.
type CreateBatchResponse struct {
	Success    bool     `json:"success"`
	BatchID    string   `json:"batch_id"`
	RequestIDs []string `json:"request_ids"`
	Replayed   bool     `json:"replayed,omitempty"`
}
