package dto

import (
	"time"

	"github.com/reelkit/reelkit/internal/domain/videorequest"
	"github.com/reelkit/reelkit/internal/types"
)

// VideoRequestResponse is the client-facing view of one video request.
type VideoRequestResponse struct {
	ID        string                   `json:"id"`
	BatchID   string                   `json:"batch_id"`
	Status    types.VideoRequestStatus `json:"status"`
	CreatedAt time.Time                `json:"created_at"`
	UpdatedAt time.Time                `json:"updated_at"`
}

// NewVideoRequestResponse maps a domain request to its response shape.
func NewVideoRequestResponse(vr *videorequest.VideoRequest) *VideoRequestResponse {
	return &VideoRequestResponse{
		ID:        vr.ID,
		BatchID:   vr.BatchID,
		Status:    vr.Status,
		CreatedAt: vr.CreatedAt,
		UpdatedAt: vr.UpdatedAt,
	}
}

// BatchDetailResponse is one batch with all of its requests.
type BatchDetailResponse struct {
	BatchID   string                  `json:"batch_id"`
	AccountID string                  `json:"account_id"`
	CreatedAt time.Time               `json:"created_at"`
	Requests  []*VideoRequestResponse `json:"requests"`
}

// ListVideosResponse is a page of an account's video requests.
type ListVideosResponse struct {
	Items []*VideoRequestResponse `json:"items"`
	Count int                     `json:"count"`
}
