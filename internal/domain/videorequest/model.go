package videorequest

import (
	"time"

	"github.com/reelkit/reelkit/internal/types"
)

// Batch groups the video requests created and paid for in one submission.
type Batch struct {
	ID        string    `json:"id"`
	AccountID string    `json:"account_id"`
	CreatedAt time.Time `json:"created_at"`
}

// VideoRequest is one unit of video generation work. One credit is consumed
// per request at creation time.
type VideoRequest struct {
	ID        string                   `json:"id"`
	AccountID string                   `json:"account_id"`
	BatchID   string                   `json:"batch_id"`
	Status    types.VideoRequestStatus `json:"status"`
	CreatedAt time.Time                `json:"created_at"`
	UpdatedAt time.Time                `json:"updated_at"`
}
