package automation

import (
	"encoding/json"
	"time"
)

// DispatchPayload is the body posted to the video-generation automation
// service. The shape is contract version 1; bump the header and this struct
// together. RequestID is the batch id and the idempotency key travels in the
// body as well as the Idempotency-Key header so the automation side can
// deduplicate without access to transport headers.
type DispatchPayload struct {
	IdempotencyKey  string          `json:"idempotency_key"`
	RequestID       string          `json:"request_id"`
	UserID          string          `json:"user_id"`
	Branding        Branding        `json:"branding"`
	Brolls          []BrollAsset    `json:"brolls"`
	UGCBrief        json.RawMessage `json:"ugc_brief"`
	VideoGeneration VideoGeneration `json:"video_generation"`
	Constraints     Constraints     `json:"constraints"`
	VideoRequestIDs []string        `json:"video_request_ids"`
	CreatedAt       time.Time       `json:"created_at"`
}

type Branding struct {
	LogoURL string   `json:"logo_url,omitempty"`
	Palette []string `json:"palette,omitempty"`
}

type BrollAsset struct {
	URL         string `json:"url"`
	StoragePath string `json:"storage_path"`
}

type VideoGeneration struct {
	VideoCount         int    `json:"video_count"`
	CustomInstructions string `json:"custom_instructions,omitempty"`
	BatchID            string `json:"batch_id"`
}

type Constraints struct {
	DurationSec int    `json:"duration_sec"`
	Ratio       string `json:"ratio"`
}
