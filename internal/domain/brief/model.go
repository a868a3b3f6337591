package brief

import (
	"encoding/json"
	"time"
)

// Brief is a completed UGC intake form. Batch creation requires the caller's
// latest completed brief; this engine only reads them.
type Brief struct {
	ID               string          `json:"id"`
	AccountID        string          `json:"account_id"`
	ClientName       string          `json:"client_name"`
	VideoDuration    string          `json:"video_duration"`
	RecordingFormats []string        `json:"recording_formats,omitempty"`
	Payload          json.RawMessage `json:"payload"`
	Completed        bool            `json:"completed"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// DurationSeconds maps the brief's duration choice to seconds for the
// automation contract. Unknown values fall back to 60.
func (b *Brief) DurationSeconds() int {
	switch b.VideoDuration {
	case "15s":
		return 15
	case "30s":
		return 30
	case "60s":
		return 60
	case "90s":
		return 90
	default:
		return 60
	}
}

// AspectRatio derives the target ratio from the selected recording formats.
func (b *Brief) AspectRatio() string {
	if len(b.RecordingFormats) == 0 {
		return "16:9"
	}
	for _, f := range b.RecordingFormats {
		if f == "Vertical (9:16)" || f == "TikTok/Instagram Stories" {
			return "9:16"
		}
	}
	for _, f := range b.RecordingFormats {
		if f == "Square (1:1)" || f == "Instagram Feed" {
			return "1:1"
		}
	}
	return "16:9"
}
