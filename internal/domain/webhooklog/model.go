package webhooklog

import (
	"encoding/json"
	"time"

	"github.com/reelkit/reelkit/internal/types"
)

// Log is one append-only audit record of a webhook exchange, inbound or
// outbound. Logs are never mutated.
type Log struct {
	ID             string                 `json:"id"`
	Direction      types.WebhookDirection `json:"direction"`
	Provider       string                 `json:"provider,omitempty"`
	EventType      string                 `json:"event_type,omitempty"`
	IdempotencyKey string                 `json:"idempotency_key,omitempty"`
	Status         int                    `json:"status"`
	Payload        json.RawMessage        `json:"payload,omitempty"`
	Response       json.RawMessage        `json:"response,omitempty"`
	Error          string                 `json:"error,omitempty"`
	CreatedAt      time.Time              `json:"created_at"`
}
