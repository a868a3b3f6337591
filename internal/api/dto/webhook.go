package dto

// WebhookResult is the acknowledgement body returned to the payment provider.
// Exactly one of the outcome flags is set on success.
type WebhookResult struct {
	OK              bool   `json:"ok"`
	Processed       bool   `json:"processed,omitempty"`
	Idempotent      bool   `json:"idempotent,omitempty"`
	Ignored         bool   `json:"ignored,omitempty"`
	Refunded        bool   `json:"refunded,omitempty"`
	EventType       string `json:"event_type,omitempty"`
	CreditsGranted  int64  `json:"credits_granted,omitempty"`
	CreditsReversed int64  `json:"credits_reversed,omitempty"`
}
