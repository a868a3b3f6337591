package types

// WebhookDirection distinguishes provider-initiated events from our own
// outbound dispatches.
type WebhookDirection string

const (
	WebhookDirectionInbound  WebhookDirection = "inbound"
	WebhookDirectionOutbound WebhookDirection = "outbound"
)

// Webhook providers recorded in the audit log.
const (
	WebhookProviderStripe     = "stripe"
	WebhookProviderMock       = "mock"
	WebhookProviderAutomation = "n8n"
)

// Outbound event type recorded for automation dispatches.
const WebhookEventVideoGeneration = "n8n_video_generation"
