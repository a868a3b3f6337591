package stripe

import (
	"encoding/json"

	"github.com/reelkit/reelkit/internal/types"
)

// EventKind classifies a provider event after normalization.
type EventKind string

const (
	EventKindCheckoutCompleted EventKind = "checkout_completed"
	EventKindInvoicePaid       EventKind = "invoice_paid"
	EventKindRefund            EventKind = "refund"
	EventKindIgnored           EventKind = "ignored"
)

// Recognized provider event types. Everything else normalizes to Ignored.
const (
	eventTypeCheckoutCompleted    = "checkout.session.completed"
	eventTypeInvoicePaid          = "invoice.paid"
	eventTypeChargeRefunded       = "charge.refunded"
	eventTypeInvoicePaymentRefund = "invoice.payment_refunded"
)

// CanonicalPaymentEvent is the provider-agnostic shape every inbound billing
// event is reduced to. Account resolution is left to the caller; the
// normalizer only extracts the identifiers needed to resolve one.
type CanonicalPaymentEvent struct {
	ProviderEventID string
	EventType       string
	Kind            EventKind
	ObjectKind      string

	ProviderCustomerID string
	CustomerEmail      string

	AmountCents         int64
	AmountRefundedCents int64
	Currency            string
	Credits             int64
	PaymentKind         types.PaymentKind

	RawObject json.RawMessage
}

// IsIgnored reports whether the event carries no billing meaning for us.
func (e *CanonicalPaymentEvent) IsIgnored() bool {
	return e.Kind == EventKindIgnored
}

// IsRefund reports whether the event reverses a prior payment.
func (e *CanonicalPaymentEvent) IsRefund() bool {
	return e.Kind == EventKindRefund
}
