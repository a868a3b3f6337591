package stripe

import (
	"encoding/json"
	"strconv"

	"github.com/samber/lo"
	stripesdk "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"

	ierr "github.com/reelkit/reelkit/internal/errors"
	"github.com/reelkit/reelkit/internal/types"
)

// ParseEvent decodes the provider's event envelope. When a webhook signing
// secret is configured the signature header is verified first; with an empty
// secret the body is trusted as-is, which is only acceptable for local and
// test setups.
func ParseEvent(payload []byte, signatureHeader, webhookSecret string) (*stripesdk.Event, error) {
	if webhookSecret != "" {
		event, err := webhook.ConstructEvent(payload, signatureHeader, webhookSecret)
		if err != nil {
			return nil, ierr.WithError(err).
				WithHint("Webhook signature verification failed").
				Mark(ierr.ErrPermissionDenied)
		}
		return &event, nil
	}

	var event stripesdk.Event
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Webhook body is not a valid event envelope").
			Mark(ierr.ErrValidation)
	}
	return &event, nil
}

// Normalize reduces a provider event to its canonical form. It is a pure
// function over the event payload; it performs no I/O and never resolves
// accounts. Unrecognized event types come back as an Ignored event so the
// caller can acknowledge without side effects.
func Normalize(event *stripesdk.Event) (*CanonicalPaymentEvent, error) {
	if event.ID == "" || event.Type == "" {
		return nil, ierr.NewError("event id and type are required").
			WithHint("The event envelope is missing its identifier or type").
			Mark(ierr.ErrValidation)
	}

	canonical := &CanonicalPaymentEvent{
		ProviderEventID: event.ID,
		EventType:       string(event.Type),
	}
	if event.Data != nil {
		canonical.RawObject = event.Data.Raw
	}

	switch string(event.Type) {
	case eventTypeCheckoutCompleted:
		return normalizeCheckout(event, canonical)
	case eventTypeInvoicePaid:
		return normalizeInvoice(event, canonical)
	case eventTypeChargeRefunded:
		return normalizeChargeRefund(event, canonical)
	case eventTypeInvoicePaymentRefund:
		return normalizeInvoiceRefund(event, canonical)
	default:
		canonical.Kind = EventKindIgnored
		return canonical, nil
	}
}

func normalizeCheckout(event *stripesdk.Event, canonical *CanonicalPaymentEvent) (*CanonicalPaymentEvent, error) {
	var session stripesdk.CheckoutSession
	if err := unmarshalObject(event, &session); err != nil {
		return nil, err
	}

	canonical.Kind = EventKindCheckoutCompleted
	canonical.ObjectKind = "checkout_session"
	canonical.AmountCents = session.AmountTotal
	canonical.Currency = string(session.Currency)
	canonical.PaymentKind = types.PaymentKindOneOff
	if session.Mode == stripesdk.CheckoutSessionModeSubscription {
		canonical.PaymentKind = types.PaymentKindSubscription
	}
	if session.Customer != nil {
		canonical.ProviderCustomerID = session.Customer.ID
	}
	if session.CustomerDetails != nil {
		canonical.CustomerEmail = session.CustomerDetails.Email
	}
	if session.CustomerEmail != "" {
		canonical.CustomerEmail = session.CustomerEmail
	}

	if session.LineItems != nil {
		canonical.Credits = lo.SumBy(session.LineItems.Data, lineItemCredits)
	}

	return canonical, nil
}

func normalizeInvoice(event *stripesdk.Event, canonical *CanonicalPaymentEvent) (*CanonicalPaymentEvent, error) {
	var invoice stripesdk.Invoice
	if err := unmarshalObject(event, &invoice); err != nil {
		return nil, err
	}

	canonical.Kind = EventKindInvoicePaid
	canonical.ObjectKind = "invoice"
	canonical.AmountCents = invoice.AmountPaid
	canonical.Currency = string(invoice.Currency)
	canonical.PaymentKind = types.PaymentKindSubscription
	if invoice.Customer != nil {
		canonical.ProviderCustomerID = invoice.Customer.ID
	}
	canonical.CustomerEmail = invoice.CustomerEmail

	if invoice.Lines != nil {
		canonical.Credits = lo.SumBy(invoice.Lines.Data, func(line *stripesdk.InvoiceLineItem) int64 {
			if line == nil {
				return 0
			}
			return metadataCredits(line.Metadata, "credits_included")
		})
	}

	return canonical, nil
}

func normalizeChargeRefund(event *stripesdk.Event, canonical *CanonicalPaymentEvent) (*CanonicalPaymentEvent, error) {
	var charge stripesdk.Charge
	if err := unmarshalObject(event, &charge); err != nil {
		return nil, err
	}

	canonical.Kind = EventKindRefund
	canonical.ObjectKind = "charge"
	canonical.AmountCents = charge.Amount
	canonical.AmountRefundedCents = charge.AmountRefunded
	canonical.Currency = string(charge.Currency)
	canonical.PaymentKind = types.PaymentKindOneOff
	if charge.Customer != nil {
		canonical.ProviderCustomerID = charge.Customer.ID
	}
	if charge.BillingDetails != nil {
		canonical.CustomerEmail = charge.BillingDetails.Email
	}

	return canonical, nil
}

func normalizeInvoiceRefund(event *stripesdk.Event, canonical *CanonicalPaymentEvent) (*CanonicalPaymentEvent, error) {
	var invoice stripesdk.Invoice
	if err := unmarshalObject(event, &invoice); err != nil {
		return nil, err
	}

	canonical.Kind = EventKindRefund
	canonical.ObjectKind = "invoice"
	canonical.AmountCents = invoice.AmountPaid
	canonical.AmountRefundedCents = invoice.AmountPaid
	canonical.Currency = string(invoice.Currency)
	canonical.PaymentKind = types.PaymentKindSubscription
	if invoice.Customer != nil {
		canonical.ProviderCustomerID = invoice.Customer.ID
	}
	canonical.CustomerEmail = invoice.CustomerEmail

	return canonical, nil
}

func unmarshalObject(event *stripesdk.Event, target interface{}) error {
	if event.Data == nil || len(event.Data.Raw) == 0 {
		return ierr.NewError("event has no data object").
			WithHint("The event envelope is missing data.object").
			WithReportableDetails(map[string]interface{}{
				"event_type": event.Type,
			}).
			Mark(ierr.ErrValidation)
	}
	if err := json.Unmarshal(event.Data.Raw, target); err != nil {
		return ierr.WithError(err).
			WithHint("Event data object does not match its declared type").
			WithReportableDetails(map[string]interface{}{
				"event_type": event.Type,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// lineItemCredits reads the per-unit credit grant from the price metadata.
// Items without the metadata key, or with a non-numeric value, grant nothing.
func lineItemCredits(item *stripesdk.LineItem) int64 {
	if item == nil || item.Price == nil {
		return 0
	}
	qty := item.Quantity
	if qty <= 0 {
		qty = 1
	}
	return metadataCredits(item.Price.Metadata, "credits") * qty
}

func metadataCredits(metadata map[string]string, key string) int64 {
	raw, ok := metadata[key]
	if !ok {
		return 0
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
