package payment

import (
	"encoding/json"
	"time"

	ierr "github.com/reelkit/reelkit/internal/errors"
	"github.com/reelkit/reelkit/internal/types"
)

// Payment is one row per processed external payment event. ProviderEventID is
// globally unique and is the primary idempotency boundary for the webhook flow.
type Payment struct {
	ID                 string              `json:"id"`
	ProviderEventID    string              `json:"provider_event_id"`
	ProviderObject     string              `json:"provider_object"`
	ProviderCustomerID *string             `json:"provider_customer_id,omitempty"`
	AccountID          *string             `json:"account_id,omitempty"`
	Kind               types.PaymentKind   `json:"payment_kind"`
	AmountCents        int64               `json:"amount_cents"`
	Currency           string              `json:"currency"`
	Status             types.PaymentStatus `json:"status"`
	CreditsGranted     int64               `json:"credits_granted"`
	Metadata           json.RawMessage     `json:"metadata,omitempty"`
	CreatedAt          time.Time           `json:"created_at"`
}

func (p *Payment) Validate() error {
	if p.ProviderEventID == "" {
		return ierr.NewError("provider_event_id is required").
			WithHint("Payments must reference the provider event that produced them").
			Mark(ierr.ErrValidation)
	}
	if p.Kind != types.PaymentKindSubscription && p.Kind != types.PaymentKindOneOff {
		return ierr.NewErrorf("invalid payment kind: %s", p.Kind).
			Mark(ierr.ErrValidation)
	}
	if p.AmountCents < 0 {
		return ierr.NewError("amount_cents must not be negative").
			Mark(ierr.ErrValidation)
	}
	return nil
}
