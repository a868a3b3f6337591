package ledger

import (
	"time"

	ierr "github.com/reelkit/reelkit/internal/errors"
	"github.com/reelkit/reelkit/internal/types"
)

// Entry is one immutable signed credit movement. The account balance is always
// the sum of entries; no balance column exists anywhere.
type Entry struct {
	ID        string             `json:"id"`
	AccountID string             `json:"account_id"`
	Amount    int64              `json:"amount"`
	Source    types.CreditSource `json:"source"`
	PaymentID *string            `json:"payment_id,omitempty"`
	EventID   *string            `json:"event_id,omitempty"`
	Note      string             `json:"note,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
}

func (e *Entry) Validate() error {
	if e.AccountID == "" {
		return ierr.NewError("account_id is required").
			WithHint("Ledger entries must belong to an account").
			Mark(ierr.ErrValidation)
	}
	if e.Amount == 0 {
		return ierr.NewError("ledger entry amount must be non-zero").
			WithHint("Zero-amount ledger entries are not allowed").
			Mark(ierr.ErrValidation)
	}
	if !e.Source.Validate() {
		return ierr.NewErrorf("invalid credit source: %s", e.Source).
			WithHint("Unknown ledger entry source").
			Mark(ierr.ErrValidation)
	}
	if e.Source == types.CreditSourceConsumption && e.Amount > 0 {
		return ierr.NewError("consumption entries must be negative").
			Mark(ierr.ErrValidation)
	}
	return nil
}
