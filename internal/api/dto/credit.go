package dto

import (
	"time"

	ierr "github.com/reelkit/reelkit/internal/errors"
)

// BalanceResponse carries the derived credit balance for an account.
type BalanceResponse struct {
	AccountID string `json:"account_id"`
	Balance   int64  `json:"balance"`
}

// LedgerEntryResponse is one credit movement in an account's history.
type LedgerEntryResponse struct {
	ID        string    `json:"id"`
	Amount    int64     `json:"amount"`
	Source    string    `json:"source"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// AdminGrantRequest credits an account manually. The idempotency key is
// header-supplied so a retried admin action never grants twice.
type AdminGrantRequest struct {
	AccountID string `json:"account_id"`
	Credits   int64  `json:"credits"`
	Note      string `json:"note,omitempty"`

	IdempotencyKey string `json:"-"`
}

func (r *AdminGrantRequest) Validate() error {
	if r.AccountID == "" {
		return ierr.NewError("account_id is required").
			Mark(ierr.ErrValidation)
	}
	if r.Credits <= 0 {
		return ierr.NewError("credits must be a positive integer").
			WithHint("Use a positive grant; reversals go through refunds").
			Mark(ierr.ErrValidation)
	}
	if r.IdempotencyKey == "" {
		return ierr.NewError("idempotency key is required").
			WithHint("Send a key in the Idempotency-Key header").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// AdminGrantResponse reports the grant and the account's new balance.
type AdminGrantResponse struct {
	Success  bool   `json:"success"`
	EntryID  string `json:"entry_id"`
	Balance  int64  `json:"balance"`
	Replayed bool   `json:"replayed,omitempty"`
}
