package idempotency

import (
	"time"

	ierr "github.com/reelkit/reelkit/internal/errors"
)

// KeyRecord is the durable witness that an external key has been fully
// processed. It is written in the same transaction as the state mutation it
// guards, so "key seen" and "effect applied" are always both-or-neither.
type KeyRecord struct {
	Key       string    `json:"key"`
	Scope     string    `json:"scope"`
	ResultRef string    `json:"result_ref"`
	CreatedAt time.Time `json:"created_at"`
}

func (r *KeyRecord) Validate() error {
	if r.Key == "" {
		return ierr.NewError("idempotency key is required").
			Mark(ierr.ErrValidation)
	}
	if r.Scope == "" {
		return ierr.NewError("idempotency scope is required").
			Mark(ierr.ErrValidation)
	}
	if r.ResultRef == "" {
		return ierr.NewError("result_ref is required").
			WithHint("An idempotency record must reference the outcome it witnesses").
			Mark(ierr.ErrValidation)
	}
	return nil
}
