package account

import (
	"github.com/reelkit/reelkit/internal/types"
)

// Account is an identity with one running credit balance. Accounts are created
// implicitly on first identity verification and deactivated, never deleted.
type Account struct {
	ID              string `json:"id"`
	Email           string `json:"email"`
	DisplayName     string `json:"display_name,omitempty"`
	IntakeCompleted bool   `json:"intake_completed"`
	types.BaseModel
}
