package types

// CreditSource classifies a ledger entry by the operation that produced it.
type CreditSource string

const (
	CreditSourceSubscriptionGrant CreditSource = "subscription_grant"
	CreditSourceTopupPurchase     CreditSource = "topup_purchase"
	CreditSourceRefund            CreditSource = "refund"
	CreditSourceManualAdjustment  CreditSource = "manual_adjustment"
	CreditSourceAdminGrant        CreditSource = "admin_grant"
	CreditSourceConsumption       CreditSource = "consumption"
)

func (s CreditSource) Validate() bool {
	switch s {
	case CreditSourceSubscriptionGrant,
		CreditSourceTopupPurchase,
		CreditSourceRefund,
		CreditSourceManualAdjustment,
		CreditSourceAdminGrant,
		CreditSourceConsumption:
		return true
	}
	return false
}

// IsGrant reports whether entries of this source are positive grants that must
// be deduplicated on event id.
func (s CreditSource) IsGrant() bool {
	return s == CreditSourceSubscriptionGrant || s == CreditSourceTopupPurchase
}
