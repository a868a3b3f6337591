package types

// PaymentKind distinguishes recurring subscription invoices from one-off
// credit purchases.
type PaymentKind string

const (
	PaymentKindSubscription PaymentKind = "subscription"
	PaymentKindOneOff       PaymentKind = "one_off"
)

// PaymentStatus is the terminal status recorded for a processed payment event.
type PaymentStatus string

const (
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusRefunded PaymentStatus = "refunded"
)
