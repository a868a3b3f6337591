package service

import (
	"encoding/json"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"github.com/reelkit/reelkit/internal/domain/account"
	"github.com/reelkit/reelkit/internal/domain/payment"
	"github.com/reelkit/reelkit/internal/testutil"
	"github.com/reelkit/reelkit/internal/types"
)

func TestRefundReversalMath(t *testing.T) {
	tests := []struct {
		name          string
		credits       int64
		originalCents int64
		refundedCents int64
		want          int64
	}{
		{"half refund", 10, 1000, 500, 5},
		{"full refund", 10, 1000, 1000, 10},
		{"over refund capped", 10, 1000, 1500, 10},
		{"partial floors down", 10, 1000, 333, 3},
		{"tiny refund floors to zero", 10, 1000, 99, 0},
		{"zero refund", 10, 1000, 0, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, refundReversal(tc.credits, tc.originalCents, tc.refundedCents))
		})
	}
}

type WebhookServiceSuite struct {
	testutil.BaseServiceTestSuite
	service WebhookService
}

func TestWebhookService(t *testing.T) {
	suite.Run(t, new(WebhookServiceSuite))
}

func (s *WebhookServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	stores := s.GetStores()
	s.service = NewWebhookService(ServiceParams{
		Logger:           s.GetLogger(),
		Config:           s.GetConfig(),
		DB:               s.GetDB(),
		LedgerRepo:       stores.Ledger,
		PaymentRepo:      stores.Payment,
		VideoRequestRepo: stores.VideoRequest,
		WebhookLogRepo:   stores.WebhookLog,
		IdempotencyRepo:  stores.Idempotency,
		AccountRepo:      stores.Account,
		BriefRepo:        stores.Brief,
		AssetRepo:        stores.Asset,
	})
}

func (s *WebhookServiceSuite) seedAccount(id, email string) {
	s.NoError(s.GetStores().Account.AddAccount(&account.Account{
		ID:    id,
		Email: email,
	}))
}

func webhookEvent(s *WebhookServiceSuite, id, eventType string, object map[string]interface{}) []byte {
	raw, err := json.Marshal(map[string]interface{}{
		"id":      id,
		"type":    eventType,
		"created": time.Now().Unix(),
		"data":    map[string]interface{}{"object": object},
	})
	s.Require().NoError(err)
	return raw
}

func checkoutEvent(s *WebhookServiceSuite, eventID, customerID string, amountCents, credits int64) []byte {
	return webhookEvent(s, eventID, "checkout.session.completed", map[string]interface{}{
		"amount_total": amountCents,
		"currency":     "usd",
		"mode":         "payment",
		"customer":     map[string]interface{}{"id": customerID},
		"line_items": map[string]interface{}{
			"data": []map[string]interface{}{
				{
					"quantity": 1,
					"price": map[string]interface{}{
						"metadata": map[string]string{"credits": strconv.FormatInt(credits, 10)},
					},
				},
			},
		},
	})
}

func (s *WebhookServiceSuite) TestCheckoutGrantRoundTrip() {
	s.seedAccount("acc_1", "buyer@example.com")
	s.GetStores().Account.MapProviderCustomer("cus_1", "acc_1")

	result, err := s.service.ProcessEvent(s.GetContext(), checkoutEvent(s, "evt_1", "cus_1", 1000, 10), "")
	s.NoError(err)
	s.True(result.OK)
	s.True(result.Processed)
	s.Equal(int64(10), result.CreditsGranted)

	pay, err := s.GetStores().Payment.GetByProviderEventID(s.GetContext(), "evt_1")
	s.NoError(err)
	s.Require().NotNil(pay)
	s.Equal(int64(10), pay.CreditsGranted)
	s.Equal(int64(1000), pay.AmountCents)
	s.Equal(types.PaymentKindOneOff, pay.Kind)
	s.Require().NotNil(pay.AccountID)
	s.Equal("acc_1", *pay.AccountID)

	balance, err := s.GetStores().Ledger.Balance(s.GetContext(), "acc_1")
	s.NoError(err)
	s.Equal(int64(10), balance)
}

func (s *WebhookServiceSuite) TestDuplicateEventAcknowledgedOnce() {
	s.seedAccount("acc_1", "buyer@example.com")
	s.GetStores().Account.MapProviderCustomer("cus_1", "acc_1")

	payload := checkoutEvent(s, "evt_dup", "cus_1", 1000, 10)

	first, err := s.service.ProcessEvent(s.GetContext(), payload, "")
	s.NoError(err)
	s.True(first.Processed)

	second, err := s.service.ProcessEvent(s.GetContext(), payload, "")
	s.NoError(err)
	s.True(second.OK)
	s.True(second.Idempotent)

	balance, err := s.GetStores().Ledger.Balance(s.GetContext(), "acc_1")
	s.NoError(err)
	s.Equal(int64(10), balance)

	entries, err := s.GetStores().Ledger.ListByAccount(s.GetContext(), "acc_1", 0)
	s.NoError(err)
	s.Len(entries, 1)
}

func (s *WebhookServiceSuite) TestInvoicePaidGrantsIncludedCredits() {
	s.seedAccount("acc_1", "subscriber@example.com")

	payload := webhookEvent(s, "evt_inv", "invoice.paid", map[string]interface{}{
		"amount_paid":    2900,
		"currency":       "usd",
		"customer_email": "subscriber@example.com",
		"lines": map[string]interface{}{
			"data": []map[string]interface{}{
				{"metadata": map[string]string{"credits_included": "20"}},
			},
		},
	})

	result, err := s.service.ProcessEvent(s.GetContext(), payload, "")
	s.NoError(err)
	s.True(result.Processed)
	s.Equal(int64(20), result.CreditsGranted)

	entries, err := s.GetStores().Ledger.ListByAccount(s.GetContext(), "acc_1", 0)
	s.NoError(err)
	s.Require().Len(entries, 1)
	s.Equal(types.CreditSourceSubscriptionGrant, entries[0].Source)
}

func (s *WebhookServiceSuite) TestRefundReversesProportionally() {
	s.seedAccount("acc_1", "buyer@example.com")
	s.GetStores().Account.MapProviderCustomer("cus_1", "acc_1")

	// Purchase of 10 credits for $10.00.
	_, err := s.service.ProcessEvent(s.GetContext(), checkoutEvent(s, "evt_buy", "cus_1", 1000, 10), "")
	s.NoError(err)

	refund := webhookEvent(s, "evt_refund", "charge.refunded", map[string]interface{}{
		"amount":          1000,
		"amount_refunded": 500,
		"currency":        "usd",
		"customer":        map[string]interface{}{"id": "cus_1"},
	})

	result, err := s.service.ProcessEvent(s.GetContext(), refund, "")
	s.NoError(err)
	s.True(result.OK)
	s.True(result.Refunded)
	s.Equal(int64(5), result.CreditsReversed)

	balance, err := s.GetStores().Ledger.Balance(s.GetContext(), "acc_1")
	s.NoError(err)
	s.Equal(int64(5), balance)

	refundRecord, err := s.GetStores().Payment.GetByProviderEventID(s.GetContext(), "evt_refund")
	s.NoError(err)
	s.Require().NotNil(refundRecord)
	s.Equal(types.PaymentStatusRefunded, refundRecord.Status)
	s.Equal(int64(0), refundRecord.AmountCents)
}

func (s *WebhookServiceSuite) TestFullRefundCapsAtOriginalCredits() {
	s.seedAccount("acc_1", "buyer@example.com")
	s.GetStores().Account.MapProviderCustomer("cus_1", "acc_1")

	_, err := s.service.ProcessEvent(s.GetContext(), checkoutEvent(s, "evt_buy", "cus_1", 1000, 10), "")
	s.NoError(err)

	// Refunded amount above the original must not reverse more than granted.
	refund := webhookEvent(s, "evt_refund_all", "charge.refunded", map[string]interface{}{
		"amount":          1000,
		"amount_refunded": 1500,
		"currency":        "usd",
		"customer":        map[string]interface{}{"id": "cus_1"},
	})

	result, err := s.service.ProcessEvent(s.GetContext(), refund, "")
	s.NoError(err)
	s.Equal(int64(10), result.CreditsReversed)

	balance, err := s.GetStores().Ledger.Balance(s.GetContext(), "acc_1")
	s.NoError(err)
	s.Equal(int64(0), balance)
}

func (s *WebhookServiceSuite) TestRefundWithUnresolvedAccountSkipsLedger() {
	refund := webhookEvent(s, "evt_refund_orphan", "charge.refunded", map[string]interface{}{
		"amount":          1000,
		"amount_refunded": 500,
		"currency":        "usd",
		"customer":        map[string]interface{}{"id": "cus_unknown"},
	})

	result, err := s.service.ProcessEvent(s.GetContext(), refund, "")
	s.NoError(err)
	s.True(result.OK)
	s.Equal(int64(0), result.CreditsReversed)

	// Recorded for manual reconciliation, no ledger mutation anywhere.
	record, err := s.GetStores().Payment.GetByProviderEventID(s.GetContext(), "evt_refund_orphan")
	s.NoError(err)
	s.Require().NotNil(record)
	s.Nil(record.AccountID)
}

func (s *WebhookServiceSuite) TestUnknownEventTypeIgnored() {
	payload := webhookEvent(s, "evt_noise", "customer.updated", map[string]interface{}{
		"id": "cus_1",
	})

	result, err := s.service.ProcessEvent(s.GetContext(), payload, "")
	s.NoError(err)
	s.True(result.OK)
	s.True(result.Ignored)

	record, err := s.GetStores().Payment.GetByProviderEventID(s.GetContext(), "evt_noise")
	s.NoError(err)
	s.Nil(record)

	logs := s.GetStores().WebhookLog.ListByDirection(types.WebhookDirectionInbound)
	s.Require().Len(logs, 1)
	s.Equal("customer.updated", logs[0].EventType)
}

func (s *WebhookServiceSuite) TestUnresolvedAccountPaymentStillRecorded() {
	payload := checkoutEvent(s, "evt_orphan", "cus_nobody", 1000, 10)

	result, err := s.service.ProcessEvent(s.GetContext(), payload, "")
	s.NoError(err)
	s.True(result.Processed)
	s.Equal(int64(0), result.CreditsGranted)

	record, err := s.GetStores().Payment.GetByProviderEventID(s.GetContext(), "evt_orphan")
	s.NoError(err)
	s.Require().NotNil(record)
	s.Nil(record.AccountID)
	s.Equal(int64(10), record.CreditsGranted)
}

func (s *WebhookServiceSuite) TestMalformedPayloadRejectedAndAudited() {
	_, err := s.service.ProcessEvent(s.GetContext(), []byte("not json"), "")
	s.Error(err)

	logs := s.GetStores().WebhookLog.ListByDirection(types.WebhookDirectionInbound)
	s.Require().Len(logs, 1)
	s.NotEmpty(logs[0].Error)
}

func (s *WebhookServiceSuite) TestSecondaryGrantDefenseBlocksDoubleCredit() {
	s.seedAccount("acc_1", "buyer@example.com")
	s.GetStores().Account.MapProviderCustomer("cus_1", "acc_1")

	// Simulate a crash window from an earlier delivery: the grant landed but
	// the payment row did not.
	_, err := s.service.ProcessEvent(s.GetContext(), checkoutEvent(s, "evt_crash", "cus_1", 1000, 10), "")
	s.NoError(err)

	// Re-delivery with a fresh payment row path must not grant again even if
	// the payment dedup were bypassed.
	exists, err := s.GetStores().Ledger.ExistsGrantForEvent(s.GetContext(), "evt_crash")
	s.NoError(err)
	s.True(exists)

	err = s.GetStores().Payment.Create(s.GetContext(), &payment.Payment{
		ID:              types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PAYMENT),
		ProviderEventID: "evt_crash",
		ProviderObject:  "checkout_session",
		Kind:            types.PaymentKindOneOff,
		AmountCents:     1000,
		Currency:        "usd",
		Status:          types.PaymentStatusPaid,
		CreditsGranted:  10,
		CreatedAt:       time.Now().UTC(),
	})
	s.Error(err)
}
