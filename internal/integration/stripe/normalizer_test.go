package stripe

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reelkit/reelkit/internal/types"
)

func buildEvent(t *testing.T, id, eventType string, object map[string]interface{}) []byte {
	t.Helper()
	raw, err := json.Marshal(map[string]interface{}{
		"id":      id,
		"type":    eventType,
		"created": 1735689600,
		"data": map[string]interface{}{
			"object": object,
		},
	})
	require.NoError(t, err)
	return raw
}

func TestNormalize_CheckoutCompleted(t *testing.T) {
	payload := buildEvent(t, "evt_checkout_1", "checkout.session.completed", map[string]interface{}{
		"id":           "cs_test_1",
		"amount_total": 1000,
		"currency":     "usd",
		"mode":         "payment",
		"customer":     map[string]interface{}{"id": "cus_123"},
		"customer_details": map[string]interface{}{
			"email": "buyer@example.com",
		},
		"line_items": map[string]interface{}{
			"data": []map[string]interface{}{
				{
					"quantity": 1,
					"price": map[string]interface{}{
						"id":       "price_1",
						"metadata": map[string]string{"credits": "10"},
					},
				},
			},
		},
	})

	event, err := ParseEvent(payload, "", "")
	require.NoError(t, err)

	canonical, err := Normalize(event)
	require.NoError(t, err)

	assert.Equal(t, "evt_checkout_1", canonical.ProviderEventID)
	assert.Equal(t, EventKindCheckoutCompleted, canonical.Kind)
	assert.Equal(t, int64(1000), canonical.AmountCents)
	assert.Equal(t, int64(10), canonical.Credits)
	assert.Equal(t, "usd", canonical.Currency)
	assert.Equal(t, types.PaymentKindOneOff, canonical.PaymentKind)
	assert.Equal(t, "cus_123", canonical.ProviderCustomerID)
	assert.Equal(t, "buyer@example.com", canonical.CustomerEmail)
	assert.False(t, canonical.IsIgnored())
	assert.False(t, canonical.IsRefund())
}

func TestNormalize_CheckoutCreditsSum(t *testing.T) {
	tests := []struct {
		name     string
		items    []map[string]interface{}
		expected int64
	}{
		{
			name: "quantity multiplies per unit credits",
			items: []map[string]interface{}{
				{
					"quantity": 3,
					"price": map[string]interface{}{
						"metadata": map[string]string{"credits": "5"},
					},
				},
			},
			expected: 15,
		},
		{
			name: "items without credit metadata contribute zero",
			items: []map[string]interface{}{
				{
					"quantity": 2,
					"price": map[string]interface{}{
						"metadata": map[string]string{"credits": "4"},
					},
				},
				{
					"quantity": 1,
					"price":    map[string]interface{}{"metadata": map[string]string{}},
				},
			},
			expected: 8,
		},
		{
			name: "non numeric metadata contributes zero",
			items: []map[string]interface{}{
				{
					"quantity": 1,
					"price": map[string]interface{}{
						"metadata": map[string]string{"credits": "lots"},
					},
				},
			},
			expected: 0,
		},
		{
			name: "missing quantity defaults to one",
			items: []map[string]interface{}{
				{
					"price": map[string]interface{}{
						"metadata": map[string]string{"credits": "7"},
					},
				},
			},
			expected: 7,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := buildEvent(t, "evt_sum", "checkout.session.completed", map[string]interface{}{
				"amount_total": 500,
				"currency":     "usd",
				"line_items":   map[string]interface{}{"data": tt.items},
			})

			event, err := ParseEvent(payload, "", "")
			require.NoError(t, err)

			canonical, err := Normalize(event)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, canonical.Credits)
		})
	}
}

func TestNormalize_CheckoutSubscriptionMode(t *testing.T) {
	payload := buildEvent(t, "evt_sub_checkout", "checkout.session.completed", map[string]interface{}{
		"amount_total": 2900,
		"currency":     "usd",
		"mode":         "subscription",
	})

	event, err := ParseEvent(payload, "", "")
	require.NoError(t, err)

	canonical, err := Normalize(event)
	require.NoError(t, err)
	assert.Equal(t, types.PaymentKindSubscription, canonical.PaymentKind)
}

func TestNormalize_InvoicePaid(t *testing.T) {
	payload := buildEvent(t, "evt_invoice_1", "invoice.paid", map[string]interface{}{
		"id":             "in_test_1",
		"amount_paid":    2900,
		"currency":       "usd",
		"customer":       map[string]interface{}{"id": "cus_456"},
		"customer_email": "subscriber@example.com",
		"lines": map[string]interface{}{
			"data": []map[string]interface{}{
				{"metadata": map[string]string{"credits_included": "20"}},
				{"metadata": map[string]string{}},
			},
		},
	})

	event, err := ParseEvent(payload, "", "")
	require.NoError(t, err)

	canonical, err := Normalize(event)
	require.NoError(t, err)

	assert.Equal(t, EventKindInvoicePaid, canonical.Kind)
	assert.Equal(t, int64(2900), canonical.AmountCents)
	assert.Equal(t, int64(20), canonical.Credits)
	assert.Equal(t, types.PaymentKindSubscription, canonical.PaymentKind)
	assert.Equal(t, "cus_456", canonical.ProviderCustomerID)
	assert.Equal(t, "subscriber@example.com", canonical.CustomerEmail)
}

func TestNormalize_ChargeRefunded(t *testing.T) {
	payload := buildEvent(t, "evt_refund_1", "charge.refunded", map[string]interface{}{
		"id":              "ch_test_1",
		"amount":          1000,
		"amount_refunded": 500,
		"currency":        "usd",
		"customer":        map[string]interface{}{"id": "cus_789"},
		"billing_details": map[string]interface{}{"email": "refunder@example.com"},
	})

	event, err := ParseEvent(payload, "", "")
	require.NoError(t, err)

	canonical, err := Normalize(event)
	require.NoError(t, err)

	assert.True(t, canonical.IsRefund())
	assert.Equal(t, int64(1000), canonical.AmountCents)
	assert.Equal(t, int64(500), canonical.AmountRefundedCents)
	assert.Equal(t, "cus_789", canonical.ProviderCustomerID)
	assert.Equal(t, "refunder@example.com", canonical.CustomerEmail)
	assert.Zero(t, canonical.Credits)
}

func TestNormalize_UnknownTypeIgnored(t *testing.T) {
	payload := buildEvent(t, "evt_ignored_1", "customer.updated", map[string]interface{}{
		"id": "cus_123",
	})

	event, err := ParseEvent(payload, "", "")
	require.NoError(t, err)

	canonical, err := Normalize(event)
	require.NoError(t, err)
	assert.True(t, canonical.IsIgnored())
	assert.Equal(t, "customer.updated", canonical.EventType)
}

func TestNormalize_MissingIDRejected(t *testing.T) {
	payload := buildEvent(t, "", "invoice.paid", map[string]interface{}{"amount_paid": 100})

	event, err := ParseEvent(payload, "", "")
	require.NoError(t, err)

	_, err = Normalize(event)
	require.Error(t, err)
}

func TestParseEvent_MalformedBody(t *testing.T) {
	_, err := ParseEvent([]byte("not json"), "", "")
	require.Error(t, err)
}

func TestParseEvent_BadSignatureRejected(t *testing.T) {
	payload := buildEvent(t, "evt_sig", "invoice.paid", map[string]interface{}{"amount_paid": 100})

	_, err := ParseEvent(payload, "t=1,v1=deadbeef", "whsec_test_secret")
	require.Error(t, err)
}
