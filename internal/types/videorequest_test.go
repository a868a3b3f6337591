package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVideoRequestStatusTransitions(t *testing.T) {
	tests := []struct {
		from    VideoRequestStatus
		to      VideoRequestStatus
		allowed bool
	}{
		{VideoRequestStatusQueued, VideoRequestStatusIdeation, true},
		{VideoRequestStatusIdeation, VideoRequestStatusPreReviewPending, true},
		{VideoRequestStatusReady, VideoRequestStatusExported, true},
		{VideoRequestStatusQueued, VideoRequestStatusGenerating, false},
		{VideoRequestStatusGenerating, VideoRequestStatusQueued, false},
		{VideoRequestStatusQueued, VideoRequestStatusFailed, true},
		{VideoRequestStatusReady, VideoRequestStatusFailed, true},
		{VideoRequestStatusExported, VideoRequestStatusFailed, false},
		{VideoRequestStatusFailed, VideoRequestStatusQueued, false},
		{VideoRequestStatus("UNKNOWN"), VideoRequestStatusIdeation, false},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.allowed, tc.from.CanTransitionTo(tc.to),
			"%s -> %s", tc.from, tc.to)
	}
}

func TestVideoRequestStatusTerminal(t *testing.T) {
	assert.True(t, VideoRequestStatusExported.IsTerminal())
	assert.True(t, VideoRequestStatusFailed.IsTerminal())
	assert.False(t, VideoRequestStatusQueued.IsTerminal())
	assert.False(t, VideoRequestStatusReady.IsTerminal())
}

func TestCreditSourceClassification(t *testing.T) {
	assert.True(t, CreditSourceTopupPurchase.IsGrant())
	assert.True(t, CreditSourceSubscriptionGrant.IsGrant())
	assert.False(t, CreditSourceAdminGrant.IsGrant())
	assert.False(t, CreditSourceConsumption.IsGrant())
	assert.False(t, CreditSource("bogus").Validate())
}
