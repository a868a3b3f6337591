package service

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/reelkit/reelkit/internal/api/dto"
	"github.com/reelkit/reelkit/internal/domain/ledger"
	"github.com/reelkit/reelkit/internal/domain/payment"
	"github.com/reelkit/reelkit/internal/domain/webhooklog"
	ierr "github.com/reelkit/reelkit/internal/errors"
	stripeintg "github.com/reelkit/reelkit/internal/integration/stripe"
	"github.com/reelkit/reelkit/internal/types"
)

// WebhookService ingests payment provider events and reconciles them against
// the credit ledger. Every event is acknowledged exactly once no matter how
// often the provider retries it.
type WebhookService interface {
	ProcessEvent(ctx context.Context, payload []byte, signatureHeader string) (*dto.WebhookResult, error)
}

type webhookService struct {
	ServiceParams
}

func NewWebhookService(params ServiceParams) WebhookService {
	return &webhookService{ServiceParams: params}
}

func (s *webhookService) ProcessEvent(ctx context.Context, payload []byte, signatureHeader string) (*dto.WebhookResult, error) {
	event, err := stripeintg.ParseEvent(payload, signatureHeader, s.Config.Stripe.WebhookSecret)
	if err != nil {
		s.logInbound(ctx, payload, "", "", http.StatusBadRequest, nil, err)
		return nil, err
	}

	canonical, err := stripeintg.Normalize(event)
	if err != nil {
		s.logInbound(ctx, payload, string(event.Type), event.ID, http.StatusBadRequest, nil, err)
		return nil, err
	}

	result, err := s.reconcile(ctx, canonical)
	if err != nil {
		s.logInbound(ctx, payload, canonical.EventType, canonical.ProviderEventID, http.StatusInternalServerError, nil, err)
		return nil, err
	}

	s.logInbound(ctx, payload, canonical.EventType, canonical.ProviderEventID, http.StatusOK, result, nil)
	return result, nil
}

func (s *webhookService) reconcile(ctx context.Context, canonical *stripeintg.CanonicalPaymentEvent) (*dto.WebhookResult, error) {
	// Primary at-least-once-delivery defense: an existing payment row for
	// this provider event id means the event was fully processed before.
	existing, err := s.PaymentRepo.GetByProviderEventID(ctx, canonical.ProviderEventID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		s.Logger.Infow("duplicate webhook event acknowledged",
			"provider_event_id", canonical.ProviderEventID,
			"event_type", canonical.EventType)
		return &dto.WebhookResult{OK: true, Idempotent: true, EventType: canonical.EventType}, nil
	}

	if canonical.IsIgnored() {
		return &dto.WebhookResult{OK: true, Ignored: true, EventType: canonical.EventType}, nil
	}

	accountID, err := s.resolveAccount(ctx, canonical)
	if err != nil {
		return nil, err
	}

	if canonical.IsRefund() {
		return s.reconcileRefund(ctx, canonical, accountID)
	}
	return s.reconcileGrant(ctx, canonical, accountID)
}

// resolveAccount maps the event's customer identifiers to an account. An
// empty result is not an error; the payment is still recorded for manual
// reconciliation, only the ledger mutation is skipped.
func (s *webhookService) resolveAccount(ctx context.Context, canonical *stripeintg.CanonicalPaymentEvent) (string, error) {
	if canonical.ProviderCustomerID != "" {
		accountID, err := s.AccountRepo.GetAccountIDByProviderCustomer(ctx, canonical.ProviderCustomerID)
		if err != nil {
			return "", err
		}
		if accountID != "" {
			return accountID, nil
		}
	}

	if canonical.CustomerEmail != "" {
		acc, err := s.AccountRepo.GetByEmail(ctx, canonical.CustomerEmail)
		if err != nil {
			return "", err
		}
		if acc != nil {
			return acc.ID, nil
		}
	}

	return "", nil
}

func (s *webhookService) reconcileGrant(ctx context.Context, canonical *stripeintg.CanonicalPaymentEvent, accountID string) (*dto.WebhookResult, error) {
	pay := &payment.Payment{
		ID:              types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PAYMENT),
		ProviderEventID: canonical.ProviderEventID,
		ProviderObject:  canonical.ObjectKind,
		Kind:            canonical.PaymentKind,
		AmountCents:     canonical.AmountCents,
		Currency:        canonical.Currency,
		Status:          types.PaymentStatusPaid,
		CreditsGranted:  canonical.Credits,
		Metadata:        canonical.RawObject,
		CreatedAt:       time.Now().UTC(),
	}
	if canonical.ProviderCustomerID != "" {
		pay.ProviderCustomerID = lo.ToPtr(canonical.ProviderCustomerID)
	}
	if accountID != "" {
		pay.AccountID = lo.ToPtr(accountID)
	}

	var creditsGranted int64

	err := s.DB.WithTx(ctx, func(ctx context.Context) error {
		if err := s.PaymentRepo.Create(ctx, pay); err != nil {
			return err
		}

		if canonical.Credits <= 0 {
			return nil
		}
		if accountID == "" {
			s.Logger.Warnw("payment recorded without ledger grant, account unresolved",
				"provider_event_id", canonical.ProviderEventID,
				"provider_customer_id", canonical.ProviderCustomerID)
			return nil
		}

		// Secondary defense against a crash between the payment insert and
		// the grant insert on an earlier delivery.
		granted, err := s.LedgerRepo.ExistsGrantForEvent(ctx, canonical.ProviderEventID)
		if err != nil {
			return err
		}
		if granted {
			return nil
		}

		source := types.CreditSourceTopupPurchase
		if canonical.PaymentKind == types.PaymentKindSubscription {
			source = types.CreditSourceSubscriptionGrant
		}

		entry := &ledger.Entry{
			ID:        types.GenerateUUIDWithPrefix(types.UUID_PREFIX_LEDGER_ENTRY),
			AccountID: accountID,
			Amount:    canonical.Credits,
			Source:    source,
			PaymentID: lo.ToPtr(pay.ID),
			EventID:   lo.ToPtr(canonical.ProviderEventID),
			CreatedAt: time.Now().UTC(),
		}
		if err := s.LedgerRepo.Create(ctx, entry); err != nil {
			return err
		}

		creditsGranted = canonical.Credits
		return nil
	})
	if err != nil {
		// A concurrent delivery won the insert race; its commit carries the
		// grant, so this delivery acknowledges as a replay.
		if ierr.IsAlreadyExists(err) {
			return &dto.WebhookResult{OK: true, Idempotent: true, EventType: canonical.EventType}, nil
		}
		return nil, err
	}

	s.Logger.Infow("payment event reconciled",
		"provider_event_id", canonical.ProviderEventID,
		"account_id", accountID,
		"credits_granted", creditsGranted)

	return &dto.WebhookResult{
		OK:             true,
		Processed:      true,
		EventType:      canonical.EventType,
		CreditsGranted: creditsGranted,
	}, nil
}

func (s *webhookService) reconcileRefund(ctx context.Context, canonical *stripeintg.CanonicalPaymentEvent, accountID string) (*dto.WebhookResult, error) {
	var original *payment.Payment
	if accountID != "" {
		var err error
		original, err = s.PaymentRepo.GetLatestPurchaseByAccount(ctx, accountID)
		if err != nil {
			return nil, err
		}
	}

	creditsToReverse := int64(0)
	if original != nil && original.AmountCents > 0 && original.CreditsGranted > 0 {
		creditsToReverse = refundReversal(original.CreditsGranted, original.AmountCents, canonical.AmountRefundedCents)
	}

	refundRecord := &payment.Payment{
		ID:              types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PAYMENT),
		ProviderEventID: canonical.ProviderEventID,
		ProviderObject:  canonical.ObjectKind,
		Kind:            canonical.PaymentKind,
		AmountCents:     0,
		Currency:        canonical.Currency,
		Status:          types.PaymentStatusRefunded,
		CreditsGranted:  0,
		Metadata:        canonical.RawObject,
		CreatedAt:       time.Now().UTC(),
	}
	if canonical.ProviderCustomerID != "" {
		refundRecord.ProviderCustomerID = lo.ToPtr(canonical.ProviderCustomerID)
	}
	if accountID != "" {
		refundRecord.AccountID = lo.ToPtr(accountID)
	}

	err := s.DB.WithTx(ctx, func(ctx context.Context) error {
		if err := s.PaymentRepo.Create(ctx, refundRecord); err != nil {
			return err
		}

		if creditsToReverse <= 0 || accountID == "" {
			if accountID == "" {
				s.Logger.Warnw("refund recorded without ledger reversal, account unresolved",
					"provider_event_id", canonical.ProviderEventID,
					"provider_customer_id", canonical.ProviderCustomerID)
			}
			return nil
		}

		entry := &ledger.Entry{
			ID:        types.GenerateUUIDWithPrefix(types.UUID_PREFIX_LEDGER_ENTRY),
			AccountID: accountID,
			Amount:    -creditsToReverse,
			Source:    types.CreditSourceRefund,
			PaymentID: lo.ToPtr(original.ID),
			CreatedAt: time.Now().UTC(),
		}
		return s.LedgerRepo.Create(ctx, entry)
	})
	if err != nil {
		if ierr.IsAlreadyExists(err) {
			return &dto.WebhookResult{OK: true, Idempotent: true, EventType: canonical.EventType}, nil
		}
		return nil, err
	}

	s.Logger.Infow("refund reconciled",
		"provider_event_id", canonical.ProviderEventID,
		"account_id", accountID,
		"credits_reversed", creditsToReverse)

	return &dto.WebhookResult{
		OK:              true,
		Refunded:        true,
		EventType:       canonical.EventType,
		CreditsReversed: creditsToReverse,
	}, nil
}

// refundReversal computes floor(credits * min(1, refunded/original)).
func refundReversal(creditsGranted, originalCents, refundedCents int64) int64 {
	ratio := decimal.NewFromInt(refundedCents).Div(decimal.NewFromInt(originalCents))
	if ratio.GreaterThan(decimal.NewFromInt(1)) {
		ratio = decimal.NewFromInt(1)
	}
	return decimal.NewFromInt(creditsGranted).Mul(ratio).Floor().IntPart()
}

// logInbound appends the audit record after the financial commit. A log
// failure is reported, never propagated.
func (s *webhookService) logInbound(ctx context.Context, payload []byte, eventType, providerEventID string, status int, result *dto.WebhookResult, procErr error) {
	if len(payload) > 0 && !json.Valid(payload) {
		// Malformed bodies still get audited, stored as a JSON string.
		payload, _ = json.Marshal(string(payload))
	}

	log := &webhooklog.Log{
		ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_WEBHOOK_LOG),
		Direction:      types.WebhookDirectionInbound,
		Provider:       s.Config.Stripe.Provider,
		EventType:      eventType,
		IdempotencyKey: providerEventID,
		Status:         status,
		Payload:        payload,
		CreatedAt:      time.Now().UTC(),
	}
	if result != nil {
		if raw, err := json.Marshal(result); err == nil {
			log.Response = raw
		}
	}
	if procErr != nil {
		log.Error = procErr.Error()
	}

	if err := s.WebhookLogRepo.Create(ctx, log); err != nil {
		s.Logger.Errorw("failed to write inbound webhook log",
			"provider_event_id", providerEventID,
			"error", err)
	}
}
