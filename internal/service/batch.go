package service

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/samber/lo"
	"github.com/sourcegraph/conc/panics"

	"github.com/reelkit/reelkit/internal/api/dto"
	"github.com/reelkit/reelkit/internal/domain/asset"
	"github.com/reelkit/reelkit/internal/domain/brief"
	domainidempotency "github.com/reelkit/reelkit/internal/domain/idempotency"
	"github.com/reelkit/reelkit/internal/domain/ledger"
	"github.com/reelkit/reelkit/internal/domain/videorequest"
	"github.com/reelkit/reelkit/internal/domain/webhooklog"
	ierr "github.com/reelkit/reelkit/internal/errors"
	"github.com/reelkit/reelkit/internal/idempotency"
	"github.com/reelkit/reelkit/internal/integration/automation"
	"github.com/reelkit/reelkit/internal/postgres"
	"github.com/reelkit/reelkit/internal/types"
)

// txConflictRetries bounds reruns of the admission transaction on
// serialization conflicts.
const txConflictRetries = 3

// BatchService admits paid video-generation batches. Credit consumption, job
// creation and the idempotency record commit in one transaction; the
// automation dispatch happens after commit and never affects the outcome.
type BatchService interface {
	CreateBatch(ctx context.Context, req *dto.CreateBatchRequest) (*dto.CreateBatchResponse, error)
	GetBatch(ctx context.Context, accountID, batchID string) (*dto.BatchDetailResponse, error)
	ListVideos(ctx context.Context, accountID string, limit int) (*dto.ListVideosResponse, error)
}

type batchService struct {
	ServiceParams
	idempGen *idempotency.Generator
}

func NewBatchService(params ServiceParams) BatchService {
	return &batchService{
		ServiceParams: params,
		idempGen:      idempotency.NewGenerator(),
	}
}

func (s *batchService) CreateBatch(ctx context.Context, req *dto.CreateBatchRequest) (*dto.CreateBatchResponse, error) {
	accountID := types.GetUserID(ctx)
	if accountID == "" {
		return nil, ierr.NewError("caller identity is required").
			WithHint("Batch creation requires an authenticated account").
			Mark(ierr.ErrPermissionDenied)
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}

	key := s.idempGen.GenerateKey(idempotency.ScopeBatchCreate, map[string]interface{}{
		"key":        req.IdempotencyKey,
		"account_id": accountID,
	})

	// Replay fast path. The uniqueness constraint inside the transaction is
	// the real guard; this read only saves the validation work.
	if resp, err := s.replayBatch(ctx, key); err != nil || resp != nil {
		return resp, err
	}

	activeBrief, err := s.BriefRepo.GetLatestCompletedByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if activeBrief == nil {
		return nil, ierr.NewError("no completed brief found").
			WithHint("Complete your brief before requesting videos").
			Mark(ierr.ErrValidation)
	}

	assets, err := s.AssetRepo.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if len(assets) == 0 {
		return nil, ierr.NewError("no branding assets found").
			WithHint("Upload branding assets before requesting videos").
			Mark(ierr.ErrValidation)
	}

	batch := &videorequest.Batch{
		ID:        types.GenerateUUIDWithPrefix(types.UUID_PREFIX_VIDEO_BATCH),
		AccountID: accountID,
		CreatedAt: time.Now().UTC(),
	}

	requests := make([]*videorequest.VideoRequest, 0, req.VideoCount)
	for i := 0; i < req.VideoCount; i++ {
		now := time.Now().UTC()
		requests = append(requests, &videorequest.VideoRequest{
			ID:        types.GenerateUUIDWithPrefix(types.UUID_PREFIX_VIDEO_REQUEST),
			AccountID: accountID,
			BatchID:   batch.ID,
			Status:    types.VideoRequestStatusQueued,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}

	err = postgres.WithTxRetry(ctx, s.DB, txConflictRetries, func(ctx context.Context) error {
		// Serializes concurrent batch submissions for one account so two
		// requests cannot both pass a stale balance read.
		lockKey := types.GenerateLockKey(types.LockScopeAccountCredits, map[string]interface{}{
			"account_id": accountID,
		})
		if err := s.DB.LockWithWait(ctx, types.LockRequest{Key: lockKey}); err != nil {
			return err
		}

		balance, err := s.LedgerRepo.Balance(ctx, accountID)
		if err != nil {
			return err
		}
		if balance < int64(req.VideoCount) {
			return ierr.NewError("insufficient credits").
				WithHint("Top up credits and retry with the same idempotency key").
				WithReportableDetails(map[string]interface{}{
					"balance":   balance,
					"requested": req.VideoCount,
				}).
				Mark(ierr.ErrInsufficientCredits)
		}

		if err := s.VideoRequestRepo.CreateBatch(ctx, batch); err != nil {
			return err
		}
		if err := s.VideoRequestRepo.CreateRequests(ctx, requests); err != nil {
			return err
		}

		entry := &ledger.Entry{
			ID:        types.GenerateUUIDWithPrefix(types.UUID_PREFIX_LEDGER_ENTRY),
			AccountID: accountID,
			Amount:    -int64(req.VideoCount),
			Source:    types.CreditSourceConsumption,
			Note:      "batch " + batch.ID,
			CreatedAt: time.Now().UTC(),
		}
		if err := s.LedgerRepo.Create(ctx, entry); err != nil {
			return err
		}

		return s.IdempotencyRepo.Create(ctx, &domainidempotency.KeyRecord{
			Key:       key,
			Scope:     string(idempotency.ScopeBatchCreate),
			ResultRef: batch.ID,
			CreatedAt: time.Now().UTC(),
		})
	})
	if err != nil {
		if ierr.IsAlreadyExists(err) {
			return nil, ierr.WithError(err).
				WithHint("This submission is already being processed").
				Mark(ierr.ErrAlreadyExists)
		}
		return nil, err
	}

	s.Logger.Infow("video batch admitted",
		"batch_id", batch.ID,
		"account_id", accountID,
		"video_count", req.VideoCount)

	s.dispatchAsync(ctx, req, activeBrief, assets, batch, requests)

	return &dto.CreateBatchResponse{
		Success: true,
		BatchID: batch.ID,
		RequestIDs: lo.Map(requests, func(vr *videorequest.VideoRequest, _ int) string {
			return vr.ID
		}),
	}, nil
}

func (s *batchService) replayBatch(ctx context.Context, key string) (*dto.CreateBatchResponse, error) {
	record, err := s.IdempotencyRepo.Get(ctx, string(idempotency.ScopeBatchCreate), key)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, nil
	}

	requests, err := s.VideoRequestRepo.ListByBatch(ctx, record.ResultRef)
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("batch submission replayed", "batch_id", record.ResultRef)

	return &dto.CreateBatchResponse{
		Success: true,
		BatchID: record.ResultRef,
		RequestIDs: lo.Map(requests, func(vr *videorequest.VideoRequest, _ int) string {
			return vr.ID
		}),
		Replayed: true,
	}, nil
}

// dispatchAsync fires the automation call on a detached goroutine. The
// request context is detached so client disconnects cannot cancel an
// already-paid dispatch; a panic in the dispatch path is contained and
// logged.
func (s *batchService) dispatchAsync(ctx context.Context, req *dto.CreateBatchRequest, activeBrief *brief.Brief, assets []*asset.BrandingAsset, batch *videorequest.Batch, requests []*videorequest.VideoRequest) {
	detached := context.WithoutCancel(ctx)
	go func() {
		var catcher panics.Catcher
		catcher.Try(func() {
			s.dispatch(detached, req, activeBrief, assets, batch, requests)
		})
		if recovered := catcher.Recovered(); recovered != nil {
			s.Logger.Errorw("panic during batch dispatch",
				"batch_id", batch.ID,
				"panic", recovered.String())
		}
	}()
}

func (s *batchService) dispatch(ctx context.Context, req *dto.CreateBatchRequest, activeBrief *brief.Brief, assets []*asset.BrandingAsset, batch *videorequest.Batch, requests []*videorequest.VideoRequest) {
	payload := &automation.DispatchPayload{
		IdempotencyKey: req.IdempotencyKey,
		RequestID:      batch.ID,
		UserID:         batch.AccountID,
		UGCBrief:       activeBrief.Payload,
		VideoRequestIDs: lo.Map(requests, func(vr *videorequest.VideoRequest, _ int) string {
			return vr.ID
		}),
		VideoGeneration: automation.VideoGeneration{
			VideoCount:         len(requests),
			CustomInstructions: req.CustomInstructions,
			BatchID:            batch.ID,
		},
		Constraints: automation.Constraints{
			DurationSec: activeBrief.DurationSeconds(),
			Ratio:       activeBrief.AspectRatio(),
		},
		CreatedAt: time.Now().UTC(),
	}

	for _, a := range assets {
		url, err := s.SignedURLs.SignedURL(ctx, a.StoragePath)
		if err != nil {
			s.Logger.Errorw("failed to sign asset url, dispatching without it",
				"batch_id", batch.ID,
				"asset_id", a.ID,
				"error", err)
			continue
		}
		switch {
		case a.Type == asset.TypeLogo && payload.Branding.LogoURL == "":
			payload.Branding.LogoURL = url
			payload.Branding.Palette = a.Palette()
		case a.IsBroll():
			payload.Brolls = append(payload.Brolls, automation.BrollAsset{
				URL:         url,
				StoragePath: a.StoragePath,
			})
		}
	}

	result, err := s.AutomationClient.Dispatch(ctx, req.IdempotencyKey, payload)
	s.logOutbound(ctx, req.IdempotencyKey, payload, result, err)
	if err != nil {
		s.Logger.Errorw("batch dispatch failed, credits remain consumed",
			"batch_id", batch.ID,
			"error", err)
	}
}

func (s *batchService) logOutbound(ctx context.Context, idempotencyKey string, payload *automation.DispatchPayload, result *automation.DispatchResult, dispatchErr error) {
	log := &webhooklog.Log{
		ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_WEBHOOK_LOG),
		Direction:      types.WebhookDirectionOutbound,
		Provider:       types.WebhookProviderAutomation,
		EventType:      types.WebhookEventVideoGeneration,
		IdempotencyKey: idempotencyKey,
		CreatedAt:      time.Now().UTC(),
	}
	if raw, err := json.Marshal(payload); err == nil {
		log.Payload = raw
	}
	if result != nil {
		log.Status = result.StatusCode
		log.Response = result.Response
	}
	if dispatchErr != nil {
		log.Error = dispatchErr.Error()
		if log.Status == 0 {
			log.Status = http.StatusBadGateway
		}
	}

	if err := s.WebhookLogRepo.Create(ctx, log); err != nil {
		s.Logger.Errorw("failed to write outbound webhook log",
			"idempotency_key", idempotencyKey,
			"error", err)
	}
}

func (s *batchService) GetBatch(ctx context.Context, accountID, batchID string) (*dto.BatchDetailResponse, error) {
	batch, err := s.VideoRequestRepo.GetBatch(ctx, batchID)
	if err != nil {
		return nil, err
	}
	if batch.AccountID != accountID {
		return nil, ierr.NewError("batch not found").
			WithHint("No batch exists with the given id").
			Mark(ierr.ErrNotFound)
	}

	requests, err := s.VideoRequestRepo.ListByBatch(ctx, batchID)
	if err != nil {
		return nil, err
	}

	return &dto.BatchDetailResponse{
		BatchID:   batch.ID,
		AccountID: batch.AccountID,
		CreatedAt: batch.CreatedAt,
		Requests: lo.Map(requests, func(vr *videorequest.VideoRequest, _ int) *dto.VideoRequestResponse {
			return dto.NewVideoRequestResponse(vr)
		}),
	}, nil
}

func (s *batchService) ListVideos(ctx context.Context, accountID string, limit int) (*dto.ListVideosResponse, error) {
	if accountID == "" {
		return nil, ierr.NewError("caller identity is required").
			Mark(ierr.ErrPermissionDenied)
	}

	requests, err := s.VideoRequestRepo.ListByAccount(ctx, accountID, limit)
	if err != nil {
		return nil, err
	}

	items := lo.Map(requests, func(vr *videorequest.VideoRequest, _ int) *dto.VideoRequestResponse {
		return dto.NewVideoRequestResponse(vr)
	})

	return &dto.ListVideosResponse{Items: items, Count: len(items)}, nil
}
