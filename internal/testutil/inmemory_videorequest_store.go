package testutil

import (
	"context"
	"time"

	"github.com/reelkit/reelkit/internal/domain/videorequest"
	ierr "github.com/reelkit/reelkit/internal/errors"
	"github.com/reelkit/reelkit/internal/types"
)

// InMemoryVideoRequestStore implements videorequest.Repository
type InMemoryVideoRequestStore struct {
	batches  *InMemoryStore[*videorequest.Batch]
	requests *InMemoryStore[*videorequest.VideoRequest]
}

func NewInMemoryVideoRequestStore() *InMemoryVideoRequestStore {
	return &InMemoryVideoRequestStore{
		batches:  NewInMemoryStore[*videorequest.Batch](),
		requests: NewInMemoryStore[*videorequest.VideoRequest](),
	}
}

func copyVideoRequest(vr *videorequest.VideoRequest) *videorequest.VideoRequest {
	if vr == nil {
		return nil
	}
	copied := *vr
	return &copied
}

func (s *InMemoryVideoRequestStore) CreateBatch(ctx context.Context, batch *videorequest.Batch) error {
	if batch == nil {
		return ierr.NewError("batch cannot be nil").
			Mark(ierr.ErrValidation)
	}
	copied := *batch
	return s.batches.Create(ctx, batch.ID, &copied)
}

func (s *InMemoryVideoRequestStore) CreateRequests(ctx context.Context, requests []*videorequest.VideoRequest) error {
	if len(requests) == 0 {
		return ierr.NewError("at least one video request is required").
			Mark(ierr.ErrValidation)
	}
	for _, vr := range requests {
		if err := s.requests.Create(ctx, vr.ID, copyVideoRequest(vr)); err != nil {
			return err
		}
	}
	return nil
}

func (s *InMemoryVideoRequestStore) GetBatch(ctx context.Context, id string) (*videorequest.Batch, error) {
	batch, err := s.batches.Get(ctx, id)
	if err != nil {
		return nil, ierr.NewError("batch not found").
			WithHint("No batch exists with the given id").
			WithReportableDetails(map[string]interface{}{
				"batch_id": id,
			}).
			Mark(ierr.ErrNotFound)
	}
	copied := *batch
	return &copied, nil
}

func (s *InMemoryVideoRequestStore) ListByBatch(ctx context.Context, batchID string) ([]*videorequest.VideoRequest, error) {
	requests := s.requests.List(ctx, func(vr *videorequest.VideoRequest) bool {
		return vr.BatchID == batchID
	}, func(a, b *videorequest.VideoRequest) bool {
		if a.CreatedAt.Equal(b.CreatedAt) {
			return a.ID < b.ID
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})

	result := make([]*videorequest.VideoRequest, 0, len(requests))
	for _, vr := range requests {
		result = append(result, copyVideoRequest(vr))
	}
	return result, nil
}

func (s *InMemoryVideoRequestStore) ListByAccount(ctx context.Context, accountID string, limit int) ([]*videorequest.VideoRequest, error) {
	requests := s.requests.List(ctx, func(vr *videorequest.VideoRequest) bool {
		return vr.AccountID == accountID
	}, func(a, b *videorequest.VideoRequest) bool {
		return a.CreatedAt.After(b.CreatedAt)
	})

	if limit > 0 && len(requests) > limit {
		requests = requests[:limit]
	}

	result := make([]*videorequest.VideoRequest, 0, len(requests))
	for _, vr := range requests {
		result = append(result, copyVideoRequest(vr))
	}
	return result, nil
}

func (s *InMemoryVideoRequestStore) UpdateStatus(ctx context.Context, id string, status types.VideoRequestStatus) error {
	vr, err := s.requests.Get(ctx, id)
	if err != nil {
		return ierr.NewError("video request not found").
			WithReportableDetails(map[string]interface{}{
				"request_id": id,
			}).
			Mark(ierr.ErrNotFound)
	}

	if !vr.Status.CanTransitionTo(status) {
		return ierr.NewErrorf("illegal status transition %s -> %s", vr.Status, status).
			WithHint("Video request statuses only move forward").
			Mark(ierr.ErrInvalidOperation)
	}

	updated := copyVideoRequest(vr)
	updated.Status = status
	updated.UpdatedAt = time.Now().UTC()
	return s.requests.Update(ctx, id, updated)
}

func (s *InMemoryVideoRequestStore) Clear() {
	s.batches.Clear()
	s.requests.Clear()
}
