package testutil

import (
	"context"
	"net/http"
	"sync"
	"time"

	ierr "github.com/reelkit/reelkit/internal/errors"
	"github.com/reelkit/reelkit/internal/integration/automation"
)

// MockAutomationClient records dispatches and can be told to fail, so tests
// can verify that dispatch failures never touch the financial outcome.
type MockAutomationClient struct {
	mu         sync.Mutex
	dispatches []*automation.DispatchPayload
	failWith   error

	notify chan struct{}
}

func NewMockAutomationClient() *MockAutomationClient {
	return &MockAutomationClient{
		notify: make(chan struct{}, 64),
	}
}

// FailWith makes subsequent dispatches return err.
func (m *MockAutomationClient) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failWith = err
}

// FailWithNetworkError simulates an unreachable automation service.
func (m *MockAutomationClient) FailWithNetworkError() {
	m.FailWith(ierr.NewError("dial tcp: connection refused").
		Mark(ierr.ErrHTTPClient))
}

func (m *MockAutomationClient) Dispatch(ctx context.Context, idempotencyKey string, payload *automation.DispatchPayload) (*automation.DispatchResult, error) {
	m.mu.Lock()
	m.dispatches = append(m.dispatches, payload)
	err := m.failWith
	m.mu.Unlock()

	select {
	case m.notify <- struct{}{}:
	default:
	}

	if err != nil {
		return nil, err
	}
	return &automation.DispatchResult{
		StatusCode: http.StatusOK,
		Response:   []byte(`{"accepted":true}`),
	}, nil
}

// Dispatches returns a snapshot of recorded payloads.
func (m *MockAutomationClient) Dispatches() []*automation.DispatchPayload {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*automation.DispatchPayload(nil), m.dispatches...)
}

// WaitForDispatch blocks until one dispatch attempt lands or the timeout
// expires. Dispatch is fire-and-forget, so tests must synchronize on it.
func (m *MockAutomationClient) WaitForDispatch(timeout time.Duration) bool {
	select {
	case <-m.notify:
		return true
	case <-time.After(timeout):
		return false
	}
}
