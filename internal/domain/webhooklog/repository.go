package webhooklog

import "context"

// Repository persists webhook audit logs.
type Repository interface {
	// Create appends one log entry.
	Create(ctx context.Context, log *Log) error

	// ListRecent returns the newest entries, for debugging and replay.
	ListRecent(ctx context.Context, limit int) ([]*Log, error)
}
