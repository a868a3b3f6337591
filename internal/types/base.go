package types

import (
	"context"
	"time"
)

// Status is the lifecycle status of a mutable entity. Append-only entities
// (ledger entries, webhook logs) do not carry one.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// Metadata is free-form structured data attached to records.
type Metadata map[string]interface{}

// BaseModel carries the audit columns shared by all persisted entities.
type BaseModel struct {
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	CreatedBy string    `json:"created_by,omitempty"`
	UpdatedBy string    `json:"updated_by,omitempty"`
}

// GetDefaultBaseModel returns a BaseModel stamped with the current time and
// the caller identity from context.
func GetDefaultBaseModel(ctx context.Context) BaseModel {
	now := time.Now().UTC()
	userID := GetUserID(ctx)
	return BaseModel{
		Status:    StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
		CreatedBy: userID,
		UpdatedBy: userID,
	}
}
