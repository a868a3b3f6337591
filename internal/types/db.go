package types

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// LockScope represents the scope of a database advisory lock.
type LockScope string

const (
	// LockScopeAccountCredits serializes balance-check-then-debit transactions
	// for one account.
	LockScopeAccountCredits LockScope = "account_credits"
)

const defaultLockTimeout = 30 * time.Second

// LockRequest describes an advisory lock acquisition.
type LockRequest struct {
	Key     string
	Timeout *time.Duration
}

func (r LockRequest) GetTimeout() time.Duration {
	if r.Timeout == nil {
		return defaultLockTimeout
	}
	return *r.Timeout
}

// GenerateLockKey builds a deterministic lock key from a scope and parameters.
// The key is a plain string; Postgres hashes it internally via hashtext().
func GenerateLockKey(scope LockScope, params map[string]interface{}) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(string(scope))
	for _, k := range keys {
		b.WriteString(fmt.Sprintf(":%s=%v", k, params[k]))
	}
	return b.String()
}

// TableName represents a database table name.
type TableName string

const (
	TableNameAccounts          TableName = "accounts"
	TableNameProviderCustomers TableName = "provider_customers"
	TableNameCreditsLedger     TableName = "credits_ledger"
	TableNamePayments          TableName = "payments"
	TableNameVideoRequests     TableName = "video_requests"
	TableNameVideoBatches      TableName = "video_request_batches"
	TableNameIdempotencyKeys   TableName = "idempotency_keys"
	TableNameWebhookLogs       TableName = "webhook_logs"
	TableNameBriefs            TableName = "ugc_briefs"
	TableNameBrandingAssets    TableName = "branding_assets"
)
