package idempotency

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// Scope qualifies an idempotency key so the same external token can exist in
// different flows without colliding.
type Scope string

const (
	ScopeWebhook     Scope = "webhook"
	ScopeBatchCreate Scope = "batch_create"
	ScopeAdminGrant  Scope = "admin_grant"
)

// Generator produces deterministic idempotency keys from a scope and a set of
// parameters. The same scope and parameters always yield the same key.
type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// GenerateKey builds the key by hashing "scope:key1=value1:key2=value2:..."
// with the parameter keys sorted for a stable ordering.
func (g *Generator) GenerateKey(scope Scope, params map[string]interface{}) string {
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

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}
