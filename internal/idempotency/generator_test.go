package idempotency

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateKeyIsDeterministic(t *testing.T) {
	g := NewGenerator()

	first := g.GenerateKey(ScopeBatchCreate, map[string]interface{}{
		"key":        "client-key",
		"account_id": "acc_1",
	})
	second := g.GenerateKey(ScopeBatchCreate, map[string]interface{}{
		"account_id": "acc_1",
		"key":        "client-key",
	})
	assert.Equal(t, first, second, "parameter order must not change the key")
	assert.Len(t, first, 64)
}

func TestGenerateKeySeparatesScopes(t *testing.T) {
	g := NewGenerator()
	params := map[string]interface{}{"key": "same-token", "account_id": "acc_1"}

	assert.NotEqual(t,
		g.GenerateKey(ScopeBatchCreate, params),
		g.GenerateKey(ScopeAdminGrant, params))
}

func TestGenerateKeySeparatesAccounts(t *testing.T) {
	g := NewGenerator()

	a := g.GenerateKey(ScopeBatchCreate, map[string]interface{}{"key": "tok", "account_id": "acc_1"})
	b := g.GenerateKey(ScopeBatchCreate, map[string]interface{}{"key": "tok", "account_id": "acc_2"})
	assert.NotEqual(t, a, b)
}
