package types

import (
	"crypto/rand"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

const (
	UUID_PREFIX_LEDGER_ENTRY  = "ledger"
	UUID_PREFIX_PAYMENT       = "pay"
	UUID_PREFIX_VIDEO_REQUEST = "vreq"
	UUID_PREFIX_VIDEO_BATCH   = "batch"
	UUID_PREFIX_WEBHOOK_LOG   = "whlog"
	UUID_PREFIX_IDEMPOTENCY   = "idemp"
	UUID_PREFIX_REQUEST       = "req"
	UUID_PREFIX_BRIEF         = "brief"
	UUID_PREFIX_ASSET         = "asset"
)

// GenerateUUID returns a lowercase ULID. ULIDs sort by creation time, which
// keeps append-only tables naturally ordered.
func GenerateUUID() string {
	return strings.ToLower(ulid.MustNew(ulid.Timestamp(time.Now().UTC()), rand.Reader).String())
}

// GenerateUUIDWithPrefix returns an id of the form "<prefix>_<ulid>".
func GenerateUUIDWithPrefix(prefix string) string {
	if prefix == "" {
		return GenerateUUID()
	}
	return prefix + "_" + GenerateUUID()
}
