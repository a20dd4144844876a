package store

import (
	"context"
	"time"
)

// KV is the uniform key-value contract the room, session, and bowling
// stores are built on. Get returns "" for absent keys (values are JSON
// records and never empty). Both backends are TTL-bounded so orphaned
// state cannot grow without bound.
//
// Read-modify-write over this contract is last-writer-wins; there is no
// compare-and-swap. Per-room interaction is human-paced, so conflicting
// writers are rare and a stale write is corrected by the next broadcast
// cycle.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	Keys(ctx context.Context, pattern string) ([]string, error)
}
