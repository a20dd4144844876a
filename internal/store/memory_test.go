package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryKVGetSet(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()

	v, err := kv.Get(ctx, "missing")
	require.NoError(t, err)
	assert.Equal(t, "", v)

	require.NoError(t, kv.Set(ctx, "k", "v1", 0))
	v, err = kv.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v1", v)

	require.NoError(t, kv.Set(ctx, "k", "v2", 0))
	v, _ = kv.Get(ctx, "k")
	assert.Equal(t, "v2", v)

	require.NoError(t, kv.Del(ctx, "k", "missing"))
	v, _ = kv.Get(ctx, "k")
	assert.Equal(t, "", v)
}

func TestMemoryKVExpiry(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()

	clock := time.Now()
	kv.now = func() time.Time { return clock }

	require.NoError(t, kv.Set(ctx, "short", "v", time.Minute))
	require.NoError(t, kv.Set(ctx, "forever", "v", 0))

	v, _ := kv.Get(ctx, "short")
	assert.Equal(t, "v", v)

	clock = clock.Add(2 * time.Minute)

	v, _ = kv.Get(ctx, "short")
	assert.Equal(t, "", v, "entry past its TTL reads as absent")
	v, _ = kv.Get(ctx, "forever")
	assert.Equal(t, "v", v, "zero TTL never expires")
}

func TestMemoryKVKeys(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()

	clock := time.Now()
	kv.now = func() time.Time { return clock }

	require.NoError(t, kv.Set(ctx, "room:1234", "a", 0))
	require.NoError(t, kv.Set(ctx, "room:5678", "b", time.Minute))
	require.NoError(t, kv.Set(ctx, "session:1234:tok", "c", 0))

	keys, err := kv.Keys(ctx, "room:*")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"room:1234", "room:5678"}, keys)

	clock = clock.Add(2 * time.Minute)

	keys, _ = kv.Keys(ctx, "room:*")
	assert.ElementsMatch(t, []string{"room:1234"}, keys, "expired keys drop out of scans")
}
