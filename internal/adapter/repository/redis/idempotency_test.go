package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdempotencyStore_Lifecycle(t *testing.T) {
	client, mr := newMiniRedis(t)
	defer mr.Close()
	defer client.Close()

	store := NewIdempotencyStore(client)
	ctx := context.Background()

	exists, existing, err := store.CheckAndSet(ctx, "key-1", nil, time.Hour)
	require.NoError(t, err)
	assert.False(t, exists)
	assert.Nil(t, existing)

	exists, existing, err = store.CheckAndSet(ctx, "key-1", nil, time.Hour)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.True(t, IsProcessing(existing))

	require.NoError(t, store.Update(ctx, "key-1", []byte(`{"id":"e-1"}`), time.Hour))

	exists, existing, err = store.CheckAndSet(ctx, "key-1", nil, time.Hour)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, `{"id":"e-1"}`, string(existing))
	assert.False(t, IsProcessing(existing))
}

func TestIdempotencyStore_UpdateRequiresClaim(t *testing.T) {
	client, mr := newMiniRedis(t)
	defer mr.Close()
	defer client.Close()

	store := NewIdempotencyStore(client)
	ctx := context.Background()

	require.NoError(t, store.Update(ctx, "unclaimed", []byte("x"), time.Hour))
	assert.False(t, mr.Exists(idempotencyPrefix+"unclaimed"))
}

func TestIdempotencyStore_Release(t *testing.T) {
	client, mr := newMiniRedis(t)
	defer mr.Close()
	defer client.Close()

	store := NewIdempotencyStore(client)
	ctx := context.Background()

	_, _, err := store.CheckAndSet(ctx, "key-2", nil, time.Hour)
	require.NoError(t, err)
	require.NoError(t, store.Release(ctx, "key-2"))

	exists, _, err := store.CheckAndSet(ctx, "key-2", nil, time.Hour)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestIdempotencyStore_TTL(t *testing.T) {
	client, mr := newMiniRedis(t)
	defer mr.Close()
	defer client.Close()

	store := NewIdempotencyStore(client)
	ctx := context.Background()

	_, _, err := store.CheckAndSet(ctx, "key-3", nil, time.Minute)
	require.NoError(t, err)
	mr.FastForward(2 * time.Minute)

	exists, _, err := store.CheckAndSet(ctx, "key-3", nil, time.Minute)
	require.NoError(t, err)
	assert.False(t, exists)
}
