package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redislib "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newMiniRedis starts an in-process server; both are closed when the test ends.
func newMiniRedis(t *testing.T) (*redislib.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redislib.NewClient(&redislib.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client, mr
}

func TestCacheSetAndGet(t *testing.T) {
	client, mr := newMiniRedis(t)
	defer mr.Close()
	defer client.Close()

	cache := NewCache(client)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "statement:summary:acc-1:v2:abc", []byte(`{"NetFlow":"6"}`), time.Minute))

	val, err := cache.Get(ctx, "statement:summary:acc-1:v2:abc")
	require.NoError(t, err)
	assert.Equal(t, `{"NetFlow":"6"}`, string(val))

	assert.True(t, mr.Exists(cachePrefix+"statement:summary:acc-1:v2:abc"))
}

func TestCacheMissIsNotAnError(t *testing.T) {
	client, mr := newMiniRedis(t)
	defer mr.Close()
	defer client.Close()

	val, err := NewCache(client).Get(context.Background(), "absent")
	require.NoError(t, err)
	assert.Nil(t, val)
}

func TestCacheExpires(t *testing.T) {
	client, mr := newMiniRedis(t)
	defer mr.Close()
	defer client.Close()

	cache := NewCache(client)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "k", []byte("v"), time.Minute))
	mr.FastForward(2 * time.Minute)

	val, err := cache.Get(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, val)
}

func TestCacheDelete(t *testing.T) {
	client, mr := newMiniRedis(t)
	defer mr.Close()
	defer client.Close()

	cache := NewCache(client)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "foo", []byte("bar"), time.Minute))
	require.NoError(t, cache.Delete(ctx, "foo"))

	val, err := cache.Get(ctx, "foo")
	require.NoError(t, err)
	assert.Nil(t, val)
}

func TestCacheUnavailable(t *testing.T) {
	client, mr := newMiniRedis(t)
	defer client.Close()
	mr.Close()

	_, err := NewCache(client).Get(context.Background(), "foo")
	assert.Error(t, err)
}
