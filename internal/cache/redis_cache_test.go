package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duskraven/mailraven-backend/internal/cache"
)

func newTestCache(t *testing.T) (*cache.RedisProgressCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return cache.NewRedisProgressCache(rdb), mr
}

func Test_GetSnapshot_returns_nil_on_miss(t *testing.T) {
	c, _ := newTestCache(t)

	snap, err := c.GetSnapshot(context.Background(), "camp-1")
	require.NoError(t, err)
	assert.Nil(t, snap)
}

func Test_StoreSnapshot_round_trips(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	payload := []byte(`{"campaign_id":"camp-1","progress":50}`)
	require.NoError(t, c.StoreSnapshot(ctx, "camp-1", payload, time.Minute))

	snap, err := c.GetSnapshot(ctx, "camp-1")
	require.NoError(t, err)
	assert.Equal(t, payload, snap)

	// Snapshots are keyed per campaign.
	other, err := c.GetSnapshot(ctx, "camp-2")
	require.NoError(t, err)
	assert.Nil(t, other)
}

func Test_StoreSnapshot_expires(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.StoreSnapshot(ctx, "camp-1", []byte("x"), time.Second))
	mr.FastForward(2 * time.Second)

	snap, err := c.GetSnapshot(ctx, "camp-1")
	require.NoError(t, err)
	assert.Nil(t, snap)
}

func Test_Invalidate_drops_the_snapshot(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.StoreSnapshot(ctx, "camp-1", []byte("x"), time.Minute))
	require.NoError(t, c.Invalidate(ctx, "camp-1"))

	snap, err := c.GetSnapshot(ctx, "camp-1")
	require.NoError(t, err)
	assert.Nil(t, snap)

	// Invalidating an absent key is not an error.
	require.NoError(t, c.Invalidate(ctx, "camp-1"))
}
