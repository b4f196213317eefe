package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startMiniRedis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	srv, err := miniredis.Run()
	if err != nil {
		t.Skipf("skip: miniredis unavailable in this environment: %v", err)
	}
	t.Cleanup(srv.Close)
	return srv
}

func TestConnectInvalidURL(t *testing.T) {
	_, err := Connect("://invalid-url", "")
	assert.Error(t, err)
}

func TestConnectAndNamespacedOps(t *testing.T) {
	srv := startMiniRedis(t)

	rdb, err := Connect("redis://"+srv.Addr(), "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })

	c := NewClient(rdb, "price")
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "BTC", "65000", time.Minute))
	assert.True(t, srv.Exists("price:BTC"))

	got, err := c.Get(ctx, "BTC")
	require.NoError(t, err)
	assert.Equal(t, "65000", got)

	ok, err := c.SetNX(ctx, "BTC", "1", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Del(ctx, "BTC"))
	_, err = c.Get(ctx, "BTC")
	assert.ErrorIs(t, err, ErrCacheMiss)

	srv.FastForward(2 * time.Minute)
	ok, err = c.SetNX(ctx, "ETH", "1", time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestOpsWithUnreachableRedis(t *testing.T) {
	cli := goredis.NewClient(&goredis.Options{
		Addr:         "127.0.0.1:0",
		DialTimeout:  50 * time.Millisecond,
		ReadTimeout:  50 * time.Millisecond,
		WriteTimeout: 50 * time.Millisecond,
	})
	c := NewClient(cli, "")

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	assert.Error(t, c.Set(ctx, "k", "v", time.Second))
	_, err := c.Get(ctx, "k")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheMiss)
	assert.Error(t, c.Del(ctx, "k"))
	_, err = c.SetNX(ctx, "k", "v", time.Second)
	assert.Error(t, err)
}
