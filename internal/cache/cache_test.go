package cache_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ErlanBelekov/jobbee-api/internal/cache"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func newClient(t *testing.T) (*cache.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := cache.NewFromRedis(redis.NewClient(&redis.Options{Addr: mr.Addr()}), discard)
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestClient_GetSet(t *testing.T) {
	c, mr := newClient(t)
	ctx := context.Background()

	assert.Nil(t, c.Get(ctx, "k"))

	c.Set(ctx, "k", []byte("v"), time.Minute)
	assert.Equal(t, []byte("v"), c.Get(ctx, "k"))

	mr.FastForward(2 * time.Minute)
	assert.Nil(t, c.Get(ctx, "k"))
}

func TestClient_UnavailableIsMiss(t *testing.T) {
	c, mr := newClient(t)
	mr.Close()

	ctx := context.Background()
	c.Set(ctx, "k", []byte("v"), time.Minute)
	assert.Nil(t, c.Get(ctx, "k"))
	assert.Error(t, c.Ping(ctx))
}

func TestDenylist_RevokeUntilExpiry(t *testing.T) {
	c, mr := newClient(t)
	d := cache.NewDenylist(c)
	ctx := context.Background()

	assert.False(t, d.IsRevoked(ctx, "jti-1"))

	require.NoError(t, d.Revoke(ctx, "jti-1", time.Hour))
	assert.True(t, d.IsRevoked(ctx, "jti-1"))
	assert.False(t, d.IsRevoked(ctx, "jti-2"))

	mr.FastForward(time.Hour + time.Second)
	assert.False(t, d.IsRevoked(ctx, "jti-1"))
}

func TestDenylist_ExpiredTokenNeedsNoEntry(t *testing.T) {
	c, mr := newClient(t)
	d := cache.NewDenylist(c)

	require.NoError(t, d.Revoke(context.Background(), "jti-1", 0))
	assert.Empty(t, mr.Keys())
}

func TestDenylist_FailsOpen(t *testing.T) {
	c, mr := newClient(t)
	d := cache.NewDenylist(c)
	ctx := context.Background()

	require.NoError(t, d.Revoke(ctx, "jti-1", time.Hour))
	mr.Close()

	assert.False(t, d.IsRevoked(ctx, "jti-1"))
	assert.Error(t, d.Revoke(ctx, "jti-2", time.Hour))
}
