package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"honeypot-lab/pkg/logger"
)

func setupMiniredis(t *testing.T) (*miniredis.Miniredis, *RedisCache) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	c := NewRedisFromClient(client, "test:", logger.NewNop())

	t.Cleanup(func() {
		_ = c.Close()
	})

	return mr, c
}

func TestAddIntel(t *testing.T) {
	mr, c := setupMiniredis(t)
	ctx := context.Background()

	require.NoError(t, c.AddIntel(ctx, "s1", "urls", []string{"http://a", "http://b"}, time.Hour))
	require.NoError(t, c.AddIntel(ctx, "s1", "urls", []string{"http://a"}, time.Hour))

	members, err := c.SMembers(ctx, IntelKey("s1", "urls"))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"http://a", "http://b"}, members)

	assert.True(t, mr.Exists("test:intel:s1:urls"))
	assert.Equal(t, time.Hour, mr.TTL("test:intel:s1:urls"))
}

func TestAddIntelEmptyIsNoop(t *testing.T) {
	mr, c := setupMiniredis(t)
	require.NoError(t, c.AddIntel(context.Background(), "s1", "phones", nil, time.Hour))
	assert.False(t, mr.Exists("test:intel:s1:phones"))
}

func TestCheckRateLimit(t *testing.T) {
	_, c := setupMiniredis(t)
	ctx := context.Background()

	for i := int64(1); i <= 3; i++ {
		allowed, remaining, reset, err := c.CheckRateLimit(ctx, "ip:1.2.3.4", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)
		assert.Equal(t, 3-i, remaining)
		assert.True(t, reset.After(time.Now()))
	}

	allowed, remaining, _, err := c.CheckRateLimit(ctx, "ip:1.2.3.4", 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.Zero(t, remaining)

	// other clients have their own window
	allowed, _, _, err = c.CheckRateLimit(ctx, "ip:5.6.7.8", 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestPing(t *testing.T) {
	mr, c := setupMiniredis(t)
	ctx := context.Background()
	assert.NoError(t, c.Ping(ctx))

	mr.Close()
	assert.Error(t, c.Ping(ctx))
}
