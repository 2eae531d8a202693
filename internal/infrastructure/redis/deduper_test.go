package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/crm-portal-api/internal/infrastructure/redis"
	"github.com/jhoicas/crm-portal-api/pkg/config"
)

func setupDeduper(t *testing.T, ttl time.Duration) (*miniredis.Miniredis, *redis.EventDeduper) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, redis.NewEventDeduper(client, ttl)
}

func TestEventDeduper_MarkThenSeen(t *testing.T) {
	_, d := setupDeduper(t, time.Hour)
	ctx := context.Background()

	seen, err := d.Seen(ctx, "evt_1")
	require.NoError(t, err)
	assert.False(t, seen)

	require.NoError(t, d.Mark(ctx, "evt_1"))
	require.NoError(t, d.Mark(ctx, "evt_1"))

	seen, err = d.Seen(ctx, "evt_1")
	require.NoError(t, err)
	assert.True(t, seen)

	seen, err = d.Seen(ctx, "evt_2")
	require.NoError(t, err)
	assert.False(t, seen)
}

func TestEventDeduper_Expires(t *testing.T) {
	mr, d := setupDeduper(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, d.Mark(ctx, "evt_1"))
	mr.FastForward(2 * time.Minute)

	seen, err := d.Seen(ctx, "evt_1")
	require.NoError(t, err)
	assert.False(t, seen)
}

func TestEventDeduper_ServerDown(t *testing.T) {
	mr, d := setupDeduper(t, time.Minute)
	mr.Close()

	_, err := d.Seen(context.Background(), "evt_1")
	require.Error(t, err)
}

func TestNewClient(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := redis.NewClient(context.Background(), config.RedisConfig{Addr: mr.Addr()})
	require.NoError(t, err)
	require.NoError(t, client.Close())
}
